package bookings

import (
	"net/http"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/services/bookings"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func contextID(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}

func bookingID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid booking ID format")
		return "", false
	}
	return id, true
}

// @Summary Create a booking
// @Description Create a one-off booking or campaign invite for a creator
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body bookings.CreateBookingInput true "Booking terms"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /bookings [post]
func CreateBooking(c *gin.Context) {
	var input bookings.CreateBookingInput
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	booking, err := bookings.CreateBooking(contextID(c, "brand_id"), input)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, "Booking created", booking)
}

// @Summary List bookings
// @Description List the bookings the authenticated profile is a party to
// @Tags bookings
// @Produce json
// @Success 200 {object} utils.Response
// @Security BearerAuth
// @Router /bookings [get]
func ListBookings(c *gin.Context) {
	out, err := bookings.ListBookings(contextID(c, "brand_id"), contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Bookings retrieved", out)
}

// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id} [get]
func GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.GetBooking(id, contextID(c, "brand_id"), contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Booking retrieved", booking)
}

// @Summary Accept a campaign invite
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/accept [post]
func AcceptInvite(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.AcceptCampaignInvite(id, contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Invite accepted", booking)
}

// @Summary Reject a campaign invite
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/reject [post]
func RejectInvite(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.RejectCampaignInvite(id, contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Invite rejected", booking)
}

// @Summary Submit booking content
// @Description Submit a draft or final content as a link or an uploaded file
// @Tags bookings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param draft formData bool false "Draft submission"
// @Param contentLink formData string false "Content URL"
// @Param notes formData string false "Submission notes"
// @Param file formData file false "Content file"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/content [post]
func SubmitContent(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	input := bookings.SubmitContentInput{
		Draft:           c.PostForm("draft") == "true",
		ContentLink:     c.PostForm("contentLink"),
		SubmissionNotes: c.PostForm("notes"),
	}

	if file, err := c.FormFile("file"); err == nil && file != nil {
		url, err := utils.UploadContentFile(file)
		if err != nil {
			utils.LogError(err, "Error uploading the content file")
			utils.SendError(c, http.StatusBadRequest, "Error uploading the content file: "+err.Error())
			return
		}
		input.FileURL = url
	}

	booking, err := bookings.SubmitContent(id, contextID(c, "creator_id"), input)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Content submitted", booking)
}

type reviewContentRequest struct {
	Action        string `json:"action"`
	RevisionNotes string `json:"revisionNotes"`
}

// @Summary Review submitted content
// @Description Approve the submission or request a revision with notes
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param review body reviewContentRequest true "Review verdict"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/review-content [post]
func ReviewContent(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var input reviewContentRequest
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	booking, err := bookings.ReviewContent(id, contextID(c, "brand_id"), input.Action, input.RevisionNotes)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Content reviewed", booking)
}

// @Summary Publish approved content
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/publish [post]
func PublishContent(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.PublishContent(id, contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Content published", booking)
}

type initiatePaymentRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// @Summary Initiate booking payment
// @Description Confirm the published content and create the provider-side charge
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payment body initiatePaymentRequest true "Payment method"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/confirm-published [post]
func InitiatePayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var input initiatePaymentRequest
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	booking, err := bookings.InitiatePayment(id, contextID(c, "brand_id"), input.PaymentMethod)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Payment initiated", booking)
}

// @Summary Complete booking payment
// @Description Capture the provider-side charge and close the booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/complete-payment [post]
func CompletePayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.CompletePayment(id, contextID(c, "brand_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Payment completed", booking)
}

// @Summary Cancel a booking
// @Description Cancel before any payment was captured
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /bookings/{id}/cancel [post]
func CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := bookings.CancelBooking(id, contextID(c, "brand_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Booking canceled", booking)
}
