package subscriptions

import (
	"net/http"

	"github.com/mazza92/creator-dashboard-backend-sub000/services/subscriptions"
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

func pathID(c *gin.Context, label string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return "", false
	}
	return id, true
}

// @Summary Subscribe to a creator package
// @Description Create the recurring charge object and a pending subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param packageId path string true "Package ID"
// @Param subscription body subscriptions.SubscribeInput true "Billing choice"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions/{packageId}/subscribe [post]
func Subscribe(c *gin.Context) {
	packageID, ok := pathID(c, "package")
	if !ok {
		return
	}

	var input subscriptions.SubscribeInput
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	subscription, err := subscriptions.Subscribe(contextID(c, "brand_id"), packageID, input)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, "Subscription created", subscription)
}

// @Summary List subscriptions
// @Tags subscriptions
// @Produce json
// @Success 200 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions [get]
func ListSubscriptions(c *gin.Context) {
	out, err := subscriptions.ListSubscriptions(contextID(c, "brand_id"), contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Subscriptions retrieved", out)
}

// @Summary Get a subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions/{id} [get]
func GetSubscription(c *gin.Context) {
	id, ok := pathID(c, "subscription")
	if !ok {
		return
	}

	subscription, err := subscriptions.GetSubscription(id, contextID(c, "brand_id"), contextID(c, "creator_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Subscription retrieved", subscription)
}

// @Summary Approve the cycle deliverables
// @Description Capture the held cycle payment and activate a pending subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions/{id}/approve-deliverables [post]
func ApproveDeliverables(c *gin.Context) {
	id, ok := pathID(c, "subscription")
	if !ok {
		return
	}

	subscription, err := subscriptions.ApproveDeliverables(id, contextID(c, "brand_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Deliverables approved", subscription)
}

// @Summary Submit a deliverable
// @Description Record one content unit against the package quota
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param deliverable body subscriptions.SubmitDeliverableInput true "Deliverable"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions/{id}/deliverables [post]
func SubmitDeliverable(c *gin.Context) {
	id, ok := pathID(c, "subscription")
	if !ok {
		return
	}

	var input subscriptions.SubmitDeliverableInput
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	deliverable, err := subscriptions.SubmitDeliverable(id, contextID(c, "creator_id"), input)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, "Deliverable submitted", deliverable)
}

// @Summary Cancel a subscription
// @Description Cancel the provider-side recurring object and the subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Security BearerAuth
// @Router /subscriptions/{id} [delete]
func CancelSubscription(c *gin.Context) {
	id, ok := pathID(c, "subscription")
	if !ok {
		return
	}

	subscription, err := subscriptions.Cancel(id, contextID(c, "brand_id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Subscription canceled", subscription)
}

// @Summary Renew due subscriptions
// @Description Scheduler entry advancing every lapsed active subscription
// @Tags subscriptions
// @Produce json
// @Success 200 {object} utils.Response
// @Router /cron/renew-subscriptions [post]
func RenewDue(c *gin.Context) {
	renewed, err := subscriptions.RenewDue()
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Renewal run complete", gin.H{
		"renewed": renewed,
	})
}
