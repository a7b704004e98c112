// Package bookings orchestrates the one-off booking lifecycle: workflow
// transitions, payment initiation and capture, and the notifications that go
// with them. Webhook reconciliation enters through ReconcileCapturedPayment
// and shares every transition with the interactive paths.
package bookings

import (
	"context"
	"errors"
	"strings"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	"github.com/mazza92/creator-dashboard-backend-sub000/lifecycle"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/notifications"
	"github.com/mazza92/creator-dashboard-backend-sub000/payments"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"gorm.io/gorm"
)

// gatewayFor is swapped in tests.
var gatewayFor = payments.ForMethod

// CreateBookingInput carries the agreed terms of a new engagement.
type CreateBookingInput struct {
	CreatorID       string             `json:"creatorId"`
	Type            models.BookingType `json:"type"`
	BidAmount       float64            `json:"bidAmount"`
	SubmissionNotes string             `json:"notes"`
}

// CreateBooking inserts a new booking for the brand. Campaign invites start
// in INVITED and wait for the creator; everything else starts in PENDING.
// Payment always starts ON_HOLD.
func CreateBooking(brandID string, input CreateBookingInput) (*models.Booking, error) {
	if input.CreatorID == "" {
		return nil, &apperrors.ValidationError{Message: "creatorId is required"}
	}
	if input.BidAmount <= 0 {
		return nil, &apperrors.ValidationError{Message: "bidAmount must be greater than zero"}
	}
	switch input.Type {
	case models.BookingSponsor, models.BookingCampaignInvite, models.BookingOneOffPartnership:
	case "":
		input.Type = models.BookingOneOffPartnership
	default:
		return nil, &apperrors.ValidationError{Message: "unknown booking type: " + string(input.Type)}
	}

	brand, creator, err := loadParties(brandID, input.CreatorID)
	if err != nil {
		return nil, err
	}

	booking := models.Booking{
		BrandID:         brandID,
		CreatorID:       input.CreatorID,
		Type:            input.Type,
		Status:          models.BookingPending,
		ContentStatus:   models.ContentPending,
		PaymentStatus:   models.PaymentOnHold,
		BidAmount:       input.BidAmount,
		SubmissionNotes: input.SubmissionNotes,
	}
	if input.Type == models.BookingCampaignInvite {
		booking.Status = models.BookingInvited
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		notifications.NotifyBoth(tx, brand.UserID, creator.UserID, models.EventNewBooking, map[string]string{
			"booking_id":   booking.ID,
			"brand_name":   brand.CompanyName,
			"creator_name": creator.DisplayName,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// AcceptCampaignInvite flips an INVITED booking to CONFIRMED and its type
// from CAMPAIGN_INVITE to SPONSOR. Re-invoking on a resolved booking returns
// AlreadyResolvedError rather than silently succeeding.
func AcceptCampaignInvite(bookingID, creatorID string) (*models.Booking, error) {
	return resolveInvite(bookingID, creatorID, true)
}

// RejectCampaignInvite resolves an INVITED booking to the terminal REJECTED.
func RejectCampaignInvite(bookingID, creatorID string) (*models.Booking, error) {
	return resolveInvite(bookingID, creatorID, false)
}

func resolveInvite(bookingID, creatorID string, accept bool) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "only the invited creator can respond to this invite"}
	}

	resolution, err := lifecycle.ResolveInvite(booking, accept)
	if err != nil {
		return nil, err
	}

	brand, creator, err := loadParties(booking.BrandID, booking.CreatorID)
	if err != nil {
		return nil, err
	}

	event := models.EventBookingAccepted
	if !accept {
		event = models.EventBookingRejected
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingInvited).
			Updates(map[string]interface{}{
				"status":         resolution.Status,
				"content_status": resolution.ContentStatus,
				"type":           resolution.Type,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return raceOutcome(tx, booking.ID)
		}
		if _, err := notifications.Notify(tx, brand.UserID, models.BrandRole, event, map[string]string{
			"booking_id":   booking.ID,
			"brand_name":   brand.CompanyName,
			"creator_name": creator.DisplayName,
		}); err != nil {
			utils.LogError(err, "Failed to create notification for invite resolution")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = resolution.Status
	booking.ContentStatus = resolution.ContentStatus
	booking.Type = resolution.Type
	return booking, nil
}

// terminalBookingStatus reports whether the booking is settled for good. No
// workflow or payment action may touch it afterwards.
func terminalBookingStatus(status models.BookingStatus) bool {
	switch status {
	case models.BookingCompleted, models.BookingCanceled, models.BookingRejected:
		return true
	}
	return false
}

// raceOutcome distinguishes a lost invite race from a plain conflict: a
// booking that left INVITED was resolved by someone else.
func raceOutcome(tx *gorm.DB, bookingID string) error {
	var current models.Booking
	if err := tx.First(&current, "id = ?", bookingID).Error; err != nil {
		return err
	}
	if current.Status != models.BookingInvited {
		return &apperrors.AlreadyResolvedError{Status: string(current.Status)}
	}
	return &apperrors.ConflictError{}
}

// SubmitContentInput carries a creator's submission. Exactly one of
// ContentLink or FileURL is expected; FileURL comes from the upload layer and
// is stored verbatim.
type SubmitContentInput struct {
	Draft           bool
	ContentLink     string
	FileURL         string
	SubmissionNotes string
}

// SubmitContent moves the booking to DRAFT_SUBMITTED or SUBMITTED and records
// the content location.
func SubmitContent(bookingID, creatorID string, input SubmitContentInput) (*models.Booking, error) {
	if input.ContentLink == "" && input.FileURL == "" {
		return nil, &apperrors.ValidationError{Message: "a content link or file is required"}
	}

	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "only the booked creator can submit content"}
	}
	if terminalBookingStatus(booking.Status) {
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}

	action := lifecycle.ActionSubmit
	if input.Draft {
		action = lifecycle.ActionSubmitDraft
	}
	next, err := lifecycle.Transition(booking.ContentStatus, action, "")
	if err != nil {
		return nil, err
	}

	brand, creator, err := loadParties(booking.BrandID, booking.CreatorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"content_status":   next,
		"status":           lifecycle.StatusFor(next),
		"content_link":     input.ContentLink,
		"file_url":         input.FileURL,
		"submission_notes": input.SubmissionNotes,
	}

	err = applyContentTransition(booking, next, updates, func(tx *gorm.DB) {
		if _, err := notifications.Notify(tx, brand.UserID, models.BrandRole, models.EventContentSubmitted, map[string]string{
			"booking_id":   booking.ID,
			"creator_name": creator.DisplayName,
		}); err != nil {
			utils.LogError(err, "Failed to create content submission notification")
		}
	})
	if err != nil {
		return nil, err
	}

	booking.ContentLink = input.ContentLink
	booking.FileURL = input.FileURL
	booking.SubmissionNotes = input.SubmissionNotes
	return booking, nil
}

// ReviewContent applies the brand's verdict: approve clears any revision
// notes, request_revision requires them.
func ReviewContent(bookingID, brandID, action, revisionNotes string) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the booking brand can review content"}
	}
	if terminalBookingStatus(booking.Status) {
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}

	var lifecycleAction lifecycle.Action
	switch action {
	case "approve":
		lifecycleAction = lifecycle.ActionApprove
	case "request_revision":
		lifecycleAction = lifecycle.ActionRequestRevision
	default:
		return nil, &apperrors.ValidationError{Message: "action must be approve or request_revision"}
	}

	next, err := lifecycle.Transition(booking.ContentStatus, lifecycleAction, revisionNotes)
	if err != nil {
		return nil, err
	}

	brand, creator, err := loadParties(booking.BrandID, booking.CreatorID)
	if err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(revisionNotes)
	if lifecycleAction == lifecycle.ActionApprove {
		notes = ""
	}
	updates := map[string]interface{}{
		"content_status": next,
		"status":         lifecycle.StatusFor(next),
		"revision_notes": notes,
	}

	event := models.EventContentApproved
	if lifecycleAction == lifecycle.ActionRequestRevision {
		event = models.EventRevisionRequested
	}

	err = applyContentTransition(booking, next, updates, func(tx *gorm.DB) {
		if _, err := notifications.Notify(tx, creator.UserID, models.CreatorRole, event, map[string]string{
			"booking_id":     booking.ID,
			"brand_name":     brand.CompanyName,
			"revision_notes": notes,
		}); err != nil {
			utils.LogError(err, "Failed to create review notification")
		}
	})
	if err != nil {
		return nil, err
	}

	booking.RevisionNotes = notes
	return booking, nil
}

// PublishContent records that the approved content went live.
func PublishContent(bookingID, creatorID string) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "only the booked creator can publish content"}
	}
	if terminalBookingStatus(booking.Status) {
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}

	next, err := lifecycle.Transition(booking.ContentStatus, lifecycle.ActionPublish, "")
	if err != nil {
		return nil, err
	}

	brand, creator, err := loadParties(booking.BrandID, booking.CreatorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"content_status": next,
		"status":         lifecycle.StatusFor(next),
	}

	return booking, applyContentTransition(booking, next, updates, func(tx *gorm.DB) {
		if _, err := notifications.Notify(tx, brand.UserID, models.BrandRole, models.EventContentPublished, map[string]string{
			"booking_id":   booking.ID,
			"creator_name": creator.DisplayName,
		}); err != nil {
			utils.LogError(err, "Failed to create publish notification")
		}
	})
}

// applyContentTransition writes the guarded status update and the attached
// notification in one transaction. Both statuses are pinned in the guard so a
// booking that was canceled or resolved underneath us stays where it is; zero
// rows means the booking moved.
func applyContentTransition(booking *models.Booking, next models.ContentStatus, updates map[string]interface{}, notify func(tx *gorm.DB)) error {
	previous := booking.ContentStatus
	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND content_status = ? AND status = ?", booking.ID, previous, booking.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.ConflictError{}
		}
		booking.ContentStatus = next
		booking.Status = lifecycle.StatusFor(next)
		notify(tx)
		return nil
	})
}

// InitiatePayment computes the platform fee once, creates (or reuses) the
// provider-side charge and marks the payment PENDING. Safe to call twice: an
// unresolved provider handle is reused instead of creating a second charge,
// and the guarded write hands exactly one caller the right to attach a new
// handle.
func InitiatePayment(bookingID, brandID string, method models.PaymentMethod) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the booking brand can initiate payment"}
	}
	if terminalBookingStatus(booking.Status) {
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}
	if booking.ContentStatus != models.ContentPublished {
		return nil, &apperrors.InvalidStateError{Current: string(booking.ContentStatus), Requested: string(models.ContentPublished)}
	}
	if booking.PaymentStatus != models.PaymentOnHold && booking.PaymentStatus != models.PaymentPending {
		return nil, &apperrors.InvalidStateError{Current: string(booking.PaymentStatus), Requested: string(models.PaymentPending)}
	}
	if err := lifecycle.NextPaymentStatus(booking.PaymentStatus, models.PaymentPending); err != nil {
		return nil, err
	}

	var creator models.Creator
	if err := db.DB.First(&creator, "id = ?", booking.CreatorID).Error; err != nil {
		return nil, translateNotFound(err, "creator", booking.CreatorID)
	}

	gateway, err := gatewayFor(method)
	if err != nil {
		return nil, err
	}

	// Reuse an unresolved handle from a previous attempt on the same method
	// rather than charging twice.
	if booking.TransactionID != "" && booking.PaymentMethod == method {
		ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
		defer cancel()
		status, err := gateway.RetrieveStatus(ctx, payments.Handle{
			Provider:    method,
			ID:          booking.TransactionID,
			AmountMinor: payments.MinorUnits(booking.BidAmount),
		})
		if err != nil {
			return nil, err
		}
		if !status.Resolved() || status == payments.StatusSucceeded {
			return booking, nil
		}
	}

	// The fee is computed exactly once, at first initiation, and reused
	// verbatim from then on.
	platformFee := booking.PlatformFee
	if platformFee == 0 {
		breakdown := payments.ComputeFee(payments.MinorUnits(booking.BidAmount), payments.FeeBasisPoints())
		platformFee = payments.FromMinorUnits(breakdown.Fee)
	}

	ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
	defer cancel()
	handle, err := gateway.Initiate(ctx, payments.ChargeRequest{
		Amount:             booking.BidAmount,
		Currency:           "usd",
		Description:        "Booking " + booking.ID,
		Metadata:           map[string]string{"booking_id": booking.ID},
		DestinationAccount: creator.StripeAccountId,
		PlatformFee:        platformFee,
	})
	if err != nil {
		return nil, err
	}

	res := db.DB.Model(&models.Booking{}).
		Where("id = ? AND payment_status IN ? AND transaction_id = ? AND status NOT IN ?",
			booking.ID,
			[]models.PaymentStatus{models.PaymentOnHold, models.PaymentPending},
			booking.TransactionID,
			[]models.BookingStatus{models.BookingCompleted, models.BookingCanceled, models.BookingRejected}).
		Updates(map[string]interface{}{
			"transaction_id": handle.ID,
			"payment_method": method,
			"platform_fee":   platformFee,
			"payment_status": models.PaymentPending,
		})
	if res.Error != nil {
		utils.LogPaymentDivergence(res.Error, string(method), handle.ID, "Charge created but initiation could not be persisted")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else attached a handle first; their charge wins.
		return nil, &apperrors.ConflictError{Message: "payment was already initiated for this booking, refetch and retry"}
	}

	booking.TransactionID = handle.ID
	booking.PaymentMethod = method
	booking.PlatformFee = platformFee
	booking.PaymentStatus = models.PaymentPending
	return booking, nil
}

// CompletePayment captures the provider-side charge and, on definitive
// success, atomically flips status, content_status and payment_status to
// COMPLETED. The gateway-reported amount must equal the stored bid amount to
// the cent.
func CompletePayment(bookingID, brandID string) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the booking brand can complete payment"}
	}
	if terminalBookingStatus(booking.Status) {
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}
	if booking.PaymentStatus != models.PaymentPending {
		return nil, &apperrors.InvalidStateError{Current: string(booking.PaymentStatus), Requested: string(models.PaymentCompleted)}
	}

	gateway, err := gatewayFor(booking.PaymentMethod)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
	defer cancel()
	result, err := gateway.Capture(ctx, payments.Handle{
		Provider:    booking.PaymentMethod,
		ID:          booking.TransactionID,
		AmountMinor: payments.MinorUnits(booking.BidAmount),
	})
	if err != nil {
		return nil, err
	}

	if err := applyCapturedPayment(booking, result); err != nil {
		return nil, err
	}
	return booking, nil
}

// ReconcileCapturedPayment is the webhook entry point: the provider asserts a
// charge succeeded and local state is brought up to date through the same
// transition as the interactive path. A transaction id that matches nothing
// is a logged no-op, as is a booking already in its terminal payment state.
func ReconcileCapturedPayment(method models.PaymentMethod, transactionID string, amountMinorUnits int64) error {
	var booking models.Booking
	err := db.DB.First(&booking, "transaction_id = ? AND payment_method = ?", transactionID, method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogInfo("No booking matches transaction " + transactionID + ", ignoring event")
			return nil
		}
		return err
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return nil
	}
	if terminalBookingStatus(booking.Status) {
		// Money moved on the provider side for a booking that was resolved
		// locally. Flag it instead of resurrecting the booking.
		utils.LogPaymentDivergence(
			&apperrors.InvalidStateError{Current: string(booking.Status), Requested: string(models.BookingCompleted)},
			string(method), transactionID,
			"Provider charge captured for a booking in a terminal state")
		return nil
	}

	return applyCapturedPayment(&booking, &payments.CaptureResult{
		TransactionID:    transactionID,
		Succeeded:        true,
		AmountMinorUnits: amountMinorUnits,
	})
}

// applyCapturedPayment is the single completion transition shared by the
// interactive and webhook paths. The provider has definitively charged at
// this point, so any persistence failure is logged as a divergence with the
// transaction id preserved.
func applyCapturedPayment(booking *models.Booking, result *payments.CaptureResult) error {
	if !result.Succeeded {
		return &apperrors.GatewayError{
			Provider: string(booking.PaymentMethod),
			Message:  "charge has not succeeded on the provider side",
		}
	}
	if err := payments.VerifyAmount(booking.BidAmount, result.AmountMinorUnits); err != nil {
		return err
	}
	next, err := lifecycle.Transition(booking.ContentStatus, lifecycle.ActionPaymentCaptured, "")
	if err != nil {
		return err
	}
	if err := lifecycle.NextPaymentStatus(booking.PaymentStatus, models.PaymentCompleted); err != nil {
		return err
	}

	brand, creator, err := loadParties(booking.BrandID, booking.CreatorID)
	if err != nil {
		return err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ? AND status NOT IN ?",
				booking.ID, models.PaymentPending,
				[]models.BookingStatus{models.BookingCanceled, models.BookingRejected}).
			Updates(map[string]interface{}{
				"status":         models.BookingCompleted,
				"content_status": next,
				"payment_status": models.PaymentCompleted,
				"transaction_id": result.TransactionID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.ConflictError{Message: "payment state changed concurrently"}
		}
		notifications.NotifyBoth(tx, brand.UserID, creator.UserID, models.EventPaymentCompleted, map[string]string{
			"booking_id":   booking.ID,
			"brand_name":   brand.CompanyName,
			"creator_name": creator.DisplayName,
			"amount":       utils.FormatAmount(booking.BidAmount),
		})
		return nil
	})
	if err != nil {
		utils.LogPaymentDivergence(err, string(booking.PaymentMethod), result.TransactionID,
			"Provider charge succeeded but completion could not be persisted")
		return err
	}

	booking.Status = models.BookingCompleted
	booking.ContentStatus = next
	booking.PaymentStatus = models.PaymentCompleted
	booking.TransactionID = result.TransactionID
	return nil
}

// CancelBooking lets the brand cancel before any money moved.
func CancelBooking(bookingID, brandID string) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the booking brand can cancel"}
	}
	switch booking.Status {
	case models.BookingCompleted, models.BookingCanceled, models.BookingRejected:
		return nil, &apperrors.AlreadyResolvedError{Status: string(booking.Status)}
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return nil, &apperrors.InvalidStateError{Current: string(booking.PaymentStatus), Requested: string(models.BookingCanceled)}
	}

	res := db.DB.Model(&models.Booking{}).
		Where("id = ? AND status = ? AND payment_status <> ?", booking.ID, booking.Status, models.PaymentCompleted).
		Update("status", models.BookingCanceled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &apperrors.ConflictError{}
	}

	booking.Status = models.BookingCanceled
	return booking, nil
}

// GetBooking returns one booking if the caller is a party to it.
func GetBooking(bookingID, brandID, creatorID string) (*models.Booking, error) {
	booking, err := loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BrandID != brandID && booking.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "you are not a party to this booking"}
	}
	return booking, nil
}

// ListBookings returns the bookings a brand or creator is a party to.
func ListBookings(brandID, creatorID string) ([]models.Booking, error) {
	var out []models.Booking
	query := db.DB.Order("created_at DESC")
	switch {
	case brandID != "":
		query = query.Where("brand_id = ?", brandID)
	case creatorID != "":
		query = query.Where("creator_id = ?", creatorID)
	default:
		return nil, &apperrors.AuthorizationError{Message: "a brand or creator profile is required"}
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func loadBooking(bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := db.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, translateNotFound(err, "booking", bookingID)
	}
	return &booking, nil
}

func loadParties(brandID, creatorID string) (*models.Brand, *models.Creator, error) {
	var brand models.Brand
	if err := db.DB.First(&brand, "id = ?", brandID).Error; err != nil {
		return nil, nil, translateNotFound(err, "brand", brandID)
	}
	var creator models.Creator
	if err := db.DB.First(&creator, "id = ?", creatorID).Error; err != nil {
		return nil, nil, translateNotFound(err, "creator", creatorID)
	}
	return &brand, &creator, nil
}

func translateNotFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperrors.NotFoundError{Resource: resource, ID: id}
	}
	return err
}
