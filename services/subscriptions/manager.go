// Package subscriptions orchestrates recurring package engagements: the
// provider-side recurring object, held-then-captured cycle payments, and the
// per-cycle deliverable quotas. HandleRecurringPayment is the webhook entry
// for renewal charges and shares all state writes with the interactive paths.
package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/notifications"
	"github.com/mazza92/creator-dashboard-backend-sub000/payments"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"gorm.io/gorm"
)

// gatewayFor and retryBackoff are swapped in tests.
var (
	gatewayFor   = payments.ForMethod
	retryBackoff = 500 * time.Millisecond
)

// initiateAttempts bounds retries of recurring-object creation. Plan creation
// is not idempotent on the provider side, so retries happen only after the
// handle-reuse pre-check and only on unreachability.
const initiateAttempts = 3

// cycleLength is how far one recurring charge extends the coverage window.
const cycleLength = 30 * 24 * time.Hour

// SubscribeInput carries the brand's choice of billing method and term.
type SubscribeInput struct {
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	DurationMonths int                  `json:"durationMonths"`
}

// Subscribe creates the provider-side recurring object and the local pending
// subscription with its first held payment and seeded deliverable slots. The
// subscription stays pending until the first cycle is captured by
// ApproveDeliverables.
func Subscribe(brandID, packageID string, input SubscribeInput) (*models.BrandSubscription, error) {
	if input.DurationMonths <= 0 {
		input.DurationMonths = 1
	}

	var pkg models.CreatorPackage
	if err := db.DB.Preload("Deliverables").First(&pkg, "id = ?", packageID).Error; err != nil {
		return nil, translateNotFound(err, "package", packageID)
	}
	if pkg.MonthlyPrice <= 0 {
		return nil, &apperrors.ValidationError{Message: "package has no monthly price configured"}
	}

	var brand models.Brand
	if err := db.DB.First(&brand, "id = ?", brandID).Error; err != nil {
		return nil, translateNotFound(err, "brand", brandID)
	}
	var creator models.Creator
	if err := db.DB.First(&creator, "id = ?", pkg.CreatorID).Error; err != nil {
		return nil, translateNotFound(err, "creator", pkg.CreatorID)
	}

	gateway, err := gatewayFor(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// Handle-reuse pre-check: a pending subscription with an unresolved
	// provider object means a previous Subscribe already charged ahead of us.
	var existing models.BrandSubscription
	err = db.DB.First(&existing,
		"brand_id = ? AND package_id = ? AND status = ? AND transaction_id <> ''",
		brandID, packageID, models.SubscriptionPending).Error
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
		defer cancel()
		status, serr := gateway.RetrieveStatus(ctx, payments.Handle{
			Provider:    existing.PaymentMethod,
			ID:          existing.TransactionID,
			PlanID:      existing.PlanID,
			AmountMinor: payments.MinorUnits(pkg.MonthlyPrice),
		})
		if serr != nil {
			return nil, serr
		}
		if !status.Resolved() || status == payments.StatusSucceeded {
			return &existing, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	handle, err := initiateRecurring(gateway, payments.ChargeRequest{
		Amount:      pkg.MonthlyPrice,
		Currency:    "usd",
		Description: "Subscription to " + pkg.Name,
		Metadata: map[string]string{
			"package_id": packageID,
			"brand_id":   brandID,
		},
		DestinationAccount: creator.StripeAccountId,
		Recurring:          true,
		IntervalMonths:     1,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	subscription := models.BrandSubscription{
		PackageID:      packageID,
		BrandID:        brandID,
		StartDate:      now,
		EndDate:        now.Add(cycleLength),
		DurationMonths: input.DurationMonths,
		Status:         models.SubscriptionPending,
		TotalCost:      pkg.MonthlyPrice * float64(input.DurationMonths),
		TransactionID:  handle.ID,
		PlanID:         handle.PlanID,
		PaymentMethod:  input.PaymentMethod,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}
		payment := models.SubscriptionPayment{
			SubscriptionID: subscription.ID,
			Amount:         pkg.MonthlyPrice,
			TransactionID:  handle.ID,
			Status:         models.SubscriptionPaymentHeld,
			PeriodStart:    now,
			PeriodEnd:      now.Add(cycleLength),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := seedDeliverables(tx, &subscription, pkg.Deliverables, pkg.CreatorID); err != nil {
			return err
		}
		notifications.NotifyBoth(tx, brand.UserID, creator.UserID, models.EventSubscriptionInitiated, map[string]string{
			"subscription_id": subscription.ID,
			"package_name":    pkg.Name,
			"brand_name":      brand.CompanyName,
			"creator_name":    creator.DisplayName,
			"amount":          utils.FormatAmount(pkg.MonthlyPrice),
		})
		return nil
	})
	if err != nil {
		utils.LogPaymentDivergence(err, string(input.PaymentMethod), handle.ID,
			"Recurring object created but subscription could not be persisted")
		return nil, err
	}
	return &subscription, nil
}

// initiateRecurring retries only on provider unreachability. A provider
// rejection is final.
func initiateRecurring(gateway payments.Gateway, req payments.ChargeRequest) (*payments.Handle, error) {
	backoff := retryBackoff
	var lastErr error
	for attempt := 0; attempt < initiateAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
		handle, err := gateway.Initiate(ctx, req)
		cancel()
		if err == nil {
			return handle, nil
		}
		lastErr = err
		var gatewayErr *apperrors.GatewayError
		if !errors.As(err, &gatewayErr) || !gatewayErr.Unreachable {
			return nil, err
		}
	}
	return nil, lastErr
}

// seedDeliverables inserts one Pending slot per package entry, skipping
// entries that already have an open Pending slot or an exhausted quota. Safe
// to call repeatedly.
func seedDeliverables(tx *gorm.DB, sub *models.BrandSubscription, entries []models.PackageDeliverable, creatorID string) error {
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		var pending int64
		err := tx.Model(&models.SubscriptionDeliverable{}).
			Where("subscription_id = ? AND type = ? AND platform = ? AND status = ?",
				sub.ID, entry.Type, entry.Platform, models.DeliverablePending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			continue
		}
		next, err := nextSubmissionIndex(tx, sub.ID, entry.Type, entry.Platform)
		if err != nil {
			return err
		}
		if next >= entry.Quantity {
			continue
		}
		deliverable := models.SubscriptionDeliverable{
			SubscriptionID:  sub.ID,
			CreatorID:       creatorID,
			Type:            entry.Type,
			Platform:        entry.Platform,
			SubmissionIndex: next,
			Status:          models.DeliverablePending,
		}
		if err := tx.Create(&deliverable).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextSubmissionIndex(tx *gorm.DB, subscriptionID, deliverableType, platform string) (int, error) {
	var maxIndex *int
	err := tx.Model(&models.SubscriptionDeliverable{}).
		Where("subscription_id = ? AND type = ? AND platform = ?", subscriptionID, deliverableType, platform).
		Select("MAX(submission_index)").
		Scan(&maxIndex).Error
	if err != nil {
		return 0, err
	}
	if maxIndex == nil {
		return 0, nil
	}
	return *maxIndex + 1, nil
}

// SubmitDeliverableInput is one content unit from the creator.
type SubmitDeliverableInput struct {
	Type        string `json:"type"`
	Platform    string `json:"platform"`
	ContentLink string `json:"contentLink"`
}

// SubmitDeliverable records a submission against the package quota for its
// (type, platform) pair. An open Pending slot is filled first; otherwise a new
// slot is taken at the next index, failing QuotaExceededError once the
// configured quantity is reached.
func SubmitDeliverable(subscriptionID, creatorID string, input SubmitDeliverableInput) (*models.SubscriptionDeliverable, error) {
	if input.Type == "" || input.Platform == "" {
		return nil, &apperrors.ValidationError{Message: "type and platform are required"}
	}
	if input.ContentLink == "" {
		return nil, &apperrors.ValidationError{Message: "contentLink is required"}
	}

	subscription, pkg, err := loadSubscriptionWithPackage(subscriptionID)
	if err != nil {
		return nil, err
	}
	if pkg.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "only the package creator can submit deliverables"}
	}
	if subscription.Status == models.SubscriptionCanceled || subscription.Status == models.SubscriptionInactive {
		return nil, &apperrors.InvalidStateError{Current: string(subscription.Status), Requested: string(models.SubscriptionActive)}
	}

	quantity := 0
	for _, entry := range pkg.Deliverables {
		if entry.Type == input.Type && entry.Platform == input.Platform {
			quantity = entry.Quantity
			break
		}
	}
	if quantity == 0 {
		return nil, &apperrors.ValidationError{Message: "the package does not include " + input.Type + " on " + input.Platform}
	}

	brand, creator, err := loadNotifyParties(subscription.BrandID, pkg.CreatorID)
	if err != nil {
		return nil, err
	}

	var deliverable models.SubscriptionDeliverable
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Fill the oldest open slot if one was seeded for this pair.
		err := tx.Where("subscription_id = ? AND type = ? AND platform = ? AND status = ?",
			subscriptionID, input.Type, input.Platform, models.DeliverablePending).
			Order("submission_index ASC").
			First(&deliverable).Error
		switch {
		case err == nil:
			res := tx.Model(&models.SubscriptionDeliverable{}).
				Where("id = ? AND status = ?", deliverable.ID, models.DeliverablePending).
				Updates(map[string]interface{}{
					"status":       models.DeliverableSubmitted,
					"content_link": input.ContentLink,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &apperrors.ConflictError{}
			}
			deliverable.Status = models.DeliverableSubmitted
			deliverable.ContentLink = input.ContentLink
		case errors.Is(err, gorm.ErrRecordNotFound):
			next, err := nextSubmissionIndex(tx, subscriptionID, input.Type, input.Platform)
			if err != nil {
				return err
			}
			if next >= quantity {
				return &apperrors.QuotaExceededError{Type: input.Type, Platform: input.Platform, Quantity: quantity}
			}
			deliverable = models.SubscriptionDeliverable{
				SubscriptionID:  subscriptionID,
				CreatorID:       creatorID,
				Type:            input.Type,
				Platform:        input.Platform,
				SubmissionIndex: next,
				Status:          models.DeliverableSubmitted,
				ContentLink:     input.ContentLink,
			}
			if err := tx.Create(&deliverable).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if _, err := notifications.Notify(tx, brand.UserID, models.BrandRole, models.EventDeliverableSubmitted, map[string]string{
			"subscription_id": subscriptionID,
			"creator_name":    creator.DisplayName,
			"type":            input.Type,
			"platform":        input.Platform,
		}); err != nil {
			utils.LogError(err, "Failed to create deliverable submission notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deliverable, nil
}

// ApproveDeliverables captures the oldest held cycle payment and marks the
// cycle's submitted deliverables delivered. The first approval also activates
// a pending subscription.
func ApproveDeliverables(subscriptionID, brandID string) (*models.BrandSubscription, error) {
	subscription, pkg, err := loadSubscriptionWithPackage(subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the subscribing brand can approve deliverables"}
	}

	var payment models.SubscriptionPayment
	err = db.DB.Where("subscription_id = ? AND status = ?", subscriptionID, models.SubscriptionPaymentHeld).
		Order("created_at ASC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "held subscription payment", ID: subscriptionID}
		}
		return nil, err
	}

	gateway, err := gatewayFor(subscription.PaymentMethod)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
	defer cancel()
	result, err := gateway.Capture(ctx, payments.Handle{
		Provider:    subscription.PaymentMethod,
		ID:          payment.TransactionID,
		PlanID:      subscription.PlanID,
		AmountMinor: payments.MinorUnits(payment.Amount),
	})
	if err != nil {
		return nil, err
	}
	if !result.Succeeded {
		return nil, &apperrors.GatewayError{
			Provider: string(subscription.PaymentMethod),
			Message:  "cycle payment has not succeeded on the provider side",
		}
	}
	if err := payments.VerifyAmount(payment.Amount, result.AmountMinorUnits); err != nil {
		return nil, err
	}

	brand, creator, err := loadNotifyParties(subscription.BrandID, pkg.CreatorID)
	if err != nil {
		return nil, err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SubscriptionPayment{}).
			Where("id = ? AND status = ?", payment.ID, models.SubscriptionPaymentHeld).
			Update("status", models.SubscriptionPaymentCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.ConflictError{Message: "cycle payment state changed concurrently"}
		}
		if subscription.Status == models.SubscriptionPending {
			res := tx.Model(&models.BrandSubscription{}).
				Where("id = ? AND status = ?", subscription.ID, models.SubscriptionPending).
				Update("status", models.SubscriptionActive)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				subscription.Status = models.SubscriptionActive
			}
		}
		if err := tx.Model(&models.SubscriptionDeliverable{}).
			Where("subscription_id = ? AND status = ?", subscription.ID, models.DeliverableSubmitted).
			Update("status", models.DeliverableDelivered).Error; err != nil {
			return err
		}
		if _, err := notifications.Notify(tx, creator.UserID, models.CreatorRole, models.EventDeliverablesApproved, map[string]string{
			"subscription_id": subscription.ID,
			"brand_name":      brand.CompanyName,
			"amount":          utils.FormatAmount(payment.Amount),
		}); err != nil {
			utils.LogError(err, "Failed to create deliverables approval notification")
		}
		return nil
	})
	if err != nil {
		utils.LogPaymentDivergence(err, string(subscription.PaymentMethod), result.TransactionID,
			"Cycle payment captured but approval could not be persisted")
		return nil, err
	}
	return subscription, nil
}

// Renew advances an expired active subscription by one month and reseeds the
// deliverable slots. Stripe carries no provider-driven renewal charge here, so
// the renewal run also initiates the next cycle's held charge itself; PayPal
// cycles arrive through PAYMENT.SALE.COMPLETED instead. Calling Renew on a
// subscription that is not due is a no-op.
func Renew(subscriptionID string) (bool, error) {
	subscription, pkg, err := loadSubscriptionWithPackage(subscriptionID)
	if err != nil {
		return false, err
	}
	if subscription.Status != models.SubscriptionActive {
		return false, nil
	}
	now := time.Now()
	if subscription.EndDate.After(now) {
		return false, nil
	}

	// The gateway call happens before the transaction opens. Losing the CAS
	// afterwards leaves an uncaptured manual intent that expires on its own.
	var cycleHandle *payments.Handle
	var brand *models.Brand
	var creator *models.Creator
	if subscription.PaymentMethod == models.PaymentMethodStripe {
		brand, creator, err = loadNotifyParties(subscription.BrandID, pkg.CreatorID)
		if err != nil {
			return false, err
		}
		gateway, err := gatewayFor(subscription.PaymentMethod)
		if err != nil {
			return false, err
		}
		cycleHandle, err = initiateRecurring(gateway, payments.ChargeRequest{
			Amount:      pkg.MonthlyPrice,
			Currency:    "usd",
			Description: "Subscription to " + pkg.Name + " renewal",
			Metadata: map[string]string{
				"subscription_id": subscription.ID,
			},
			DestinationAccount: creator.StripeAccountId,
			Recurring:          true,
			IntervalMonths:     1,
		})
		if err != nil {
			return false, err
		}
	}

	renewed := false
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BrandSubscription{}).
			Where("id = ? AND status = ? AND end_date <= ?", subscription.ID, models.SubscriptionActive, now).
			Updates(map[string]interface{}{
				"start_date": subscription.StartDate.AddDate(0, 1, 0),
				"end_date":   subscription.EndDate.AddDate(0, 1, 0),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another renewal run got here first.
			return nil
		}
		renewed = true
		if cycleHandle != nil {
			payment := models.SubscriptionPayment{
				SubscriptionID: subscription.ID,
				Amount:         pkg.MonthlyPrice,
				TransactionID:  cycleHandle.ID,
				Status:         models.SubscriptionPaymentHeld,
				PeriodStart:    subscription.EndDate,
				PeriodEnd:      subscription.EndDate.AddDate(0, 1, 0),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			notifications.NotifyBoth(tx, brand.UserID, creator.UserID, models.EventSubscriptionRenewed, map[string]string{
				"subscription_id": subscription.ID,
				"package_name":    pkg.Name,
				"amount":          utils.FormatAmount(pkg.MonthlyPrice),
			})
		}
		return seedDeliverables(tx, subscription, pkg.Deliverables, pkg.CreatorID)
	})
	if err != nil && cycleHandle != nil {
		utils.LogPaymentDivergence(err, string(subscription.PaymentMethod), cycleHandle.ID,
			"Cycle charge created but the renewal could not be persisted")
	}
	return renewed, err
}

// RenewDue renews every active subscription whose coverage window has lapsed.
// Invoked from the scheduler boundary.
func RenewDue() (int, error) {
	var due []models.BrandSubscription
	err := db.DB.Where("status = ? AND end_date <= ?", models.SubscriptionActive, time.Now()).
		Find(&due).Error
	if err != nil {
		return 0, err
	}
	renewed := 0
	for _, sub := range due {
		ok, err := Renew(sub.ID)
		if err != nil {
			utils.LogError(err, "Failed to renew subscription "+sub.ID)
			continue
		}
		if ok {
			renewed++
		}
	}
	return renewed, nil
}

// HandleRecurringPayment is the webhook entry for a provider-initiated
// renewal charge. It inserts a new held cycle payment and extends the
// coverage window by 30 days. A transaction id matching no subscription is a
// logged no-op, as is a cycle already recorded as held.
func HandleRecurringPayment(transactionID string, amountMinorUnits int64) error {
	var subscription models.BrandSubscription
	err := db.DB.First(&subscription, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogInfo("No subscription matches transaction " + transactionID + ", ignoring event")
			return nil
		}
		return err
	}
	if subscription.Status == models.SubscriptionCanceled {
		utils.LogInfo("Recurring payment for canceled subscription " + subscription.ID + ", ignoring event")
		return nil
	}

	var held int64
	err = db.DB.Model(&models.SubscriptionPayment{}).
		Where("subscription_id = ? AND status = ?", subscription.ID, models.SubscriptionPaymentHeld).
		Count(&held).Error
	if err != nil {
		return err
	}
	if held > 0 {
		// The cycle was already recorded; the provider retried the event.
		return nil
	}

	_, pkg, err := loadSubscriptionWithPackage(subscription.ID)
	if err != nil {
		return err
	}
	brand, creator, err := loadNotifyParties(subscription.BrandID, pkg.CreatorID)
	if err != nil {
		return err
	}

	amount := payments.FromMinorUnits(amountMinorUnits)
	periodStart := subscription.EndDate
	periodEnd := subscription.EndDate.Add(cycleLength)

	return db.DB.Transaction(func(tx *gorm.DB) error {
		payment := models.SubscriptionPayment{
			SubscriptionID: subscription.ID,
			Amount:         amount,
			TransactionID:  transactionID,
			Status:         models.SubscriptionPaymentHeld,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BrandSubscription{}).
			Where("id = ?", subscription.ID).
			Update("end_date", periodEnd).Error; err != nil {
			return err
		}
		notifications.NotifyBoth(tx, brand.UserID, creator.UserID, models.EventSubscriptionRenewed, map[string]string{
			"subscription_id": subscription.ID,
			"package_name":    pkg.Name,
			"amount":          utils.FormatAmount(amount),
		})
		return nil
	})
}

// HandleProviderSubscriptionStatus reconciles provider-side activation and
// cancellation events. Unknown transaction ids are logged no-ops.
func HandleProviderSubscriptionStatus(transactionID string, active bool) error {
	var subscription models.BrandSubscription
	err := db.DB.First(&subscription, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogInfo("No subscription matches transaction " + transactionID + ", ignoring event")
			return nil
		}
		return err
	}

	if active {
		return db.DB.Model(&models.BrandSubscription{}).
			Where("id = ? AND status = ?", subscription.ID, models.SubscriptionPending).
			Update("status", models.SubscriptionActive).Error
	}
	if subscription.Status == models.SubscriptionCanceled {
		return nil
	}
	return db.DB.Model(&models.BrandSubscription{}).
		Where("id = ? AND status <> ?", subscription.ID, models.SubscriptionCanceled).
		Update("status", models.SubscriptionCanceled).Error
}

// Cancel ends the subscription: provider-side recurring object first, then
// local status, then any still-held cycle payments are released.
func Cancel(subscriptionID, brandID string) (*models.BrandSubscription, error) {
	subscription, pkg, err := loadSubscriptionWithPackage(subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.BrandID != brandID {
		return nil, &apperrors.AuthorizationError{Message: "only the subscribing brand can cancel"}
	}
	if subscription.Status == models.SubscriptionCanceled {
		return nil, &apperrors.AlreadyResolvedError{Status: string(subscription.Status)}
	}

	gateway, err := gatewayFor(subscription.PaymentMethod)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), payments.CallTimeout)
	defer cancel()
	err = gateway.Refund(ctx, payments.Handle{
		Provider:    subscription.PaymentMethod,
		ID:          subscription.TransactionID,
		PlanID:      subscription.PlanID,
		AmountMinor: payments.MinorUnits(subscription.TotalCost),
	})
	if err != nil {
		return nil, err
	}

	brand, creator, err := loadNotifyParties(subscription.BrandID, pkg.CreatorID)
	if err != nil {
		return nil, err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BrandSubscription{}).
			Where("id = ? AND status <> ?", subscription.ID, models.SubscriptionCanceled).
			Update("status", models.SubscriptionCanceled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.AlreadyResolvedError{Status: string(models.SubscriptionCanceled)}
		}
		if _, err := notifications.Notify(tx, creator.UserID, models.CreatorRole, models.EventSubscriptionCanceled, map[string]string{
			"subscription_id": subscription.ID,
			"brand_name":      brand.CompanyName,
			"package_name":    pkg.Name,
		}); err != nil {
			utils.LogError(err, "Failed to create cancellation notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	subscription.Status = models.SubscriptionCanceled
	return subscription, nil
}

// GetSubscription returns one subscription if the caller is a party to it.
func GetSubscription(subscriptionID, brandID, creatorID string) (*models.BrandSubscription, error) {
	subscription, pkg, err := loadSubscriptionWithPackage(subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.BrandID != brandID && pkg.CreatorID != creatorID {
		return nil, &apperrors.AuthorizationError{Message: "you are not a party to this subscription"}
	}
	return subscription, nil
}

// ListSubscriptions returns the subscriptions a brand holds or a creator's
// packages are engaged by.
func ListSubscriptions(brandID, creatorID string) ([]models.BrandSubscription, error) {
	var out []models.BrandSubscription
	switch {
	case brandID != "":
		if err := db.DB.Where("brand_id = ?", brandID).Order("created_at DESC").Find(&out).Error; err != nil {
			return nil, err
		}
	case creatorID != "":
		err := db.DB.
			Joins("JOIN creator_packages ON creator_packages.id = brand_subscriptions.package_id").
			Where("creator_packages.creator_id = ?", creatorID).
			Order("brand_subscriptions.created_at DESC").
			Find(&out).Error
		if err != nil {
			return nil, err
		}
	default:
		return nil, &apperrors.AuthorizationError{Message: "a brand or creator profile is required"}
	}
	return out, nil
}

func loadSubscriptionWithPackage(subscriptionID string) (*models.BrandSubscription, *models.CreatorPackage, error) {
	var subscription models.BrandSubscription
	if err := db.DB.First(&subscription, "id = ?", subscriptionID).Error; err != nil {
		return nil, nil, translateNotFound(err, "subscription", subscriptionID)
	}
	var pkg models.CreatorPackage
	if err := db.DB.Preload("Deliverables").First(&pkg, "id = ?", subscription.PackageID).Error; err != nil {
		return nil, nil, translateNotFound(err, "package", subscription.PackageID)
	}
	return &subscription, &pkg, nil
}

func loadNotifyParties(brandID, creatorID string) (*models.Brand, *models.Creator, error) {
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
