package subscriptions

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/payments"
	"github.com/mazza92/creator-dashboard-backend-sub000/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// fakeGateway scripts provider responses so no HTTP leaves the tests.
type fakeGateway struct {
	initiateHandle *payments.Handle
	initiateErr    error
	initiateCalls  int
}

func (f *fakeGateway) Initiate(ctx context.Context, req payments.ChargeRequest) (*payments.Handle, error) {
	f.initiateCalls++
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return f.initiateHandle, nil
}

func (f *fakeGateway) Capture(ctx context.Context, h payments.Handle) (*payments.CaptureResult, error) {
	return nil, errors.New("capture not scripted")
}

func (f *fakeGateway) RetrieveStatus(ctx context.Context, h payments.Handle) (payments.Status, error) {
	return payments.StatusNone, errors.New("status not scripted")
}

func (f *fakeGateway) Refund(ctx context.Context, h payments.Handle) error {
	return errors.New("refund not scripted")
}

func useFakeGateway(t *testing.T, fake payments.Gateway) {
	original := gatewayFor
	gatewayFor = func(models.PaymentMethod) (payments.Gateway, error) {
		return fake, nil
	}
	t.Cleanup(func() { gatewayFor = original })
}

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func subscriptionColumns() []string {
	return []string{
		"id", "package_id", "brand_id", "start_date", "end_date",
		"duration_months", "status", "total_cost", "transaction_id",
		"plan_id", "payment_method",
	}
}

func subscriptionRow(mock sqlmock.Sqlmock, s models.BrandSubscription) *sqlmock.Rows {
	return mock.NewRows(subscriptionColumns()).AddRow(
		s.ID, s.PackageID, s.BrandID, s.StartDate, s.EndDate,
		s.DurationMonths, s.Status, s.TotalCost, s.TransactionID,
		s.PlanID, s.PaymentMethod,
	)
}

func expectSubscriptionWithPackage(mock sqlmock.Sqlmock, sub models.BrandSubscription, quantity int) {
	mock.ExpectQuery(`SELECT (.+) FROM "brand_subscriptions" WHERE id = (.+)`).
		WillReturnRows(subscriptionRow(mock, sub))
	mock.ExpectQuery(`SELECT (.+) FROM "creator_packages" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "creator_id", "name", "monthly_price"}).
			AddRow(sub.PackageID, "creator-1", "Monthly Posts", 250.0))
	mock.ExpectQuery(`SELECT (.+) FROM "package_deliverables" WHERE (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "package_id", "type", "platform", "quantity"}).
			AddRow("pd-1", sub.PackageID, "post", "instagram", quantity))
}

func activeSubscription() models.BrandSubscription {
	return models.BrandSubscription{
		ID:             "sub-1",
		PackageID:      "pkg-1",
		BrandID:        "brand-1",
		StartDate:      time.Now().AddDate(0, -1, 0),
		EndDate:        time.Now().AddDate(0, 0, 14),
		DurationMonths: 3,
		Status:         models.SubscriptionActive,
		TotalCost:      750,
		TransactionID:  "I-ABC123",
		PaymentMethod:  models.PaymentMethodPayPal,
	}
}

func TestSubmitDeliverable_FirstSlot(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	expectSubscriptionWithPackage(mock, sub, 3)

	mock.ExpectQuery(`SELECT (.+) FROM "brands" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "company_name"}).
			AddRow("brand-1", "user-b", "Acme"))
	mock.ExpectQuery(`SELECT (.+) FROM "creators" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "display_name"}).
			AddRow("creator-1", "user-c", "Ava"))

	mock.ExpectBegin()
	// No open Pending slot, no prior submissions: index 0.
	mock.ExpectQuery(`SELECT (.+) FROM "subscription_deliverables" WHERE (.+) ORDER BY submission_index`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT MAX(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO "subscription_deliverables" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("d-1"))
	mock.ExpectQuery(`SELECT (.+) FROM "notifications" WHERE (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "notifications" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("n-1"))
	mock.ExpectCommit()

	deliverable, err := SubmitDeliverable("sub-1", "creator-1", SubmitDeliverableInput{
		Type:        "post",
		Platform:    "instagram",
		ContentLink: "https://example.com/post-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, deliverable.SubmissionIndex)
	assert.Equal(t, models.DeliverableSubmitted, deliverable.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitDeliverable_QuotaExceeded(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	expectSubscriptionWithPackage(mock, sub, 3)

	mock.ExpectQuery(`SELECT (.+) FROM "brands" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "company_name"}).
			AddRow("brand-1", "user-b", "Acme"))
	mock.ExpectQuery(`SELECT (.+) FROM "creators" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "display_name"}).
			AddRow("creator-1", "user-c", "Ava"))

	mock.ExpectBegin()
	// Indexes 0..2 already taken and no open Pending slot: quota of 3 is
	// exhausted.
	mock.ExpectQuery(`SELECT (.+) FROM "subscription_deliverables" WHERE (.+) ORDER BY submission_index`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT MAX(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectRollback()

	_, err := SubmitDeliverable("sub-1", "creator-1", SubmitDeliverableInput{
		Type:        "post",
		Platform:    "instagram",
		ContentLink: "https://example.com/post-4",
	})
	var quota *apperrors.QuotaExceededError
	assert.ErrorAs(t, err, &quota)
	assert.Equal(t, "post", quota.Type)
	assert.Equal(t, 3, quota.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitDeliverable_UnknownPair(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	expectSubscriptionWithPackage(mock, sub, 3)

	_, err := SubmitDeliverable("sub-1", "creator-1", SubmitDeliverableInput{
		Type:        "video",
		Platform:    "youtube",
		ContentLink: "https://example.com/video",
	})
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSubmitDeliverable_WrongCreator(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	expectSubscriptionWithPackage(mock, sub, 3)

	_, err := SubmitDeliverable("sub-1", "creator-2", SubmitDeliverableInput{
		Type:        "post",
		Platform:    "instagram",
		ContentLink: "https://example.com/post",
	})
	var authz *apperrors.AuthorizationError
	assert.ErrorAs(t, err, &authz)
}

func TestRenew_NotDueIsNoOp(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	expectSubscriptionWithPackage(mock, sub, 3)

	renewed, err := Renew("sub-1")
	assert.NoError(t, err)
	assert.False(t, renewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenew_LostRaceIsIdempotent(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	sub.EndDate = time.Now().AddDate(0, 0, -1)
	expectSubscriptionWithPackage(mock, sub, 3)

	mock.ExpectBegin()
	// A concurrent renewal run advanced the dates first.
	mock.ExpectExec(`UPDATE "brand_subscriptions" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	renewed, err := Renew("sub-1")
	assert.NoError(t, err)
	assert.False(t, renewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenew_CanceledIsNoOp(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	sub.Status = models.SubscriptionCanceled
	sub.EndDate = time.Now().AddDate(0, 0, -1)
	expectSubscriptionWithPackage(mock, sub, 3)

	renewed, err := Renew("sub-1")
	assert.NoError(t, err)
	assert.False(t, renewed)
}

func TestRenew_StripeCreatesNextHeldCycle(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	fake := &fakeGateway{initiateHandle: &payments.Handle{
		Provider:    models.PaymentMethodStripe,
		ID:          "pi_next_cycle",
		AmountMinor: 25000,
	}}
	useFakeGateway(t, fake)

	sub := activeSubscription()
	sub.PaymentMethod = models.PaymentMethodStripe
	sub.TransactionID = "pi_first_cycle"
	sub.EndDate = time.Now().AddDate(0, 0, -1)
	expectSubscriptionWithPackage(mock, sub, 3)

	mock.ExpectQuery(`SELECT (.+) FROM "brands" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "company_name"}).
			AddRow("brand-1", "user-b", "Acme"))
	mock.ExpectQuery(`SELECT (.+) FROM "creators" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "display_name", "stripe_account_id"}).
			AddRow("creator-1", "user-c", "Ava", "acct_1"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "brand_subscriptions" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The next cycle is recorded as a held payment against the new intent.
	mock.ExpectQuery(`INSERT INTO "subscription_payments" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("sp-2"))
	mock.ExpectQuery(`SELECT (.+) FROM "notifications" WHERE (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "notifications" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("n-1"))
	// Deliverable slots reseeded for the new cycle.
	mock.ExpectQuery(`SELECT count(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT MAX(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO "subscription_deliverables" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("d-1"))
	mock.ExpectCommit()

	renewed, err := Renew("sub-1")
	assert.NoError(t, err)
	assert.True(t, renewed)
	assert.Equal(t, 1, fake.initiateCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenew_PayPalDoesNotInitiateCharge(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	fake := &fakeGateway{}
	useFakeGateway(t, fake)

	sub := activeSubscription()
	sub.EndDate = time.Now().AddDate(0, 0, -1)
	expectSubscriptionWithPackage(mock, sub, 3)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "brand_subscriptions" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT MAX(.+) FROM "subscription_deliverables"`).
		WillReturnRows(mock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO "subscription_deliverables" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("d-1"))
	mock.ExpectCommit()

	// The renewal charge arrives through the provider webhook for PayPal.
	renewed, err := Renew("sub-1")
	assert.NoError(t, err)
	assert.True(t, renewed)
	assert.Equal(t, 0, fake.initiateCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRecurringPayment_NoMatchIsNoOp(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "brand_subscriptions" WHERE transaction_id = (.+)`).
		WillReturnRows(mock.NewRows(subscriptionColumns()))

	err := HandleRecurringPayment("I-UNKNOWN", 25000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRecurringPayment_HeldCycleAlreadyRecorded(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	mock.ExpectQuery(`SELECT (.+) FROM "brand_subscriptions" WHERE transaction_id = (.+)`).
		WillReturnRows(subscriptionRow(mock, sub))
	mock.ExpectQuery(`SELECT count(.+) FROM "subscription_payments" WHERE (.+)`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))

	err := HandleRecurringPayment("I-ABC123", 25000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_AlreadyCanceled(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	sub := activeSubscription()
	sub.Status = models.SubscriptionCanceled
	expectSubscriptionWithPackage(mock, sub, 3)

	_, err := Cancel("sub-1", "brand-1")
	var alreadyResolved *apperrors.AlreadyResolvedError
	assert.ErrorAs(t, err, &alreadyResolved)
}
