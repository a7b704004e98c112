package webhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const testWebhookSecret = "whsec_test_secret"

// stripeEventPayload builds an event body the verifier accepts: ConstructEvent
// rejects events whose api_version differs from the SDK's pinned one.
func stripeEventPayload(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"api_version": %q,
		"type": %q,
		"data": {"object": %s}
	}`, id, stripe.APIVersion, eventType, object))
}

// signPayload builds a Stripe-Signature header the verifier accepts.
func signPayload(payload []byte, secret string) string {
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postStripeWebhook(payload []byte, signature string) *httptest.ResponseRecorder {
	r := testutils.SetupTestRouter()
	r.POST("/webhook/stripe", StripeWebhookHandler)

	req, _ := http.NewRequest(http.MethodPost, "/webhook/stripe", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStripeWebhook_MissingSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	resp := postStripeWebhook([]byte(`{"id":"evt_1"}`), "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	// Signature failure must leave the database untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	resp := postStripeWebhook(payload, signPayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhook_PaymentIntentSucceeded_NoMatch(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	// Event id not seen yet.
	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("we-1"))
	mock.ExpectCommit()
	// No booking carries this transaction id: benign no-op, still 200.
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE transaction_id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))

	payload := stripeEventPayload("evt_1", "payment_intent.succeeded",
		`{"id": "pi_unknown", "amount_received": 50000}`)
	resp := postStripeWebhook(payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhook_FailedReconcileReleasesEvent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	// First delivery: the event id is claimed, then reconciliation fails.
	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("we-1"))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE transaction_id = (.+)`).
		WillReturnError(errors.New("connection reset"))
	// The claimed id must be withdrawn so the retry is not swallowed.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payload := stripeEventPayload("evt_1", "payment_intent.succeeded",
		`{"id": "pi_1", "amount_received": 50000}`)
	resp := postStripeWebhook(payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)

	// Retry of the identical event: processed again, not answered from the
	// dedup table.
	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("we-2"))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE transaction_id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))

	retry := postStripeWebhook(payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhook_DuplicateEventIsNoOp(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "provider", "event_id"}).
			AddRow("we-1", "stripe", "evt_1"))

	payload := stripeEventPayload("evt_1", "payment_intent.succeeded",
		`{"id": "pi_1", "amount_received": 50000}`)
	resp := postStripeWebhook(payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhook_UnhandledEventIgnored(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE provider = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("we-1"))
	mock.ExpectCommit()

	payload := stripeEventPayload("evt_2", "customer.created", `{"id": "cus_1"}`)
	resp := postStripeWebhook(payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
