package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	servicebookings "github.com/mazza92/creator-dashboard-backend-sub000/services/bookings"
	servicesubscriptions "github.com/mazza92/creator-dashboard-backend-sub000/services/subscriptions"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// @Summary Stripe webhook
// @Description Verify the Stripe signature and reconcile payment events
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "error: signature verification failed"
// @Router /webhook/stripe [post]
func StripeWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to read the request body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret is not configured"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe signature verification failed"})
		return
	}

	seen, err := markEventProcessed("stripe", event.ID, string(event.Type))
	if err != nil {
		utils.LogError(err, "Error recording the Stripe event id")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording the event"})
		return
	}
	if seen {
		c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		handlePaymentIntentSucceeded(c, event)
	case "payment_intent.payment_failed":
		handlePaymentIntentFailed(c, event)
	case "invoice.payment_succeeded":
		handleInvoicePaymentSucceeded(c, event)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
	}
}

func handlePaymentIntentSucceeded(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the PaymentIntent"})
		return
	}

	if pi.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PaymentIntent without an ID"})
		return
	}

	amount := pi.AmountReceived
	if amount == 0 {
		amount = pi.Amount
	}

	if err := servicebookings.ReconcileCapturedPayment(models.PaymentMethodStripe, pi.ID, amount); err != nil {
		utils.LogError(err, "Error reconciling payment_intent.succeeded")
		releaseEvent("stripe", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reconciling the payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment reconciled"})
}

func handlePaymentIntentFailed(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the failed PaymentIntent"})
		return
	}

	// The booking stays payment_status=PENDING and the brand retries from a
	// fresh initiation; nothing moves backward here.
	utils.LogInfo("Stripe payment failed for intent " + pi.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Payment failure noted"})
}

func handleInvoicePaymentSucceeded(c *gin.Context, event stripe.Event) {
	var invoiceData map[string]interface{}
	if err := json.Unmarshal(event.Data.Raw, &invoiceData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the Invoice"})
		return
	}

	stripeSubID := invoiceSubscriptionID(invoiceData)
	if stripeSubID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	amountPaid, ok := invoiceData["amount_paid"].(float64)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	if err := servicesubscriptions.HandleRecurringPayment(stripeSubID, int64(amountPaid)); err != nil {
		utils.LogError(err, "Error reconciling invoice.payment_succeeded")
		releaseEvent("stripe", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reconciling the cycle payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cycle payment reconciled"})
}

// invoiceSubscriptionID digs the subscription id out of both the current and
// the legacy invoice payload shapes.
func invoiceSubscriptionID(invoiceData map[string]interface{}) string {
	if parent, ok := invoiceData["parent"].(map[string]interface{}); ok {
		if subDetails, ok := parent["subscription_details"].(map[string]interface{}); ok {
			if sub, ok := subDetails["subscription"].(string); ok && sub != "" {
				return sub
			}
		}
	}
	if v, ok := invoiceData["subscription"]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
