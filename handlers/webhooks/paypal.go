package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/payments"
	servicebookings "github.com/mazza92/creator-dashboard-backend-sub000/services/bookings"
	servicesubscriptions "github.com/mazza92/creator-dashboard-backend-sub000/services/subscriptions"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"github.com/gin-gonic/gin"
)

type paypalEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

type paypalAmount struct {
	Value string `json:"value"`
	Total string `json:"total"`
}

func (a paypalAmount) minorUnits() int64 {
	raw := a.Value
	if raw == "" {
		raw = a.Total
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return payments.MinorUnits(value)
}

// @Summary PayPal webhook
// @Description Verify the PayPal transmission signature and reconcile payment events
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "error: signature verification failed"
// @Router /webhook/paypal [post]
func PayPalWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to read the request body"})
		return
	}

	webhookID := os.Getenv("PAYPAL_WEBHOOK_ID")
	if webhookID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook id is not configured"})
		return
	}

	gateway, err := payments.NewPayPalGateway()
	if err != nil {
		utils.LogError(err, "Error building the PayPal client for webhook verification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PayPal client unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), payments.CallTimeout)
	defer cancel()

	c.Request.Body = io.NopCloser(bytes.NewReader(payload))
	verification, err := gateway.Client().VerifyWebhookSignature(ctx, c.Request, webhookID)
	if err != nil || verification.VerificationStatus != "SUCCESS" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PayPal signature verification failed"})
		return
	}

	var event paypalEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the event"})
		return
	}

	seen, err := markEventProcessed("paypal", event.ID, event.EventType)
	if err != nil {
		utils.LogError(err, "Error recording the PayPal event id")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording the event"})
		return
	}
	if seen {
		c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
		return
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		handleCaptureCompleted(c, event)
	case "PAYMENT.SALE.COMPLETED":
		handleSaleCompleted(c, event)
	case "BILLING.SUBSCRIPTION.ACTIVATED":
		handleSubscriptionStatus(c, event, true)
	case "BILLING.SUBSCRIPTION.CANCELLED":
		handleSubscriptionStatus(c, event, false)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
	}
}

func handleCaptureCompleted(c *gin.Context, event paypalEvent) {
	var capture struct {
		ID                string       `json:"id"`
		Amount            paypalAmount `json:"amount"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	}
	if err := json.Unmarshal(event.Resource, &capture); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the capture resource"})
		return
	}

	// Bookings are keyed by the order id, not the capture id.
	orderID := capture.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Capture without an order id, ignored"})
		return
	}

	if err := servicebookings.ReconcileCapturedPayment(models.PaymentMethodPayPal, orderID, capture.Amount.minorUnits()); err != nil {
		utils.LogError(err, "Error reconciling PAYMENT.CAPTURE.COMPLETED")
		releaseEvent("paypal", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reconciling the payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment reconciled"})
}

func handleSaleCompleted(c *gin.Context, event paypalEvent) {
	var sale struct {
		BillingAgreementID string       `json:"billing_agreement_id"`
		Amount             paypalAmount `json:"amount"`
	}
	if err := json.Unmarshal(event.Resource, &sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the sale resource"})
		return
	}

	if sale.BillingAgreementID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Sale without a billing agreement, ignored"})
		return
	}

	if err := servicesubscriptions.HandleRecurringPayment(sale.BillingAgreementID, sale.Amount.minorUnits()); err != nil {
		utils.LogError(err, "Error reconciling PAYMENT.SALE.COMPLETED")
		releaseEvent("paypal", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reconciling the cycle payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cycle payment reconciled"})
}

func handleSubscriptionStatus(c *gin.Context, event paypalEvent, active bool) {
	var resource struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the subscription resource"})
		return
	}

	if err := servicesubscriptions.HandleProviderSubscriptionStatus(resource.ID, active); err != nil {
		utils.LogError(err, "Error reconciling the subscription status event")
		releaseEvent("paypal", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reconciling the subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription status reconciled"})
}
