package routes

import (
	"github.com/mazza92/creator-dashboard-backend-sub000/handlers/webhooks"

	"github.com/gin-gonic/gin"
)

// WebhooksRoutes are unauthenticated; the provider signature is the
// credential.
func WebhooksRoutes(r *gin.Engine) {
	r.POST("/webhook/stripe", webhooks.StripeWebhookHandler)
	r.POST("/webhook/paypal", webhooks.PayPalWebhookHandler)
}
