// Package webhooks applies provider-authoritative payment events. Requests
// move Unverified to Verified to Applied: signature verification first, then
// event-id dedup, then the managers' reconcile entry points. A benign
// non-match always answers 200 so providers do not retry forever.
package webhooks

import (
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"
)

// markEventProcessed records the provider event id and reports whether it was
// already applied. The unique index on (provider, event_id) makes concurrent
// deliveries of the same event collapse to one.
func markEventProcessed(provider, eventID, eventType string) (bool, error) {
	event := models.WebhookEvent{
		Provider:    provider,
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}
	res := db.DB.Where("provider = ? AND event_id = ?", provider, eventID).
		FirstOrCreate(&event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

// releaseEvent withdraws a claimed event id after the event failed to apply,
// so the provider's retry is processed instead of answered from the dedup
// table. Without this a transient reconcile failure would lose the event for
// good.
func releaseEvent(provider, eventID string) {
	err := db.DB.Where("provider = ? AND event_id = ?", provider, eventID).
		Delete(&models.WebhookEvent{}).Error
	if err != nil {
		utils.LogError(err, "Error releasing the webhook event id for retry")
	}
}
