package models

import (
	"time"
)

// WebhookEvent is the persisted processed-event-id set. Each provider event is
// applied at most once: reprocessing a seen (provider, event_id) is a no-op.
type WebhookEvent struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Provider    string    `json:"provider" gorm:"type:varchar(10);not null;uniqueIndex:idx_webhook_event_provider_id"`
	EventID     string    `json:"eventId" gorm:"not null;uniqueIndex:idx_webhook_event_provider_id"`
	EventType   string    `json:"eventType" gorm:"type:varchar(60)"`
	ProcessedAt time.Time `json:"processedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
