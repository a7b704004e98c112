package models

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventNewBooking            EventType = "NEW_BOOKING"
	EventBookingAccepted       EventType = "BOOKING_ACCEPTED"
	EventBookingRejected       EventType = "BOOKING_REJECTED"
	EventContentSubmitted      EventType = "CONTENT_SUBMITTED"
	EventRevisionRequested     EventType = "REVISION_REQUESTED"
	EventContentApproved       EventType = "CONTENT_APPROVED"
	EventContentPublished      EventType = "CONTENT_PUBLISHED"
	EventPaymentCompleted      EventType = "PAYMENT_COMPLETED"
	EventSubscriptionInitiated EventType = "SUBSCRIPTION_INITIATED"
	EventDeliverablesApproved  EventType = "DELIVERABLES_APPROVED"
	EventDeliverableSubmitted  EventType = "DELIVERABLE_SUBMITTED"
	EventSubscriptionRenewed   EventType = "SUBSCRIPTION_RENEWED"
	EventSubscriptionCanceled  EventType = "SUBSCRIPTION_CANCELED"
)

// Notification is a durable, deduplicated record. Delivery (email, push) is a
// separate consumer; the contract here ends at the row. No two rows share
// (user_id, user_role, event_type) within a five minute window.
type Notification struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string         `json:"userId" gorm:"type:uuid;not null;index:idx_notifications_dedup"`
	UserRole  Role           `json:"userRole" gorm:"type:varchar(20);not null;index:idx_notifications_dedup"`
	EventType EventType      `json:"eventType" gorm:"type:varchar(40);not null;index:idx_notifications_dedup"`
	Message   string         `json:"message" gorm:"not null"`
	Data      datatypes.JSON `json:"data"`
	IsRead    bool           `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
}
