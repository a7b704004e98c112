package models

import (
	"time"
)

type DeliverableStatus string

const (
	DeliverablePending   DeliverableStatus = "PENDING"
	DeliverableSubmitted DeliverableStatus = "SUBMITTED"
	DeliverableDelivered DeliverableStatus = "DELIVERED"
)

// SubscriptionDeliverable tracks one content unit owed under a subscription.
// SubmissionIndex is 0-based and unique per (subscription, type, platform);
// it stays below the package-configured quantity for that pair.
type SubscriptionDeliverable struct {
	ID              string            `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SubscriptionID  string            `json:"subscriptionId" gorm:"type:uuid;not null;uniqueIndex:idx_sub_deliverable_slot"`
	CreatorID       string            `json:"creatorId" gorm:"type:uuid;not null;index"`
	Type            string            `json:"type" gorm:"type:varchar(30);not null;uniqueIndex:idx_sub_deliverable_slot"`
	Platform        string            `json:"platform" gorm:"type:varchar(30);not null;uniqueIndex:idx_sub_deliverable_slot"`
	SubmissionIndex int               `json:"submissionIndex" gorm:"not null;uniqueIndex:idx_sub_deliverable_slot"`
	Status          DeliverableStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	ContentLink     string            `json:"contentLink"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
