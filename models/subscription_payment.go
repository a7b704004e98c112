package models

import (
	"time"
)

type SubscriptionPaymentStatus string

const (
	SubscriptionPaymentHeld      SubscriptionPaymentStatus = "held"
	SubscriptionPaymentCompleted SubscriptionPaymentStatus = "completed"
)

// SubscriptionPayment is one billing cycle of a brand subscription.
// Invariant: at most one held row per subscription at a time; a held row is
// captured (held to completed) when the brand approves the cycle's deliverables.
type SubscriptionPayment struct {
	ID             string                    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SubscriptionID string                    `json:"subscriptionId" gorm:"type:uuid;not null;index"`
	Amount         float64                   `json:"amount" gorm:"type:numeric(10,2);not null"`
	TransactionID  string                    `json:"transactionId" gorm:"index"`
	Status         SubscriptionPaymentStatus `json:"status" gorm:"type:varchar(20);default:'held'"`
	PeriodStart    time.Time                 `json:"periodStart"`
	PeriodEnd      time.Time                 `json:"periodEnd"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}
