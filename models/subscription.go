package models

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// BrandSubscription is a recurring engagement of a brand against a creator
// package. It becomes active only once its first payment is captured.
// Invariant: EndDate is never before StartDate.
type BrandSubscription struct {
	ID             string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PackageID      string             `json:"packageId" gorm:"type:uuid;not null;index"`
	BrandID        string             `json:"brandId" gorm:"type:uuid;not null;index"`
	StartDate      time.Time          `json:"startDate"`
	EndDate        time.Time          `json:"endDate"`
	DurationMonths int                `json:"durationMonths" gorm:"default:1"`
	Status         SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	TotalCost      float64            `json:"totalCost" gorm:"type:numeric(10,2)"`
	TransactionID  string             `json:"transactionId" gorm:"index"`
	// PlanID is the PayPal billing plan backing the recurring object, empty
	// for Stripe.
	PlanID        string        `json:"planId"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10)"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (BrandSubscription) TableName() string {
	return "brand_subscriptions"
}
