package models

import (
	"time"
)

type Creator struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName string `json:"displayName"`
	// Stripe connected account, empty until the creator completes onboarding.
	// When set, booking charges carry transfer_data.destination and the
	// platform fee as application_fee_amount.
	StripeAccountId string    `json:"stripeAccountId"`
	PayPalEmail     string    `json:"paypalEmail"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
