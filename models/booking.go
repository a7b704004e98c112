package models

import (
	"time"
)

type BookingType string

const (
	BookingSponsor           BookingType = "SPONSOR"
	BookingCampaignInvite    BookingType = "CAMPAIGN_INVITE"
	BookingOneOffPartnership BookingType = "ONE_OFF_PARTNERSHIP"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingInvited   BookingStatus = "INVITED"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCanceled  BookingStatus = "CANCELED"
)

type ContentStatus string

const (
	ContentPending           ContentStatus = "PENDING"
	ContentConfirmed         ContentStatus = "CONFIRMED"
	ContentDraftSubmitted    ContentStatus = "DRAFT_SUBMITTED"
	ContentSubmitted         ContentStatus = "SUBMITTED"
	ContentApproved          ContentStatus = "APPROVED"
	ContentRevisionRequested ContentStatus = "REVISION_REQUESTED"
	ContentPublished         ContentStatus = "PUBLISHED"
	ContentCompleted         ContentStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentOnHold    PaymentStatus = "ON_HOLD"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// Booking is one engagement between a brand and a creator. Rows are never
// deleted: REJECTED, CANCELED and COMPLETED are terminal. content_status is
// the authoritative workflow field; status is derived from it and written in
// the same UPDATE. Amounts are decimal currency units with two decimals.
type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BrandID       string        `json:"brandId" gorm:"type:uuid;not null;index"`
	CreatorID     string        `json:"creatorId" gorm:"type:uuid;not null;index"`
	Type          BookingType   `json:"type" gorm:"type:varchar(30);not null"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	ContentStatus ContentStatus `json:"contentStatus" gorm:"type:varchar(30);default:'PENDING'"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);default:'ON_HOLD'"`
	BidAmount     float64       `json:"bidAmount" gorm:"type:numeric(10,2);not null"`
	// PlatformFee is set exactly once, at payment initiation, and reused
	// verbatim afterwards.
	PlatformFee     float64       `json:"platformFee" gorm:"type:numeric(10,2)"`
	TransactionID   string        `json:"transactionId" gorm:"index"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10)"`
	ContentLink     string        `json:"contentLink"`
	FileURL         string        `json:"fileUrl"`
	SubmissionNotes string        `json:"submissionNotes"`
	RevisionNotes   string        `json:"revisionNotes"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
