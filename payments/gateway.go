// Package payments unifies the Stripe and PayPal charge, hold and capture
// surfaces behind one Gateway interface. Minor-unit conversion happens only
// here; everything at rest is decimal currency units with two decimals.
package payments

import (
	"context"
	"math"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
)

// CallTimeout bounds every provider round trip. On expiry the outcome is
// unknown: callers must not advance local state, the webhook reconciler or a
// later RetrieveStatus resolves it.
const CallTimeout = 15 * time.Second

type Status string

const (
	StatusNone      Status = "none"
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Resolved reports whether the provider-side object reached a terminal state.
// An unresolved handle is reused rather than creating a duplicate charge.
func (s Status) Resolved() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusNone
}

// ChargeRequest describes one charge or recurring object to create.
// Amount is decimal currency units.
type ChargeRequest struct {
	Amount      float64
	Currency    string
	Description string
	Metadata    map[string]string
	// DestinationAccount, when set, routes the net amount to the creator's
	// connected account with PlatformFee retained as the application fee.
	DestinationAccount string
	PlatformFee        float64
	// Recurring switches the PayPal binding from a one-off order to a
	// billing plan plus subscription pair.
	Recurring      bool
	IntervalMonths int
}

// Handle is the provider-side object representing an in-flight or resolved
// charge: a Stripe PaymentIntent or a PayPal order/subscription.
type Handle struct {
	Provider models.PaymentMethod `json:"provider"`
	ID       string               `json:"id"`
	// PlanID is set for PayPal recurring handles.
	PlanID string `json:"planId,omitempty"`
	// AmountMinor is the exact amount the provider object was created with.
	AmountMinor int64 `json:"amountMinor"`
}

// CaptureResult is the normalized outcome both bindings return.
type CaptureResult struct {
	TransactionID    string
	Succeeded        bool
	AmountMinorUnits int64
}

// Gateway is implemented once per provider. None of the methods retry; the
// caller decides whether a retry is safe.
type Gateway interface {
	Initiate(ctx context.Context, req ChargeRequest) (*Handle, error)
	Capture(ctx context.Context, h Handle) (*CaptureResult, error)
	RetrieveStatus(ctx context.Context, h Handle) (Status, error)
	Refund(ctx context.Context, h Handle) error
}

// ForMethod selects the binding once per operation.
func ForMethod(method models.PaymentMethod) (Gateway, error) {
	switch method {
	case models.PaymentMethodStripe:
		return NewStripeGateway(), nil
	case models.PaymentMethodPayPal:
		return NewPayPalGateway()
	default:
		return nil, &apperrors.ValidationError{Message: "unsupported payment method: " + string(method)}
	}
}

// MinorUnits converts decimal currency units to integer minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer minor units back to decimal currency units.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// VerifyAmount compares an expected decimal amount against a gateway-reported
// minor-unit amount to the cent. A mismatch is never silently accepted.
func VerifyAmount(expected float64, actualMinor int64) error {
	expectedMinor := MinorUnits(expected)
	if expectedMinor != actualMinor {
		return &apperrors.AmountMismatchError{Expected: expectedMinor, Actual: actualMinor}
	}
	return nil
}
