// Package lifecycle is the pure transition table for booking workflow state.
// It performs no I/O and mutates nothing: managers and the webhook reconciler
// both validate every move through this package, so there is exactly one copy
// of the rules.
package lifecycle

import (
	"strings"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
)

type Action string

const (
	ActionSubmitDraft     Action = "submit_draft"
	ActionSubmit          Action = "submit"
	ActionApprove         Action = "approve"
	ActionRequestRevision Action = "request_revision"
	ActionPublish         Action = "publish"
	ActionPaymentCaptured Action = "payment_captured"
)

// transitions maps each action to the content statuses it may leave from and
// the status it lands on.
var transitions = map[Action]struct {
	from []models.ContentStatus
	to   models.ContentStatus
}{
	ActionSubmitDraft: {
		from: []models.ContentStatus{models.ContentConfirmed, models.ContentRevisionRequested},
		to:   models.ContentDraftSubmitted,
	},
	ActionSubmit: {
		from: []models.ContentStatus{models.ContentConfirmed, models.ContentRevisionRequested},
		to:   models.ContentSubmitted,
	},
	ActionApprove: {
		from: []models.ContentStatus{models.ContentSubmitted, models.ContentDraftSubmitted},
		to:   models.ContentApproved,
	},
	ActionRequestRevision: {
		from: []models.ContentStatus{models.ContentSubmitted, models.ContentDraftSubmitted},
		to:   models.ContentRevisionRequested,
	},
	ActionPublish: {
		from: []models.ContentStatus{models.ContentApproved},
		to:   models.ContentPublished,
	},
	ActionPaymentCaptured: {
		from: []models.ContentStatus{models.ContentPublished},
		to:   models.ContentCompleted,
	},
}

// Transition validates one content-status move. request_revision additionally
// requires non-empty revision notes. Returns the next status or
// *apperrors.InvalidStateError / *apperrors.ValidationError without mutation.
func Transition(current models.ContentStatus, action Action, revisionNotes string) (models.ContentStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", &apperrors.InvalidStateError{Current: string(current), Requested: string(action)}
	}
	allowed := false
	for _, from := range t.from {
		if current == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", &apperrors.InvalidStateError{Current: string(current), Requested: string(t.to)}
	}
	if action == ActionRequestRevision && strings.TrimSpace(revisionNotes) == "" {
		return "", &apperrors.ValidationError{Message: "revision notes are required to request a revision"}
	}
	return t.to, nil
}

// StatusFor derives the echoed booking status from the authoritative content
// status. The two columns are always written together from this function.
func StatusFor(cs models.ContentStatus) models.BookingStatus {
	switch cs {
	case models.ContentPending:
		return models.BookingPending
	case models.ContentCompleted:
		return models.BookingCompleted
	default:
		return models.BookingConfirmed
	}
}

// paymentRank orders payment statuses so moves can only go forward.
var paymentRank = map[models.PaymentStatus]int{
	models.PaymentOnHold:    0,
	models.PaymentPending:   1,
	models.PaymentCompleted: 2,
}

// NextPaymentStatus enforces payment-status monotonicity: ON_HOLD and PENDING
// may advance, COMPLETED never moves backward.
func NextPaymentStatus(current, next models.PaymentStatus) error {
	cr, ok := paymentRank[current]
	if !ok {
		return &apperrors.InvalidStateError{Current: string(current), Requested: string(next)}
	}
	nr, ok := paymentRank[next]
	if !ok {
		return &apperrors.InvalidStateError{Current: string(current), Requested: string(next)}
	}
	if nr < cr {
		return &apperrors.InvalidStateError{Current: string(current), Requested: string(next)}
	}
	return nil
}

// InviteResolution is the status triple an invite lands on.
type InviteResolution struct {
	Status        models.BookingStatus
	ContentStatus models.ContentStatus
	Type          models.BookingType
}

// ResolveInvite validates that the booking is still INVITED and returns the
// resolution triple. Acceptance flips a campaign invite into a sponsor
// booking; rejection is terminal. An already-resolved booking yields
// *apperrors.AlreadyResolvedError so concurrent callers can tell who lost.
func ResolveInvite(b *models.Booking, accept bool) (*InviteResolution, error) {
	if b.Status != models.BookingInvited {
		return nil, &apperrors.AlreadyResolvedError{Status: string(b.Status)}
	}
	if !accept {
		return &InviteResolution{
			Status:        models.BookingRejected,
			ContentStatus: b.ContentStatus,
			Type:          b.Type,
		}, nil
	}
	res := &InviteResolution{
		Status:        models.BookingConfirmed,
		ContentStatus: models.ContentConfirmed,
		Type:          b.Type,
	}
	if b.Type == models.BookingCampaignInvite {
		res.Type = models.BookingSponsor
	}
	return res, nil
}
