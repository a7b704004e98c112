package lifecycle

import (
	"testing"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"

	"github.com/stretchr/testify/assert"
)

func TestTransition_LegalMoves(t *testing.T) {
	cases := []struct {
		name    string
		current models.ContentStatus
		action  Action
		notes   string
		want    models.ContentStatus
	}{
		{"confirmed to draft", models.ContentConfirmed, ActionSubmitDraft, "", models.ContentDraftSubmitted},
		{"confirmed to submitted", models.ContentConfirmed, ActionSubmit, "", models.ContentSubmitted},
		{"revision requested to draft", models.ContentRevisionRequested, ActionSubmitDraft, "", models.ContentDraftSubmitted},
		{"revision requested to submitted", models.ContentRevisionRequested, ActionSubmit, "", models.ContentSubmitted},
		{"submitted approved", models.ContentSubmitted, ActionApprove, "", models.ContentApproved},
		{"draft approved", models.ContentDraftSubmitted, ActionApprove, "", models.ContentApproved},
		{"submitted revision", models.ContentSubmitted, ActionRequestRevision, "tighten the intro", models.ContentRevisionRequested},
		{"draft revision", models.ContentDraftSubmitted, ActionRequestRevision, "wrong aspect ratio", models.ContentRevisionRequested},
		{"approved published", models.ContentApproved, ActionPublish, "", models.ContentPublished},
		{"published completed", models.ContentPublished, ActionPaymentCaptured, "", models.ContentCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Transition(tc.current, tc.action, tc.notes)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransition_IllegalMoves(t *testing.T) {
	cases := []struct {
		name    string
		current models.ContentStatus
		action  Action
	}{
		{"pending cannot submit", models.ContentPending, ActionSubmit},
		{"confirmed cannot approve", models.ContentConfirmed, ActionApprove},
		{"submitted cannot publish", models.ContentSubmitted, ActionPublish},
		{"approved cannot capture", models.ContentApproved, ActionPaymentCaptured},
		{"completed is terminal", models.ContentCompleted, ActionSubmit},
		{"published cannot resubmit", models.ContentPublished, ActionSubmit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transition(tc.current, tc.action, "notes")
			var invalidState *apperrors.InvalidStateError
			assert.ErrorAs(t, err, &invalidState)
			assert.Equal(t, string(tc.current), invalidState.Current)
		})
	}
}

func TestTransition_UnknownAction(t *testing.T) {
	_, err := Transition(models.ContentConfirmed, Action("teleport"), "")
	var invalidState *apperrors.InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestTransition_RevisionRequiresNotes(t *testing.T) {
	_, err := Transition(models.ContentSubmitted, ActionRequestRevision, "   ")
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, models.BookingPending, StatusFor(models.ContentPending))
	assert.Equal(t, models.BookingCompleted, StatusFor(models.ContentCompleted))
	assert.Equal(t, models.BookingConfirmed, StatusFor(models.ContentSubmitted))
	assert.Equal(t, models.BookingConfirmed, StatusFor(models.ContentPublished))
}

func TestNextPaymentStatus_Monotonic(t *testing.T) {
	assert.NoError(t, NextPaymentStatus(models.PaymentOnHold, models.PaymentPending))
	assert.NoError(t, NextPaymentStatus(models.PaymentPending, models.PaymentCompleted))
	assert.NoError(t, NextPaymentStatus(models.PaymentPending, models.PaymentPending))

	var invalidState *apperrors.InvalidStateError
	assert.ErrorAs(t, NextPaymentStatus(models.PaymentCompleted, models.PaymentPending), &invalidState)
	assert.ErrorAs(t, NextPaymentStatus(models.PaymentPending, models.PaymentOnHold), &invalidState)
	assert.ErrorAs(t, NextPaymentStatus(models.PaymentCompleted, models.PaymentOnHold), &invalidState)
}

func TestResolveInvite_AcceptFlipsType(t *testing.T) {
	booking := &models.Booking{
		Status:        models.BookingInvited,
		ContentStatus: models.ContentPending,
		Type:          models.BookingCampaignInvite,
	}

	res, err := ResolveInvite(booking, true)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, res.Status)
	assert.Equal(t, models.ContentConfirmed, res.ContentStatus)
	assert.Equal(t, models.BookingSponsor, res.Type)
}

func TestResolveInvite_RejectIsTerminal(t *testing.T) {
	booking := &models.Booking{
		Status:        models.BookingInvited,
		ContentStatus: models.ContentPending,
		Type:          models.BookingCampaignInvite,
	}

	res, err := ResolveInvite(booking, false)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingRejected, res.Status)
	assert.Equal(t, models.BookingCampaignInvite, res.Type)
}

func TestResolveInvite_AlreadyResolved(t *testing.T) {
	booking := &models.Booking{
		Status: models.BookingConfirmed,
		Type:   models.BookingSponsor,
	}

	_, err := ResolveInvite(booking, true)
	var alreadyResolved *apperrors.AlreadyResolvedError
	assert.ErrorAs(t, err, &alreadyResolved)
	assert.Equal(t, string(models.BookingConfirmed), alreadyResolved.Status)
}
