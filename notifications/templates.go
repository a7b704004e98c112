package notifications

import (
	"fmt"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
)

// Template renders the stored message and optional action link for one
// (event type, recipient role) pair.
type Template struct {
	RenderMessage func(data map[string]string) string
	RenderAction  func(data map[string]string) string
}

type templateKey struct {
	Event models.EventType
	Role  models.Role
}

func bookingAction(data map[string]string) string {
	return "/bookings/" + data["booking_id"]
}

func subscriptionAction(data map[string]string) string {
	return "/subscriptions/" + data["subscription_id"]
}

var templates = map[templateKey]Template{
	{models.EventNewBooking, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("Your booking with %s was created", d["creator_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventNewBooking, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s wants to work with you", d["brand_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventBookingAccepted, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s accepted your campaign invite", d["creator_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventBookingRejected, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s declined your campaign invite", d["creator_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventContentSubmitted, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s submitted content for your review", d["creator_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventRevisionRequested, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s requested a revision: %s", d["brand_name"], d["revision_notes"])
		},
		RenderAction: bookingAction,
	},
	{models.EventContentApproved, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s approved your content, you can publish it now", d["brand_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventContentPublished, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s published the content, payment can be released", d["creator_name"])
		},
		RenderAction: bookingAction,
	},
	{models.EventPaymentCompleted, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("Payment of %s for your booking is complete", d["amount"])
		},
		RenderAction: bookingAction,
	},
	{models.EventPaymentCompleted, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("You received a payment of %s", d["amount"])
		},
		RenderAction: bookingAction,
	},
	{models.EventSubscriptionInitiated, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("Your subscription to %s has started", d["package_name"])
		},
		RenderAction: subscriptionAction,
	},
	{models.EventSubscriptionInitiated, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s subscribed to your package %s", d["brand_name"], d["package_name"])
		},
		RenderAction: subscriptionAction,
	},
	{models.EventDeliverablesApproved, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s approved this cycle's deliverables, payment released", d["brand_name"])
		},
		RenderAction: subscriptionAction,
	},
	{models.EventDeliverableSubmitted, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s submitted a %s for %s", d["creator_name"], d["type"], d["platform"])
		},
		RenderAction: subscriptionAction,
	},
	{models.EventSubscriptionRenewed, models.BrandRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("Your subscription to %s renewed for another month", d["package_name"])
		},
		RenderAction: subscriptionAction,
	},
	{models.EventSubscriptionCanceled, models.CreatorRole}: {
		RenderMessage: func(d map[string]string) string {
			return fmt.Sprintf("%s canceled their subscription to %s", d["brand_name"], d["package_name"])
		},
		RenderAction: subscriptionAction,
	},
}

// allEvents is the closed set checked by ValidateTemplates.
var allEvents = []models.EventType{
	models.EventNewBooking,
	models.EventBookingAccepted,
	models.EventBookingRejected,
	models.EventContentSubmitted,
	models.EventRevisionRequested,
	models.EventContentApproved,
	models.EventContentPublished,
	models.EventPaymentCompleted,
	models.EventSubscriptionInitiated,
	models.EventDeliverablesApproved,
	models.EventDeliverableSubmitted,
	models.EventSubscriptionRenewed,
	models.EventSubscriptionCanceled,
}

// ValidateTemplates verifies at startup that every event type has at least one
// role template and that every template renders. Run from main; a failure is a
// programming error, not a runtime condition.
func ValidateTemplates() error {
	for _, event := range allEvents {
		found := false
		for key, tpl := range templates {
			if key.Event != event {
				continue
			}
			found = true
			if tpl.RenderMessage == nil {
				return fmt.Errorf("notification template %s/%s has no message renderer", key.Event, key.Role)
			}
		}
		if !found {
			return fmt.Errorf("no notification template registered for event %s", event)
		}
	}
	return nil
}

func lookupTemplate(event models.EventType, role models.Role) (Template, bool) {
	tpl, ok := templates[templateKey{Event: event, Role: role}]
	return tpl, ok
}
