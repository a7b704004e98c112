package payments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway binds the abstraction to the PayPal REST API: Orders v2 for
// one-off booking charges, Catalog Products + Subscription Plans +
// Subscriptions for recurring packages. Plan and subscription creation is not
// server-side idempotent, which is why callers pre-check for an existing
// unresolved handle before asking for a new one.
type PayPalGateway struct {
	client *paypal.Client
}

func NewPayPalGateway() (*PayPalGateway, error) {
	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	secret := os.Getenv("PAYPAL_CLIENT_SECRET")
	if clientID == "" || secret == "" {
		return nil, &apperrors.GatewayError{
			Provider: string(models.PaymentMethodPayPal),
			Message:  "PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET must be configured",
		}
	}

	apiBase := os.Getenv("PAYPAL_API_BASE")
	if apiBase == "" {
		apiBase = paypal.APIBaseSandBox
	}

	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, paypalError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), CallTimeout)
	defer cancel()
	if _, err := client.GetAccessToken(ctx); err != nil {
		return nil, paypalError(err)
	}

	return &PayPalGateway{client: client}, nil
}

// Client exposes the underlying SDK client for webhook signature checks.
func (g *PayPalGateway) Client() *paypal.Client {
	return g.client
}

func (g *PayPalGateway) Initiate(ctx context.Context, req ChargeRequest) (*Handle, error) {
	if req.Recurring {
		return g.initiateSubscription(ctx, req)
	}
	return g.initiateOrder(ctx, req)
}

func (g *PayPalGateway) initiateOrder(ctx context.Context, req ChargeRequest) (*Handle, error) {
	amountMinor := MinorUnits(req.Amount)

	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: req.Metadata["booking_id"],
			CustomID:    req.Metadata["booking_id"],
			Description: req.Description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: req.Currency,
				Value:    formatAmount(req.Amount),
			},
		},
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, paypalError(err)
	}

	return &Handle{
		Provider:    models.PaymentMethodPayPal,
		ID:          order.ID,
		AmountMinor: amountMinor,
	}, nil
}

func (g *PayPalGateway) initiateSubscription(ctx context.Context, req ChargeRequest) (*Handle, error) {
	amountMinor := MinorUnits(req.Amount)
	interval := req.IntervalMonths
	if interval <= 0 {
		interval = 1
	}

	product, err := g.client.CreateProduct(ctx, paypal.Product{
		Name:        req.Description,
		Description: req.Description,
		Type:        paypal.ProductTypeService,
		Category:    paypal.ProductCategorySoftware,
	})
	if err != nil {
		return nil, paypalError(err)
	}

	plan, err := g.client.CreateSubscriptionPlan(ctx, paypal.SubscriptionPlan{
		ProductId:   product.ID,
		Name:        req.Description,
		Description: req.Description,
		Status:      paypal.SubscriptionPlanStatusActive,
		BillingCycles: []paypal.BillingCycle{
			{
				Sequence:    1,
				TenureType:  paypal.TenureTypeRegular,
				TotalCycles: 0,
				Frequency: paypal.Frequency{
					IntervalUnit:  paypal.IntervalUnitMonth,
					IntervalCount: interval,
				},
				PricingScheme: paypal.PricingScheme{
					FixedPrice: paypal.Money{
						Currency: req.Currency,
						Value:    formatAmount(req.Amount),
					},
				},
			},
		},
		PaymentPreferences: &paypal.PaymentPreferences{
			AutoBillOutstanding:     true,
			PaymentFailureThreshold: 3,
		},
	})
	if err != nil {
		return nil, paypalError(err)
	}

	sub, err := g.client.CreateSubscription(ctx, paypal.SubscriptionBase{
		PlanID:   plan.ID,
		CustomID: req.Metadata["subscription_id"],
	})
	if err != nil {
		return nil, paypalError(err)
	}

	return &Handle{
		Provider:    models.PaymentMethodPayPal,
		ID:          sub.ID,
		PlanID:      plan.ID,
		AmountMinor: amountMinor,
	}, nil
}

func (g *PayPalGateway) Capture(ctx context.Context, h Handle) (*CaptureResult, error) {
	if h.PlanID != "" {
		return g.captureSubscription(ctx, h)
	}
	return g.captureOrder(ctx, h)
}

func (g *PayPalGateway) captureOrder(ctx context.Context, h Handle) (*CaptureResult, error) {
	res, err := g.client.CaptureOrder(ctx, h.ID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, paypalError(err)
	}

	result := &CaptureResult{
		TransactionID: res.ID,
		Succeeded:     res.Status == "COMPLETED",
	}
	for _, unit := range res.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			result.TransactionID = capture.ID
			if capture.Amount != nil {
				result.AmountMinorUnits = parseAmountMinor(capture.Amount.Value)
			}
		}
	}
	if result.AmountMinorUnits == 0 && result.Succeeded {
		result.AmountMinorUnits = h.AmountMinor
	}
	return result, nil
}

// captureSubscription verifies the billing agreement was approved by the
// payer. The charged amount is the plan's fixed price, which the handle was
// created with.
func (g *PayPalGateway) captureSubscription(ctx context.Context, h Handle) (*CaptureResult, error) {
	sub, err := g.client.GetSubscriptionDetails(ctx, h.ID)
	if err != nil {
		return nil, paypalError(err)
	}

	approved := sub.SubscriptionDetails.SubscriptionStatus == paypal.SubscriptionStatusActive
	return &CaptureResult{
		TransactionID:    h.ID,
		Succeeded:        approved,
		AmountMinorUnits: h.AmountMinor,
	}, nil
}

func (g *PayPalGateway) RetrieveStatus(ctx context.Context, h Handle) (Status, error) {
	if h.PlanID != "" {
		sub, err := g.client.GetSubscriptionDetails(ctx, h.ID)
		if err != nil {
			return StatusNone, paypalError(err)
		}
		switch sub.SubscriptionDetails.SubscriptionStatus {
		case paypal.SubscriptionStatusActive:
			return StatusSucceeded, nil
		case paypal.SubscriptionStatusCancelled, paypal.SubscriptionStatusExpired, paypal.SubscriptionStatusSuspended:
			return StatusFailed, nil
		case paypal.SubscriptionStatusApproved:
			return StatusPending, nil
		default:
			return StatusCreated, nil
		}
	}

	order, err := g.client.GetOrder(ctx, h.ID)
	if err != nil {
		return StatusNone, paypalError(err)
	}
	switch order.Status {
	case "COMPLETED":
		return StatusSucceeded, nil
	case "VOIDED":
		return StatusFailed, nil
	case "APPROVED":
		return StatusPending, nil
	default:
		return StatusCreated, nil
	}
}

func (g *PayPalGateway) Refund(ctx context.Context, h Handle) error {
	if h.PlanID != "" {
		if err := g.client.CancelSubscription(ctx, h.ID, "refund requested"); err != nil {
			return paypalError(err)
		}
		return nil
	}

	order, err := g.client.GetOrder(ctx, h.ID)
	if err != nil {
		return paypalError(err)
	}
	for _, unit := range order.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			if _, err := g.client.RefundCapture(ctx, capture.ID, paypal.RefundCaptureRequest{}); err != nil {
				return paypalError(err)
			}
		}
	}
	return nil
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func parseAmountMinor(value string) int64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return MinorUnits(parsed)
}

// paypalError normalizes SDK errors into the gateway taxonomy.
func paypalError(err error) error {
	var payErr *paypal.ErrorResponse
	if errors.As(err, &payErr) {
		return &apperrors.GatewayError{
			Provider: string(models.PaymentMethodPayPal),
			Code:     payErr.Name,
			Message:  payErr.Message,
		}
	}
	return &apperrors.GatewayError{
		Provider:    string(models.PaymentMethodPayPal),
		Message:     err.Error(),
		Unreachable: true,
	}
}
