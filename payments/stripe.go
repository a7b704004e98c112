package payments

import (
	"context"
	"errors"
	"os"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeGateway binds the abstraction to Stripe PaymentIntents. One-off
// charges are confirmed client-side and verified here; recurring cycles are
// created with manual capture so the funds stay held until the brand approves
// the cycle's deliverables.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeGateway{}
}

func (g *StripeGateway) Initiate(ctx context.Context, req ChargeRequest) (*Handle, error) {
	amountMinor := MinorUnits(req.Amount)

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.DestinationAccount != "" {
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccount),
		}
		params.ApplicationFeeAmount = stripe.Int64(MinorUnits(req.PlatformFee))
	}
	if req.Recurring {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	return &Handle{
		Provider:    models.PaymentMethodStripe,
		ID:          pi.ID,
		AmountMinor: amountMinor,
	}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, h Handle) (*CaptureResult, error) {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	pi, err := paymentintent.Get(h.ID, getParams)
	if err != nil {
		return nil, stripeError(err)
	}

	if pi.Status == stripe.PaymentIntentStatusRequiresCapture {
		capParams := &stripe.PaymentIntentCaptureParams{}
		capParams.Context = ctx
		pi, err = paymentintent.Capture(h.ID, capParams)
		if err != nil {
			return nil, stripeError(err)
		}
	}

	return &CaptureResult{
		TransactionID:    pi.ID,
		Succeeded:        pi.Status == stripe.PaymentIntentStatusSucceeded,
		AmountMinorUnits: pi.AmountReceived,
	}, nil
}

func (g *StripeGateway) RetrieveStatus(ctx context.Context, h Handle) (Status, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(h.ID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return StatusNone, nil
		}
		return StatusNone, stripeError(err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed, nil
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return StatusPending, nil
	default:
		return StatusCreated, nil
	}
}

func (g *StripeGateway) Refund(ctx context.Context, h Handle) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(h.ID),
	}
	params.Context = ctx
	if _, err := refund.New(params); err != nil {
		return stripeError(err)
	}
	return nil
}

// stripeError normalizes SDK errors into the gateway taxonomy. Provider
// rejections keep their code; transport failures are marked unreachable.
func stripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &apperrors.GatewayError{
			Provider: string(models.PaymentMethodStripe),
			Code:     string(stripeErr.Code),
			Message:  stripeErr.Msg,
		}
	}
	return &apperrors.GatewayError{
		Provider:    string(models.PaymentMethodStripe),
		Message:     err.Error(),
		Unreachable: true,
	}
}
