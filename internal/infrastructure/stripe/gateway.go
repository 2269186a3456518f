// Package stripe charges donations through the Stripe PaymentIntents API.
package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/oksasatya/masjid-api/internal/application"
)

// Gateway implements application.PaymentGateway.
type Gateway struct {
	api    *client.API
	logger *logrus.Logger
}

// NewGateway builds a gateway for the given secret key. backends may be nil
// to use Stripe's production endpoints.
func NewGateway(secretKey string, backends *stripeapi.Backends, logger *logrus.Logger) *Gateway {
	return &Gateway{api: client.New(secretKey, backends), logger: logger}
}

// Charge creates a payment intent, confirms it and looks up the receipt of
// the resulting charge. Card payments first turn the card token into a
// payment method.
func (g *Gateway) Charge(ctx context.Context, req application.ChargeRequest) (*application.ChargeResult, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(req.AmountCents),
		Currency:           stripeapi.String(req.Currency),
		ReceiptEmail:       stripeapi.String(req.Email),
		PaymentMethodTypes: stripeapi.StringSlice([]string{req.Method}),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	if req.Method == "card" {
		pmParams := &stripeapi.PaymentMethodParams{
			Type:           stripeapi.String(string(stripeapi.PaymentMethodTypeCard)),
			Card:           &stripeapi.PaymentMethodCardParams{Token: stripeapi.String(req.CardToken)},
			BillingDetails: billingParams(req.Billing),
		}
		pmParams.Context = ctx
		pm, err := g.api.PaymentMethods.New(pmParams)
		if err != nil {
			return nil, classify("create payment method", err)
		}
		params.PaymentMethod = stripeapi.String(pm.ID)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, classify("create payment intent", err)
	}
	g.log().WithField("payment_intent", pi.ID).Info("payment intent created")

	confirm := &stripeapi.PaymentIntentConfirmParams{}
	confirm.Context = ctx
	pi, err = g.api.PaymentIntents.Confirm(pi.ID, confirm)
	if err != nil {
		return nil, classify("confirm payment intent", err)
	}

	res := &application.ChargeResult{Intent: intentView(pi), ClientSecret: pi.ClientSecret}
	if pi.Status != stripeapi.PaymentIntentStatusSucceeded || pi.LatestCharge == nil {
		return res, nil
	}

	chParams := &stripeapi.ChargeParams{}
	chParams.Context = ctx
	ch, err := g.api.Charges.Get(pi.LatestCharge.ID, chParams)
	if err != nil {
		// The money moved; a missing receipt link is not worth failing over.
		g.log().WithError(err).WithField("charge", pi.LatestCharge.ID).Warn("receipt lookup failed")
		return res, nil
	}
	res.ReceiptURL = ch.ReceiptURL
	return res, nil
}

func (g *Gateway) log() *logrus.Logger {
	if g.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		g.logger = l
	}
	return g.logger
}

// classify maps Stripe error types onto the application's payment errors.
func classify(op string, err error) error {
	var se *stripeapi.Error
	if errors.As(err, &se) {
		switch se.Type {
		case stripeapi.ErrorTypeCard:
			return fmt.Errorf("%s: %w: %v", op, application.ErrCardDeclined, err)
		case stripeapi.ErrorTypeInvalidRequest:
			return fmt.Errorf("%s: %w: %v", op, application.ErrInvalidPaymentRequest, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func billingParams(b *application.BillingDetails) *stripeapi.PaymentMethodBillingDetailsParams {
	if b == nil {
		return nil
	}
	p := &stripeapi.PaymentMethodBillingDetailsParams{}
	if b.Name != "" {
		p.Name = stripeapi.String(b.Name)
	}
	if b.Email != "" {
		p.Email = stripeapi.String(b.Email)
	}
	if b.Phone != "" {
		p.Phone = stripeapi.String(b.Phone)
	}
	if a := b.Address; a != nil {
		p.Address = &stripeapi.AddressParams{
			Line1:      optional(a.Line1),
			Line2:      optional(a.Line2),
			City:       optional(a.City),
			State:      optional(a.State),
			PostalCode: optional(a.PostalCode),
			Country:    optional(a.Country),
		}
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return stripeapi.String(s)
}

func intentView(pi *stripeapi.PaymentIntent) application.PaymentIntent {
	v := application.PaymentIntent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Created:  pi.Created,
	}
	if pi.LatestCharge != nil {
		v.LatestCharge = pi.LatestCharge.ID
	}
	return v
}

var _ application.PaymentGateway = (*Gateway)(nil)
