package application

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/apperror"
)

// Errors a PaymentGateway classifies provider failures into.
var (
	ErrCardDeclined          = errors.New("card declined")
	ErrInvalidPaymentRequest = errors.New("invalid payment request")
)

const intentSucceeded = "succeeded"

var paymentMethods = map[string]struct{}{
	"card":       {},
	"klarna":     {},
	"link":       {},
	"cashapp":    {},
	"amazon_pay": {},
}

func ValidPaymentMethod(m string) bool {
	_, ok := paymentMethods[m]
	return ok
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type BillingDetails struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type ChargeRequest struct {
	AmountCents int64
	Currency    string
	Email       string
	Method      string
	CardToken   string
	Billing     *BillingDetails
	Metadata    map[string]string
}

// PaymentIntent is the part of the provider's intent returned to clients.
type PaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Created      int64  `json:"created"`
	LatestCharge string `json:"latest_charge,omitempty"`
}

type ChargeResult struct {
	Intent       PaymentIntent
	ClientSecret string
	ReceiptURL   string
}

type DonationInput struct {
	Name          string
	Number        string
	Email         string
	Category      string
	Amount        float64
	PaymentMethod string
	CardToken     string
	Billing       *BillingDetails
}

type DonationResult struct {
	ClientSecret  string        `json:"clientSecret"`
	Message       string        `json:"message"`
	PaymentIntent PaymentIntent `json:"paymentIntent"`
	ReceiptURL    string        `json:"receiptUrl"`
}

type DonorPage struct {
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Donors []entity.Donor `json:"donors"`
}

const (
	defaultDonorLimit = 10
	maxDonorLimit     = 100
)

type PaymentService struct {
	Gateway  PaymentGateway
	Donors   repo.DonorRepository
	Index    SearchIndex // optional
	Currency string
	Logger   *logrus.Logger

	now func() time.Time
}

func NewPaymentService(gw PaymentGateway, donors repo.DonorRepository, index SearchIndex, currency string, logger *logrus.Logger) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{Gateway: gw, Donors: donors, Index: index, Currency: currency, Logger: logger, now: time.Now}
}

// Donate charges the donor and records the donation once the intent succeeded.
func (s *PaymentService) Donate(ctx context.Context, in DonationInput) (*DonationResult, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Number) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Category) == "" || in.Amount <= 0 || in.PaymentMethod == "" {
		return nil, apperror.Validation("Missing required fields")
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperror.Validation("Invalid payment method")
	}
	if in.PaymentMethod == "card" && strings.TrimSpace(in.CardToken) == "" {
		return nil, apperror.Validation("Card token is required for card payments")
	}
	if s.Gateway == nil {
		return nil, apperror.Upstream(http.StatusInternalServerError, "Payments are not configured", nil)
	}

	res, err := s.Gateway.Charge(ctx, ChargeRequest{
		AmountCents: int64(math.Round(in.Amount * 100)),
		Currency:    s.Currency,
		Email:       in.Email,
		Method:      in.PaymentMethod,
		CardToken:   in.CardToken,
		Billing:     in.Billing,
		Metadata:    map[string]string{"name": in.Name, "number": in.Number, "category": in.Category},
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCardDeclined):
			return nil, apperror.Upstream(http.StatusBadRequest, "Card was declined", err)
		case errors.Is(err, ErrInvalidPaymentRequest):
			return nil, apperror.Upstream(http.StatusBadRequest, "Invalid request to Stripe API", err)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Error("payment gateway failure")
		}
		return nil, apperror.Upstream(http.StatusInternalServerError, "Payment failed", err)
	}
	if res.Intent.Status != intentSucceeded {
		return nil, apperror.Upstream(http.StatusBadRequest, "Payment failed", errors.New("payment intent status "+res.Intent.Status))
	}

	donor := &entity.Donor{
		Name:          in.Name,
		Number:        in.Number,
		Email:         in.Email,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		PaymentRefID:  res.Intent.ID,
		PaymentDate:   s.now().UTC(),
		Status:        entity.DonorStatusSuccess,
	}
	if err := s.Donors.Create(ctx, donor); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("payment_ref_id", res.Intent.ID).Error("charged but donor record failed")
		}
		return nil, apperror.Internal("Payment failed", err)
	}
	s.indexDonor(ctx, donor)

	return &DonationResult{
		ClientSecret:  res.ClientSecret,
		Message:       "Payment successful",
		PaymentIntent: res.Intent,
		ReceiptURL:    res.ReceiptURL,
	}, nil
}

func (s *PaymentService) indexDonor(ctx context.Context, d *entity.Donor) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, d.ID, d); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("donor_id", d.ID).Warn("donor index failed")
	}
}

// ListDonors applies paging defaults: page 1, limit 10, limit capped at 100.
func (s *PaymentService) ListDonors(ctx context.Context, f repo.DonorFilter) (*DonorPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultDonorLimit
	}
	if f.Limit > maxDonorLimit {
		f.Limit = maxDonorLimit
	}
	donors, total, err := s.Donors.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch donors", err)
	}
	return &DonorPage{Total: total, Page: f.Page, Limit: f.Limit, Donors: donors}, nil
}

func (s *PaymentService) SearchDonors(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	hits, err := s.Index.Search(ctx, q, []string{"name^2", "email", "category", "number"}, size)
	if err != nil {
		return nil, apperror.Upstream(http.StatusInternalServerError, "Search failed", err)
	}
	return hits, nil
}
