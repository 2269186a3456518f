package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/apperror"
	"github.com/oksasatya/masjid-api/pkg/helpers"
)

func validDonation() DonationInput {
	return DonationInput{
		Name:          "Yusuf",
		Number:        "5550101",
		Email:         "yusuf@example.org",
		Category:      "Zakat",
		Amount:        25.5,
		PaymentMethod: "card",
		CardToken:     "tok_visa",
	}
}

func succeededCharge() *ChargeResult {
	return &ChargeResult{
		Intent:       PaymentIntent{ID: "pi_123", Status: "succeeded", Amount: 2550, Currency: "usd", LatestCharge: "ch_123"},
		ClientSecret: "pi_123_secret",
		ReceiptURL:   "https://pay.stripe.com/receipts/ch_123",
	}
}

func TestDonateRecordsSuccessfulPayment(t *testing.T) {
	gw := &fakeGateway{result: succeededCharge()}
	donors := &memDonorRepo{}
	idx := &fakeIndex{}
	svc := NewPaymentService(gw, donors, idx, "usd", helpers.NewDiscardLogger())

	res, err := svc.Donate(context.Background(), validDonation())
	require.NoError(t, err)
	assert.Equal(t, "Payment successful", res.Message)
	assert.Equal(t, "pi_123_secret", res.ClientSecret)
	assert.Equal(t, "https://pay.stripe.com/receipts/ch_123", res.ReceiptURL)
	assert.Equal(t, "pi_123", res.PaymentIntent.ID)

	assert.Equal(t, int64(2550), gw.req.AmountCents)
	assert.Equal(t, "usd", gw.req.Currency)
	assert.Equal(t, "tok_visa", gw.req.CardToken)
	assert.Equal(t, map[string]string{"name": "Yusuf", "number": "5550101", "category": "Zakat"}, gw.req.Metadata)

	require.Len(t, donors.donors, 1)
	d := donors.donors[0]
	assert.Equal(t, entity.DonorStatusSuccess, d.Status)
	assert.Equal(t, "pi_123", d.PaymentRefID)
	assert.Equal(t, "card", d.PaymentMethod)
	assert.Contains(t, idx.docs, d.ID)
}

func TestDonateValidation(t *testing.T) {
	cases := map[string]func(*DonationInput){
		"missing name":   func(in *DonationInput) { in.Name = "" },
		"zero amount":    func(in *DonationInput) { in.Amount = 0 },
		"bad method":     func(in *DonationInput) { in.PaymentMethod = "paypal" },
		"missing token":  func(in *DonationInput) { in.CardToken = "" },
		"missing method": func(in *DonationInput) { in.PaymentMethod = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{result: succeededCharge()}
			svc := NewPaymentService(gw, &memDonorRepo{}, nil, "usd", helpers.NewDiscardLogger())
			in := validDonation()
			mutate(&in)

			_, err := svc.Donate(context.Background(), in)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
			assert.Zero(t, gw.calls)
		})
	}
}

func TestDonateNonCardMethodNeedsNoToken(t *testing.T) {
	gw := &fakeGateway{result: succeededCharge()}
	svc := NewPaymentService(gw, &memDonorRepo{}, nil, "usd", helpers.NewDiscardLogger())
	in := validDonation()
	in.PaymentMethod, in.CardToken = "cashapp", ""

	_, err := svc.Donate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "cashapp", gw.req.Method)
}

func TestDonateGatewayFailures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		result  *ChargeResult
		status  int
		message string
	}{
		{"declined", fmt.Errorf("stripe: %w", ErrCardDeclined), nil, http.StatusBadRequest, "Card was declined"},
		{"invalid", fmt.Errorf("stripe: %w", ErrInvalidPaymentRequest), nil, http.StatusBadRequest, "Invalid request to Stripe API"},
		{"network", errors.New("dial tcp: timeout"), nil, http.StatusInternalServerError, "Payment failed"},
		{"not succeeded", nil, &ChargeResult{Intent: PaymentIntent{ID: "pi_1", Status: "requires_action"}}, http.StatusBadRequest, "Payment failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			donors := &memDonorRepo{}
			svc := NewPaymentService(&fakeGateway{err: tc.err, result: tc.result}, donors, nil, "usd", helpers.NewDiscardLogger())

			_, err := svc.Donate(context.Background(), validDonation())
			require.Error(t, err)
			ae, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindUpstream, ae.Kind)
			assert.Equal(t, tc.status, ae.Status)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, donors.donors)
		})
	}
}

func TestListDonorsSecondPage(t *testing.T) {
	donors := &memDonorRepo{}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		category := "Zakat"
		if i%5 == 0 {
			category = "Sadaqah"
		}
		donors.donors = append(donors.donors, entity.Donor{
			ID:          fmt.Sprintf("d%02d", i),
			Name:        fmt.Sprintf("Donor %02d", i),
			Category:    category,
			PaymentDate: base.Add(time.Duration(i) * time.Hour),
			Status:      entity.DonorStatusSuccess,
		})
	}
	svc := NewPaymentService(nil, donors, nil, "usd", helpers.NewDiscardLogger())

	page, err := svc.ListDonors(context.Background(), repo.DonorFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	require.Len(t, page.Donors, 10)
	// newest is d24, so the 11th..20th newest are d14..d05
	assert.Equal(t, "d14", page.Donors[0].ID)
	assert.Equal(t, "d05", page.Donors[9].ID)

	page, err = svc.ListDonors(context.Background(), repo.DonorFilter{Page: 2, Limit: 10, Category: "Zakat"})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Total)
	require.Len(t, page.Donors, 10)
	assert.Equal(t, "d12", page.Donors[0].ID)

	page, err = svc.ListDonors(context.Background(), repo.DonorFilter{Name: "donor 2"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 5, page.Total)
}

func TestListDonorsCapsLimit(t *testing.T) {
	svc := NewPaymentService(nil, &memDonorRepo{}, nil, "usd", helpers.NewDiscardLogger())
	page, err := svc.ListDonors(context.Background(), repo.DonorFilter{Page: -3, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.NotNil(t, page.Donors)
}

func TestListDonorsHugePageIsEmpty(t *testing.T) {
	donors := &memDonorRepo{donors: []entity.Donor{{ID: "d1", Status: entity.DonorStatusSuccess}}}
	svc := NewPaymentService(nil, donors, nil, "usd", helpers.NewDiscardLogger())

	page, err := svc.ListDonors(context.Background(), repo.DonorFilter{Page: 184467440737095516, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 184467440737095516, page.Page)
	assert.Empty(t, page.Donors)
}

func TestSearchDonors(t *testing.T) {
	idx := &fakeIndex{hits: []map[string]any{{"name": "Yusuf"}}}
	svc := NewPaymentService(nil, &memDonorRepo{}, idx, "usd", helpers.NewDiscardLogger())

	hits, err := svc.SearchDonors(context.Background(), "yusuf", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "yusuf", idx.last.query)
	assert.Equal(t, 10, idx.last.size)
}
