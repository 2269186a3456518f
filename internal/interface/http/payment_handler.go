package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/application"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/response"
)

type PaymentUseCase interface {
	Donate(ctx context.Context, in application.DonationInput) (*application.DonationResult, error)
	ListDonors(ctx context.Context, f repo.DonorFilter) (*application.DonorPage, error)
	SearchDonors(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type PaymentHandler struct {
	Svc    PaymentUseCase
	Logger *logrus.Logger
}

func NewPaymentHandler(svc PaymentUseCase, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

type cardDetails struct {
	CardToken string `json:"cardToken"`
}

// Required fields are checked by the service, which owns the messages.
type createPaymentRequest struct {
	Name           string                      `json:"name"`
	Number         string                      `json:"number"`
	Email          string                      `json:"email"`
	Category       string                      `json:"category"`
	Amount         float64                     `json:"amount"`
	PaymentMethod  string                      `json:"paymentMethod"`
	CardDetails    *cardDetails                `json:"cardDetails"`
	BillingAddress *application.BillingDetails `json:"billingAddress"`
}

type donorQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Email    string `form:"email"`
	Name     string `form:"name"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

// CreatePayment POST /payments/create-payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	in := application.DonationInput{
		Name:          req.Name,
		Number:        req.Number,
		Email:         req.Email,
		Category:      req.Category,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Billing:       req.BillingAddress,
	}
	if req.CardDetails != nil {
		in.CardToken = req.CardDetails.CardToken
	}
	res, err := h.Svc.Donate(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message, nil)
}

// GetDonators GET /payments/get-donators
func (h *PaymentHandler) GetDonators(c *gin.Context) {
	var q donorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := h.Svc.ListDonors(c.Request.Context(), repo.DonorFilter{
		Email:    q.Email,
		Name:     q.Name,
		Category: q.Category,
		Status:   q.Status,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page, "Donors fetched", nil)
}

// SearchDonators GET /payments/search-donators?q= (admin)
func (h *PaymentHandler) SearchDonators(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	hits, err := h.Svc.SearchDonors(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
