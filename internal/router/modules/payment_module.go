package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
	"github.com/oksasatya/masjid-api/internal/interface/middleware"
)

type PaymentModule struct {
	Handler *handlers.PaymentHandler
	RDB     *redis.Client
}

func NewPaymentModule(h *handlers.PaymentHandler, rdb *redis.Client) *PaymentModule {
	return &PaymentModule{Handler: h, RDB: rdb}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	chargeLimiter := middleware.RateLimit(m.RDB, 20, time.Minute, middleware.KeyByIPAndPath(), nil)

	p := rg.Group("/payments")
	p.POST("/create-payment", chargeLimiter, m.Handler.CreatePayment)
	p.GET("/get-donators", m.Handler.GetDonators)
	p.GET("/search-donators", middleware.RequireAdmin(), m.Handler.SearchDonators)
}
