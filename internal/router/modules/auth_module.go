package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
	"github.com/oksasatya/masjid-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	signupLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/signup", signupLimiter, m.Handler.Signup)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.GET("/logout", m.Handler.Logout)
	auth.POST("/forgot-password", resetInitLimiter, m.Handler.ForgotPassword)
	auth.POST("/verify-otp", otpLimiter, m.Handler.VerifyOTP)
	auth.POST("/reset-password", otpLimiter, m.Handler.ResetPassword)

	auth.GET("/me", middleware.RequireSession(), m.Handler.Me)

	admin := auth.Group("/")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", m.Handler.Users)
		admin.GET("/users/search", m.Handler.SearchUsers)
	}
}
