package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/application"
	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/pkg/helpers"
	"github.com/oksasatya/masjid-api/pkg/response"
)

// AuthUseCase is the part of *application.AuthService the handler drives.
type AuthUseCase interface {
	Signup(ctx context.Context, in application.SignupInput) (*entity.Session, error)
	Login(ctx context.Context, email, password string) (*entity.Session, error)
	Logout(ctx context.Context, sid string) error
	Me(ctx context.Context, uniqueID string) (*entity.PublicUser, error)
	ListUsers(ctx context.Context) ([]entity.PublicUser, error)
	SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error)
	RequestPasswordReset(ctx context.Context, email string) (*application.ResetRequest, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) (*application.ResetResult, error)
}

type AuthHandler struct {
	Svc     AuthUseCase
	Signer  *helpers.SessionSigner
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc AuthUseCase, signer *helpers.SessionSigner, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Signer: signer, Cookies: cookies, Logger: logger}
}

type signupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,phone"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// The code format is checked by the service so that a malformed code is
// reported the same way as a wrong one.
type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

// Signup POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	sess, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if !h.startSession(c, sess) {
		return
	}
	response.Success(c, http.StatusOK, sess, "User registered successfully", nil)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if !h.startSession(c, sess) {
		return
	}
	response.Success(c, http.StatusOK, sess, "Login successful", nil)
}

func (h *AuthHandler) startSession(c *gin.Context, sess *entity.Session) bool {
	token, exp, err := h.Signer.Sign(sess.ID, sess.UserID)
	if err != nil {
		helpers.LogError(h.Logger, "sign session cookie", err, logrus.Fields{"user_id": sess.UserID})
		_ = h.Svc.Logout(c.Request.Context(), sess.ID)
		response.Error[any](c, http.StatusInternalServerError, "Failed to start session", nil)
		return false
	}
	h.Cookies.SetSession(c, token, exp)
	return true
}

// Logout GET /auth/logout. The cookie is only cleared once the server-side
// session is gone.
// Me GET /auth/me; the route sits behind RequireSession, which sets userID.
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error[any](c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	me, err := h.Svc.Me(c.Request.Context(), uid)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, me, "OK", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.Cookies.Read(c); token != "" {
		if claims, err := h.Signer.Parse(token); err == nil {
			if err := h.Svc.Logout(c.Request.Context(), claims.SessionID); err != nil {
				writeError(c, h.Logger, err)
				return
			}
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "Logged out successfully", nil)
}

// Users GET /auth/users (admin)
func (h *AuthHandler) Users(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "Users fetched", map[string]any{"count": len(users)})
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size"`
}

// SearchUsers GET /auth/users/search?q=&size= (admin)
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// ForgotPassword POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expires_at": res.ExpiresAt}, "OTP sent to your email", nil)
}

// VerifyOTP POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Svc.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "OTP verified", nil)
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"confirmation_sent": res.ConfirmationSent}, "Password reset successful", nil)
}
