package application

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/apperror"
	"github.com/oksasatya/masjid-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateIdentity  = errors.New("email or phone already in use")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrConcurrentUpdate   = errors.New("concurrent update")
	ErrSession            = errors.New("session error")
)

// maxWriteAttempts bounds re-read/re-apply cycles after a stale write.
const maxWriteAttempts = 3

const defaultOTPTTL = 5 * time.Minute

type AuthService struct {
	Users    repo.UserRepository
	Sessions SessionStore
	Notifier Notifier
	Index    SearchIndex // optional
	OTPTTL   time.Duration
	Logger   *logrus.Logger

	now func() time.Time
}

func NewAuthService(users repo.UserRepository, sessions SessionStore, notifier Notifier, index SearchIndex, otpTTL time.Duration, logger *logrus.Logger) *AuthService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	return &AuthService{
		Users:    users,
		Sessions: sessions,
		Notifier: notifier,
		Index:    index,
		OTPTTL:   otpTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

type SignupInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// Signup creates the user and opens a session for it. Email and phone
// uniqueness is enforced by the store, not by a prior lookup.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = entity.NormalizeEmail(in.Email)
	if in.FullName == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, apperror.Validation("All fields are required")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("Server Error", err)
	}
	u := &entity.User{
		UniqueID:     uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("Email or phone already in use", ErrDuplicateIdentity)
		}
		return nil, apperror.Internal("Server Error", err)
	}
	s.indexUser(ctx, u)

	sess, err := s.Sessions.Create(ctx, u)
	if err != nil {
		return nil, apperror.Internal("Failed to start session", errors.Join(ErrSession, err))
	}
	helpers.LogInfo(s.Logger, "user signed up", logrus.Fields{"user_id": u.ID})
	return sess, nil
}

// Login answers unknown email and wrong password identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// burn comparable time so a miss is not faster than a bad password
			helpers.CompareHashAndPassword(dummyPasswordHash(), password)
			return nil, apperror.Auth("Invalid Credentials", ErrInvalidCredentials)
		}
		return nil, apperror.Internal("Server Error", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperror.Auth("Invalid Credentials", ErrInvalidCredentials)
	}
	sess, err := s.Sessions.Create(ctx, u)
	if err != nil {
		return nil, apperror.Internal("Failed to start session", errors.Join(ErrSession, err))
	}
	return sess, nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

func dummyPasswordHash() string {
	dummyOnce.Do(func() { dummyHash, _ = helpers.HashPassword(uuid.NewString()) })
	return dummyHash
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.Sessions.Destroy(ctx, sid); err != nil {
		return apperror.Internal("Logout failed", errors.Join(ErrSession, err))
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]entity.PublicUser, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Internal Server Error", err)
	}
	if len(users) == 0 {
		return nil, apperror.NotFound("No users found", ErrUserNotFound)
	}
	out := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// Me reloads the signed-in user so profile reads reflect writes made after
// the session was created.
func (s *AuthService) Me(ctx context.Context, uniqueID string) (*entity.PublicUser, error) {
	u, err := s.Users.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("User not found", ErrUserNotFound)
		}
		return nil, apperror.Internal("Server Error", err)
	}
	pub := u.Public()
	return &pub, nil
}

// SearchUsers queries the user index; without an index it returns nothing.
func (s *AuthService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	hits, err := s.Index.Search(ctx, q, []string{"email^2", "full_name", "phone"}, size)
	if err != nil {
		return nil, apperror.Upstream(http.StatusInternalServerError, "Search failed", err)
	}
	return hits, nil
}

func (s *AuthService) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, u.UniqueID, u.Public()); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.UniqueID).Warn("user index failed")
	}
}

// ResetRequest describes an issued reset code without revealing it.
type ResetRequest struct {
	ExpiresAt time.Time
}

// RequestPasswordReset stores a fresh code on the user, then sends it. A
// notification failure is returned but the stored code stays valid.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error) {
	var (
		u       *entity.User
		code    string
		expires time.Time
	)
	err := retryStale(func() error {
		var err error
		u, err = s.lookup(ctx, email)
		if err != nil {
			return err
		}
		code, err = helpers.GenOTPCode()
		if err != nil {
			return apperror.Internal("Error sending OTP", err)
		}
		hash, err := helpers.HashOTP(code)
		if err != nil {
			return apperror.Internal("Error sending OTP", err)
		}
		expires = s.now().Add(s.OTPTTL).UTC()
		return s.Users.SetOTP(ctx, u.ID, u.Version, hash, expires)
	})
	if err != nil {
		return nil, s.classifyWrite(err)
	}

	if err := s.Notifier.SendPasswordResetOTP(ctx, u.Email, u.FullName, code, expires); err != nil {
		helpers.LogError(s.Logger, "send otp failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.Upstream(http.StatusInternalServerError, "Error sending OTP", err)
	}
	return &ResetRequest{ExpiresAt: expires}, nil
}

// VerifyOTP checks the code without consuming it.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	return s.checkOTP(u, code)
}

type ResetResult struct {
	ConfirmationSent bool
}

// ResetPassword replaces the password and clears the code in one
// conditional write. The confirmation email is best effort.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (*ResetResult, error) {
	if newPassword == "" {
		return nil, apperror.Validation("All fields are required")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, apperror.Internal("Server Error", err)
	}

	var u *entity.User
	err = retryStale(func() error {
		var err error
		u, err = s.lookup(ctx, email)
		if err != nil {
			return err
		}
		if err := s.checkOTP(u, code); err != nil {
			return err
		}
		return s.Users.ResetPassword(ctx, u.ID, u.Version, hash)
	})
	if err != nil {
		return nil, s.classifyWrite(err)
	}

	res := &ResetResult{ConfirmationSent: true}
	if err := s.Notifier.SendPasswordResetConfirmation(ctx, u.Email, u.FullName); err != nil {
		res.ConfirmationSent = false
		helpers.LogError(s.Logger, "send reset confirmation failed", err, logrus.Fields{"user_id": u.ID})
	}
	return res, nil
}

func (s *AuthService) lookup(ctx context.Context, email string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, apperror.Validation("Email is required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("No account found with this email", ErrUserNotFound)
		}
		return nil, apperror.Internal("Server Error", err)
	}
	return u, nil
}

// checkOTP reports a missing or wrong code before looking at expiry.
func (s *AuthService) checkOTP(u *entity.User, code string) error {
	if !u.HasOTP() || !helpers.IsOTPFormat(code) || !helpers.CompareOTP(u.OTPHash, code) {
		return apperror.Auth("Invalid OTP", ErrInvalidOTP)
	}
	if u.OTPExpired(s.now()) {
		return apperror.Auth("OTP has expired", ErrOTPExpired)
	}
	return nil
}

func (s *AuthService) classifyWrite(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound("No account found with this email", ErrUserNotFound)
	}
	return apperror.Internal("Server Error", err)
}

// retryStale re-runs fn while it fails with repo.ErrStale.
func retryStale(fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, repo.ErrStale) {
			return err
		}
		if attempt >= maxWriteAttempts {
			return apperror.Conflict("The account was updated concurrently, please retry", ErrConcurrentUpdate)
		}
	}
}
