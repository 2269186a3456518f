package repository

import (
	"context"
	"time"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Mutations are conditional on the version the caller read and return
// ErrStale when it no longer matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByUniqueID(ctx context.Context, uniqueID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	SetOTP(ctx context.Context, id string, version int64, otpHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id string, version int64, passwordHash string) error
	SetRole(ctx context.Context, id string, version int64, role entity.Role) error
}
