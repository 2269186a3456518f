package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

// SessionStore holds authenticated identities between requests.
type SessionStore interface {
	Create(ctx context.Context, u *entity.User) (*entity.Session, error)
	Get(ctx context.Context, sid string) (*entity.Session, error)
	Destroy(ctx context.Context, sid string) error
}

// Notifier delivers password reset messages. Implementations must not be
// called while a store write is still pending.
type Notifier interface {
	SendPasswordResetOTP(ctx context.Context, to, name, code string, expiresAt time.Time) error
	SendPasswordResetConfirmation(ctx context.Context, to, name string) error
}

// Publisher announces committed changes to live listeners.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// SearchIndex is a full-text index over one document type.
type SearchIndex interface {
	Put(ctx context.Context, id string, doc any) error
	Search(ctx context.Context, query string, fields []string, size int) ([]map[string]any, error)
}

// ObjectUploader stores a file and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// PaymentGateway charges a donor in a single create-and-confirm step.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
