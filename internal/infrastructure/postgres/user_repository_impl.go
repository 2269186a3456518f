package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, unique_id, full_name, email, phone, password_hash, role,
	COALESCE(otp_hash, ''), otp_expires_at, version, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.UniqueID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&u.OTPHash, &u.OTPExpiresAt, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (unique_id, full_name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`, u.UniqueID, u.FullName, entity.NormalizeEmail(u.Email), u.Phone, u.PasswordHash, string(u.Role))

	if err := row.Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	u.Email = entity.NormalizeEmail(u.Email)
	return nil
}

func (r *UserRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE unique_id = $1`, uniqueID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, entity.NormalizeEmail(email)))
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) SetOTP(ctx context.Context, id string, version int64, otpHash string, expiresAt time.Time) error {
	return r.conditionalUpdate(ctx, id, `
		UPDATE users
		SET otp_hash = $3, otp_expires_at = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
	`, id, version, otpHash, expiresAt)
}

// ResetPassword replaces the hash and clears the reset code in the same write.
func (r *UserRepository) ResetPassword(ctx context.Context, id string, version int64, passwordHash string) error {
	return r.conditionalUpdate(ctx, id, `
		UPDATE users
		SET password_hash = $3, otp_hash = NULL, otp_expires_at = NULL, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
	`, id, version, passwordHash)
}

func (r *UserRepository) SetRole(ctx context.Context, id string, version int64, role entity.Role) error {
	return r.conditionalUpdate(ctx, id, `
		UPDATE users
		SET role = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
	`, id, version, string(role))
}

// conditionalUpdate runs a version-guarded UPDATE. When no row matched it
// tells a vanished record apart from a concurrent write.
func (r *UserRepository) conditionalUpdate(ctx context.Context, id string, sql string, args ...any) error {
	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrStale
}

var _ repository.UserRepository = (*UserRepository)(nil)
