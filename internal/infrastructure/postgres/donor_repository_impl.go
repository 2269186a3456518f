package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/internal/domain/repository"
)

type DonorRepository struct {
	db DBTX
}

func NewDonorRepository(db DBTX) *DonorRepository {
	return &DonorRepository{db: db}
}

func (r *DonorRepository) Create(ctx context.Context, d *entity.Donor) error {
	if d.Status == "" {
		d.Status = entity.DonorStatusPending
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO donors (name, number, email, category, payment_method, payment_ref_id, payment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()), $8)
		RETURNING id, payment_date
	`, d.Name, d.Number, d.Email, d.Category, d.PaymentMethod, d.PaymentRefID, nullableTime(d), d.Status)
	return mapErr(row.Scan(&d.ID, &d.PaymentDate))
}

func nullableTime(d *entity.Donor) any {
	if d.PaymentDate.IsZero() {
		return nil
	}
	return d.PaymentDate
}

// donorWhere builds the WHERE clause shared by the page query and the count.
func donorWhere(f repository.DonorFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Email != "" {
		add("email = ?", f.Email)
	}
	if f.Name != "" {
		add("name ILIKE ?", "%"+escapeLike(f.Name)+"%")
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *DonorRepository) List(ctx context.Context, f repository.DonorFilter) ([]entity.Donor, int, error) {
	where, args := donorWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM donors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset())
	n := len(args)
	rows, err := r.db.Query(ctx, `
		SELECT id, name, number, email, category, payment_method, payment_ref_id, payment_date, status
		FROM donors`+where+`
		ORDER BY payment_date DESC, id
		LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []entity.Donor{}
	for rows.Next() {
		var d entity.Donor
		if err := rows.Scan(&d.ID, &d.Name, &d.Number, &d.Email, &d.Category, &d.PaymentMethod,
			&d.PaymentRefID, &d.PaymentDate, &d.Status); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

var _ repository.DonorRepository = (*DonorRepository)(nil)
