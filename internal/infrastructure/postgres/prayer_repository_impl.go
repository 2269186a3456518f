package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/internal/domain/repository"
)

type PrayerRepository struct {
	db DBTX
}

func NewPrayerRepository(db DBTX) *PrayerRepository {
	return &PrayerRepository{db: db}
}

func scanPrayer(row pgx.Row) (*entity.Prayer, error) {
	p := &entity.Prayer{}
	var raw []byte
	if err := row.Scan(&p.ID, &p.Month, &p.Year, &p.Date, &raw); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(raw, &p.UpdatedTimes); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PrayerRepository) collect(rows pgx.Rows, err error) ([]entity.Prayer, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []entity.Prayer{}
	for rows.Next() {
		p, err := scanPrayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PrayerRepository) List(ctx context.Context) ([]entity.Prayer, error) {
	return r.collect(r.db.Query(ctx, `SELECT id, month, year, date, times FROM prayers ORDER BY created_at, id`))
}

func (r *PrayerRepository) ListByMonth(ctx context.Context, month, year string) ([]entity.Prayer, error) {
	return r.collect(r.db.Query(ctx, `
		SELECT id, month, year, date, times FROM prayers
		WHERE month = $1 AND year = $2
		ORDER BY length(date), date
	`, month, year))
}

func (r *PrayerRepository) Create(ctx context.Context, p *entity.Prayer) error {
	times, err := json.Marshal(p.UpdatedTimes)
	if err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO prayers (month, year, date, times)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.Month, p.Year, p.Date, times)
	return mapErr(row.Scan(&p.ID))
}

func (r *PrayerRepository) UpdateTimes(ctx context.Context, month, year, date string, times entity.PrayerTimes) (*entity.Prayer, error) {
	raw, err := json.Marshal(times)
	if err != nil {
		return nil, err
	}
	return scanPrayer(r.db.QueryRow(ctx, `
		UPDATE prayers SET times = $4, updated_at = now()
		WHERE month = $1 AND year = $2 AND date = $3
		RETURNING id, month, year, date, times
	`, month, year, date, raw))
}

func (r *PrayerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM prayers WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PrayerRepository = (*PrayerRepository)(nil)
