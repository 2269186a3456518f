package postgres

import (
	"context"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/internal/domain/repository"
)

type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create relies on categories_name_key; a taken name returns ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, c.Name)
	return mapErr(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *CategoryRepository) Rename(ctx context.Context, id, name string) (*entity.Category, error) {
	c := &entity.Category{}
	row := r.db.QueryRow(ctx, `
		UPDATE categories SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, id, name)
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
