package repository

import (
	"context"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
	Rename(ctx context.Context, id, name string) (*entity.Category, error)
	Delete(ctx context.Context, id string) error
}
