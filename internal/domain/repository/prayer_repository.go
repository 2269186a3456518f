package repository

import (
	"context"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

type PrayerRepository interface {
	List(ctx context.Context) ([]entity.Prayer, error)
	ListByMonth(ctx context.Context, month, year string) ([]entity.Prayer, error)
	Create(ctx context.Context, p *entity.Prayer) error
	UpdateTimes(ctx context.Context, month, year, date string, times entity.PrayerTimes) (*entity.Prayer, error)
	Delete(ctx context.Context, id string) error
}
