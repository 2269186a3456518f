package repository

import (
	"context"
	"math"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

// DonorFilter narrows a donor listing. Empty fields do not filter; Name is a
// case-insensitive substring match.
type DonorFilter struct {
	Email    string
	Name     string
	Category string
	Status   string
	Page     int
	Limit    int
}

// Offset is the number of rows before the page. It saturates at
// math.MaxInt, which the store answers with an empty page.
func (f DonorFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

type DonorRepository interface {
	Create(ctx context.Context, d *entity.Donor) error
	// List returns one page ordered by payment date, newest first, plus the
	// size of the whole filtered set.
	List(ctx context.Context, f DonorFilter) ([]entity.Donor, int, error)
}
