package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/apperror"
)

// Broadcast event names.
const (
	EventCategoryAdded   = "categoryAdded"
	EventCategoryUpdated = "categoryUpdated"
	EventCategoryDeleted = "categoryDeleted"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryService struct {
	Repo      repo.CategoryRepository
	Publisher Publisher
	Logger    *logrus.Logger
}

func NewCategoryService(r repo.CategoryRepository, pub Publisher, logger *logrus.Logger) *CategoryService {
	return &CategoryService{Repo: r, Publisher: pub, Logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]entity.Category, error) {
	out, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Server error. Try again later.", err)
	}
	return out, nil
}

func (s *CategoryService) Add(ctx context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Category name is required")
	}
	c := &entity.Category{Name: name}
	if err := s.Repo.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("Category already exists", err)
		}
		return nil, apperror.Internal("Failed to add category", err)
	}
	s.publish(ctx, EventCategoryAdded, c)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Category name is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("Category not found", ErrCategoryNotFound)
	}
	c, err := s.Repo.Rename(ctx, id, name)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperror.NotFound("Category not found", ErrCategoryNotFound)
		case errors.Is(err, repo.ErrDuplicate):
			return nil, apperror.Conflict("Category already exists", err)
		}
		return nil, apperror.Internal("Failed to update category", err)
	}
	s.publish(ctx, EventCategoryUpdated, c)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("Category not found", ErrCategoryNotFound)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFound("Category not found", ErrCategoryNotFound)
		}
		return apperror.Internal("Failed to delete category", err)
	}
	s.publish(ctx, EventCategoryDeleted, id)
	return nil
}

// publish runs only after the store call returned; failures never reach the caller.
func (s *CategoryService) publish(ctx context.Context, event string, payload any) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, event, payload); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", event).Warn("category broadcast failed")
	}
}
