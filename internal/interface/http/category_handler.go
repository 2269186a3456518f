package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/pkg/response"
)

type CategoryUseCase interface {
	List(ctx context.Context) ([]entity.Category, error)
	Add(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, id, name string) (*entity.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoryHandler struct {
	Svc    CategoryUseCase
	Logger *logrus.Logger
}

func NewCategoryHandler(svc CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Svc: svc, Logger: logger}
}

// name is validated by the service so that a blank name gets its own message.
type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "Categories fetched", nil)
}

func (h *CategoryHandler) Add(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cat, err := h.Svc.Add(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, cat, "Category added", nil)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cat, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cat, "Category updated", nil)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")}, "Category deleted", nil)
}
