package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/pkg/response"
)

type PrayerUseCase interface {
	List(ctx context.Context) ([]entity.Prayer, error)
	Add(ctx context.Context, p *entity.Prayer) (*entity.Prayer, error)
	UpdateTimes(ctx context.Context, month, year, date string, times entity.PrayerTimes) (*entity.Prayer, error)
	Delete(ctx context.Context, id string) error
	PublishMonth(ctx context.Context, month, year string) (string, error)
}

type PrayerHandler struct {
	Svc    PrayerUseCase
	Logger *logrus.Logger
}

func NewPrayerHandler(svc PrayerUseCase, logger *logrus.Logger) *PrayerHandler {
	return &PrayerHandler{Svc: svc, Logger: logger}
}

// prayerDayRequest is the body of both add and update.
type prayerDayRequest struct {
	Month        string             `json:"month" binding:"required"`
	Year         string             `json:"year" binding:"required"`
	Date         string             `json:"date" binding:"required"`
	UpdatedTimes entity.PrayerTimes `json:"updatedTimes" binding:"required"`
}

type publishRequest struct {
	Month string `json:"month" binding:"required"`
	Year  string `json:"year" binding:"required"`
}

func (h *PrayerHandler) List(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "Prayers fetched", nil)
}

func (h *PrayerHandler) Add(c *gin.Context) {
	var req prayerDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.Add(c.Request.Context(), &entity.Prayer{
		Month:        req.Month,
		Year:         req.Year,
		Date:         req.Date,
		UpdatedTimes: req.UpdatedTimes,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "Prayer added", nil)
}

// Update PUT /prayers/update replaces the times of one day.
func (h *PrayerHandler) Update(c *gin.Context) {
	var req prayerDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.UpdateTimes(c.Request.Context(), req.Month, req.Year, req.Date, req.UpdatedTimes)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Prayer times updated successfully", nil)
}

func (h *PrayerHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")}, "Prayer deleted successfully", nil)
}

// Publish POST /prayers/publish (admin)
func (h *PrayerHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	url, err := h.Svc.PublishMonth(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "Timetable published", nil)
}
