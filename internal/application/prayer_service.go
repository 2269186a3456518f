package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	"github.com/oksasatya/masjid-api/pkg/apperror"
)

var ErrPrayerNotFound = errors.New("prayer not found")

type PrayerService struct {
	Repo     repo.PrayerRepository
	Uploader ObjectUploader // optional
	Logger   *logrus.Logger
}

func NewPrayerService(r repo.PrayerRepository, uploader ObjectUploader, logger *logrus.Logger) *PrayerService {
	return &PrayerService{Repo: r, Uploader: uploader, Logger: logger}
}

func (s *PrayerService) List(ctx context.Context) ([]entity.Prayer, error) {
	out, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch prayers", err)
	}
	return out, nil
}

func (s *PrayerService) Add(ctx context.Context, p *entity.Prayer) (*entity.Prayer, error) {
	p.Month, p.Year, p.Date = strings.TrimSpace(p.Month), strings.TrimSpace(p.Year), strings.TrimSpace(p.Date)
	if p.Month == "" || p.Year == "" || p.Date == "" {
		return nil, apperror.Validation("month, year and date are required")
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("Prayer entry already exists for this date", err)
		}
		return nil, apperror.Internal("Failed to add prayer", err)
	}
	return p, nil
}

// UpdateTimes replaces the times of the day identified by month, year and date.
func (s *PrayerService) UpdateTimes(ctx context.Context, month, year, date string, times entity.PrayerTimes) (*entity.Prayer, error) {
	p, err := s.Repo.UpdateTimes(ctx, strings.TrimSpace(month), strings.TrimSpace(year), strings.TrimSpace(date), times)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Prayer entry not found", ErrPrayerNotFound)
		}
		return nil, apperror.Internal("Failed to update prayer", err)
	}
	return p, nil
}

func (s *PrayerService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("Prayer not found", ErrPrayerNotFound)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFound("Prayer not found", ErrPrayerNotFound)
		}
		return apperror.Internal("Failed to delete prayer", err)
	}
	return nil
}

// TimetablePath is the object name a month's timetable is published under.
func TimetablePath(month, year string) string {
	return path.Join("timetables", year, month+".csv")
}

// PublishMonth renders a month's timetable as CSV and uploads it.
func (s *PrayerService) PublishMonth(ctx context.Context, month, year string) (string, error) {
	if s.Uploader == nil {
		return "", apperror.Upstream(http.StatusInternalServerError, "Timetable storage is not configured", nil)
	}
	month, year = strings.TrimSpace(month), strings.TrimSpace(year)
	days, err := s.Repo.ListByMonth(ctx, month, year)
	if err != nil {
		return "", apperror.Internal("Failed to fetch prayers", err)
	}
	if len(days) == 0 {
		return "", apperror.NotFound("No prayer times for this month", ErrPrayerNotFound)
	}
	body, err := TimetableCSV(days)
	if err != nil {
		return "", apperror.Internal("Failed to render timetable", err)
	}
	url, err := s.Uploader.Upload(ctx, TimetablePath(month, year), "text/csv; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		return "", apperror.Upstream(http.StatusInternalServerError, "Failed to publish timetable", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"month": month, "year": year, "days": len(days)}).Info("timetable published")
	}
	return url, nil
}

var timetableHeader = []string{
	"date",
	"fajr_azan", "fajr_salat",
	"dhuhr_azan", "dhuhr_salat",
	"asr_azan", "asr_salat",
	"maghrib_azan", "maghrib_salat",
	"isha_azan", "isha_salat",
	"jumma_azan", "jumma_salat",
}

func TimetableCSV(days []entity.Prayer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(timetableHeader); err != nil {
		return nil, err
	}
	for _, d := range days {
		t := d.UpdatedTimes
		row := []string{
			d.Date,
			t.Fajr.AzanTime, t.Fajr.SalatTime,
			t.Dhuhr.AzanTime, t.Dhuhr.SalatTime,
			t.Asr.AzanTime, t.Asr.SalatTime,
			t.Maghrib.AzanTime, t.Maghrib.SalatTime,
			t.Isha.AzanTime, t.Isha.SalatTime,
			"", "",
		}
		if t.Jumma != nil {
			row[11], row[12] = t.Jumma.AzanTime, t.Jumma.SalatTime
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write %s: %w", d.Date, err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
