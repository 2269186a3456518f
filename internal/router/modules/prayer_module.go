package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
	"github.com/oksasatya/masjid-api/internal/interface/middleware"
)

type PrayerModule struct {
	Handler *handlers.PrayerHandler
	RDB     *redis.Client
}

func NewPrayerModule(h *handlers.PrayerHandler, rdb *redis.Client) *PrayerModule {
	return &PrayerModule{Handler: h, RDB: rdb}
}

func (m *PrayerModule) Register(rg *gin.RouterGroup) {
	p := rg.Group("/prayers")
	p.GET("/get", m.Handler.List)
	p.POST("/add", m.Handler.Add)
	p.PUT("/update", m.Handler.Update)
	p.DELETE("/:id", m.Handler.Delete)

	publishLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyBySession(), nil)
	p.POST("/publish", middleware.RequireAdmin(), publishLimiter, m.Handler.Publish)
}
