package router

import (
	"github.com/oksasatya/masjid-api/internal/container"
	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
	"github.com/oksasatya/masjid-api/internal/interface/middleware"
	"github.com/oksasatya/masjid-api/internal/router/modules"
)

// InitModules builds every handler from the container and registers its
// module. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Use(middleware.LoadSession(c.Cookies, c.Signer, c.Sessions))

	r.Add(healthModule)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, c.Signer, c.Cookies, c.Logger), c.Redis))
	r.Add(modules.NewPrayerModule(handlers.NewPrayerHandler(c.Prayers, c.Logger), c.Redis))
	r.Add(modules.NewCategoryModule(handlers.NewCategoryHandler(c.Categories, c.Logger)))
	r.Add(modules.NewPaymentModule(handlers.NewPaymentHandler(c.Payments, c.Logger), c.Redis))
	if c.Hub != nil {
		r.Add(modules.NewRealtimeModule(handlers.NewRealtimeHandler(c.Hub)))
	}
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
