// Package container builds the application graph once at startup. Every
// component receives its collaborators explicitly; nothing is kept in
// package-level state.
package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/config"
	"github.com/oksasatya/masjid-api/internal/application"
	pginfra "github.com/oksasatya/masjid-api/internal/infrastructure/postgres"
	"github.com/oksasatya/masjid-api/internal/infrastructure/realtime"
	redisinfra "github.com/oksasatya/masjid-api/internal/infrastructure/redis"
	"github.com/oksasatya/masjid-api/pkg/helpers"
)

// Infra is what cmd/main connects before the graph is built. The optional
// fields stay nil when their backend is not configured.
type Infra struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     pginfra.DBTX
	Redis  *redis.Client
	Hub    *realtime.Hub

	Notifier   application.Notifier
	Gateway    application.PaymentGateway // optional
	UserIndex  application.SearchIndex    // optional
	DonorIndex application.SearchIndex    // optional
	Uploader   application.ObjectUploader // optional
}

type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Redis  *redis.Client
	Hub    *realtime.Hub

	Signer   *helpers.SessionSigner
	Cookies  *helpers.Manager
	Sessions application.SessionStore

	Auth       *application.AuthService
	Prayers    *application.PrayerService
	Categories *application.CategoryService
	Payments   *application.PaymentService
}

func New(in Infra) *Container {
	cfg := in.Config
	sessions := redisinfra.NewSessionStore(in.Redis, cfg.SessionTTL)

	return &Container{
		Config:   cfg,
		Logger:   in.Logger,
		Redis:    in.Redis,
		Hub:      in.Hub,
		Signer:   helpers.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL),
		Cookies:  helpers.NewCookie(cfg.CookieName, cfg.CookieDomain, cfg.CookieSecure),
		Sessions: sessions,

		Auth: application.NewAuthService(
			pginfra.NewUserRepository(in.DB),
			sessions,
			in.Notifier,
			in.UserIndex,
			cfg.OTPTTL,
			in.Logger,
		),
		Prayers:    application.NewPrayerService(pginfra.NewPrayerRepository(in.DB), in.Uploader, in.Logger),
		Categories: application.NewCategoryService(pginfra.NewCategoryRepository(in.DB), in.Hub, in.Logger),
		Payments:   application.NewPaymentService(in.Gateway, pginfra.NewDonorRepository(in.DB), in.DonorIndex, cfg.StripeCurrency, in.Logger),
	}
}
