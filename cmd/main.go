package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/masjid-api/config"
	"github.com/oksasatya/masjid-api/internal/application"
	"github.com/oksasatya/masjid-api/internal/container"
	"github.com/oksasatya/masjid-api/internal/infrastructure/elastic"
	pginfra "github.com/oksasatya/masjid-api/internal/infrastructure/postgres"
	"github.com/oksasatya/masjid-api/internal/infrastructure/realtime"
	stripeinfra "github.com/oksasatya/masjid-api/internal/infrastructure/stripe"
	"github.com/oksasatya/masjid-api/internal/interface/middleware"
	"github.com/oksasatya/masjid-api/internal/router"
	"github.com/oksasatya/masjid-api/pkg/helpers"
	"github.com/oksasatya/masjid-api/pkg/mailer"
	tpl "github.com/oksasatya/masjid-api/pkg/mailer/templates"
	"github.com/oksasatya/masjid-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	infra := container.Infra{
		Config: cfg,
		Logger: logger,
		DB:     pool,
		Redis:  rdb,
		Hub:    realtime.NewHub(cfg.CORSOrigins(), logger),
	}

	notifier, closeNotifier := buildNotifier(cfg, logger)
	defer closeNotifier()
	infra.Notifier = notifier

	if cfg.StripeSecretKey != "" {
		infra.Gateway = stripeinfra.NewGateway(cfg.StripeSecretKey, nil, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; payments disabled")
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := elastic.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			infra.UserIndex = elastic.NewIndex(es, cfg.ESUsersIndex, logger)
			infra.DonorIndex = elastic.NewIndex(es, cfg.ESDonorsIndex, logger)
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable; timetable publishing disabled")
		} else {
			defer func() { _ = gcsClient.Close() }()
			infra.Uploader = helpers.NewGCSUploader(gcsClient, cfg.GCSBucket)
		}
	}

	c := container.New(infra)
	go c.Hub.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildNotifier prefers the RabbitMQ queue, then sending inline, and drops
// mail when sending is disabled or no transport is configured.
func buildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; emails will not be sent")
		return application.DisabledNotifier{Logger: logger}, noop
	}
	branding := tpl.Branding{CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err == nil {
			logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("emails queued through rabbitmq")
			return application.NewQueueNotifier(pub, branding), pub.Close
		}
		logger.WithError(err).Warn("rabbitmq unavailable; sending emails inline")
	}

	sender, name := mailer.NewTransport(cfg)
	if sender == nil {
		logger.Warn("no mail transport configured; emails will not be sent")
		return application.DisabledNotifier{Logger: logger}, noop
	}
	logger.WithField("transport", name).Info("emails sent inline")
	return application.NewDirectNotifier(sender, branding), noop
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
