package container

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/config"
	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/face"
	"github.com/oksasatya/go-attendance-auth/internal/infrastructure/mail"
	pginfra "github.com/oksasatya/go-attendance-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-attendance-auth/internal/infrastructure/search"
	gcsstore "github.com/oksasatya/go-attendance-auth/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer/templates"
)

// Container owns every long-lived component of the API process. Optional
// backends are nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool     *pgxpool.Pool
	Redis    *redis.Client
	GCS      *storage.Client
	Rabbit   *helpers.RabbitPublisher
	ES       *elasticsearch.Client
	Mailgun  *mailer.Mailgun
	JWT      *helpers.JWTManager
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Limit    middleware.Limiter

	OTP        *application.OTPService
	Auth       *application.AuthService
	Admin      *application.AdminService
	Profile    *application.ProfileService
	Attendance *application.AttendanceService

	AuthHandler       *handlers.AuthHandler
	AdminHandler      *handlers.AdminHandler
	ProfileHandler    *handlers.ProfileHandler
	AttendanceHandler *handlers.AttendanceHandler
	HealthHandler     *handlers.HealthHandler
}

// New connects the backends named in cfg and wires the services on top.
// Postgres is required; every other backend degrades when it is missing.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Pool = pool

	if cfg.RedisAddr != "" {
		c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if !helpers.RedisHealthy(ctx, c.Redis) {
			logger.Warn("redis unreachable, rate limiting fails open until it recovers")
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client unavailable, uploads disabled")
		} else {
			c.GCS = gcs
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, sending otp mail directly")
		} else {
			c.Rabbit = pub
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client unavailable, user search disabled")
	} else {
		c.ES = es
	}

	c.Mailgun = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailTimeout)
	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.NewCollector(c.Registry)

	c.Limit = middleware.NewLimiter(c.Redis, cfg.RateLimitEnabled, middleware.AllowPaths("/api/healthz", "/metrics"))

	if err := c.wire(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// otpSender prefers the queue, then direct Mailgun, then logging only.
func (c *Container) otpSender() application.OTPSender {
	brand := templates.Brand{CompanyName: c.Config.CompanyName, AppName: c.Config.AppName, SupportURL: c.Config.SupportURL}
	switch {
	case !c.Config.MailSendEnabled:
		return mail.LogSender{Logger: c.Logger, Reveal: c.Config.Env == "development"}
	case c.Rabbit != nil:
		c.Logger.Info("otp mail goes through rabbitmq")
		return mail.NewQueueSender(c.Rabbit, brand, c.Config.MailTimeout)
	case c.Mailgun.Configured():
		c.Logger.Info("otp mail goes directly through mailgun")
		return mail.NewDirectSender(c.Mailgun, brand)
	default:
		c.Logger.Warn("no mail transport configured, otp codes are only logged")
		return mail.LogSender{Logger: c.Logger, Reveal: c.Config.Env == "development"}
	}
}

func (c *Container) wire(ctx context.Context) error {
	cfg := c.Config
	users := pginfra.NewUserRepository(c.Pool)
	admins := pginfra.NewAdminRepository(c.Pool)
	attendances := pginfra.NewAttendanceRepository(c.Pool)
	images := gcsstore.NewGCSImageStore(c.GCS, cfg.GCSBucket, cfg.UploadTimeout)

	var index application.UserIndexer
	if ui := search.NewUserIndex(c.ES, cfg.ESUsersIndex); ui != nil {
		index = ui
	}

	var detector face.Detector
	vd, err := face.NewVisionDetector(ctx, cfg.VisionAPIKey, 10*time.Second)
	if err != nil {
		c.Logger.WithError(err).Warn("cloud vision unavailable, using fallback verification")
	} else if vd != nil {
		detector = vd
	}

	c.OTP = application.NewOTPService(users, c.otpSender(), c.Logger, c.Metrics)
	c.Auth = application.NewAuthService(users, admins, c.OTP, c.JWT, c.Logger, c.Metrics)
	c.Auth.Index = index
	c.Admin = application.NewAdminService(users, admins, c.OTP, index, c.Logger)
	c.Profile = application.NewProfileService(users, images, c.Logger, c.Metrics)
	c.Profile.Index = index
	c.Attendance = application.NewAttendanceService(users, attendances, images, face.NewSelector(detector, face.NoBaseline{}), cfg.Location(), c.Logger, c.Metrics)

	c.AuthHandler = handlers.NewAuthHandler(c.Auth, c.Logger)
	c.AdminHandler = handlers.NewAdminHandler(c.Admin, c.Logger)
	c.ProfileHandler = handlers.NewProfileHandler(c.Profile, c.Logger, cfg.MaxUploadBytes)
	c.AttendanceHandler = handlers.NewAttendanceHandler(c.Attendance, c.Logger, cfg.MaxUploadBytes, cfg.Location())

	checks := map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return c.Pool.Ping(ctx) },
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	c.HealthHandler = handlers.NewHealthHandler(checks)
	return nil
}

// Close releases backends in reverse order of acquisition.
func (c *Container) Close() {
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
