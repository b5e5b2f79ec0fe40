package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/launchpad/internal/catalog"
	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/identity"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/redis"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/MrSnakeDoc/launchpad/internal/remote/memory"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
	"github.com/MrSnakeDoc/launchpad/internal/session"
	redisstore "github.com/MrSnakeDoc/launchpad/internal/store/redis"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
	"github.com/MrSnakeDoc/launchpad/internal/version"
	"github.com/MrSnakeDoc/launchpad/internal/view"
)

// backgroundJob is a scheduler started with the app and stopped on shutdown.
type backgroundJob struct {
	name     string
	interval time.Duration
	start    func(ctx context.Context) error
	stop     func()
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Manager
	cancelBase  context.CancelFunc
	jobs        []backgroundJob
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		loggerClient.Warn("invalid locale, falling back to fr-FR",
			logger.String("locale", cfg.Locale), logger.Error(err))
		tag = language.French
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loggerClient.Warn("invalid timezone, falling back to local time",
			logger.String("timezone", cfg.Timezone), logger.Error(err))
		loc = time.Local
	}

	fallback, err := domain.ParseCategory(cfg.FallbackCategory)
	if err != nil {
		loggerClient.Errorf("invalid fallback category %q: %v", cfg.FallbackCategory, err)
		os.Exit(1)
	}

	// Remote store: fail fast if Redis is selected but unavailable
	var (
		store       remote.Store
		pinger      remote.Pinger
		redisClient *goredis.Client
	)
	switch cfg.Store {
	case config.StoreRedis:
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		rs := redisstore.NewStore(redisClient, loggerClient)
		store, pinger = rs, rs
	default:
		loggerClient.Warn("using in-memory store, data is lost on restart")
		ms := memory.New()
		store, pinger = ms, ms
	}

	order := ordering.New(tag)

	cat, err := catalog.New(catalog.NewLoader(cfg.CatalogFile), catalog.NewMapper(domain.FaviconIcon), loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	ids, err := identity.New(cfg.TokenSecret, "launchpad", identity.WithTTL(cfg.TokenTTL))
	if err != nil {
		loggerClient.Errorf("Failed to initialize identity: %v", err)
		os.Exit(1)
	}

	prefix := cfg.RedirectPrefix
	if prefix == "none" {
		prefix = ""
	}
	launcher := launch.New(launch.RedirectWrapper(prefix))

	base, cancelBase := context.WithCancel(context.Background())
	sessions := session.NewManager(base, store, order, loggerClient, session.Config{
		WriteTimeout:       cfg.WriteTimeout,
		CascadeConcurrency: cfg.CascadeConcurrency,
		Fallback:           fallback,
		Location:           loc,
		Locale:             tag,
		Icon:               domain.FaviconIcon,
	})

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	probe := scheduler.NewStoreProbe(pinger, loggerClient, cfg.ProbeInterval, cfg.RedisPingTimeout)
	reaper := scheduler.NewSessionReaper(sessions, loggerClient, cfg.ReapInterval, cfg.SessionIdleTTL)
	reminders := scheduler.NewReminderScanner(sessions, loggerClient, cfg.ReminderInterval)
	reloader := scheduler.NewCatalogReloader(cat, loggerClient, cfg.CatalogReloadInterval, reloadTrigger)

	jobs := []backgroundJob{
		{"store probe", cfg.ProbeInterval, probe.Start, probe.Stop},
		{"session reaper", cfg.ReapInterval, reaper.Start, reaper.Stop},
		{"reminder scanner", cfg.ReminderInterval, reminders.Start, reminders.Stop},
		{"catalog reloader", cfg.CatalogReloadInterval, reloader.Start, reloader.Stop},
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		TimeNow:             time.Now,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		AllowOrigins:        cfg.AllowOrigins,
		TrustProxy:          cfg.TrustProxy,
		StoreName:           cfg.Store,
		Store:               pinger,
		Probe:               probe,
		Sessions:            sessions,
		Identity:            ids,
		Catalog:             cat,
		Views:               view.New(order, cat),
		Launcher:            launcher,
		SessionBurst:        cfg.SessionBurst,
		SessionRefillPerMin: cfg.SessionRefillPerMin,
		ReloadTrigger:       reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		cancelBase:  cancelBase,
		jobs:        jobs,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Launchpad v%s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.Store)
	a.logger.Infof("Launchpad %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.cancelBase()

	for _, job := range a.jobs {
		if err := job.start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", job.name, err)
		}
		a.logger.Info(job.name+" started", logger.Duration("interval", job.interval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	for _, job := range a.jobs {
		job.stop()
	}

	// Flushes pending writes before the store goes away
	if err := a.sessions.CloseAll(shutdownCtx); err != nil {
		a.logger.Warn("sessions closed with errors", logger.Error(err))
	}
	a.cancelBase()

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
		a.logger.Info("✅ Redis closed")
	}

	a.logger.Info("✅ Launchpad stopped cleanly")
	return nil
}
