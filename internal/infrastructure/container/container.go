// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	app "github.com/orbitfit/mealplan/internal/application/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/compliance"
	"github.com/orbitfit/mealplan/internal/infrastructure/cache"
	"github.com/orbitfit/mealplan/internal/infrastructure/config"
	"github.com/orbitfit/mealplan/internal/infrastructure/events"
	"github.com/orbitfit/mealplan/internal/infrastructure/http/handlers"
	"github.com/orbitfit/mealplan/internal/infrastructure/http/server"
	"github.com/orbitfit/mealplan/internal/infrastructure/monitoring"
	gormRepo "github.com/orbitfit/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/orbitfit/mealplan/internal/infrastructure/persistence/memory"
	"github.com/orbitfit/mealplan/internal/infrastructure/persistence/migrations"
	"github.com/orbitfit/mealplan/internal/infrastructure/persistence/postgres"
	redisCache "github.com/orbitfit/mealplan/internal/infrastructure/persistence/redis"
	"github.com/orbitfit/mealplan/internal/infrastructure/persistence/sqlite"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
	"github.com/orbitfit/mealplan/pkg/healthcheck"
	"github.com/orbitfit/mealplan/pkg/logger"
)

// Module provides all dependency injection modules. configPath may be empty.
func Module(configPath string) fx.Option {
	return fx.Options(
		// Infrastructure modules
		ConfigModule(configPath),
		LoggerModule,
		MonitoringModule,
		DatabaseModule,

		// Repository modules
		RepositoryModule,

		// Event modules
		EventModule,

		// Service modules
		ServiceModule,

		// HTTP modules
		HTTPModule,

		// Lifecycle hooks
		LifecycleModule,
	)
}

// ConfigModule provides configuration
func ConfigModule(path string) fx.Option {
	return fx.Provide(func() (*config.Config, error) {
		return config.Load(path)
	})
}

// LoggerModule provides logging. The atomic level is shared with the
// config watcher.
var LoggerModule = fx.Options(
	fx.Provide(func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	}),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetrics,
	NewTracingProvider,
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log.Named("health"))
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Options(
	fx.Provide(
		NewDatabase,
		func(d *Database) *gorm.DB { return d.Gorm },
	),
	fx.Invoke(func(d *Database, metrics *monitoring.Metrics, health *healthcheck.HealthCheck) {
		metrics.RegisterDB(d.SQL, d.Driver)
		health.Register("database", healthcheck.NewDatabaseChecker(d.SQL))
	}),
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewPlanRepository,
	gormRepo.NewClientRepository,
	NewRecipeRepository,
)

// EventModule provides event handling
var EventModule = fx.Provide(
	NewEventDispatcher,
	func(d *events.Dispatcher) outbound.EventPublisher { return d },
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	NewPlanService,
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewPlanHandlers,
	func(
		cfg *config.Config,
		log *zap.Logger,
		h *handlers.PlanHandlers,
		health *healthcheck.HealthCheck,
		metrics *monitoring.Metrics,
	) *server.Server {
		if !cfg.Monitoring.EnableMetrics {
			metrics = nil
		}
		return server.NewServer(cfg, log, h, health, metrics)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
	WatchConfig,
)

// Database bundles the record store handles
type Database struct {
	Gorm   *gorm.DB
	SQL    *sql.DB
	Driver string
}

// NewDatabase opens the configured record store, applies migrations and
// optionally seeds demo data. The connection is closed on stop.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Database, error) {
	var (
		db      *gorm.DB
		sqlDB   *sql.DB
		closeDB func() error
		err     error
	)

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.RunMigrations {
			if err := migrations.RunUp(cfg.GetDSN(), cfg.Database.Database, log); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		cm, err := postgres.NewConnectionManager(context.Background(), cfg.Database, log)
		if err != nil {
			return nil, err
		}
		db, sqlDB, closeDB = cm.DB(), cm.SQLDB(), cm.Close

	default:
		logLevel := gormLogger.Warn
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}
		db, err = sqlite.SetupDatabase(cfg.Database.SQLitePath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		if sqlDB, err = db.DB(); err != nil {
			return nil, err
		}
		closeDB = sqlDB.Close
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.SQLitePath))
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(db); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeDB()
		},
	})

	return &Database{Gorm: db, SQL: sqlDB, Driver: cfg.Database.Driver}, nil
}

// NewRecipeRepository returns the catalogue repository, decorated with the
// configured recipe cache
func NewRecipeRepository(
	lc fx.Lifecycle,
	cfg *config.Config,
	db *gorm.DB,
	health *healthcheck.HealthCheck,
	log *zap.Logger,
) (outbound.RecipeRepository, error) {
	repo := gormRepo.NewRecipeRepository(db)

	var store outbound.CacheRepository
	switch cfg.Cache.Driver {
	case "none":
		log.Info("Recipe cache disabled")
		return repo, nil

	case "redis":
		client, err := redisCache.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		health.Register("redis", healthcheck.NewRedisChecker(client))
		store = redisCache.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
		log.Info("Using Redis recipe cache", zap.String("addr", cfg.Redis.RedisAddr()))

	default:
		mem := memory.NewCacheRepository(cfg.Cache.RecipeTTL)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return mem.Close() }})
		store = mem
		log.Info("Using in-memory recipe cache")
	}

	return cache.NewCachedRecipeRepository(repo, store, cfg.Cache.RecipeTTL, log), nil
}

// NewEventDispatcher creates the event dispatcher with its default handlers
func NewEventDispatcher(log *zap.Logger, metrics *monitoring.Metrics) *events.Dispatcher {
	d := events.NewDispatcher(log, metrics)
	d.RegisterAll(events.LogHandler(log))
	return d
}

// NewTracingProvider installs the OTLP tracer provider when tracing is
// enabled and flushes it on stop
func NewTracingProvider(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		Insecure:       cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log.Named("tracing"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return tp, nil
}

// NewPlanService wires the planning use cases
func NewPlanService(
	cfg *config.Config,
	plans outbound.PlanRepository,
	recipes outbound.RecipeRepository,
	clients outbound.ClientRepository,
	publisher outbound.EventPublisher,
	metrics *monitoring.Metrics,
	// requested so the global tracer provider is installed first
	_ *monitoring.TracingProvider,
	log *zap.Logger,
) inbound.PlanService {
	dict := compliance.NewDictionary(compliance.DefaultKeywords(), cfg.Planning.ExtraAllergens)
	return app.NewPlanService(plans, recipes, clients, publisher, app.Config{
		DefaultSlots: cfg.Planning.DefaultSlots,
		Checker:      compliance.NewChecker(dict),
		Recorder:     metrics,
		Tracer:       monitoring.Tracer(),
	}, log)
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal plan service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal plan service")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}

// WatchConfig hot-reloads the log level when the config file changes
func WatchConfig(cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) {
	watching := cfg.OnChange(func(next *config.Config) {
		newLevel := logger.ParseLevel(next.App.LogLevel)
		if newLevel == level.Level() {
			return
		}
		level.SetLevel(newLevel)
		log.Info("Log level changed", zap.String("level", newLevel.String()))
	}, func(err error) {
		log.Warn("Ignoring invalid config change", zap.Error(err))
	})
	if watching {
		log.Debug("Watching config file for changes")
	}
}
