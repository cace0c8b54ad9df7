// Package app wires configuration, storage clients and services into the
// running process. The cobra commands in cmd/dealsdash only choose which
// parts of an App to start.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dealsdash/internal/api"
	"dealsdash/internal/api/handlers"
	"dealsdash/internal/catalog"
	awsclients "dealsdash/internal/common/aws"
	"dealsdash/internal/common/config"
	"dealsdash/internal/common/database"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/common/observability"
	"dealsdash/internal/notify"
	"dealsdash/internal/proximity"
	"dealsdash/internal/reconciler"
	"dealsdash/internal/repository"
	"dealsdash/internal/search"
	"dealsdash/internal/storage"
)

type Options struct {
	// Retries for the initial Postgres connection; 1 means no retry.
	ConnectRetries int
	RetryDelay     time.Duration
}

// App holds every long-lived component. Optional pieces (Redis, the vendor
// index, the notifier) are nil when disabled in configuration.
type App struct {
	Config *config.Config
	Logger logger.Logger

	Postgres *database.PostgresClient
	Redis    *database.RedisClient
	Elastic  *database.ElasticsearchClient
	Obs      *observability.Observability

	CategoryRepo *repository.CategoryRepository
	VendorRepo   *repository.VendorRepository
	DealRepo     *repository.DealRepository

	VendorIndex   *search.VendorIndex
	CategoryCache *proximity.CachedCategoryResolver
	Engine        *proximity.Engine

	Categories *catalog.CategoryService
	Vendors    *catalog.VendorService
	Deals      *catalog.DealService

	Reconciler *reconciler.Reconciler
}

// New connects to the configured backends and builds the services. Postgres
// is mandatory; Redis and Elasticsearch failures are fatal only when the
// feature that needs them is enabled.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if opts.ConnectRetries <= 0 {
		opts.ConnectRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	a := &App{Config: cfg, Logger: log}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("OpenTelemetry metrics disabled", map[string]interface{}{"error": err.Error()})
	}
	a.Obs = obs

	if err := retryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		a.Postgres = pg
		return nil
	}, opts.ConnectRetries, opts.RetryDelay, log, "PostgreSQL connection"); err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected successfully", nil)

	db := a.Postgres.DB
	a.CategoryRepo = repository.NewCategoryRepository(db)
	a.VendorRepo = repository.NewVendorRepository(db)
	a.DealRepo = repository.NewDealRepository(db)

	if cfg.Database.Redis.Enabled {
		a.Redis = database.NewRedis(cfg.Database.Redis)
		if err := a.Redis.Ping(ctx); err != nil {
			// The cache falls through to Postgres while Redis is down.
			log.Warn("Redis unreachable at startup", map[string]interface{}{"error": err.Error()})
		} else {
			log.Info("Redis connected successfully", nil)
		}
	}

	if cfg.Database.Elasticsearch.Enabled {
		if err := a.connectElastic(ctx); err != nil {
			if cfg.Search.Backend == config.BackendElasticsearch {
				a.Close(ctx)
				return nil, err
			}
			log.Warn("Elasticsearch unavailable, vendor index disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	a.buildServices(ctx)
	return a, nil
}

func (a *App) connectElastic(ctx context.Context) error {
	es, err := database.NewElasticsearch(a.Config.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := es.Ping(ctx); err != nil {
		return err
	}
	index, err := search.NewVendorIndex(es.Client, a.Config.Database.Elasticsearch.VendorIndex, a.Logger)
	if err != nil {
		return err
	}
	if err := index.EnsureIndex(ctx); err != nil {
		return err
	}
	a.Elastic = es
	a.VendorIndex = index
	a.Logger.Info("Elasticsearch connected successfully", map[string]interface{}{"index": index.Index()})
	return nil
}

func (a *App) buildServices(ctx context.Context) {
	cfg := a.Config
	log := a.Logger

	var resolver proximity.CategoryResolver = proximity.CategoryResolverFunc(a.CategoryRepo.FindIDByName)
	var nameCache catalog.NameCache
	if a.Redis != nil {
		a.CategoryCache = proximity.NewCachedCategoryResolver(resolver, a.Redis.Client,
			config.GetDuration(cfg.Search.CategoryCacheTTL), log)
		resolver = a.CategoryCache
		nameCache = a.CategoryCache
	}

	var locator proximity.Locator = proximity.NewPostgresLocator(a.Postgres.DB)
	backend := config.BackendPostgres
	if cfg.Search.Backend == config.BackendElasticsearch && a.VendorIndex != nil {
		locator = proximity.NewElasticLocator(a.VendorIndex, a.DealRepo, proximity.WithVendorSource(a.VendorRepo))
		backend = config.BackendElasticsearch
	}
	a.Engine = proximity.NewEngine(locator, resolver, backend, log,
		proximity.WithDefaultDistance(float64(cfg.Search.DefaultDistance)),
		proximity.WithObservability(a.Obs),
	)

	blobs := storage.New(cfg.Storage.BaseURL, cfg.Storage.APIKey, config.GetDuration(cfg.Storage.Timeout), log)

	var mirror catalog.VendorMirror
	if a.VendorIndex != nil {
		mirror = a.VendorIndex
	}

	a.Categories = catalog.NewCategoryService(a.CategoryRepo, blobs, nameCache, time.Now, log)
	a.Vendors = catalog.NewVendorService(a.VendorRepo, blobs, mirror, log)
	a.Deals = catalog.NewDealService(a.DealRepo, catalog.NewReferences(a.CategoryRepo, a.VendorRepo), blobs, time.Now, log)

	recOpts := []reconciler.Option{
		reconciler.WithTimeout(config.GetDuration(cfg.Reconciler.Timeout)),
		reconciler.WithObservability(a.Obs),
	}
	if n := a.buildNotifier(ctx); n != nil {
		recOpts = append(recOpts, reconciler.WithNotifier(n))
	}
	a.Reconciler = reconciler.New(a.DealRepo, log, recOpts...)
}

// buildNotifier returns nil unless expiry notifications are switched on and
// at least one channel has a working client.
func (a *App) buildNotifier(ctx context.Context) *notify.Notifier {
	cfg := a.Config
	if !cfg.Reconciler.NotifyOnExpiry {
		return nil
	}
	nc := cfg.Notifications
	region := nc.AWS.Region

	var snsClient awsclients.SNSAPI
	if nc.SNS.Enabled {
		c, err := awsclients.NewSNSClient(ctx, region)
		if err != nil {
			a.Logger.Warn("SNS client unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			snsClient = c
		}
	}
	var sesClient awsclients.SESAPI
	if nc.Email.Enabled {
		c, err := awsclients.NewSESClient(ctx, region)
		if err != nil {
			a.Logger.Warn("SES client unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			sesClient = c
		}
	}

	n := notify.NewNotifier(notify.Config{
		SNSEnabled:   nc.SNS.Enabled,
		TopicARN:     nc.SNS.TopicARN,
		EmailEnabled: nc.Email.Enabled,
		FromEmail:    nc.Email.FromEmail,
		ToEmail:      nc.Email.ToEmail,
	}, snsClient, sesClient, a.Logger)
	if !n.Enabled() {
		return nil
	}
	return n
}

// Scheduler builds the cron driver for the reconciler.
func (a *App) Scheduler() (*reconciler.Scheduler, error) {
	rc := a.Config.Reconciler
	loc, err := time.LoadLocation(rc.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("reconciler.time_zone %q: %w", rc.TimeZone, err)
	}
	return reconciler.NewScheduler(a.Reconciler, rc.Schedule, a.Logger,
		reconciler.WithLocation(loc),
		reconciler.WithRunOnStart(rc.RunOnStart),
	)
}

// Handler builds the HTTP router.
func (a *App) Handler() http.Handler {
	checks := map[string]handlers.Check{
		"postgres": a.Postgres.Ping,
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	if a.Elastic != nil {
		checks["elasticsearch"] = a.Elastic.Ping
	}

	opts := api.RouterOptions{RequestTimeout: config.GetDuration(a.Config.HTTP.RequestTimeout)}
	if a.Config.Metrics.Enabled {
		opts.MetricsPath = a.Config.Metrics.Path
	}

	return api.NewRouter(api.Services{
		Categories: a.Categories,
		Vendors:    a.Vendors,
		Deals:      a.Deals,
		Nearby:     a.Engine,
		Checks:     checks,
	}, opts, a.Logger)
}

// Reindex copies every stored vendor into the search index.
func (a *App) Reindex(ctx context.Context) (int, error) {
	if a.VendorIndex == nil {
		return 0, errors.New("elasticsearch is not enabled")
	}
	vendors, err := a.VendorRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	return a.VendorIndex.Reindex(ctx, vendors)
}

// Close releases every connection. Errors are logged, not returned.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.Postgres != nil {
		if err := a.Postgres.Close(); err != nil {
			a.Logger.Warn("PostgreSQL close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.Obs != nil {
		if err := a.Obs.Shutdown(ctx); err != nil {
			a.Logger.Warn("OpenTelemetry shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
