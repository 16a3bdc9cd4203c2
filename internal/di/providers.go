package di

import (
	"context"
	"fmt"

	"VolPulse/internal/dataset"
	"VolPulse/internal/domain/repository"
	"VolPulse/internal/handler/api"
	"VolPulse/internal/handler/ws"
	"VolPulse/internal/usecase"
	"VolPulse/pkg/cache"
	pkgch "VolPulse/pkg/clickhouse"
	"VolPulse/pkg/config"
	xhttp "VolPulse/pkg/http"
	"VolPulse/pkg/logger"
	"VolPulse/pkg/metrics"
	"VolPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the dataset lives
// there; nil for the CSV source so no connection is attempted.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Dataset.Source != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideTableSource selects the configured dataset backend.
func ProvideTableSource(cfg *config.Config, chClient *pkgch.Client) (repository.TableSource, error) {
	switch cfg.Dataset.Source {
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("clickhouse source configured without client")
		}
		return dataset.NewClickHouseSource(chClient.DB(), cfg.ClickHouse.Table), nil
	default:
		return dataset.NewCSVSource(cfg.Dataset.Path, cfg.Dataset.DateColumn), nil
	}
}

// ProvideLoader creates the cached dataset loader. The loader owns its own
// in-memory cache: parsed tables are shared pointers, not serialized values,
// so they never belong in Redis.
func ProvideLoader(source repository.TableSource, m repository.Metrics, log *logger.Logger, cfg *config.Config) repository.Loader {
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(4))
	return dataset.NewCachedLoader(source, mem, m, log, cfg.Dataset.CacheTTL)
}

// ProvideViewCache creates the render-pass view cache: layered over Redis
// when enabled, plain memory otherwise.
func ProvideViewCache(cfg *config.Config, log *logger.Logger) cache.Service {
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err == nil {
			return cache.NewLayeredCache(rc)
		}
		log.Warn("redis unavailable, falling back to memory view cache", logger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideHub creates the websocket push hub.
func ProvideHub(log *logger.Logger) *ws.Hub {
	return ws.NewHub(log)
}

// ProvideController creates the dashboard render-pass orchestrator.
func ProvideController(
	loader repository.Loader,
	m repository.Metrics,
	log *logger.Logger,
	viewCache cache.Service,
	cfg *config.Config,
) *usecase.DashboardController {
	return usecase.NewDashboardController(
		loader, m, log, viewCache,
		cfg.Dashboard.HistogramBins,
		cfg.Dashboard.TablePrecision,
		cfg.Dataset.CacheTTL,
	)
}

// ProvideWatcher creates the dataset change watcher. On change it drops the
// stale view documents and tells open pages to re-fetch.
func ProvideWatcher(
	source repository.TableSource,
	loader repository.Loader,
	viewCache cache.Service,
	hub *ws.Hub,
	log *logger.Logger,
	cfg *config.Config,
) *dataset.Watcher {
	if !cfg.Dataset.WatchEnabled {
		return nil
	}
	onChange := func() {
		if err := viewCache.DeleteByPattern(context.Background(), cache.BuildPattern("view:")); err != nil {
			log.Warn("view cache invalidation failed", logger.Error(err))
		}
		hub.Broadcast("dataset_updated")
	}
	return dataset.NewWatcher(source, loader, cfg.Dataset.WatchInterval, log, onChange)
}

// ProvideHandler creates the Echo route handler.
func ProvideHandler(log *logger.Logger, ctrl *usecase.DashboardController, hub *ws.Hub) xhttp.Handler {
	return api.NewDashboardEchoHandler(log, ctrl, hub)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	loader repository.Loader,
	watcher *dataset.Watcher,
	hub *ws.Hub,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, loader, watcher, hub, handler, chClient)
}
