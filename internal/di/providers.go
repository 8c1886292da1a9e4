package di

import (
	"fmt"
	"time"

	"EngineMirror/internal/domain/repository"
	"EngineMirror/internal/handler/api"
	"EngineMirror/internal/poller"
	"EngineMirror/internal/usecase"
	"EngineMirror/pkg/cache"
	"EngineMirror/pkg/config"
	xhttp "EngineMirror/pkg/http"
	applogger "EngineMirror/pkg/logger"
	"EngineMirror/pkg/metrics"
	"EngineMirror/pkg/server"
	"EngineMirror/pkg/trace"
)

// Core is everything needed to mirror the engine without serving it.
type Core struct {
	Logger    *applogger.Logger
	Store     *usecase.Store
	Scheduler *poller.Scheduler
}

// ProvideLogger builds the application logger with repeat suppression.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logger.AggregateInterval > 0 {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logger.AggregateInterval,
			CountThreshold: 1000,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return repository.NopMetrics{}
	}
	return metrics.New(nil)
}

func ProvideSpecs(cfg *config.Config) []poller.Spec {
	return poller.SpecsFromConfig(cfg)
}

// ProvideFetcher builds the endpoint client and wraps it with tracing when
// enabled.
func ProvideFetcher(cfg *config.Config, l *applogger.Logger) (poller.Fetcher, error) {
	if err := trace.Init(trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Output:      cfg.Tracing.Output,
	}); err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	client := xhttp.NewClient(
		xhttp.WithTimeout(0),
		xhttp.WithUserAgent(cfg.Backend.UserAgent),
	)
	ec := poller.NewEndpointClient(cfg.Backend.BaseURL, client)
	return poller.WithTracing(ec, l), nil
}

func ProvideStore(cfg *config.Config, specs []poller.Spec, m repository.Metrics) *usecase.Store {
	return usecase.NewStore(usecase.NewLogTailer(cfg.Logs.MaxLines), m, poller.Cadences(specs))
}

func ProvideScheduler(
	specs []poller.Spec,
	fetcher poller.Fetcher,
	store *usecase.Store,
	m repository.Metrics,
	l *applogger.Logger,
) (*poller.Scheduler, error) {
	return poller.NewScheduler(specs, fetcher, store,
		poller.WithLogger(l.With(applogger.String("component", "scheduler"))),
		poller.WithMetrics(m),
	)
}

func ProvideCore(l *applogger.Logger, store *usecase.Store, s *poller.Scheduler) *Core {
	return &Core{Logger: l, Store: store, Scheduler: s}
}

// ProvideCache returns the encoded-snapshot cache: memory only, or memory
// in front of Redis. An unreachable Redis degrades to memory only.
func ProvideCache(cfg *config.Config, l *applogger.Logger) cache.Service {
	memOpts := []cache.MemoryOption{cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)}
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(memOpts...)
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 5*time.Second),
	)
	if err != nil {
		l.Warn("redis unavailable, using memory cache", applogger.Error(err))
		return cache.NewMemoryCache(memOpts...)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredL1TTL(cfg.Cache.SnapshotTTL),
	)
}

func ProvideHandler(cfg *config.Config, l *applogger.Logger, core *Core, c cache.Service) *api.MirrorHandler {
	return api.NewMirrorHandler(l.With(applogger.String("component", "api")), core.Store, core.Scheduler, c, api.HandlerConfig{
		SnapshotTTL:   cfg.Cache.SnapshotTTL,
		RefreshPerMin: cfg.Server.RefreshPerMin,
	})
}

func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.MirrorHandler) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(path),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, core *Core, srv *xhttp.Server, c cache.Service) *server.App {
	return server.New(cfg, core.Logger, core.Scheduler, srv, c)
}
