// Package app wires the relic composition engine's collaborators together
// and runs the HTTP server, the way the teacher's own app package wires its
// simulation hub, logging router, and HTTP handler.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"relicforge/internal/cache"
	relicforgeconfig "relicforge/internal/config"
	"relicforge/internal/engine"
	"relicforge/internal/observability"
	"relicforge/internal/repository"
	"relicforge/internal/repository/postgres"
	"relicforge/internal/telemetry"
	"relicforge/internal/transport"
	"relicforge/logging"
	cachelog "relicforge/logging/cache"
	loggingSinks "relicforge/logging/sinks"
)

// Config is everything Run needs beyond what it reads from the environment.
type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
}

// Run loads relicforgeconfig.Config from the environment, wires the
// repository, cache, engine, logging router, and HTTP transport, and serves
// until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	envCfg, err := relicforgeconfig.Load()
	if err != nil {
		return fmt.Errorf("app: load config: %w", err)
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}
	logConfig := logging.DefaultConfig()
	// Cache stores fire on every uncached compose call and evictions on every
	// maintenance sweep; only its warnings (store failures) pass by default.
	logConfig.CategoryMinSeverity = map[string]logging.Severity{
		logging.CategoryCache: logging.SeverityWarn,
	}
	var namedSinks []logging.NamedSink
	namedSinks = append(namedSinks, logging.NamedSink{
		Name: "console",
		Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console),
	})
	if envCfg.LogJSONPath != "" {
		file, err := os.OpenFile(envCfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("app: open json log file: %w", err)
		}
		defer file.Close()
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logging.ClockFunc(time.Now), logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("app: construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("app: failed to close logging router: %v", cerr)
		}
	}()

	repo, closeRepo, err := buildRepository(ctx, envCfg, telemetryLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	metrics := &logging.Metrics{}

	relicCache := cache.New(cache.ClockFunc(time.Now))
	eng := engine.New(engine.Deps{
		Repo:                repo,
		Cache:               relicCache,
		Rand:                rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:              router,
		Metrics:             telemetry.WrapMetrics(metrics),
		EngineVersion:       envCfg.EngineVersion,
		CompositionTimeout:  envCfg.CompositionTimeout,
		OptimizationTimeout: envCfg.OptimizationTimeout,
		OptimizationEvalCap: envCfg.OptimizationEvalCap,
		CacheTTL:            envCfg.CacheTTL,
	})

	stopCacheMaintenance := runCacheMaintenance(ctx, relicCache, envCfg.CacheMaxSize, router)
	defer stopCacheMaintenance()

	observabilityCfg := cfg.Observability
	observabilityCfg.EnablePprofTrace = observabilityCfg.EnablePprofTrace || envCfg.EnablePprofTrace

	handler := transport.NewHTTPHandler(eng, transport.Config{
		Logger:        fallbackLogger,
		Observability: observabilityCfg,
		Metrics:       metrics,
		Router:        router,
	})

	listenAddr := envCfg.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	srv := &http.Server{Addr: listenAddr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app: server failed: %w", err)
		}
		return nil
	}
}

// cacheMaintenanceInterval is how often runCacheMaintenance sweeps the
// compose cache. Independent of CacheTTL: a long TTL still needs regular
// sweeps, since Lookup skips expired entries but never removes them.
const cacheMaintenanceInterval = time.Minute

// runCacheMaintenance starts a background sweep that enforces the cache's
// expiry and size bound — the periodic counterpart to the per-lookup
// expiry check, since nothing else in the request path ever calls
// CleanupExpired/TrimToSize. It stops when ctx is cancelled or the
// returned func is called.
func runCacheMaintenance(ctx context.Context, c *cache.Cache, maxSize int, pub logging.Publisher) func() {
	if maxSize <= 0 {
		maxSize = cache.DefaultMaxSize
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cacheMaintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				expired := c.CleanupExpired()
				trimmed := c.TrimToSize(maxSize)
				if expired > 0 {
					cachelog.Evicted(ctx, pub, 0, cachelog.EvictedPayload{Count: expired, Reason: "expired"}, nil)
				}
				if trimmed > 0 {
					cachelog.Evicted(ctx, pub, 0, cachelog.EvictedPayload{Count: trimmed, Reason: "trim_to_size"}, nil)
				}
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

// buildRepository selects the Postgres-backed repository when DatabaseURL
// is configured, otherwise the in-memory catalog seeded from CatalogPaths
// (or the built-in defaults when unset). The returned close func releases
// whatever resources were opened.
func buildRepository(ctx context.Context, envCfg relicforgeconfig.Config, logger telemetry.Logger) (repository.Repository, func(), error) {
	if envCfg.DatabaseURL != "" {
		if err := postgres.Migrate(ctx, envCfg.DatabaseURL); err != nil {
			return nil, func() {}, fmt.Errorf("app: run migrations: %w", err)
		}
		repo, err := postgres.Open(ctx, envCfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("app: open postgres repository: %w", err)
		}
		logger.Printf("repository: postgres")
		return repo, repo.Close, nil
	}

	paths := envCfg.CatalogPaths
	if len(paths) == 0 {
		paths = repository.DefaultPaths()
	}
	repo, err := repository.LoadCatalog(paths...)
	if err != nil {
		return nil, func() {}, fmt.Errorf("app: load catalog: %w", err)
	}
	logger.Printf("repository: catalog (%d paths)", len(paths))
	return repo, func() {}, nil
}
