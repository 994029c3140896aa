// Package config binds the server's environment-variable tunables into one
// typed struct, the way the retrieved fracturing.space repo's passkey
// package does, rather than this codebase's own ad hoc os.Getenv/strconv
// pairs scattered through main — the expanded engine has a dozen tunables
// (timeouts, cache TTL/cap, optimization budget, engine version, listen
// address, database DSN) instead of two.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is every environment-driven setting cmd/server reads at startup.
type Config struct {
	// ListenAddr is the address the HTTP transport binds.
	ListenAddr string `env:"RELICFORGE_LISTEN_ADDR" envDefault:":8080"`

	// DatabaseURL, when set, selects the Postgres-backed repository over the
	// in-memory catalog. Empty means "use the JSON catalog seed."
	DatabaseURL string `env:"RELICFORGE_DATABASE_URL"`

	// CatalogPaths lists JSON catalog seed files to merge, in order, when
	// DatabaseURL is unset. Later files override earlier ones by relic id.
	CatalogPaths []string `env:"RELICFORGE_CATALOG_PATHS" envSeparator:","`

	// EngineVersion is stamped into every cache entry; bumping it
	// invalidates all prior memoized results.
	EngineVersion string `env:"RELICFORGE_ENGINE_VERSION" envDefault:"v1"`

	// CompositionTimeout bounds a single compose/analyze/compare call.
	CompositionTimeout time.Duration `env:"RELICFORGE_COMPOSITION_TIMEOUT" envDefault:"5s"`

	// OptimizationTimeout bounds a single optimize call's wall-clock budget.
	OptimizationTimeout time.Duration `env:"RELICFORGE_OPTIMIZATION_TIMEOUT" envDefault:"10s"`

	// OptimizationEvalCap bounds the number of candidates optimize will
	// evaluate regardless of remaining budget.
	OptimizationEvalCap int `env:"RELICFORGE_OPTIMIZATION_EVAL_CAP" envDefault:"1000"`

	// CacheTTL is the lifetime a memoized composition result gets by default.
	CacheTTL time.Duration `env:"RELICFORGE_CACHE_TTL" envDefault:"1h"`

	// CacheMaxSize is the entry count trim_to_size enforces.
	CacheMaxSize int `env:"RELICFORGE_CACHE_MAX_SIZE" envDefault:"10000"`

	// LogJSONPath, when set, enables the structured JSON log sink in
	// addition to the console sink.
	LogJSONPath string `env:"RELICFORGE_LOG_JSON_PATH"`

	// EnablePprofTrace mounts net/http/pprof's handlers on the transport
	// listener. Local profiling only.
	EnablePprofTrace bool `env:"RELICFORGE_ENABLE_PPROF_TRACE" envDefault:"false"`
}

// Load parses Config from the process environment, applying the envDefault
// tags above for anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.CatalogPaths) == 0 {
		cfg.CatalogPaths = nil
	}
	return cfg, nil
}
