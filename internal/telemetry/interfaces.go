package telemetry

import (
	"log"

	"relicforge/logging"
)

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the telemetry methods required by server components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapMetrics adapts the logging router metrics into the Metrics interface.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return &metricsAdapter{metrics: metrics}
}

type metricsAdapter struct {
	metrics *logging.Metrics
}

func (m *metricsAdapter) Add(key string, delta uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryAdd(key, delta)
}

func (m *metricsAdapter) Store(key string, value uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryStore(key, value)
}

// EngineCounters gives internal/engine named counters for its five
// operations instead of scattering raw string keys through the façade.
// It is the one place that knows the "engine.<component>.<event>" naming
// convention used across compose/validate/optimize.
type EngineCounters struct {
	metrics Metrics
}

// NewEngineCounters wraps metrics with the engine's counter vocabulary. A
// nil metrics is accepted and every method becomes a no-op, matching the
// nil-safety WrapMetrics already provides.
func NewEngineCounters(metrics Metrics) EngineCounters {
	return EngineCounters{metrics: metrics}
}

// ComposeRequested counts one Compose call, hit or miss.
func (c EngineCounters) ComposeRequested() { c.add("engine.compose.count", 1) }

// ComposeCacheHit counts one Compose call served from the memoization cache.
func (c EngineCounters) ComposeCacheHit() { c.add("engine.compose.cache_hit", 1) }

// ValidationRejected counts one Validate/Compose/Analyze call that failed
// preprocessing.
func (c EngineCounters) ValidationRejected() { c.add("engine.validate.rejected", 1) }

// OptimizeRequested counts one Optimize call.
func (c EngineCounters) OptimizeRequested() { c.add("engine.optimize.count", 1) }

// OptimizeEvaluated records how many candidates the most recent Optimize
// call evaluated before returning.
func (c EngineCounters) OptimizeEvaluated(n int) {
	c.store("engine.optimize.last_evaluated", uint64(n))
}

func (c EngineCounters) add(key string, delta uint64) {
	if c.metrics == nil {
		return
	}
	c.metrics.Add(key, delta)
}

func (c EngineCounters) store(key string, value uint64) {
	if c.metrics == nil {
		return
	}
	c.metrics.Store(key, value)
}
