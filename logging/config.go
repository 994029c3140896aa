package logging

import "time"

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration

	// CategoryMinSeverity overrides MinimumSeverity per engine category
	// (CategoryComposition, CategoryCache, CategoryValidation,
	// CategoryOptimization, CategorySystem). Cache stores fire on every
	// uncached compose and evictions on every sweep; composition/optimization rejections
	// and timeouts are comparatively rare and worth keeping visible. A
	// category with no entry falls back to MinimumSeverity.
	CategoryMinSeverity map[string]Severity
}

type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// MinSeverityFor resolves the effective minimum severity for category,
// falling back to MinimumSeverity when no override is configured.
func (c Config) MinSeverityFor(category string) Severity {
	if sev, ok := c.CategoryMinSeverity[category]; ok {
		return sev
	}
	return c.MinimumSeverity
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
