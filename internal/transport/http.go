// Package transport exposes the engine's five operations over plain
// net/http, in the teacher's style: one *http.ServeMux, one handler func per
// route, json.Marshal/Decode directly against request/response structs, no
// router framework or middleware chain.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	nethttppprof "net/http/pprof"

	"relicforge/internal/composition"
	"relicforge/internal/engine"
	"relicforge/internal/engineerr"
	"relicforge/internal/observability"
	"relicforge/internal/optimization"
	"relicforge/internal/relic"
	"relicforge/logging"
)

// Config bundles the transport layer's own dependencies.
type Config struct {
	Logger        *log.Logger
	Observability observability.Config
	// Metrics is optional; when set, its snapshot is exposed at /metrics.
	Metrics *logging.Metrics
	// Router is optional; when set, its per-category event counts are
	// exposed alongside the metrics snapshot at /metrics.
	Router *logging.Router
}

type metricsResponse struct {
	Counters         map[string]uint64 `json:"counters,omitempty"`
	EventsTotal      uint64            `json:"events_total,omitempty"`
	EventsDropped    uint64            `json:"events_dropped,omitempty"`
	EventsByCategory map[string]uint64 `json:"events_by_category,omitempty"`
}

// NewHTTPHandler builds the HTTP surface over eng.
func NewHTTPHandler(eng *engine.Engine, cfg Config) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	if cfg.Metrics != nil || cfg.Router != nil {
		mux.HandleFunc("/metrics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
			var resp metricsResponse
			if cfg.Metrics != nil {
				resp.Counters = cfg.Metrics.Snapshot()
			}
			if cfg.Router != nil {
				stats := cfg.Router.Stats()
				resp.EventsTotal = stats.EventsTotal
				resp.EventsDropped = stats.DroppedTotal
				resp.EventsByCategory = stats.EventsByCategory
			}
			writeJSON(w, logger, resp)
		})
	}

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", nethttppprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", nethttppprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", nethttppprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", nethttppprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", nethttppprof.Trace)
	}

	mux.HandleFunc("/compose", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req composeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := eng.Compose(r.Context(), req.RelicIDs, req.Context, engine.ComposeOptions{
			ForceRecalculate: req.ForceRecalculate,
			IncludeBreakdown: req.IncludeBreakdown,
		})
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, logger, composeResponse{
			Result:  out.Result,
			CacheHit: out.CacheHit,
		})
	})

	mux.HandleFunc("/validate", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req validateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		bundle, err := eng.Validate(r.Context(), req.RelicIDs, req.Context, req.Strict)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, logger, bundle)
	})

	mux.HandleFunc("/optimize", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req optimizeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := eng.Optimize(r.Context(), req.CurrentIDs, req.CombatStyle, req.Constraints, req.Preferences, req.Context)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, logger, result)
	})

	mux.HandleFunc("/analyze", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req analyzeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		report, err := eng.Analyze(r.Context(), req.RelicIDs, req.Context)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, logger, report)
	})

	mux.HandleFunc("/compare", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req compareRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := eng.Compare(r.Context(), req.Combinations, req.Context)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, logger, result)
	})

	return mux
}

type composeRequest struct {
	RelicIDs         []string     `json:"relic_ids"`
	Context          relic.Context `json:"context"`
	ForceRecalculate bool         `json:"force_recalculate,omitempty"`
	IncludeBreakdown bool         `json:"include_breakdown,omitempty"`
}

type composeResponse struct {
	Result   composition.Result `json:"result"`
	CacheHit bool               `json:"cache_hit"`
}

type validateRequest struct {
	RelicIDs []string      `json:"relic_ids"`
	Context  relic.Context `json:"context"`
	Strict   bool          `json:"strict,omitempty"`
}

type optimizeRequest struct {
	CurrentIDs  []string                   `json:"current_ids"`
	CombatStyle relic.CombatStyle          `json:"combat_style"`
	Constraints optimization.Constraints   `json:"constraints"`
	Preferences optimization.Preferences   `json:"preferences"`
	Context     relic.Context              `json:"context"`
}

type analyzeRequest struct {
	RelicIDs []string      `json:"relic_ids"`
	Context  relic.Context `json:"context"`
}

type compareRequest struct {
	Combinations [][]string    `json:"combinations"`
	Context      relic.Context `json:"context"`
}

// decodeJSON reads and decodes r.Body into dst, writing a 400 response and
// returning false on failure. An empty body decodes to dst's zero value.
func decodeJSON(w nethttp.ResponseWriter, r *nethttp.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httpError(w, "invalid request body", nethttp.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w nethttp.ResponseWriter, logger *log.Logger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("transport: failed to encode response: %v", err)
		httpError(w, "failed to encode response", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// writeEngineError maps an engineerr.Error to its HTTP status per the
// engine contract; any other error is treated as internal.
func writeEngineError(w nethttp.ResponseWriter, logger *log.Logger, err error) {
	var engErr *engineerr.Error
	if !errors.As(err, &engErr) {
		engErr = engineerr.Internal("transport", err)
	}
	status := statusForCode(engErr.Code)
	data, encErr := json.Marshal(struct {
		Error *engineerr.Error `json:"error"`
	}{Error: engErr})
	if encErr != nil {
		logger.Printf("transport: failed to encode engine error: %v", encErr)
		httpError(w, "internal error", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func statusForCode(code engineerr.Code) int {
	switch code {
	case engineerr.CodeEmptyRelicList,
		engineerr.CodeRelicLimitExceeded,
		engineerr.CodeDuplicateRelics,
		engineerr.CodeInvalidRelicStructure,
		engineerr.CodeInvalidEffectStructure,
		engineerr.CodeInvalidCalculationContext,
		engineerr.CodeSelectionLimitExceeded,
		engineerr.CodeInvalidBuildSize,
		engineerr.CodeInvalidCombatStyle:
		return nethttp.StatusBadRequest
	case engineerr.CodeRelicNotFound:
		return nethttp.StatusNotFound
	case engineerr.CodeInactiveRelics,
		engineerr.CodeConflictingRelics,
		engineerr.CodeCombatStyleIncompatible,
		engineerr.CodeWeaponTypeIncompatible:
		return nethttp.StatusUnprocessableEntity
	case engineerr.CodeCalculationTimeout, engineerr.CodeOptimizationTimeout:
		return nethttp.StatusGatewayTimeout
	default:
		return nethttp.StatusInternalServerError
	}
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
