// Package composition publishes structured events for the composition
// engine, mirroring the shape of this codebase's other per-domain logging
// helper packages (one typed payload struct and one publish function per
// event).
package composition

import (
	"context"

	"relicforge/logging"
)

const (
	// EventComposed is emitted when a composition completes successfully.
	EventComposed logging.EventType = "composition.composed"
	// EventTimeout is emitted when composition exceeds its deadline.
	EventTimeout logging.EventType = "composition.timeout"
	// EventCacheHit is emitted when composition short-circuits on a cache hit.
	EventCacheHit logging.EventType = "composition.cache_hit"
)

// ComposedPayload captures the outcome of a completed composition.
type ComposedPayload struct {
	RelicCount       int     `json:"relicCount"`
	TotalMultiplier  float64 `json:"totalMultiplier"`
	StackingBonuses  int     `json:"stackingBonuses"`
	ConditionalCount int     `json:"conditionalCount"`
	DurationMillis   int64   `json:"durationMillis"`
}

// TimeoutPayload captures the budget that was exceeded.
type TimeoutPayload struct {
	DeadlineMillis int64 `json:"deadlineMillis"`
}

// CacheHitPayload captures the key that resolved to a cached result.
type CacheHitPayload struct {
	Key      string `json:"key"`
	HitCount uint64 `json:"hitCount"`
}

// Composed publishes a successful composition event.
func Composed(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload ComposedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventComposed,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryComposition,
		Payload:  payload,
		Extra:    extra,
	})
}

// Timeout publishes a composition timeout event.
func Timeout(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload TimeoutPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTimeout,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryComposition,
		Payload:  payload,
		Extra:    extra,
	})
}

// CacheHit publishes a composition cache-hit event.
func CacheHit(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload CacheHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCacheHit,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryComposition,
		Payload:  payload,
		Extra:    extra,
	})
}
