// Package cache publishes structured events for the memoization cache.
package cache

import (
	"context"

	"relicforge/logging"
)

const (
	// EventStored is emitted when a composition result is stored.
	EventStored logging.EventType = "cache.stored"
	// EventEvicted is emitted when entries are trimmed or expired.
	EventEvicted logging.EventType = "cache.evicted"
	// EventStoreFailed is emitted when a store attempt is suppressed.
	EventStoreFailed logging.EventType = "cache.store_failed"
)

// StoredPayload captures a newly stored entry.
type StoredPayload struct {
	Key       string `json:"key"`
	TTLMillis int64  `json:"ttlMillis"`
}

// EvictedPayload captures how many entries were removed and why.
type EvictedPayload struct {
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// StoreFailedPayload captures a suppressed store failure.
type StoreFailedPayload struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Stored publishes a cache-store event.
func Stored(ctx context.Context, pub logging.Publisher, seq uint64, payload StoredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStored,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindCacheEntry, ID: payload.Key},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCache,
		Payload:  payload,
		Extra:    extra,
	})
}

// Evicted publishes a cache-eviction event.
func Evicted(ctx context.Context, pub logging.Publisher, seq uint64, payload EvictedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEvicted,
		Seq:      seq,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCache,
		Payload:  payload,
		Extra:    extra,
	})
}

// StoreFailed publishes a suppressed cache-store-failure event.
func StoreFailed(ctx context.Context, pub logging.Publisher, seq uint64, payload StoreFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStoreFailed,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindCacheEntry, ID: payload.Key},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCache,
		Payload:  payload,
		Extra:    extra,
	})
}
