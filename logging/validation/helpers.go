// Package validation publishes structured events for the relic validation
// service.
package validation

import (
	"context"

	"relicforge/logging"
)

const (
	// EventRejected is emitted when a relic selection fails validation.
	EventRejected logging.EventType = "validation.rejected"
	// EventWarned is emitted when validation succeeds with warnings.
	EventWarned logging.EventType = "validation.warned"
)

// RejectedPayload captures why a selection was rejected.
type RejectedPayload struct {
	Code    string   `json:"code"`
	RelicID string   `json:"relicId,omitempty"`
	Details []string `json:"details,omitempty"`
}

// WarnedPayload captures non-fatal validation warnings.
type WarnedPayload struct {
	Warnings []string `json:"warnings"`
}

// Rejected publishes a validation rejection event.
func Rejected(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload RejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRejected,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryValidation,
		Payload:  payload,
		Extra:    extra,
	})
}

// Warned publishes a validation-warnings event.
func Warned(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload WarnedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWarned,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryValidation,
		Payload:  payload,
		Extra:    extra,
	})
}
