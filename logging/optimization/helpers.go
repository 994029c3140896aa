// Package optimization publishes structured events for the build
// optimization service.
package optimization

import (
	"context"

	"relicforge/logging"
)

const (
	// EventCandidateSkipped is emitted when a candidate fails composition.
	EventCandidateSkipped logging.EventType = "optimization.candidate_skipped"
	// EventTimeout is emitted when the optimization budget is exhausted.
	EventTimeout logging.EventType = "optimization.timeout"
	// EventSuggested is emitted once per suggestion returned to the caller.
	EventSuggested logging.EventType = "optimization.suggested"
)

// CandidateSkippedPayload captures why a candidate was dropped.
type CandidateSkippedPayload struct {
	RelicIDs []string `json:"relicIds"`
	Reason   string   `json:"reason"`
}

// TimeoutPayload captures how many candidates were evaluated before timeout.
type TimeoutPayload struct {
	Evaluated int `json:"evaluated"`
}

// SuggestedPayload captures a single emitted suggestion.
type SuggestedPayload struct {
	RelicIDs    []string `json:"relicIds"`
	Improvement float64  `json:"improvement"`
	Confidence  float64  `json:"confidence"`
}

// CandidateSkipped publishes a skipped-candidate event.
func CandidateSkipped(ctx context.Context, pub logging.Publisher, seq uint64, payload CandidateSkippedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCandidateSkipped,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindCandidate},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryOptimization,
		Payload:  payload,
		Extra:    extra,
	})
}

// Timeout publishes an optimization-timeout event.
func Timeout(ctx context.Context, pub logging.Publisher, seq uint64, payload TimeoutPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTimeout,
		Seq:      seq,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryOptimization,
		Payload:  payload,
		Extra:    extra,
	})
}

// Suggested publishes a suggestion event.
func Suggested(ctx context.Context, pub logging.Publisher, seq uint64, payload SuggestedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSuggested,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindCandidate},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryOptimization,
		Payload:  payload,
		Extra:    extra,
	})
}
