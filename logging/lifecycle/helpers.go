package lifecycle

import (
	"context"

	"newomega/server/logging"
)

const (
	// EventFightArchived is emitted when a finished fight is stored.
	EventFightArchived logging.EventType = "lifecycle.fight_archived"
	// EventVerificationFailed is emitted when a stored fight no longer replays to the same result.
	EventVerificationFailed logging.EventType = "lifecycle.verification_failed"
)

// FightArchivedPayload captures where a fight was stored.
type FightArchivedPayload struct {
	Checksum string `json:"checksum"`
	Outcome  string `json:"outcome"`
	Rounds   int    `json:"rounds"`
}

// VerificationFailedPayload captures the replay divergence.
type VerificationFailedPayload struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason"`
}

// FightArchived publishes a fight archive event.
func FightArchived(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload FightArchivedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFightArchived,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// VerificationFailed publishes an error when a replay diverges.
func VerificationFailed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload VerificationFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventVerificationFailed,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
