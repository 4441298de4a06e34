package status_effects

import (
	"context"

	"newomega/server/logging"
)

const (
	// EventApplied is emitted when a module lands a status effect on a ship type.
	EventApplied logging.EventType = "status_effects.applied"
)

// AppliedPayload captures details about a status effect application.
type AppliedPayload struct {
	StatusEffect string `json:"statusEffect"`
	Module       string `json:"module,omitempty"`
	Rounds       int    `json:"rounds"`
}

// Applied publishes a status effect application event.
func Applied(ctx context.Context, pub logging.Publisher, round int, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventApplied,
		Round:    round,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEffects,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
