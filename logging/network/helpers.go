package network

import (
	"context"

	"newomega/server/logging"
)

const (
	// EventReplayStreamOpened is emitted when a client subscribes to a fight replay.
	EventReplayStreamOpened logging.EventType = "network.replay_stream_opened"
	// EventReplayStreamClosed is emitted when a replay stream ends.
	EventReplayStreamClosed logging.EventType = "network.replay_stream_closed"
)

// ReplayStreamPayload captures stream progress.
type ReplayStreamPayload struct {
	FromRound int    `json:"fromRound"`
	Frames    int    `json:"frames"`
	Reason    string `json:"reason,omitempty"`
}

// ReplayStreamOpened publishes a debug event when a replay stream starts.
func ReplayStreamOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ReplayStreamPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventReplayStreamOpened,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ReplayStreamClosed publishes an event when a replay stream ends. Abnormal
// closes are reported as warnings.
func ReplayStreamClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ReplayStreamPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	severity := logging.SeverityDebug
	if payload.Reason != "" {
		severity = logging.SeverityWarn
	}
	event := logging.Event{
		Type:     EventReplayStreamClosed,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
