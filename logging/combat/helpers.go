package combat

import (
	"context"

	"newomega/server/logging"
)

const (
	// EventFightStarted is emitted once both fleets are deployed.
	EventFightStarted logging.EventType = "combat.fight_started"
	// EventAttack is emitted when a ship type deals damage to an enemy type.
	EventAttack logging.EventType = "combat.attack"
	// EventDestroyed is emitted when the last ship of a type is lost.
	EventDestroyed logging.EventType = "combat.destroyed"
	// EventFightFinished is emitted after the final round.
	EventFightFinished logging.EventType = "combat.fight_finished"
)

// FightStartedPayload captures the deployed fleets.
type FightStartedPayload struct {
	Seed         uint64 `json:"seed"`
	SelectionLhs []int  `json:"selectionLhs"`
	SelectionRhs []int  `json:"selectionRhs"`
	TargetingLhs string `json:"targetingLhs"`
	TargetingRhs string `json:"targetingRhs"`
	MaxRounds    int    `json:"maxRounds"`
}

// AttackPayload captures a single volley.
type AttackPayload struct {
	Damage         int  `json:"damage"`
	TargetPosition int  `json:"targetPosition"`
	TargetHP       int  `json:"targetHp"`
	Countered      bool `json:"countered,omitempty"`
}

// DestroyedPayload describes the type that was wiped out.
type DestroyedPayload struct {
	ShipsLost int `json:"shipsLost"`
}

// FightFinishedPayload captures the verdict.
type FightFinishedPayload struct {
	Outcome      string `json:"outcome"`
	Rounds       int    `json:"rounds"`
	ShipsLostLhs []int  `json:"shipsLostLhs"`
	ShipsLostRhs []int  `json:"shipsLostRhs"`
}

// FightStarted publishes the opening event of a fight.
func FightStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload FightStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFightStarted,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Attack publishes a damage event for a single target type.
func Attack(ctx context.Context, pub logging.Publisher, round int, actor logging.EntityRef, target logging.EntityRef, payload AttackPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventAttack,
		Round:    round,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Destroyed publishes the loss of an entire ship type.
func Destroyed(ctx context.Context, pub logging.Publisher, round int, actor logging.EntityRef, target logging.EntityRef, payload DestroyedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDestroyed,
		Round:    round,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// FightFinished publishes the closing event of a fight.
func FightFinished(ctx context.Context, pub logging.Publisher, round int, actor logging.EntityRef, payload FightFinishedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFightFinished,
		Round:    round,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
