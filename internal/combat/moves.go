package combat

import "newomega/server/internal/modules"

// MoveType tags the variant of a MoveRecord.
type MoveType int

const (
	MoveNoOp MoveType = iota
	MoveAttack
	MoveEffect
)

func (t MoveType) String() string {
	switch t {
	case MoveNoOp:
		return "noop"
	case MoveAttack:
		return "attack"
	case MoveEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// NoTarget marks records that engaged nothing.
const NoTarget = -1

// MoveRecord is one entry of a side's move log. Damage is set only on
// attacks and Channel only on effects. The effect snapshots capture what
// will be in force next round once this move has resolved.
type MoveRecord struct {
	Round          int             `json:"round"`
	Type           MoveType        `json:"move_type"`
	Source         int             `json:"source"`
	Target         int             `json:"target"`
	TargetPosition int             `json:"target_position"`
	Damage         int             `json:"damage"`
	Channel        modules.Channel `json:"channel"`
	EffectsLhs     EffectSet       `json:"effects_lhs"`
	EffectsRhs     EffectSet       `json:"effects_rhs"`
}
