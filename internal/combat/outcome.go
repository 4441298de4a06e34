package combat

import (
	"fmt"

	"newomega/server/internal/modules"
)

// Outcome is the verdict of a finished fight.
type Outcome string

const (
	OutcomeLhsWin Outcome = "lhs_win"
	OutcomeRhsWin Outcome = "rhs_win"
	OutcomeDraw   Outcome = "draw"
)

// UnmarshalText rejects unknown verdicts.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch value := Outcome(text); value {
	case OutcomeLhsWin, OutcomeRhsWin, OutcomeDraw:
		*o = value
		return nil
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
}

// Result is the complete, self-describing record of one fight. Replaying the
// echoed inputs with the same seed reproduces it exactly.
type Result struct {
	Seed         uint64           `json:"seed"`
	MaxRounds    int              `json:"max_rounds"`
	SelectionLhs Selection        `json:"selection_lhs"`
	SelectionRhs Selection        `json:"selection_rhs"`
	ModulesLhs   []modules.Effect `json:"modules_lhs"`
	ModulesRhs   []modules.Effect `json:"modules_rhs"`
	TargetingLhs TargetingPolicy  `json:"targeting_lhs"`
	TargetingRhs TargetingPolicy  `json:"targeting_rhs"`
	LhsMoves     []MoveRecord     `json:"lhs_moves"`
	RhsMoves     []MoveRecord     `json:"rhs_moves"`
	ShipsLostLhs []int            `json:"ships_lost_lhs"`
	ShipsLostRhs []int            `json:"ships_lost_rhs"`
	LhsDead      bool             `json:"lhs_dead"`
	RhsDead      bool             `json:"rhs_dead"`
	Outcome      Outcome          `json:"outcome"`
	Rounds       int              `json:"rounds"`
}

// Input reconstructs the fight description echoed in the result.
func (r Result) Input() Input {
	return Input{
		SelectionLhs: r.SelectionLhs,
		SelectionRhs: r.SelectionRhs,
		ModulesLhs:   r.ModulesLhs,
		ModulesRhs:   r.ModulesRhs,
		TargetingLhs: r.TargetingLhs,
		TargetingRhs: r.TargetingRhs,
	}
}

// Moves returns the log of side.
func (r Result) Moves(side Side) []MoveRecord {
	if side == SideRhs {
		return r.RhsMoves
	}
	return r.LhsMoves
}

// Evaluate derives losses, death flags and the verdict from final fleet
// state. Mutual annihilation and the round cap both yield a draw; only the
// former sets the death flags. It does not modify its arguments.
func Evaluate(lhs, rhs *Fleet, lhsMoves, rhsMoves []MoveRecord, rounds int) Result {
	result := Result{
		LhsMoves:     nonNilMoves(lhsMoves),
		RhsMoves:     nonNilMoves(rhsMoves),
		ShipsLostLhs: lhs.Lost(),
		ShipsLostRhs: rhs.Lost(),
		LhsDead:      !lhs.Alive(),
		RhsDead:      !rhs.Alive(),
		Rounds:       rounds,
	}
	switch {
	case result.RhsDead && !result.LhsDead:
		result.Outcome = OutcomeLhsWin
	case result.LhsDead && !result.RhsDead:
		result.Outcome = OutcomeRhsWin
	default:
		result.Outcome = OutcomeDraw
	}
	return result
}

func nonNilMoves(moves []MoveRecord) []MoveRecord {
	if moves == nil {
		return []MoveRecord{}
	}
	return moves
}
