// Package stats condenses a fight result into the per-side numbers shown on
// the post-battle screen.
package stats

import (
	"newomega/server/internal/combat"
	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// TypeStats aggregates one ship type of one side.
type TypeStats struct {
	Name        string `json:"name"`
	Fielded     int    `json:"fielded"`
	Lost        int    `json:"lost"`
	DamageDealt int    `json:"damage_dealt"`
	Attacks     int    `json:"attacks"`
	Idle        int    `json:"idle"`
}

// SideSummary aggregates one fleet.
type SideSummary struct {
	CPFielded      int                     `json:"cp_fielded"`
	CPLost         int                     `json:"cp_lost"`
	DamageDealt    int                     `json:"damage_dealt"`
	EffectsLanded  map[modules.Channel]int `json:"effects_landed,omitempty"`
	Types          [ships.Count]TypeStats  `json:"types"`
	Dead           bool                    `json:"dead"`
	SurvivingShips int                     `json:"surviving_ships"`
}

// Summary is the condensed view of a result.
type Summary struct {
	Rounds  int            `json:"rounds"`
	Outcome combat.Outcome `json:"outcome"`
	Lhs     SideSummary    `json:"lhs"`
	Rhs     SideSummary    `json:"rhs"`
}

// Side returns the summary of side.
func (s Summary) Side(side combat.Side) SideSummary {
	if side == combat.SideRhs {
		return s.Rhs
	}
	return s.Lhs
}

// Summarize derives a Summary from result. It reads only the echoed inputs,
// the move logs and the loss vectors.
func Summarize(result combat.Result) Summary {
	return Summary{
		Rounds:  result.Rounds,
		Outcome: result.Outcome,
		Lhs:     summarizeSide(result.SelectionLhs, result.ShipsLostLhs, result.LhsMoves, result.LhsDead),
		Rhs:     summarizeSide(result.SelectionRhs, result.ShipsLostRhs, result.RhsMoves, result.RhsDead),
	}
}

func summarizeSide(selection combat.Selection, lost []int, moves []combat.MoveRecord, dead bool) SideSummary {
	summary := SideSummary{Dead: dead}
	for idx := 0; idx < ships.Count; idx++ {
		def := ships.Get(ships.Index(idx))
		entry := TypeStats{Name: def.Name}
		if idx < len(selection) {
			entry.Fielded = selection[idx]
		}
		if idx < len(lost) {
			entry.Lost = lost[idx]
		}
		summary.CPFielded += entry.Fielded * def.CP
		summary.CPLost += entry.Lost * def.CP
		summary.SurvivingShips += entry.Fielded - entry.Lost
		summary.Types[idx] = entry
	}

	for _, move := range moves {
		if move.Source < 0 || move.Source >= ships.Count {
			continue
		}
		entry := &summary.Types[move.Source]
		switch move.Type {
		case combat.MoveAttack:
			entry.Attacks++
			entry.DamageDealt += move.Damage
			summary.DamageDealt += move.Damage
		case combat.MoveNoOp:
			entry.Idle++
		case combat.MoveEffect:
			if summary.EffectsLanded == nil {
				summary.EffectsLanded = make(map[modules.Channel]int)
			}
			summary.EffectsLanded[move.Channel]++
		}
	}
	return summary
}
