package journal

import (
	"newomega/server/internal/combat"
	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// Build walks the move logs of result and returns one keyframe for the
// deployment plus one per round played.
func Build(result combat.Result) []Keyframe {
	j := New(0)
	Replay(j, result)
	return j.Keyframes()
}

// Replay records the keyframes of result into j.
func Replay(j *Journal, result combat.Result) {
	current := Keyframe{
		Lhs: openingState(combat.SideLhs, result.SelectionLhs),
		Rhs: openingState(combat.SideRhs, result.SelectionRhs),
	}
	j.RecordKeyframe(current)

	lhsMoves, rhsMoves := result.LhsMoves, result.RhsMoves
	for round := 1; round <= result.Rounds; round++ {
		next := Keyframe{Round: round, Lhs: current.Lhs, Rhs: current.Rhs}
		next.Lhs.Effects, next.Rhs.Effects = combat.EffectSet{}, combat.EffectSet{}
		next.Lhs.DamageDealt, next.Rhs.DamageDealt = 0, 0

		lhsMoves = applyRound(&next, combat.SideLhs, round, lhsMoves)
		rhsMoves = applyRound(&next, combat.SideRhs, round, rhsMoves)

		for _, side := range []combat.Side{combat.SideLhs, combat.SideRhs} {
			before, after := current.Side(side), sideState(&next, side)
			for idx := 0; idx < ships.Count; idx++ {
				after.Ships[idx] = ships.ShipsFromHP(ships.Index(idx), after.HP[idx])
				if before.HP[idx] > 0 && after.HP[idx] <= 0 {
					next.Destroyed = append(next.Destroyed, Destruction{Side: side, Type: idx})
				}
			}
		}
		j.RecordKeyframe(next)
		current = next
	}
}

func applyRound(frame *Keyframe, side combat.Side, round int, moves []combat.MoveRecord) []combat.MoveRecord {
	own, enemy := sideState(frame, side), sideState(frame, side.Opponent())
	for len(moves) > 0 && moves[0].Round == round {
		move := moves[0]
		moves = moves[1:]
		own.Positions[move.Source] = move.TargetPosition
		switch move.Type {
		case combat.MoveAttack:
			enemy.HP[move.Target] -= move.Damage
			own.DamageDealt += move.Damage
		case combat.MoveEffect:
			enemy.Effects[move.Target] = enemy.Effects[move.Target].With(move.Channel, 1)
			frame.Applied = append(frame.Applied, Application{
				Side:    side.Opponent(),
				Source:  move.Source,
				Target:  move.Target,
				Channel: move.Channel,
			})
		}
	}
	return moves
}

func sideState(frame *Keyframe, side combat.Side) *SideState {
	if side == combat.SideRhs {
		return &frame.Rhs
	}
	return &frame.Lhs
}

func openingState(side combat.Side, selection combat.Selection) SideState {
	state := SideState{Positions: combat.StartPositions(side)}
	for idx := 0; idx < ships.Count && idx < len(selection); idx++ {
		state.Ships[idx] = selection[idx]
		state.HP[idx] = selection[idx] * ships.Get(ships.Index(idx)).HP
	}
	return state
}

// Applications lists every status effect landed during the fight.
func Applications(frames []Keyframe) []Application {
	var out []Application
	for _, frame := range frames {
		out = append(out, frame.Applied...)
	}
	return out
}

// ChannelCounts tallies applications by channel.
func ChannelCounts(frames []Keyframe) map[modules.Channel]int {
	counts := make(map[modules.Channel]int)
	for _, application := range Applications(frames) {
		counts[application.Channel]++
	}
	return counts
}
