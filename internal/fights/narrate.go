package fights

import (
	"context"

	"newomega/server/internal/combat"
	"newomega/server/internal/journal"
	"newomega/server/internal/ships"
	"newomega/server/logging"
	combatlog "newomega/server/logging/combat"
	"newomega/server/logging/status_effects"
)

var simulatorRef = logging.EntityRef{ID: "simulator", Kind: logging.EntityKindSystem}

func shipRef(side combat.Side, idx int) logging.EntityRef {
	return logging.ShipTypeRef(side.String(), ships.Index(idx).String())
}

// narrate publishes the events of a finished fight in round order.
func narrate(ctx context.Context, pub logging.Publisher, result combat.Result) {
	combatlog.FightStarted(ctx, pub, simulatorRef, combatlog.FightStartedPayload{
		Seed:         result.Seed,
		SelectionLhs: append([]int(nil), result.SelectionLhs...),
		SelectionRhs: append([]int(nil), result.SelectionRhs...),
		TargetingLhs: result.TargetingLhs.String(),
		TargetingRhs: result.TargetingRhs.String(),
		MaxRounds:    result.MaxRounds,
	}, nil)

	frames := journal.Build(result)
	lhsMoves, rhsMoves := result.LhsMoves, result.RhsMoves
	for round := 1; round <= result.Rounds && round < len(frames); round++ {
		frame := frames[round]
		lhsMoves = narrateRound(ctx, pub, frame, combat.SideLhs, round, lhsMoves)
		rhsMoves = narrateRound(ctx, pub, frame, combat.SideRhs, round, rhsMoves)
		for _, destroyed := range frame.Destroyed {
			fielded := 0
			selection := result.SelectionLhs
			if destroyed.Side == combat.SideRhs {
				selection = result.SelectionRhs
			}
			if destroyed.Type < len(selection) {
				fielded = selection[destroyed.Type]
			}
			combatlog.Destroyed(ctx, pub, round,
				logging.FleetRef(destroyed.Side.Opponent().String()),
				shipRef(destroyed.Side, destroyed.Type),
				combatlog.DestroyedPayload{ShipsLost: fielded}, nil)
		}
	}

	combatlog.FightFinished(ctx, pub, result.Rounds, simulatorRef, combatlog.FightFinishedPayload{
		Outcome:      string(result.Outcome),
		Rounds:       result.Rounds,
		ShipsLostLhs: append([]int(nil), result.ShipsLostLhs...),
		ShipsLostRhs: append([]int(nil), result.ShipsLostRhs...),
	}, nil)
}

func narrateRound(ctx context.Context, pub logging.Publisher, frame journal.Keyframe, side combat.Side, round int, moves []combat.MoveRecord) []combat.MoveRecord {
	enemy := side.Opponent()
	for len(moves) > 0 && moves[0].Round == round {
		move := moves[0]
		moves = moves[1:]
		switch move.Type {
		case combat.MoveAttack:
			combatlog.Attack(ctx, pub, round, shipRef(side, move.Source), shipRef(enemy, move.Target), combatlog.AttackPayload{
				Damage:         move.Damage,
				TargetPosition: move.TargetPosition,
				TargetHP:       frame.Side(enemy).HP[move.Target],
				Countered:      ships.Counters(ships.Index(move.Source), ships.Index(move.Target)),
			}, nil)
		case combat.MoveEffect:
			status_effects.Applied(ctx, pub, round, shipRef(side, move.Source), shipRef(enemy, move.Target), status_effects.AppliedPayload{
				StatusEffect: move.Channel.String(),
				Rounds:       1,
			}, nil)
		}
	}
	return moves
}
