package combat

import (
	"encoding/json"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

func drawModules(t *rapid.T, label string) []modules.Effect {
	if !rapid.Bool().Draw(t, label+"_fitted") {
		return nil
	}
	channels := modules.Channels()
	choices := append([]modules.Channel{modules.ChannelNone}, channels[:]...)
	mods := make([]modules.Effect, ships.Count)
	for i := range mods {
		channel := rapid.SampledFrom(choices).Draw(t, label+"_channel")
		if channel == modules.ChannelNone {
			continue
		}
		mods[i] = modules.Of(channel, rapid.IntRange(0, modules.MaxPotency).Draw(t, label+"_potency"))
	}
	return mods
}

func drawInput(t *rapid.T) Input {
	return Input{
		SelectionLhs: rapid.SliceOfN(rapid.IntRange(0, 24), ships.Count, ships.Count).Draw(t, "selection_lhs"),
		SelectionRhs: rapid.SliceOfN(rapid.IntRange(0, 24), ships.Count, ships.Count).Draw(t, "selection_rhs"),
		ModulesLhs:   drawModules(t, "modules_lhs"),
		ModulesRhs:   drawModules(t, "modules_rhs"),
		TargetingLhs: rapid.SampledFrom(TargetingPolicies()).Draw(t, "targeting_lhs"),
		TargetingRhs: rapid.SampledFrom(TargetingPolicies()).Draw(t, "targeting_rhs"),
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		in := drawInput(t)
		first, err := Simulate(seed, in)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		second, err := Simulate(seed, in)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected identical results for seed %d", seed)
		}
	})
}

func TestReplayFromEchoedInputReproducesResult(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		original, err := Simulate(seed, drawInput(t))
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded Result
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		replayed, err := Simulate(decoded.Seed, decoded.Input(), WithMaxRounds(decoded.MaxRounds))
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		again, err := json.Marshal(replayed)
		if err != nil {
			t.Fatalf("marshal replay: %v", err)
		}
		if string(data) != string(again) {
			t.Fatalf("replay diverged for seed %d", seed)
		}
	})
}

func TestDamageIsConserved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t)
		engine, err := NewEngine(rapid.Uint64().Draw(t, "seed"), in)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		for engine.Step() {
		}
		result := engine.Result()

		check := func(moves []MoveRecord, selection Selection, enemy *Fleet) {
			var dealt [ships.Count]int
			for _, move := range moves {
				if move.Damage < 0 {
					t.Fatalf("negative damage %+v", move)
				}
				if move.Type != MoveAttack && move.Damage != 0 {
					t.Fatalf("non-attack record carries damage %+v", move)
				}
				if move.Type == MoveAttack {
					dealt[move.Target] += move.Damage
				}
			}
			for i := 0; i < ships.Count; i++ {
				initial := selection[i] * ships.Get(ships.Index(i)).HP
				if enemy.HP(i) != initial-dealt[i] {
					t.Fatalf("type %d: expected hp %d, got %d", i, initial-dealt[i], enemy.HP(i))
				}
				if enemy.HP(i) < 0 {
					t.Fatalf("type %d: negative hp %d", i, enemy.HP(i))
				}
			}
		}
		check(result.LhsMoves, in.SelectionRhs, engine.Fleet(SideRhs))
		check(result.RhsMoves, in.SelectionLhs, engine.Fleet(SideLhs))
	})
}

func TestFightsTerminateWithinCap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t)
		maxRounds := rapid.IntRange(1, DefaultMaxRounds).Draw(t, "max_rounds")
		result, err := Simulate(rapid.Uint64().Draw(t, "seed"), in, WithMaxRounds(maxRounds))
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		if result.Rounds > maxRounds {
			t.Fatalf("expected at most %d rounds, got %d", maxRounds, result.Rounds)
		}
		if result.Rounds < maxRounds && !result.LhsDead && !result.RhsDead {
			t.Fatalf("fight stopped early at round %d with both sides alive", result.Rounds)
		}
		for _, move := range append(append([]MoveRecord{}, result.LhsMoves...), result.RhsMoves...) {
			if move.Round < 1 || move.Round > result.Rounds {
				t.Fatalf("move outside played rounds: %+v", move)
			}
			if move.Type == MoveNoOp && move.Target != NoTarget {
				t.Fatalf("no-op with a target: %+v", move)
			}
			if move.Type == MoveEffect && move.Channel == modules.ChannelNone {
				t.Fatalf("effect without a channel: %+v", move)
			}
		}
		for i := 0; i < ships.Count; i++ {
			if result.ShipsLostLhs[i] < 0 || result.ShipsLostLhs[i] > in.SelectionLhs[i] {
				t.Fatalf("lhs losses out of range: %v", result.ShipsLostLhs)
			}
			if result.ShipsLostRhs[i] < 0 || result.ShipsLostRhs[i] > in.SelectionRhs[i] {
				t.Fatalf("rhs losses out of range: %v", result.ShipsLostRhs)
			}
		}
	})
}

func TestEffectsLastOneRound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t)
		engine, err := NewEngine(rapid.Uint64().Draw(t, "seed"), in)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		for engine.Step() {
			for _, side := range []Side{SideLhs, SideRhs} {
				fleet := engine.Fleet(side)
				if fleet.Pending() != (EffectSet{}) {
					t.Fatalf("expected pending effects cleared between rounds")
				}
				for i := 0; i < ships.Count; i++ {
					for _, channel := range fleet.Active(i).Channels() {
						if fleet.Active(i).Rounds(channel) != 1 {
							t.Fatalf("expected one round remaining on %s", channel)
						}
					}
				}
			}
		}
	})
}
