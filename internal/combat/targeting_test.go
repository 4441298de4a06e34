package combat

import (
	"encoding/json"
	"testing"

	"newomega/server/internal/modules"
)

func mustFleet(t *testing.T, side Side, selection Selection) *Fleet {
	t.Helper()
	fleet, err := BuildFleet(side, selection, nil)
	if err != nil {
		t.Fatalf("build fleet: %v", err)
	}
	return fleet
}

func TestBuildFleetLaysOutLanes(t *testing.T) {
	lhs := mustFleet(t, SideLhs, Selection{2, 0, 1, 3})
	rhs := mustFleet(t, SideRhs, Selection{2, 0, 1, 3})
	for i := 0; i < 4; i++ {
		if lhs.Position(i) != 10+i || rhs.Position(i) != -10-i {
			t.Fatalf("type %d: unexpected positions %d / %d", i, lhs.Position(i), rhs.Position(i))
		}
	}
	if lhs.HP(0) != 240 || lhs.HP(3) != 1350 {
		t.Fatalf("unexpected hp pools %d / %d", lhs.HP(0), lhs.HP(3))
	}
	if lhs.TypeAlive(1) {
		t.Fatalf("expected unfielded type to start destroyed")
	}
	if !lhs.Alive() {
		t.Fatalf("expected fleet alive")
	}
}

func TestResolveTargetReachUsesRangeAndSpeed(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{1, 0, 0, 1})
	enemy := mustFleet(t, SideRhs, Selection{1, 0, 0, 1})

	if _, ok := ResolveTarget(Furthest, 0, own, enemy); ok {
		t.Fatalf("expected stinger to have nothing in reach at the start")
	}
	target, ok := ResolveTarget(Furthest, 3, own, enemy)
	if !ok || target != 3 {
		t.Fatalf("expected hyperion to reach the furthest enemy, got %d (%v)", target, ok)
	}
	target, ok = ResolveTarget(Closest, 3, own, enemy)
	if !ok || target != 0 {
		t.Fatalf("expected closest target 0, got %d (%v)", target, ok)
	}

	own.active[3] = RunningEffect{}.With(modules.RangeDebuff, 1)
	if _, ok := ResolveTarget(Furthest, 3, own, enemy); ok {
		t.Fatalf("expected range debuff to put every enemy out of reach")
	}
}

func TestResolveTargetIgnoresDestroyedTypes(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{0, 0, 0, 1})
	enemy := mustFleet(t, SideRhs, Selection{1, 0, 0, 1})
	enemy.hp[3] = 0
	target, ok := ResolveTarget(Furthest, 3, own, enemy)
	if !ok || target != 0 {
		t.Fatalf("expected the only living type, got %d (%v)", target, ok)
	}
}

func TestResolveTargetTiesPreferLowerIndex(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{0, 0, 0, 1})
	enemy := mustFleet(t, SideRhs, Selection{1, 3, 2, 1})

	cases := []struct {
		policy TargetingPolicy
		want   int
	}{
		{policy: HighestAttack, want: 0},
		{policy: LowestAttack, want: 1},
		{policy: HighestHp, want: 1},
		{policy: LowestHp, want: 0},
		{policy: HighestSpeed, want: 0},
		{policy: LowestSpeed, want: 3},
		{policy: HighestDefence, want: 3},
		{policy: LowestDefence, want: 0},
	}
	for _, tc := range cases {
		got, ok := ResolveTarget(tc.policy, 3, own, enemy)
		if !ok || got != tc.want {
			t.Fatalf("%s: expected %d, got %d (%v)", tc.policy, tc.want, got, ok)
		}
	}

	for i := range enemy.position {
		enemy.position[i] = -10
	}
	if got, _ := ResolveTarget(Closest, 3, own, enemy); got != 0 {
		t.Fatalf("expected distance tie to resolve to 0, got %d", got)
	}
	if got, _ := ResolveTarget(Furthest, 3, own, enemy); got != 0 {
		t.Fatalf("expected distance tie to resolve to 0, got %d", got)
	}
}

func TestResolveTargetUsesEffectiveStats(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{0, 0, 0, 1})
	enemy := mustFleet(t, SideRhs, Selection{1, 0, 0, 1})
	enemy.active[0] = RunningEffect{}.With(modules.AttackDebuff, 1)
	if got, _ := ResolveTarget(HighestAttack, 3, own, enemy); got != 3 {
		t.Fatalf("expected debuffed stinger to lose the attack comparison, got %d", got)
	}
	enemy.active[3] = RunningEffect{}.With(modules.Root, 1)
	if got, _ := ResolveTarget(LowestSpeed, 3, own, enemy); got != 3 {
		t.Fatalf("expected rooted hyperion to have speed 0, got %d", got)
	}
}

func TestEffectiveSpeedUnderEffects(t *testing.T) {
	fleet := mustFleet(t, SideLhs, Selection{1, 1, 1, 1})
	fleet.active[0] = RunningEffect{}.With(modules.Snare, 1)
	fleet.active[1] = RunningEffect{}.With(modules.Blind, 1)
	if fleet.EffectiveSpeed(0) != 2 {
		t.Fatalf("expected snared stinger speed 2, got %d", fleet.EffectiveSpeed(0))
	}
	if fleet.EffectiveSpeed(1) != 0 || !fleet.Incapacitated(1) {
		t.Fatalf("expected blinded icarus to be incapacitated")
	}
	if fleet.EffectiveSpeed(2) != 2 {
		t.Fatalf("expected unaffected scorpio speed 2, got %d", fleet.EffectiveSpeed(2))
	}
}

func TestTargetingPolicyText(t *testing.T) {
	data, err := json.Marshal(struct {
		P TargetingPolicy `json:"p"`
	}{P: HighestDefence})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"p":"HighestDefence"}` {
		t.Fatalf("unexpected encoding %s", data)
	}
	for _, name := range []string{"highest_hp", "HighestHp", "highest-hp"} {
		policy, err := ParseTargetingPolicy(name)
		if err != nil || policy != HighestHp {
			t.Fatalf("%q: expected HighestHp, got %s (%v)", name, policy, err)
		}
	}
	if _, err := ParseTargetingPolicy("Random"); err == nil {
		t.Fatalf("expected unknown policy to fail")
	}
	if _, err := TargetingPolicy(99).MarshalText(); err == nil {
		t.Fatalf("expected invalid policy to refuse encoding")
	}
	if len(TargetingPolicies()) != 10 {
		t.Fatalf("expected 10 policies")
	}
}
