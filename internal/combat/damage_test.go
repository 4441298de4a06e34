package combat

import (
	"testing"

	"newomega/server/internal/modules"
	"newomega/server/internal/rng"
)

func TestVolleyDamage(t *testing.T) {
	cases := []struct {
		name                              string
		attack, defence, count, targetHP int
		want                              int
	}{
		{name: "plain", attack: 100, defence: 40, count: 3, targetHP: 450, want: 180},
		{name: "defence above attack", attack: 30, defence: 40, count: 5, targetHP: 450, want: 0},
		{name: "one kill per ship", attack: 200, defence: 20, count: 2, targetHP: 120, want: 240},
		{name: "no ships", attack: 100, defence: 0, count: 0, targetHP: 120, want: 0},
	}
	for _, tc := range cases {
		if got := volleyDamage(tc.attack, tc.defence, tc.count, tc.targetHP); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestRollDamageAppliesCounterBonus(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{2, 0, 0, 0})
	enemy := mustFleet(t, SideRhs, Selection{0, 0, 0, 1})

	roll := int(rng.NewSource(9).Uniform(20))
	attack := (80 + roll) * 3 / 2
	want := (attack - 40) * 2

	src := rng.NewSource(9)
	if got := rollDamage(src, own, enemy, 0, 3); got != want {
		t.Fatalf("expected countered damage %d, got %d", want, got)
	}
	if src.Draws() != 1 {
		t.Fatalf("expected exactly one draw, got %d", src.Draws())
	}
}

func TestRollDamageUsesDebuffedStats(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{0, 1, 0, 0})
	enemy := mustFleet(t, SideRhs, Selection{0, 0, 1, 0})
	own.active[1] = RunningEffect{}.With(modules.AttackDebuff, 1)
	enemy.active[2] = RunningEffect{}.With(modules.DefenceDebuff, 1)

	roll := int(rng.NewSource(4).Uniform(20))
	want := (65/2 + roll) - 35/2
	if got := rollDamage(rng.NewSource(4), own, enemy, 1, 2); got != want {
		t.Fatalf("expected debuffed damage %d, got %d", want, got)
	}
}

func TestPartiallyDamagedTypeAttacksWithWholeShips(t *testing.T) {
	own := mustFleet(t, SideLhs, Selection{3, 0, 0, 0})
	enemy := mustFleet(t, SideRhs, Selection{0, 1, 0, 0})
	own.hp[0] = 121

	roll := int(rng.NewSource(2).Uniform(20))
	want := (80 + roll - 30) * 2
	if got := rollDamage(rng.NewSource(2), own, enemy, 0, 1); got != want {
		t.Fatalf("expected two ships worth of damage %d, got %d", want, got)
	}
}

func TestTakeDamageClampsToPool(t *testing.T) {
	fleet := mustFleet(t, SideLhs, Selection{1, 0, 0, 0})
	if got := fleet.takeDamage(0, 500); got != 120 {
		t.Fatalf("expected clamped damage 120, got %d", got)
	}
	if fleet.HP(0) != 0 {
		t.Fatalf("expected pool to floor at zero, got %d", fleet.HP(0))
	}
	if got := fleet.takeDamage(0, 10); got != 0 {
		t.Fatalf("expected destroyed type to absorb nothing, got %d", got)
	}
}
