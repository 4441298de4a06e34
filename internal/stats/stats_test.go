package stats

import (
	"testing"

	"newomega/server/internal/combat"
	"newomega/server/internal/modules"
)

func TestSummarizeCountsCommandPower(t *testing.T) {
	result, err := combat.Simulate(1337, combat.Input{
		SelectionLhs: combat.Selection{3, 3, 3, 3},
		SelectionRhs: combat.Selection{16, 16, 16, 16},
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	summary := Summarize(result)

	if summary.Lhs.CPFielded != 54 || summary.Lhs.CPLost != 54 {
		t.Fatalf("expected lhs to field and lose 54 cp, got %d / %d", summary.Lhs.CPFielded, summary.Lhs.CPLost)
	}
	if summary.Rhs.CPFielded != 288 || summary.Rhs.CPLost != 1 {
		t.Fatalf("expected rhs to field 288 and lose 1 cp, got %d / %d", summary.Rhs.CPFielded, summary.Rhs.CPLost)
	}
	if !summary.Lhs.Dead || summary.Rhs.Dead || summary.Outcome != combat.OutcomeRhsWin {
		t.Fatalf("unexpected verdict %+v", summary)
	}
	if summary.Lhs.SurvivingShips != 0 || summary.Rhs.SurvivingShips != 63 {
		t.Fatalf("unexpected survivors %d / %d", summary.Lhs.SurvivingShips, summary.Rhs.SurvivingShips)
	}
	if summary.Rhs.Types[3].DamageDealt != 960+390+660 || summary.Rhs.Types[3].Attacks != 3 {
		t.Fatalf("unexpected hyperion stats %+v", summary.Rhs.Types[3])
	}
	if summary.Lhs.DamageDealt != 141+60+189 {
		t.Fatalf("expected lhs damage 390, got %d", summary.Lhs.DamageDealt)
	}
	if summary.Lhs.Types[0].Idle != 1 || summary.Lhs.Types[0].Name != "Stinger" {
		t.Fatalf("unexpected stinger stats %+v", summary.Lhs.Types[0])
	}
}

func TestSummarizeCountsEffects(t *testing.T) {
	result, err := combat.Simulate(5, combat.Input{
		SelectionLhs: combat.Selection{0, 0, 0, 1},
		SelectionRhs: combat.Selection{0, 0, 0, 1},
		ModulesLhs:   []modules.Effect{{}, {}, {}, modules.Of(modules.Root, 100)},
	}, combat.WithMaxRounds(10))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	summary := Summarize(result)
	if summary.Lhs.EffectsLanded[modules.Root] != 10 {
		t.Fatalf("expected 10 roots landed, got %v", summary.Lhs.EffectsLanded)
	}
	if summary.Rhs.EffectsLanded != nil {
		t.Fatalf("expected rhs to land nothing, got %v", summary.Rhs.EffectsLanded)
	}
	if summary.Rhs.Types[3].Idle != 9 {
		t.Fatalf("expected the rooted hyperion to idle 9 rounds, got %d", summary.Rhs.Types[3].Idle)
	}
	if summary.Side(combat.SideRhs).CPLost != 10 {
		t.Fatalf("expected rhs to lose its hyperion")
	}
}
