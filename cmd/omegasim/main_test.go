package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"newomega/server/internal/combat"
	"newomega/server/internal/stats"
)

func TestRunPrintsResult(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-seed", "0"}, strings.NewReader(`{"selection_lhs":[1,0,0,0],"selection_rhs":[1,0,0,0]}`), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr.String())
	}
	var result combat.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Seed != 0 || result.Rounds != 4 || result.Outcome != combat.OutcomeDraw {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunPrintsSummary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-summary"}, strings.NewReader(`{"seed":1337,"selection_lhs":[3,3,3,3],"selection_rhs":[16,16,16,16]}`), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr.String())
	}
	var summary stats.Summary
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Outcome != combat.OutcomeRhsWin || summary.Lhs.CPLost != 54 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunExitsTwoOnInvalidInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`{"selection_lhs":[1,0,0,0],"selection_rhs":[1,0,0,0],"max_rounds":-1}`), &stdout, &stderr)
	if code != exitInvalid {
		t.Fatalf("expected exit 2, got %d", code)
	}
	code = run(nil, strings.NewReader(`not json`), &stdout, &stderr)
	if code != exitInvalid {
		t.Fatalf("expected exit 2 for malformed input, got %d", code)
	}
}

func TestRunVerifiesRecordedResult(t *testing.T) {
	result, err := combat.Simulate(7, combat.Input{
		SelectionLhs: combat.Selection{1, 0, 0, 0},
		SelectionRhs: combat.Selection{10, 27, 43, 15},
		TargetingLhs: combat.Closest,
		TargetingRhs: combat.Closest,
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	recorded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-verify"}, bytes.NewReader(recorded), &stdout, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr.String())
	}
	if want := "ok 56bf4d24ae38c4ed06a28e70a46b52b39150d3fe77c6350b3f0a12c184b41ff3\n"; stdout.String() != want {
		t.Fatalf("expected %q, got %q", want, stdout.String())
	}

	result.RhsMoves[0].Damage++
	tampered, _ := json.Marshal(result)
	stdout.Reset()
	if code := run([]string{"-verify"}, bytes.NewReader(tampered), &stdout, &stderr); code != exitFailure {
		t.Fatalf("expected exit 1 for tampered result, got %d", code)
	}
}
