// Package replay pins fight results to a checksum and re-simulates them to
// confirm a recorded log still matches the engine.
package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"newomega/server/internal/combat"
)

// ErrMismatch matches every MismatchError via errors.Is.
var ErrMismatch = errors.New("replay: result mismatch")

// MismatchError reports where a re-simulation diverged from a recorded
// result. Round is zero when the divergence is outside the move logs.
type MismatchError struct {
	Expected string
	Actual   string
	Side     combat.Side
	Round    int
	Field    string
}

func (e *MismatchError) Error() string {
	if e.Round > 0 {
		return fmt.Sprintf("replay: %s moves diverge in round %d (expected %s, got %s)", e.Side, e.Round, shortSum(e.Expected), shortSum(e.Actual))
	}
	return fmt.Sprintf("replay: %s differs (expected %s, got %s)", e.Field, shortSum(e.Expected), shortSum(e.Actual))
}

// Is reports whether target is ErrMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

// Checksum hashes the canonical JSON encoding of result.
func Checksum(result combat.Result) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Verify re-simulates result from its echoed seed and inputs and reports a
// MismatchError when anything differs.
func Verify(result combat.Result) error {
	replayed, err := combat.Simulate(result.Seed, result.Input(), combat.WithMaxRounds(result.MaxRounds))
	if err != nil {
		return fmt.Errorf("replay: re-simulate: %w", err)
	}
	expected, err := Checksum(result)
	if err != nil {
		return err
	}
	actual, err := Checksum(replayed)
	if err != nil {
		return err
	}
	if expected == actual {
		return nil
	}

	mismatch := &MismatchError{Expected: expected, Actual: actual}
	if side, round, ok := firstDivergence(result, replayed); ok {
		mismatch.Side = side
		mismatch.Round = round
		return mismatch
	}
	mismatch.Field = divergentField(result, replayed)
	return mismatch
}

func firstDivergence(recorded, replayed combat.Result) (combat.Side, int, bool) {
	for _, side := range []combat.Side{combat.SideLhs, combat.SideRhs} {
		want, got := recorded.Moves(side), replayed.Moves(side)
		for i := 0; i < len(want) || i < len(got); i++ {
			switch {
			case i >= len(want):
				return side, got[i].Round, true
			case i >= len(got):
				return side, want[i].Round, true
			case !reflect.DeepEqual(want[i], got[i]):
				return side, want[i].Round, true
			}
		}
	}
	return combat.SideLhs, 0, false
}

func divergentField(recorded, replayed combat.Result) string {
	switch {
	case recorded.Rounds != replayed.Rounds:
		return "rounds"
	case recorded.Outcome != replayed.Outcome:
		return "outcome"
	case recorded.LhsDead != replayed.LhsDead || recorded.RhsDead != replayed.RhsDead:
		return "dead flags"
	case !reflect.DeepEqual(recorded.ShipsLostLhs, replayed.ShipsLostLhs) || !reflect.DeepEqual(recorded.ShipsLostRhs, replayed.ShipsLostRhs):
		return "ships lost"
	default:
		return "result"
	}
}

// Report is the verification outcome of one result.
type Report struct {
	Index    int    `json:"index"`
	Checksum string `json:"checksum"`
	Err      error  `json:"-"`
}

// OK reports whether the result replayed identically.
func (r Report) OK() bool {
	return r.Err == nil
}

// VerifyAll verifies results in parallel with at most limit workers (no
// limit when limit <= 0). Per-result failures are reported in the returned
// slice; the error is non-nil only when ctx ends first.
func VerifyAll(ctx context.Context, results []combat.Result, limit int) ([]Report, error) {
	reports := make([]Report, len(results))
	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i := range results {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			report := Report{Index: i}
			report.Checksum, report.Err = Checksum(results[i])
			if report.Err == nil {
				report.Err = Verify(results[i])
			}
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
