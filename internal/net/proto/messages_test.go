package proto

import (
	"encoding/json"
	"testing"

	"newomega/server/internal/combat"
	"newomega/server/internal/journal"
)

func TestEncodeKeyframeRoundTrips(t *testing.T) {
	frame := journal.Keyframe{Round: 2, Destroyed: []journal.Destruction{{Side: combat.SideRhs, Type: 1}}}
	frame.Lhs.HP[3] = 120

	data, err := EncodeKeyframe("abc", frame)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil || env.Type != TypeKeyframe || env.Ver != Version {
		t.Fatalf("unexpected envelope %+v (%v)", env, err)
	}

	var decoded KeyframeFrame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.FightID != "abc" || decoded.Keyframe.Round != 2 || decoded.Keyframe.Lhs.HP[3] != 120 {
		t.Fatalf("unexpected frame %+v", decoded)
	}
	if len(decoded.Keyframe.Destroyed) != 1 || decoded.Keyframe.Destroyed[0].Side != combat.SideRhs {
		t.Fatalf("expected destruction to survive encoding, got %+v", decoded.Keyframe.Destroyed)
	}
}

func TestEncodeCompleteCarriesVerdict(t *testing.T) {
	data, err := EncodeComplete("abc", combat.Result{Outcome: combat.OutcomeRhsWin, Rounds: 3}, "sum")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded CompleteFrame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != TypeComplete || decoded.Outcome != combat.OutcomeRhsWin || decoded.Rounds != 3 || decoded.Checksum != "sum" {
		t.Fatalf("unexpected frame %+v", decoded)
	}
}
