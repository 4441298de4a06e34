// Package proto defines the frames sent over the fight replay stream.
package proto

import (
	"encoding/json"

	"newomega/server/internal/combat"
	"newomega/server/internal/journal"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Frame type identifiers.
const (
	TypeHello    = "hello"
	TypeKeyframe = "keyframe"
	TypeComplete = "complete"
	TypeError    = "error"
)

// HelloFrame opens a stream and announces how many frames follow.
type HelloFrame struct {
	Ver       int    `json:"ver"`
	Type      string `json:"type"`
	FightID   string `json:"fightId"`
	FromRound int    `json:"fromRound"`
	Frames    int    `json:"frames"`
}

// KeyframeFrame carries the state of one round.
type KeyframeFrame struct {
	Ver      int              `json:"ver"`
	Type     string           `json:"type"`
	FightID  string           `json:"fightId"`
	Keyframe journal.Keyframe `json:"keyframe"`
}

// CompleteFrame closes a stream with the verdict.
type CompleteFrame struct {
	Ver      int            `json:"ver"`
	Type     string         `json:"type"`
	FightID  string         `json:"fightId"`
	Outcome  combat.Outcome `json:"outcome"`
	Rounds   int            `json:"rounds"`
	Checksum string         `json:"checksum"`
}

// ErrorFrame reports why a stream cannot continue.
type ErrorFrame struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Envelope is decoded first to dispatch on Type.
type Envelope struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

func EncodeHello(fightID string, from, frames int) ([]byte, error) {
	return json.Marshal(HelloFrame{Ver: Version, Type: TypeHello, FightID: fightID, FromRound: from, Frames: frames})
}

func EncodeKeyframe(fightID string, frame journal.Keyframe) ([]byte, error) {
	return json.Marshal(KeyframeFrame{Ver: Version, Type: TypeKeyframe, FightID: fightID, Keyframe: frame})
}

func EncodeComplete(fightID string, result combat.Result, checksum string) ([]byte, error) {
	return json.Marshal(CompleteFrame{
		Ver:      Version,
		Type:     TypeComplete,
		FightID:  fightID,
		Outcome:  result.Outcome,
		Rounds:   result.Rounds,
		Checksum: checksum,
	})
}

func EncodeError(reason string) ([]byte, error) {
	return json.Marshal(ErrorFrame{Ver: Version, Type: TypeError, Reason: reason})
}

// DecodeEnvelope reads the version and type of a frame.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
