// Package journal rebuilds per-round keyframes from a finished fight so
// playback clients can seek without re-running the engine.
package journal

import (
	"sync"

	"newomega/server/internal/combat"
	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// SideState is one fleet at the end of a round.
type SideState struct {
	HP        [ships.Count]int `json:"hp"`
	Ships     [ships.Count]int `json:"ships"`
	Positions [ships.Count]int `json:"positions"`
	// Effects are the channels in force during the following round.
	Effects combat.EffectSet `json:"effects"`
	// DamageDealt is the damage this side inflicted during the round.
	DamageDealt int `json:"damage_dealt"`
}

// Destruction marks a ship type wiped out during a round.
type Destruction struct {
	Side combat.Side `json:"side"`
	Type int         `json:"type"`
}

// Application records a status effect landing on a ship type.
type Application struct {
	Side    combat.Side     `json:"side"`
	Source  int             `json:"source"`
	Target  int             `json:"target"`
	Channel modules.Channel `json:"channel"`
}

// Keyframe is the immutable state snapshot after a round. Round zero is the
// opening deployment.
type Keyframe struct {
	Round     int           `json:"round"`
	Lhs       SideState     `json:"lhs"`
	Rhs       SideState     `json:"rhs"`
	Destroyed []Destruction `json:"destroyed,omitempty"`
	Applied   []Application `json:"applied,omitempty"`
}

// Side returns the state of side.
func (k Keyframe) Side(side combat.Side) SideState {
	if side == combat.SideRhs {
		return k.Rhs
	}
	return k.Lhs
}

// KeyframeEviction describes a keyframe removed from the buffer.
type KeyframeEviction struct {
	Round  int    `json:"round"`
	Reason string `json:"reason,omitempty"`
}

// KeyframeRecordResult reports journal state after storing a keyframe.
type KeyframeRecordResult struct {
	Size        int                `json:"size"`
	OldestRound int                `json:"oldestRound"`
	NewestRound int                `json:"newestRound"`
	Evicted     []KeyframeEviction `json:"evicted,omitempty"`
}

// Journal keeps a bounded window of keyframes in round order.
type Journal struct {
	mu        sync.RWMutex
	keyframes []Keyframe
	maxFrames int
}

// New constructs a journal retaining at most capacity keyframes. A capacity
// of zero or less retains every keyframe.
func New(capacity int) *Journal {
	if capacity < 0 {
		capacity = 0
	}
	return &Journal{keyframes: make([]Keyframe, 0, min(capacity, combat.DefaultMaxRounds+1)), maxFrames: capacity}
}

// RecordKeyframe stores frame, evicting the oldest frames beyond capacity.
func (j *Journal) RecordKeyframe(frame Keyframe) KeyframeRecordResult {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.keyframes = append(j.keyframes, cloneKeyframe(frame))

	var evicted []KeyframeEviction
	if j.maxFrames > 0 && len(j.keyframes) > j.maxFrames {
		overflow := len(j.keyframes) - j.maxFrames
		for i := 0; i < overflow; i++ {
			evicted = append(evicted, KeyframeEviction{Round: j.keyframes[i].Round, Reason: "count"})
		}
		copy(j.keyframes, j.keyframes[overflow:])
		j.keyframes = j.keyframes[:len(j.keyframes)-overflow]
	}

	size := len(j.keyframes)
	result := KeyframeRecordResult{Size: size, Evicted: evicted}
	if size > 0 {
		result.OldestRound = j.keyframes[0].Round
		result.NewestRound = j.keyframes[size-1].Round
	}
	return result
}

// Keyframes returns a copy of the buffer in round order.
func (j *Journal) Keyframes() []Keyframe {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.keyframes) == 0 {
		return nil
	}
	frames := make([]Keyframe, len(j.keyframes))
	for i, frame := range j.keyframes {
		frames[i] = cloneKeyframe(frame)
	}
	return frames
}

// KeyframeByRound returns the keyframe recorded for round.
func (j *Journal) KeyframeByRound(round int) (Keyframe, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, frame := range j.keyframes {
		if frame.Round == round {
			return cloneKeyframe(frame), true
		}
	}
	return Keyframe{}, false
}

// Since returns the keyframes after round, in order.
func (j *Journal) Since(round int) []Keyframe {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var frames []Keyframe
	for _, frame := range j.keyframes {
		if frame.Round > round {
			frames = append(frames, cloneKeyframe(frame))
		}
	}
	return frames
}

// KeyframeWindow reports the current retention window.
func (j *Journal) KeyframeWindow() (size, oldest, newest int) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	size = len(j.keyframes)
	if size == 0 {
		return 0, 0, 0
	}
	return size, j.keyframes[0].Round, j.keyframes[size-1].Round
}

func cloneKeyframe(frame Keyframe) Keyframe {
	cloned := frame
	if len(frame.Destroyed) > 0 {
		cloned.Destroyed = append([]Destruction(nil), frame.Destroyed...)
	}
	if len(frame.Applied) > 0 {
		cloned.Applied = append([]Application(nil), frame.Applied...)
	}
	return cloned
}
