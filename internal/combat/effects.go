package combat

import (
	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// RunningEffect holds the rounds remaining on each status channel for one ship
// type. The zero value carries no effects.
type RunningEffect struct {
	Snare         uint8 `json:"snare"`
	Root          uint8 `json:"root"`
	Blind         uint8 `json:"blind"`
	AttackDebuff  uint8 `json:"attack_debuff"`
	DefenceDebuff uint8 `json:"defence_debuff"`
	RangeDebuff   uint8 `json:"range_debuff"`
}

// EffectSet is the per-type effect state of one fleet.
type EffectSet [ships.Count]RunningEffect

// Rounds returns the remaining rounds on channel.
func (e RunningEffect) Rounds(channel modules.Channel) uint8 {
	switch channel {
	case modules.Snare:
		return e.Snare
	case modules.Root:
		return e.Root
	case modules.Blind:
		return e.Blind
	case modules.AttackDebuff:
		return e.AttackDebuff
	case modules.DefenceDebuff:
		return e.DefenceDebuff
	case modules.RangeDebuff:
		return e.RangeDebuff
	default:
		return 0
	}
}

// Has reports whether channel is in force.
func (e RunningEffect) Has(channel modules.Channel) bool {
	return e.Rounds(channel) > 0
}

// With returns a copy of e with channel set to rounds.
func (e RunningEffect) With(channel modules.Channel, rounds uint8) RunningEffect {
	switch channel {
	case modules.Snare:
		e.Snare = rounds
	case modules.Root:
		e.Root = rounds
	case modules.Blind:
		e.Blind = rounds
	case modules.AttackDebuff:
		e.AttackDebuff = rounds
	case modules.DefenceDebuff:
		e.DefenceDebuff = rounds
	case modules.RangeDebuff:
		e.RangeDebuff = rounds
	}
	return e
}

// Incapacitated reports whether the type can neither move nor act.
func (e RunningEffect) Incapacitated() bool {
	return e.Root > 0 || e.Blind > 0
}

// IsZero reports whether no channel is in force.
func (e RunningEffect) IsZero() bool {
	return e == RunningEffect{}
}

// Channels lists the channels in force in declaration order.
func (e RunningEffect) Channels() []modules.Channel {
	var out []modules.Channel
	for _, channel := range modules.Channels() {
		if e.Has(channel) {
			out = append(out, channel)
		}
	}
	return out
}
