// Package modules describes the status-effect modules a fleet may fit to each
// ship type.
package modules

import (
	"fmt"
	"strings"
)

// MaxPotency is the upper bound of every channel, expressed in percent.
const MaxPotency = 100

// Channel identifies one status-effect channel.
type Channel int

const (
	ChannelNone Channel = iota - 1
	Snare
	Root
	Blind
	AttackDebuff
	DefenceDebuff
	RangeDebuff
)

// ChannelCount is the number of real channels (ChannelNone excluded).
const ChannelCount = 6

var channelNames = [ChannelCount]string{
	Snare:         "snare",
	Root:          "root",
	Blind:         "blind",
	AttackDebuff:  "attack_debuff",
	DefenceDebuff: "defence_debuff",
	RangeDebuff:   "range_debuff",
}

// Channels lists the real channels in declaration order.
func Channels() [ChannelCount]Channel {
	return [ChannelCount]Channel{Snare, Root, Blind, AttackDebuff, DefenceDebuff, RangeDebuff}
}

// String returns the wire name of the channel.
func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return "none"
	}
	return channelNames[c]
}

// ParseChannel resolves a wire name. "none" and "" map to ChannelNone.
func ParseChannel(name string) (Channel, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" || normalized == "none" {
		return ChannelNone, nil
	}
	for i, candidate := range channelNames {
		if candidate == normalized {
			return Channel(i), nil
		}
	}
	return ChannelNone, fmt.Errorf("unknown channel %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	parsed, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Effect is the module fitted to one ship type. Each field is a trigger
// probability in percent. A valid effect has at most one non-zero channel; the
// zero value means no module.
type Effect struct {
	Snare         int `json:"snare"`
	Root          int `json:"root"`
	Blind         int `json:"blind"`
	AttackDebuff  int `json:"attack_debuff"`
	DefenceDebuff int `json:"defence_debuff"`
	RangeDebuff   int `json:"range_debuff"`
}

// Of builds an effect with a single channel set to potency.
func Of(channel Channel, potency int) Effect {
	var effect Effect
	effect.set(channel, potency)
	return effect
}

// Potency returns the value of channel.
func (e Effect) Potency(channel Channel) int {
	switch channel {
	case Snare:
		return e.Snare
	case Root:
		return e.Root
	case Blind:
		return e.Blind
	case AttackDebuff:
		return e.AttackDebuff
	case DefenceDebuff:
		return e.DefenceDebuff
	case RangeDebuff:
		return e.RangeDebuff
	default:
		return 0
	}
}

func (e *Effect) set(channel Channel, potency int) {
	switch channel {
	case Snare:
		e.Snare = potency
	case Root:
		e.Root = potency
	case Blind:
		e.Blind = potency
	case AttackDebuff:
		e.AttackDebuff = potency
	case DefenceDebuff:
		e.DefenceDebuff = potency
	case RangeDebuff:
		e.RangeDebuff = potency
	}
}

// Active returns the single configured channel and its potency, or
// ChannelNone when the effect is empty.
func (e Effect) Active() (Channel, int) {
	for _, channel := range Channels() {
		if p := e.Potency(channel); p != 0 {
			return channel, p
		}
	}
	return ChannelNone, 0
}

// IsZero reports whether no channel is configured.
func (e Effect) IsZero() bool {
	return e == Effect{}
}

// Validate checks channel bounds and the single-channel rule.
func (e Effect) Validate() error {
	set := 0
	for _, channel := range Channels() {
		p := e.Potency(channel)
		if p < 0 || p > MaxPotency {
			return fmt.Errorf("%s potency %d outside [0, %d]", channel, p, MaxPotency)
		}
		if p != 0 {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("module sets %d channels, at most one allowed", set)
	}
	return nil
}
