package combat

import (
	"fmt"
	"strings"

	"newomega/server/internal/ships"
)

// TargetingPolicy selects which enemy type an attacker engages.
type TargetingPolicy int

const (
	Furthest TargetingPolicy = iota
	Closest
	HighestHp
	LowestHp
	HighestSpeed
	LowestSpeed
	HighestDefence
	LowestDefence
	HighestAttack
	LowestAttack
)

var policyNames = [...]string{
	Furthest:       "Furthest",
	Closest:        "Closest",
	HighestHp:      "HighestHp",
	LowestHp:       "LowestHp",
	HighestSpeed:   "HighestSpeed",
	LowestSpeed:    "LowestSpeed",
	HighestDefence: "HighestDefence",
	LowestDefence:  "LowestDefence",
	HighestAttack:  "HighestAttack",
	LowestAttack:   "LowestAttack",
}

// TargetingPolicies lists every policy in declaration order.
func TargetingPolicies() []TargetingPolicy {
	out := make([]TargetingPolicy, len(policyNames))
	for i := range out {
		out[i] = TargetingPolicy(i)
	}
	return out
}

// Valid reports whether p is a declared policy.
func (p TargetingPolicy) Valid() bool {
	return p >= 0 && int(p) < len(policyNames)
}

func (p TargetingPolicy) String() string {
	if !p.Valid() {
		return fmt.Sprintf("TargetingPolicy(%d)", int(p))
	}
	return policyNames[p]
}

// ParseTargetingPolicy resolves a policy name case-insensitively. Underscores
// and dashes are ignored so "highest_hp" parses as HighestHp.
func ParseTargetingPolicy(name string) (TargetingPolicy, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(name))
	for i, candidate := range policyNames {
		if strings.ToLower(candidate) == key {
			return TargetingPolicy(i), nil
		}
	}
	return Furthest, fmt.Errorf("unknown targeting policy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (p TargetingPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid targeting policy %d", int(p))
	}
	return []byte(policyNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *TargetingPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseTargetingPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p TargetingPolicy) prefersHigher() bool {
	switch p {
	case Furthest, HighestHp, HighestSpeed, HighestDefence, HighestAttack:
		return true
	default:
		return false
	}
}

func (p TargetingPolicy) metric(enemy *Fleet, idx, distance int) int {
	switch p {
	case Furthest, Closest:
		return distance
	case HighestHp, LowestHp:
		return enemy.HP(idx)
	case HighestSpeed, LowestSpeed:
		return enemy.EffectiveSpeed(idx)
	case HighestDefence, LowestDefence:
		return enemy.EffectiveDefence(idx)
	default:
		return enemy.EffectiveAttack(idx)
	}
}

// ResolveTarget picks the enemy type attacker engages this round. Candidates
// are living enemy types within reach (effective range plus effective speed).
// Ties resolve to the lowest index. It reports false when nothing is in
// reach.
func ResolveTarget(policy TargetingPolicy, attacker int, own, enemy *Fleet) (int, bool) {
	target, _, ok := resolveTarget(policy, attacker, own, enemy)
	return target, ok
}

func resolveTarget(policy TargetingPolicy, attacker int, own, enemy *Fleet) (target, distance int, ok bool) {
	reach := own.EffectiveRange(attacker) + own.EffectiveSpeed(attacker)
	origin := own.Position(attacker)
	best := 0
	for idx := 0; idx < ships.Count; idx++ {
		if !enemy.TypeAlive(idx) {
			continue
		}
		delta := abs(origin - enemy.Position(idx))
		if delta > reach {
			continue
		}
		value := policy.metric(enemy, idx, delta)
		if !ok || improves(policy, value, best) {
			target, distance, best, ok = idx, delta, value, true
		}
	}
	return target, distance, ok
}

func improves(policy TargetingPolicy, value, best int) bool {
	if policy.prefersHigher() {
		return value > best
	}
	return value < best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
