package combat

import (
	"newomega/server/internal/rng"
	"newomega/server/internal/ships"
)

// counterNumerator and counterDenominator scale attack against a countered
// type.
const (
	counterNumerator   = 3
	counterDenominator = 2
)

// rollDamage draws the attack roll for one type and returns the damage it
// would deal to target before clamping to the target's remaining pool.
func rollDamage(src *rng.Source, own, enemy *Fleet, attacker, target int) int {
	def := ships.Get(ships.Index(attacker))
	attack := own.EffectiveAttack(attacker) + int(src.Uniform(uint64(def.AttackVariable)))
	if ships.Counters(ships.Index(attacker), ships.Index(target)) {
		attack = attack * counterNumerator / counterDenominator
	}
	return volleyDamage(attack, enemy.EffectiveDefence(target), own.Ships(attacker), ships.Get(ships.Index(target)).HP)
}

// volleyDamage applies per-ship defence and caps the volley at one kill per
// attacking ship.
func volleyDamage(attack, defence, count, targetUnitHP int) int {
	if defence > attack {
		defence = attack
	}
	damage := (attack - defence) * count
	if limit := count * targetUnitHP; damage > limit {
		damage = limit
	}
	if damage < 0 {
		return 0
	}
	return damage
}
