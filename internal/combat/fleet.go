package combat

import (
	"fmt"
	"strings"

	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// Side identifies one of the two fleets.
type Side int

const (
	SideLhs Side = iota
	SideRhs
)

func (s Side) String() string {
	if s == SideRhs {
		return "rhs"
	}
	return "lhs"
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "lhs":
		*s = SideLhs
	case "rhs":
		*s = SideRhs
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideLhs {
		return SideRhs
	}
	return SideLhs
}

// Selection holds the number of ships fielded per type, indexed by catalog
// position.
type Selection []int

// MaxShipsPerType bounds each selection entry.
const MaxShipsPerType = ships.MaxPerType

var startPositions = [2][ships.Count]int{
	SideLhs: {10, 11, 12, 13},
	SideRhs: {-10, -11, -12, -13},
}

// StartPositions returns the lane coordinates side deploys on.
func StartPositions(side Side) [ships.Count]int {
	return startPositions[side]
}

// Fleet is the mutable per-fight state of one side. It is owned by a single
// simulation and never shared.
type Fleet struct {
	side     Side
	initial  [ships.Count]int
	hp       [ships.Count]int
	position [ships.Count]int
	active   EffectSet
	pending  EffectSet
	modules  [ships.Count]modules.Effect
}

// BuildFleet validates a selection and its modules and lays the fleet out on
// its starting lane positions. Types fielded with zero ships start destroyed.
// mods may be empty; otherwise it must hold one entry per type and a zero
// entry means no module.
func BuildFleet(side Side, selection Selection, mods []modules.Effect) (*Fleet, error) {
	prefix := "selection_" + side.String()
	if len(selection) != ships.Count {
		return nil, invalid(prefix, "expected %d entries, got %d", ships.Count, len(selection))
	}
	for i, n := range selection {
		if n < 0 || n > MaxShipsPerType {
			return nil, invalid(fmt.Sprintf("%s[%d]", prefix, i), "count %d outside [0, %d]", n, MaxShipsPerType)
		}
	}
	modulePrefix := "modules_" + side.String()
	if len(mods) != 0 && len(mods) != ships.Count {
		return nil, invalid(modulePrefix, "expected 0 or %d entries, got %d", ships.Count, len(mods))
	}
	for i, effect := range mods {
		if err := effect.Validate(); err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", modulePrefix, i), "%v", err)
		}
	}

	fleet := &Fleet{side: side, position: startPositions[side]}
	for i, n := range selection {
		fleet.initial[i] = n
		fleet.hp[i] = n * ships.Get(ships.Index(i)).HP
	}
	copy(fleet.modules[:], mods)
	return fleet, nil
}

// Side reports which side the fleet fights on.
func (f *Fleet) Side() Side { return f.side }

// Initial returns the ships fielded of type idx.
func (f *Fleet) Initial(idx int) int { return f.initial[idx] }

// HP returns the remaining aggregate hit points of type idx.
func (f *Fleet) HP(idx int) int { return f.hp[idx] }

// Position returns the lane coordinate of type idx.
func (f *Fleet) Position(idx int) int { return f.position[idx] }

// Module returns the module fitted to type idx.
func (f *Fleet) Module(idx int) modules.Effect { return f.modules[idx] }

// Active returns the effects in force on type idx this round.
func (f *Fleet) Active(idx int) RunningEffect { return f.active[idx] }

// Pending returns the effects that will be in force next round.
func (f *Fleet) Pending() EffectSet { return f.pending }

// TypeAlive reports whether type idx still has hit points.
func (f *Fleet) TypeAlive(idx int) bool { return f.hp[idx] > 0 }

// Alive reports whether any type still has hit points.
func (f *Fleet) Alive() bool {
	for _, hp := range f.hp {
		if hp > 0 {
			return true
		}
	}
	return false
}

// Ships returns the surviving ship count of type idx; a damaged ship counts
// as whole.
func (f *Fleet) Ships(idx int) int {
	return ships.ShipsFromHP(ships.Index(idx), f.hp[idx])
}

// Lost returns the ships destroyed per type, clamped to [0, initial].
func (f *Fleet) Lost() []int {
	lost := make([]int, ships.Count)
	for i := range lost {
		n := f.initial[i] - f.Ships(i)
		if n < 0 {
			n = 0
		}
		if n > f.initial[i] {
			n = f.initial[i]
		}
		lost[i] = n
	}
	return lost
}

// EffectiveSpeed is the lane distance type idx may cover this round.
func (f *Fleet) EffectiveSpeed(idx int) int {
	effect := f.active[idx]
	if effect.Incapacitated() {
		return 0
	}
	speed := ships.Get(ships.Index(idx)).Speed
	if effect.Has(modules.Snare) {
		return speed / 2
	}
	return speed
}

// EffectiveRange is the weapon range of type idx this round.
func (f *Fleet) EffectiveRange(idx int) int {
	return halvedIf(ships.Get(ships.Index(idx)).Range, f.active[idx].Has(modules.RangeDebuff))
}

// EffectiveAttack is the attack base of type idx this round.
func (f *Fleet) EffectiveAttack(idx int) int {
	return halvedIf(ships.Get(ships.Index(idx)).AttackBase, f.active[idx].Has(modules.AttackDebuff))
}

// EffectiveDefence is the per-ship defence of type idx this round.
func (f *Fleet) EffectiveDefence(idx int) int {
	return halvedIf(ships.Get(ships.Index(idx)).Defence, f.active[idx].Has(modules.DefenceDebuff))
}

// Incapacitated reports whether type idx skips its action this round.
func (f *Fleet) Incapacitated(idx int) bool {
	return f.active[idx].Incapacitated()
}

func (f *Fleet) direction() int {
	if f.side == SideLhs {
		return -1
	}
	return 1
}

func (f *Fleet) advance(idx, distance int) {
	f.position[idx] += f.direction() * distance
}

// takeDamage removes up to amount hit points from type idx and reports how
// many were actually removed.
func (f *Fleet) takeDamage(idx, amount int) int {
	if amount <= 0 || f.hp[idx] <= 0 {
		return 0
	}
	if amount > f.hp[idx] {
		amount = f.hp[idx]
	}
	f.hp[idx] -= amount
	return amount
}

func (f *Fleet) applyPending(idx int, channel modules.Channel) {
	f.pending[idx] = f.pending[idx].With(channel, 1)
}

// endRound promotes pending effects and expires the previous round's.
func (f *Fleet) endRound() {
	f.active = f.pending
	f.pending = EffectSet{}
}

func halvedIf(value int, halve bool) int {
	if halve {
		return value / 2
	}
	return value
}
