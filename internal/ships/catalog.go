// Package ships holds the frozen hull catalog shared by the combat engine and
// the fleet-building surfaces.
package ships

// Count is the number of ship types in the catalog. Selections, module slots
// and effect vectors are all sized by it.
const Count = 4

// MaxPerType bounds the number of ships of one type a fleet may field.
const MaxPerType = 255

// Index identifies a ship type by catalog position.
type Index int

const (
	Stinger Index = iota
	Icarus
	Scorpio
	Hyperion
)

// Def describes one hull class. Values are immutable for the process lifetime.
type Def struct {
	Name           string `json:"name"`
	CP             int    `json:"cp"`
	HP             int    `json:"hp"`
	AttackBase     int    `json:"attackBase"`
	AttackVariable int    `json:"attackVariable"`
	Defence        int    `json:"defence"`
	Speed          int    `json:"speed"`
	Range          int    `json:"range"`
	// Initiative orders the types within a round; higher acts first.
	Initiative int `json:"initiative"`
	// CounteredType receives +50% attack from this type.
	CounteredType Index `json:"counteredType"`
}

var catalog = [Count]Def{
	Stinger: {
		Name:           "Stinger",
		CP:             1,
		HP:             120,
		AttackBase:     80,
		AttackVariable: 20,
		Defence:        20,
		Speed:          4,
		Range:          4,
		Initiative:     0,
		CounteredType:  Hyperion,
	},
	Icarus: {
		Name:           "Icarus",
		CP:             3,
		HP:             150,
		AttackBase:     65,
		AttackVariable: 20,
		Defence:        30,
		Speed:          3,
		Range:          8,
		Initiative:     1,
		CounteredType:  Stinger,
	},
	Scorpio: {
		Name:           "Scorpio",
		CP:             4,
		HP:             220,
		AttackBase:     65,
		AttackVariable: 20,
		Defence:        35,
		Speed:          2,
		Range:          15,
		Initiative:     2,
		CounteredType:  Icarus,
	},
	Hyperion: {
		Name:           "Hyperion",
		CP:             10,
		HP:             450,
		AttackBase:     80,
		AttackVariable: 20,
		Defence:        40,
		Speed:          1,
		Range:          30,
		Initiative:     3,
		CounteredType:  Scorpio,
	},
}

var initiativeOrder = computeInitiativeOrder()

// Get returns the definition for idx. It panics on an out-of-range index;
// callers validate indices at their input boundary.
func Get(idx Index) Def {
	return catalog[idx]
}

// All returns a copy of the catalog in declaration order.
func All() [Count]Def {
	return catalog
}

// Valid reports whether idx names a catalog entry.
func Valid(idx Index) bool {
	return idx >= 0 && int(idx) < Count
}

// String returns the hull name.
func (idx Index) String() string {
	if !Valid(idx) {
		return "unknown"
	}
	return catalog[idx].Name
}

// InitiativeOrder returns the type indices in the order they act each round.
func InitiativeOrder() [Count]Index {
	return initiativeOrder
}

// Counters reports whether attacker receives the counter bonus against target.
func Counters(attacker, target Index) bool {
	return catalog[attacker].CounteredType == target
}

func computeInitiativeOrder() [Count]Index {
	var order [Count]Index
	for i := range order {
		order[i] = Index(i)
	}
	// Insertion sort; ties keep the later-declared type first.
	for i := 1; i < Count; i++ {
		for j := i; j > 0; j-- {
			a, b := catalog[order[j-1]], catalog[order[j]]
			if a.Initiative > b.Initiative || (a.Initiative == b.Initiative && order[j-1] > order[j]) {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	return order
}
