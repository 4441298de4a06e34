package modules

import (
	"sort"
	"strings"
)

// Definition is a named module offered to players.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tech        int     `json:"tech"`
	Channel     Channel `json:"channel"`
	Effect      Effect  `json:"effect"`
}

var definitions = []Definition{
	{
		Name:        "Navi Hack",
		Description: "Hacks the navigation system, halving target speed for a round.",
		Tech:        1,
		Channel:     Snare,
		Effect:      Of(Snare, MaxPotency),
	},
	{
		Name:        "Navi Breakdown",
		Description: "Disables the navigation system, target cannot move or act for a round.",
		Tech:        2,
		Channel:     Root,
		Effect:      Of(Root, MaxPotency),
	},
	{
		Name:        "System Neutralize",
		Description: "Blinds the target systems, target cannot act for a round.",
		Tech:        3,
		Channel:     Blind,
		Effect:      Of(Blind, MaxPotency),
	},
	{
		Name:        "Weapons Hack",
		Description: "Halves the attack of the target for a round.",
		Tech:        0,
		Channel:     AttackDebuff,
		Effect:      Of(AttackDebuff, MaxPotency),
	},
	{
		Name:        "Defences Hack",
		Description: "Halves the defence of the target for a round.",
		Tech:        0,
		Channel:     DefenceDebuff,
		Effect:      Of(DefenceDebuff, MaxPotency),
	},
	{
		Name:        "Range Hack",
		Description: "Halves the weapon range of the target for a round.",
		Tech:        0,
		Channel:     RangeDebuff,
		Effect:      Of(RangeDebuff, MaxPotency),
	},
}

var definitionsByKey = indexDefinitions(definitions)

func indexDefinitions(defs []Definition) map[string]Definition {
	index := make(map[string]Definition, len(defs))
	for _, def := range defs {
		index[catalogKey(def.Name)] = def
	}
	return index
}

func catalogKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Lookup resolves a module by display name, ignoring case and extra spaces.
func Lookup(name string) (Definition, bool) {
	def, ok := definitionsByKey[catalogKey(name)]
	return def, ok
}

// Catalog returns the named modules sorted by tech level then name.
func Catalog() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tech != out[j].Tech {
			return out[i].Tech < out[j].Tech
		}
		return out[i].Name < out[j].Name
	})
	return out
}
