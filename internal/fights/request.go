package fights

import (
	"bytes"
	"encoding/json"
	"fmt"

	"newomega/server/internal/combat"
	"newomega/server/internal/modules"
	"newomega/server/internal/ships"
)

// ModuleRef names a module either by catalog name or by its raw effect.
// On the wire it is a string, an effect object or null.
type ModuleRef struct {
	Name   string
	Effect modules.Effect
}

// Named returns a reference to a catalog module.
func Named(name string) ModuleRef {
	return ModuleRef{Name: name}
}

// Raw returns a reference carrying an explicit effect.
func Raw(effect modules.Effect) ModuleRef {
	return ModuleRef{Effect: effect}
}

// Resolve returns the effect the reference stands for.
func (m ModuleRef) Resolve() (modules.Effect, error) {
	if m.Name == "" {
		return m.Effect, nil
	}
	def, ok := modules.Lookup(m.Name)
	if !ok {
		return modules.Effect{}, fmt.Errorf("unknown module %q", m.Name)
	}
	return def.Effect, nil
}

func (m ModuleRef) MarshalJSON() ([]byte, error) {
	if m.Name != "" {
		return json.Marshal(m.Name)
	}
	return json.Marshal(m.Effect)
}

func (m *ModuleRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*m = ModuleRef{}
		return nil
	case trimmed[0] == '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*m = ModuleRef{Name: name}
		return nil
	default:
		var effect modules.Effect
		if err := json.Unmarshal(trimmed, &effect); err != nil {
			return err
		}
		*m = ModuleRef{Effect: effect}
		return nil
	}
}

// Request is a fight submitted by a client.
type Request struct {
	Seed         *uint64                `json:"seed,omitempty" jsonschema:"description=Fight seed. A seed is derived from the fleets when omitted."`
	SelectionLhs combat.Selection       `json:"selection_lhs" jsonschema:"required,minItems=4,maxItems=4,description=Ships per type for the attacking fleet"`
	SelectionRhs combat.Selection       `json:"selection_rhs" jsonschema:"required,minItems=4,maxItems=4,description=Ships per type for the defending fleet"`
	ModulesLhs   []ModuleRef            `json:"modules_lhs,omitempty" jsonschema:"maxItems=4"`
	ModulesRhs   []ModuleRef            `json:"modules_rhs,omitempty" jsonschema:"maxItems=4"`
	TargetingLhs combat.TargetingPolicy `json:"targeting_lhs"`
	TargetingRhs combat.TargetingPolicy `json:"targeting_rhs"`
	MaxRounds    int                    `json:"max_rounds,omitempty" jsonschema:"minimum=0,description=Round cap. Zero selects the server default."`
	// EnforceBudget rejects attackers whose command power exceeds the
	// defender's.
	EnforceBudget bool `json:"enforce_budget,omitempty"`
}

// Input resolves module references and returns the engine input.
func (r Request) Input() (combat.Input, error) {
	lhs, err := resolveModules("modules_lhs", r.ModulesLhs)
	if err != nil {
		return combat.Input{}, err
	}
	rhs, err := resolveModules("modules_rhs", r.ModulesRhs)
	if err != nil {
		return combat.Input{}, err
	}
	in := combat.Input{
		SelectionLhs: append(combat.Selection(nil), r.SelectionLhs...),
		SelectionRhs: append(combat.Selection(nil), r.SelectionRhs...),
		ModulesLhs:   lhs,
		ModulesRhs:   rhs,
		TargetingLhs: r.TargetingLhs,
		TargetingRhs: r.TargetingRhs,
	}
	if r.EnforceBudget {
		if err := checkBudget(in.SelectionLhs, in.SelectionRhs); err != nil {
			return combat.Input{}, err
		}
	}
	return in, nil
}

func resolveModules(field string, refs []ModuleRef) ([]modules.Effect, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]modules.Effect, len(refs))
	for i, ref := range refs {
		effect, err := ref.Resolve()
		if err != nil {
			return nil, &combat.InvalidInputError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: err.Error()}
		}
		out[i] = effect
	}
	return out, nil
}

// BudgetError reports an attacker fielding more command power than the
// defender allows.
type BudgetError struct {
	Attacker int
	Limit    int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("fleet costs %d cp, limit is %d", e.Attacker, e.Limit)
}

// Is lets BudgetError match combat.ErrInvalidInput.
func (e *BudgetError) Is(target error) bool {
	return target == combat.ErrInvalidInput
}

func checkBudget(attacker, defender combat.Selection) error {
	cost, limit := ships.FleetCost(attacker), ships.FleetCost(defender)
	if cost > limit {
		return &BudgetError{Attacker: cost, Limit: limit}
	}
	return nil
}
