// Package combat resolves fleet battles. A fight is a pure function of its
// seed and Input: the same arguments always produce the same Result, move for
// move.
package combat

import (
	"newomega/server/internal/modules"
	"newomega/server/internal/rng"
	"newomega/server/internal/ships"
)

// DefaultMaxRounds caps a fight when neither side is destroyed.
const DefaultMaxRounds = 50

// Input describes the two fleets of a fight.
type Input struct {
	SelectionLhs Selection        `json:"selection_lhs"`
	SelectionRhs Selection        `json:"selection_rhs"`
	ModulesLhs   []modules.Effect `json:"modules_lhs,omitempty"`
	ModulesRhs   []modules.Effect `json:"modules_rhs,omitempty"`
	TargetingLhs TargetingPolicy  `json:"targeting_lhs"`
	TargetingRhs TargetingPolicy  `json:"targeting_rhs"`
}

// Options tune a simulation. The zero value selects the defaults.
type Options struct {
	MaxRounds int
}

// Option mutates Options.
type Option func(*Options)

// WithMaxRounds overrides the round cap.
func WithMaxRounds(rounds int) Option {
	return func(o *Options) {
		o.MaxRounds = rounds
	}
}

func (o Options) normalized() Options {
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	return o
}

// Phase is the lifecycle stage of an Engine.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRoundInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRoundInProgress:
		return "round_in_progress"
	default:
		return "finished"
	}
}

// Engine steps a single fight round by round. It is not safe for concurrent
// use.
type Engine struct {
	seed     uint64
	input    Input
	opts     Options
	src      *rng.Source
	lhs      *Fleet
	rhs      *Fleet
	lhsMoves []MoveRecord
	rhsMoves []MoveRecord
	round    int
	phase    Phase
}

// NewEngine validates the input and prepares a fight. No RNG is drawn until
// the first round.
func NewEngine(seed uint64, in Input, opts ...Option) (*Engine, error) {
	var options Options
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.MaxRounds < 0 {
		return nil, invalid("max_rounds", "must not be negative, got %d", options.MaxRounds)
	}
	options = options.normalized()

	if !in.TargetingLhs.Valid() {
		return nil, invalid("targeting_lhs", "unknown policy %d", int(in.TargetingLhs))
	}
	if !in.TargetingRhs.Valid() {
		return nil, invalid("targeting_rhs", "unknown policy %d", int(in.TargetingRhs))
	}
	lhs, err := BuildFleet(SideLhs, in.SelectionLhs, in.ModulesLhs)
	if err != nil {
		return nil, err
	}
	rhs, err := BuildFleet(SideRhs, in.SelectionRhs, in.ModulesRhs)
	if err != nil {
		return nil, err
	}

	return &Engine{
		seed:  seed,
		input: cloneInput(in),
		opts:  options,
		src:   rng.NewSource(seed),
		lhs:   lhs,
		rhs:   rhs,
	}, nil
}

// Simulate runs a fight to completion.
func Simulate(seed uint64, in Input, opts ...Option) (Result, error) {
	engine, err := NewEngine(seed, in, opts...)
	if err != nil {
		return Result{}, err
	}
	for engine.Step() {
	}
	return engine.Result(), nil
}

// Phase reports the engine lifecycle stage.
func (e *Engine) Phase() Phase { return e.phase }

// Round reports the last round started; zero before the first.
func (e *Engine) Round() int { return e.round }

// Fleet returns the live state of side. Callers must not mutate it.
func (e *Engine) Fleet(side Side) *Fleet {
	if side == SideRhs {
		return e.rhs
	}
	return e.lhs
}

// Step plays one round and reports whether another round will follow. A fight
// with a side already destroyed finishes without playing any round.
func (e *Engine) Step() bool {
	if e.phase == PhaseFinished {
		return false
	}
	if !e.lhs.Alive() || !e.rhs.Alive() {
		e.phase = PhaseFinished
		return false
	}

	e.round++
	e.phase = PhaseRoundInProgress
	for _, idx := range ships.InitiativeOrder() {
		t := int(idx)
		lhsAction := e.plan(e.input.TargetingLhs, t, e.lhs, e.rhs)
		rhsAction := e.plan(e.input.TargetingRhs, t, e.rhs, e.lhs)
		e.lhsMoves = e.apply(lhsAction, e.lhs, e.rhs, e.lhsMoves)
		e.rhsMoves = e.apply(rhsAction, e.rhs, e.lhs, e.rhsMoves)
	}
	e.lhs.endRound()
	e.rhs.endRound()

	if !e.lhs.Alive() || !e.rhs.Alive() || e.round >= e.opts.MaxRounds {
		e.phase = PhaseFinished
		return false
	}
	return true
}

// Result evaluates the fight. Before the engine has finished it describes the
// state so far.
func (e *Engine) Result() Result {
	result := Evaluate(e.lhs, e.rhs, e.lhsMoves, e.rhsMoves, e.round)
	result.Seed = e.seed
	result.MaxRounds = e.opts.MaxRounds
	result.SelectionLhs = e.input.SelectionLhs
	result.SelectionRhs = e.input.SelectionRhs
	result.ModulesLhs = e.input.ModulesLhs
	result.ModulesRhs = e.input.ModulesRhs
	result.TargetingLhs = e.input.TargetingLhs
	result.TargetingRhs = e.input.TargetingRhs
	return result
}

// action is one type's resolved intent, computed against the pre-move state.
type action struct {
	kind     MoveType
	source   int
	target   int
	advance  int
	damage   int
	inflicts modules.Channel
}

func (e *Engine) plan(policy TargetingPolicy, t int, own, enemy *Fleet) *action {
	if !own.TypeAlive(t) {
		return nil
	}
	if own.Incapacitated(t) {
		return &action{kind: MoveNoOp, source: t, target: NoTarget, inflicts: modules.ChannelNone}
	}
	target, distance, ok := resolveTarget(policy, t, own, enemy)
	if !ok {
		return &action{kind: MoveNoOp, source: t, target: NoTarget, advance: own.EffectiveSpeed(t), inflicts: modules.ChannelNone}
	}

	act := &action{
		kind:     MoveAttack,
		source:   t,
		target:   target,
		advance:  max(0, distance-own.EffectiveRange(t)),
		damage:   rollDamage(e.src, own, enemy, t, target),
		inflicts: modules.ChannelNone,
	}
	if channel, potency := own.Module(t).Active(); channel != modules.ChannelNone {
		if e.src.Percent() <= uint64(potency) {
			act.inflicts = channel
		}
	}
	return act
}

func (e *Engine) apply(act *action, own, enemy *Fleet, log []MoveRecord) []MoveRecord {
	if act == nil {
		return log
	}
	own.advance(act.source, act.advance)
	record := MoveRecord{
		Round:          e.round,
		Type:           act.kind,
		Source:         act.source,
		Target:         act.target,
		TargetPosition: own.Position(act.source),
		Channel:        modules.ChannelNone,
	}
	if act.kind == MoveAttack {
		record.Damage = enemy.takeDamage(act.target, act.damage)
	}
	if act.inflicts != modules.ChannelNone {
		enemy.applyPending(act.target, act.inflicts)
	}
	record.EffectsLhs, record.EffectsRhs = e.lhs.Pending(), e.rhs.Pending()
	log = append(log, record)

	if act.inflicts != modules.ChannelNone {
		effect := record
		effect.Type = MoveEffect
		effect.Damage = 0
		effect.Channel = act.inflicts
		log = append(log, effect)
	}
	return log
}

func cloneInput(in Input) Input {
	out := in
	out.SelectionLhs = append(Selection(nil), in.SelectionLhs...)
	out.SelectionRhs = append(Selection(nil), in.SelectionRhs...)
	if len(in.ModulesLhs) > 0 {
		out.ModulesLhs = append([]modules.Effect(nil), in.ModulesLhs...)
	} else {
		out.ModulesLhs = nil
	}
	if len(in.ModulesRhs) > 0 {
		out.ModulesRhs = append([]modules.Effect(nil), in.ModulesRhs...)
	} else {
		out.ModulesRhs = nil
	}
	return out
}
