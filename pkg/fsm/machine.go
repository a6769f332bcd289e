package fsm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// DefaultMaxHops bounds same-tick transitions of one machine.
const DefaultMaxHops = 8

// DefaultMaxPushdown bounds how many states one machine may hold suspended.
const DefaultMaxPushdown = 32

type state struct {
	key   string
	node  domain.Node
	rules Transitions
}

// Builder holds the machine structure before Build.
type Builder struct {
	name    string
	states  map[string]*state
	order   []string
	initial string
	errs    []error
}

// New starts a machine definition.
func New(name string) *Builder {
	return &Builder{name: name, states: make(map[string]*state)}
}

// Initial sets the state entered on first tick and after every restart.
func (b *Builder) Initial(key string) *Builder {
	b.initial = key
	return b
}

// State declares a state with its child node and transition rules.
func (b *Builder) State(key string, node domain.Node, rules Transitions) *Builder {
	if _, dup := b.states[key]; dup {
		b.errs = append(b.errs, fmt.Errorf("state %q declared twice", key))
		return b
	}
	b.states[key] = &state{key: key, node: node, rules: rules}
	b.order = append(b.order, key)
	return b
}

// Validate checks the definition for errors.
func (b *Builder) Validate() error {
	errs := append([]error(nil), b.errs...)
	if b.initial == "" {
		errs = append(errs, errors.New("no initial state defined"))
	} else if _, ok := b.states[b.initial]; !ok {
		errs = append(errs, fmt.Errorf("initial state %q not defined", b.initial))
	}
	for _, key := range b.order {
		s := b.states[key]
		if s.node == nil {
			errs = append(errs, fmt.Errorf("state %q has no node", key))
		}
		if s.rules == nil {
			errs = append(errs, fmt.Errorf("state %q has no transition rules", key))
			continue
		}
		if t, ok := s.rules.(Table); ok {
			for _, target := range t.targets() {
				if _, ok := b.states[target]; !ok {
					errs = append(errs, fmt.Errorf("state %q transitions to undefined state %q", key, target))
				}
			}
			for _, d := range t.decisions() {
				if d.kind == done && d.result.IsPending() {
					errs = append(errs, fmt.Errorf("state %q completes with a pending result", key))
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &domain.ConfigurationError{Node: b.name, Reason: "invalid state machine", Err: errors.Join(errs...)}
}

// Build creates a Machine from the definition.
func (b *Builder) Build(opts ...Option) (*Machine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		name:    b.name,
		states:  make(map[string]*state, len(b.states)),
		order:   append([]string(nil), b.order...),
		initial: b.initial,
		maxHops: DefaultMaxHops,
		maxPush: DefaultMaxPushdown,
	}
	for k, s := range b.states {
		cp := *s
		m.states[k] = &cp
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MustBuild is Build for static trees; it panics on a configuration error.
func (b *Builder) MustBuild(opts ...Option) *Machine {
	m, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxHops sets how many GoNow transitions may chain within one tick.
// Past the limit the machine yields Pending and enters the target next tick.
func WithMaxHops(n int) Option {
	return func(m *Machine) {
		if n >= 0 {
			m.maxHops = n
		}
	}
}

// WithMaxPushdown sets how many states may be suspended by Push at once.
// A Push past the limit is a configuration error.
func WithMaxPushdown(n int) Option {
	return func(m *Machine) {
		if n >= 0 {
			m.maxPush = n
		}
	}
}

// WithStrictTables makes a Table with no Pending entry a configuration error
// when its state's child reports Pending, instead of defaulting to Stay.
func WithStrictTables() Option {
	return func(m *Machine) {
		m.strict = true
	}
}

// WithTransitionHook registers fn to be called on every state change.
func WithTransitionHook(fn func(ctx *domain.Context, from, to string)) Option {
	return func(m *Machine) {
		m.onTransition = fn
	}
}

// Machine is a node whose behavior is an explicit transition table over
// keyed states. The active state's child runs in a nested stack so the rule
// sees every result, Pending included.
//
// Push and Pop make the machine a pushdown automaton: suspended states keep
// their child frames and are resumed in last-in first-out order.
type Machine struct {
	name         string
	states       map[string]*state
	order        []string
	initial      string
	maxHops      int
	maxPush      int
	strict       bool
	onTransition func(ctx *domain.Context, from, to string)
}

type machineState struct {
	key     string
	sub     *runtime.Stack
	history []suspended
}

type suspended struct {
	key string
	sub *runtime.Stack
}

// release aborts the active child and every suspended one, innermost first.
func (st *machineState) release(ctx *domain.Context, reason string) {
	st.sub.Abort(ctx, reason)
	for i := len(st.history) - 1; i >= 0; i-- {
		st.history[i].sub.Abort(ctx, reason)
	}
	st.history = nil
}

// Tick implements domain.Node.
func (m *Machine) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	st, ok := f.Data.(*machineState)
	if !ok {
		s, ok := m.states[m.initial]
		if !ok {
			return domain.Step{}, domain.Misconfigured(m.name, "initial state %q not defined", m.initial)
		}
		st = &machineState{key: s.key, sub: runtime.Nested(ctx, f, s.node)}
		f.Data = st
	}

	for hops := 0; ; {
		s := m.states[st.key]
		r, err := st.sub.Tick(ctx)
		if err != nil {
			return domain.Step{}, err
		}
		d, err := m.decide(ctx, s, r)
		if err != nil {
			st.release(ctx, "configuration error")
			return domain.Step{}, &domain.ConfigurationError{
				Node:   m.name,
				Reason: fmt.Sprintf("state %q", st.key),
				Err:    err,
			}
		}

		switch d.kind {
		case stay:
			return domain.Wait(), nil
		case goNext:
			if err := m.enter(ctx, f, st, d.target); err != nil {
				return domain.Step{}, err
			}
			return domain.Wait(), nil
		case goNow:
			if err := m.enter(ctx, f, st, d.target); err != nil {
				return domain.Step{}, err
			}
			hops++
			if hops > m.maxHops {
				ctx.Log().Warn("Transition hop limit reached", "machine", m.name, "state", st.key, "hops", hops)
				return domain.Wait(), nil
			}
		case push:
			if err := m.push(ctx, f, st, d.target); err != nil {
				return domain.Step{}, err
			}
			return domain.Wait(), nil
		case pop:
			if err := m.pop(ctx, st); err != nil {
				return domain.Step{}, err
			}
			return domain.Wait(), nil
		case done:
			st.release(ctx, "machine completed")
			if d.result.IsPending() {
				return domain.Step{}, domain.Misconfigured(m.name, "state %q completes with a pending result", st.key)
			}
			return domain.Yield(d.result), nil
		case completeWith:
			st.release(ctx, "machine completed")
			return domain.Yield(domain.Complete(d.outcome, r.Value)), nil
		case propagate:
			st.release(ctx, "machine completed")
			if r.IsPending() {
				return domain.Step{}, domain.Misconfigured(m.name, "state %q propagates a pending result", st.key)
			}
			return domain.Yield(r), nil
		default:
			st.release(ctx, "configuration error")
			return domain.Step{}, domain.Misconfigured(m.name, "state %q returned an unset decision", st.key)
		}
	}
}

func (m *Machine) decide(ctx *domain.Context, s *state, r domain.Result) (Decision, error) {
	if t, ok := s.rules.(Table); ok && m.strict && r.IsPending() && t.Pending.IsZero() {
		return Decision{}, errMissing{result: r}
	}
	return s.rules.Decide(ctx, r)
}

// push suspends the active child and switches to target with a fresh one.
func (m *Machine) push(ctx *domain.Context, f *domain.Frame, st *machineState, target string) error {
	next, ok := m.states[target]
	if !ok {
		st.release(ctx, "configuration error")
		return domain.Misconfigured(m.name, "state %q pushes undefined state %q", st.key, target)
	}
	if len(st.history) >= m.maxPush {
		st.release(ctx, "configuration error")
		return domain.Misconfigured(m.name, "state %q pushes past the pushdown limit of %d", st.key, m.maxPush)
	}
	ctx.Log().Debug("Push", "machine", m.name, "from", st.key, "to", target, "depth", len(st.history)+1)
	if m.onTransition != nil {
		m.onTransition(ctx, st.key, target)
	}
	st.history = append(st.history, suspended{key: st.key, sub: st.sub})
	st.key = target
	st.sub = runtime.Nested(ctx, f, next.node)
	return nil
}

// pop discards the active child and resumes the last suspended one.
func (m *Machine) pop(ctx *domain.Context, st *machineState) error {
	if len(st.history) == 0 {
		st.release(ctx, "configuration error")
		return domain.Misconfigured(m.name, "state %q pops with no suspended state", st.key)
	}
	top := st.history[len(st.history)-1]
	st.history = st.history[:len(st.history)-1]
	st.sub.Abort(ctx, "state popped")
	ctx.Log().Debug("Pop", "machine", m.name, "from", st.key, "to", top.key, "depth", len(st.history))
	if m.onTransition != nil {
		m.onTransition(ctx, st.key, top.key)
	}
	st.key = top.key
	st.sub = top.sub
	return nil
}

// enter discards the active child and switches to target with a fresh one.
func (m *Machine) enter(ctx *domain.Context, f *domain.Frame, st *machineState, target string) error {
	next, ok := m.states[target]
	if !ok {
		st.sub.Abort(ctx, "configuration error")
		return domain.Misconfigured(m.name, "state %q transitions to undefined state %q", st.key, target)
	}
	st.sub.Abort(ctx, "state changed")
	ctx.Log().Debug("Transition", "machine", m.name, "from", st.key, "to", target)
	if m.onTransition != nil {
		m.onTransition(ctx, st.key, target)
	}
	st.key = target
	st.sub = runtime.Nested(ctx, f, next.node)
	return nil
}

// Abort implements domain.Aborter.
func (m *Machine) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*machineState); ok {
		st.release(ctx, "parent aborted")
	}
}

// State returns the active state key of a live machine frame.
// Suspended states are not included.
func (m *Machine) State(f *domain.Frame) (string, bool) {
	st, ok := f.Data.(*machineState)
	if !ok {
		return "", false
	}
	return st.key, true
}

// Initial returns the initial state key.
func (m *Machine) Initial() string { return m.initial }

// States returns the declared state keys in declaration order.
func (m *Machine) States() []string {
	return append([]string(nil), m.order...)
}

// Describe implements domain.Describer.
func (m *Machine) Describe() domain.Descriptor {
	children := make([]domain.Node, 0, len(m.order))
	for _, k := range m.order {
		children = append(children, m.states[k].node)
	}
	return domain.Descriptor{Name: m.name, Kind: domain.KindStateMachine, Children: children}
}

// Inspect implements domain.Inspector.
func (m *Machine) Inspect(f *domain.Frame) domain.FrameDetail {
	st, ok := f.Data.(*machineState)
	if !ok {
		return domain.FrameDetail{}
	}
	d := domain.FrameDetail{State: st.key}
	if len(st.history) > 0 {
		keys := make([]string, 0, len(st.history)+1)
		for _, h := range st.history {
			keys = append(keys, h.key)
		}
		d.State = strings.Join(append(keys, st.key), " > ")
	}
	if !st.sub.Empty() {
		d.Branches = [][]domain.FrameInfo{st.sub.Path()}
	}
	return d
}

// Edge is a statically known transition of a Table rule.
type Edge struct {
	From string
	To   string
	On   string
	Now  bool
	Push bool
}

// Edges lists the transitions declared by Table rules, in declaration order.
// Transitions decided by Rule functions are not known statically.
func (m *Machine) Edges() []Edge {
	var out []Edge
	for _, k := range m.order {
		t, ok := m.states[k].rules.(Table)
		if !ok {
			continue
		}
		for _, c := range []struct {
			on string
			d  Decision
		}{{"success", t.Success}, {"failure", t.Failure}, {"aborted", t.Aborted}, {"pending", t.Pending}} {
			if c.d.leads() {
				out = append(out, Edge{From: k, To: c.d.target, On: c.on, Now: c.d.kind == goNow, Push: c.d.kind == push})
			}
		}
	}
	return out
}

// Node returns the child node of state key.
func (m *Machine) Node(key string) (domain.Node, bool) {
	s, ok := m.states[key]
	if !ok {
		return nil, false
	}
	return s.node, true
}
