package dsl

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/stackbt/pkg/bt"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/fsm"
	"github.com/aretw0/stackbt/pkg/leaf"
	"github.com/aretw0/stackbt/pkg/registry"
	"github.com/aretw0/stackbt/pkg/schema"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry sets the leaf kinds available to the definition (default registry.Default()).
func WithRegistry(r *registry.Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// Compiler turns definitions into node graphs.
type Compiler struct {
	registry *registry.Registry
	errs     []error
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = registry.Default()
	}
	return c
}

// Compile builds the node graph of t. Every problem found is reported in a
// single *schema.AggregateError.
func Compile(t *Tree, opts ...Option) (domain.Node, error) {
	return NewCompiler(opts...).Compile(t)
}

// Compile builds the node graph of t.
func (c *Compiler) Compile(t *Tree) (domain.Node, error) {
	c.errs = nil
	root := c.node("root", &t.Root)
	if len(c.errs) > 0 {
		return nil, &schema.AggregateError{Errors: c.errs}
	}
	return root, nil
}

func (c *Compiler) fail(path, format string, args ...any) {
	c.errs = append(c.errs, &schema.ValidationError{Key: path, Reason: fmt.Sprintf(format, args...)})
}

// check records err, if any, and reports whether it was nil.
func (c *Compiler) check(path string, err error) bool {
	if err == nil {
		return true
	}
	if errs := schema.ValidationErrors(err); errs != nil {
		c.errs = append(c.errs, schema.ValidationErrors(schema.Prefix(path, err))...)
		return false
	}
	c.fail(path, "%v", err)
	return false
}

// Param schemas of the built-in node types.
var builtinParams = map[string]schema.Schema{
	"sequence":          {},
	"selector":          {},
	"reactive_selector": {},
	"parallel":          {"policy": schema.Optional(schema.String()), "count": schema.Optional(schema.Int())},
	"inverter":          {},
	"force_success":     {},
	"force_failure":     {},
	"repeat":            {"times": schema.Optional(schema.Int())},
	"repeat_until":      {"outcome": schema.String()},
	"timeout":           {"ticks": schema.Optional(schema.Int()), "duration": schema.Optional(schema.Duration())},
	"guard":             {"if": schema.String()},
	"condition":         {"if": schema.String()},
	"wait_until":        {"until": schema.String()},
	"state_machine":     {"max_hops": schema.Optional(schema.Int())},
}

func (c *Compiler) node(path string, def *Node) domain.Node {
	if def.Type == "" {
		c.fail(path+".type", "required")
		return nil
	}
	name := def.Name
	if name == "" {
		name = def.Type
	}

	ps, builtin := builtinParams[def.Type]
	if !builtin {
		if _, ok := c.registry.Lookup(def.Type); !ok {
			c.fail(path+".type", "unknown node type %q", def.Type)
			return nil
		}
		n, err := c.registry.Build(def.Type, name, def.Params)
		if !c.check(path+".params", err) {
			return nil
		}
		c.noChildren(path, def)
		return n
	}
	if !c.check(path+".params", schema.Validate(ps, def.Params)) {
		return nil
	}

	switch def.Type {
	case "sequence", "selector", "reactive_selector", "parallel":
		return c.composite(path, name, def)
	case "inverter", "force_success", "force_failure", "repeat", "repeat_until", "timeout", "guard":
		return c.decorator(path, name, def)
	case "condition", "wait_until":
		c.noChildren(path, def)
		return c.conditionLeaf(path, name, def)
	case "state_machine":
		return c.machine(path, name, def)
	}
	return nil
}

func (c *Compiler) noChildren(path string, def *Node) {
	if len(def.Children) > 0 || def.Child != nil || len(def.States) > 0 {
		c.fail(path, "%s nodes take no children", def.Type)
	}
}

func (c *Compiler) children(path string, def *Node) []domain.Node {
	if def.Child != nil {
		c.fail(path+".child", "%s takes children, not child", def.Type)
	}
	out := make([]domain.Node, 0, len(def.Children))
	for i := range def.Children {
		if n := c.node(fmt.Sprintf("%s.children[%d]", path, i), &def.Children[i]); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *Compiler) composite(path, name string, def *Node) domain.Node {
	errsBefore := len(c.errs)
	kids := c.children(path, def)
	if len(c.errs) > errsBefore {
		return nil
	}

	var (
		n   domain.Node
		err error
	)
	switch def.Type {
	case "sequence":
		n, err = bt.NewSequence(name, kids...)
	case "selector":
		n, err = bt.NewSelector(name, kids...)
	case "reactive_selector":
		n, err = bt.NewReactiveSelector(name, kids...)
	case "parallel":
		var p struct {
			Policy string `mapstructure:"policy"`
			Count  int    `mapstructure:"count"`
		}
		if !c.check(path+".params", registry.Decode(def.Params, &p)) {
			return nil
		}
		policy, perr := parsePolicy(p.Policy, p.Count)
		if perr != nil {
			c.fail(path+".params.policy", "%v", perr)
			return nil
		}
		n, err = bt.NewParallel(name, policy, kids...)
	}
	if !c.check(path, err) {
		return nil
	}
	return n
}

func parsePolicy(policy string, count int) (bt.Policy, error) {
	switch {
	case policy == "count" || (policy == "" && count > 0):
		return bt.RequireCount(count), nil
	case count > 0:
		return bt.Policy{}, fmt.Errorf("count is only valid with policy \"count\"")
	case policy == "" || policy == "all":
		return bt.RequireAll, nil
	case policy == "any":
		return bt.RequireAny, nil
	default:
		return bt.Policy{}, fmt.Errorf("unknown policy %q (want all, any or count)", policy)
	}
}

func (c *Compiler) decorator(path, name string, def *Node) domain.Node {
	if len(def.Children) > 0 {
		c.fail(path+".children", "%s takes one child", def.Type)
		return nil
	}
	if def.Child == nil {
		c.fail(path+".child", "required")
		return nil
	}
	child := c.node(path+".child", def.Child)
	if child == nil {
		return nil
	}

	var (
		n   domain.Node
		err error
	)
	switch def.Type {
	case "inverter":
		n, err = bt.Inverter(name, child)
	case "force_success":
		n, err = bt.ForceSuccess(name, child)
	case "force_failure":
		n, err = bt.ForceFailure(name, child)
	case "repeat":
		var p struct {
			Times int `mapstructure:"times"`
		}
		if !c.check(path+".params", registry.Decode(def.Params, &p)) {
			return nil
		}
		n, err = bt.NewRepeat(name, child, p.Times)
	case "repeat_until":
		o, oerr := parseOutcome(def.Params["outcome"].(string))
		if oerr != nil {
			c.fail(path+".params.outcome", "%v", oerr)
			return nil
		}
		n, err = bt.NewRepeatUntil(name, child, o)
	case "timeout":
		var p struct {
			Ticks    int           `mapstructure:"ticks"`
			Duration time.Duration `mapstructure:"duration"`
		}
		if !c.check(path+".params", registry.Decode(def.Params, &p)) {
			return nil
		}
		switch {
		case p.Ticks > 0 && p.Duration > 0:
			c.fail(path+".params", "set ticks or duration, not both")
			return nil
		case p.Duration > 0:
			n, err = bt.NewDeadline(name, child, p.Duration)
		default:
			n, err = bt.NewTimeout(name, child, p.Ticks)
		}
	case "guard":
		cond, cerr := CompileCondition(def.Params["if"].(string))
		if !c.check(path+".params.if", cerr) {
			return nil
		}
		n, err = bt.NewGuard(name, child, cond.Eval)
	}
	if !c.check(path, err) {
		return nil
	}
	return n
}

func parseOutcome(s string) (domain.Outcome, error) {
	switch s {
	case "success":
		return domain.Success, nil
	case "failure":
		return domain.Failure, nil
	default:
		return domain.Success, fmt.Errorf("unknown outcome %q (want success or failure)", s)
	}
}

func (c *Compiler) conditionLeaf(path, name string, def *Node) domain.Node {
	if def.Type == "condition" {
		cond, err := CompileCondition(def.Params["if"].(string))
		if !c.check(path+".params.if", err) {
			return nil
		}
		return leaf.Condition(name, cond.Eval)
	}
	cond, err := CompileCondition(def.Params["until"].(string))
	if !c.check(path+".params.until", err) {
		return nil
	}
	return leaf.WaitUntil(name, cond.Eval)
}

func (c *Compiler) machine(path, name string, def *Node) domain.Node {
	if len(def.Children) > 0 || def.Child != nil {
		c.fail(path, "state machines take states, not children")
		return nil
	}
	if len(def.States) == 0 {
		c.fail(path+".states", "required")
		return nil
	}
	var p struct {
		MaxHops *int `mapstructure:"max_hops"`
	}
	if !c.check(path+".params", registry.Decode(def.Params, &p)) {
		return nil
	}

	b := fsm.New(name).Initial(def.Initial)
	if def.Initial == "" {
		b.Initial(def.States[0].Key)
	}
	errsBefore := len(c.errs)
	for i := range def.States {
		s := &def.States[i]
		spath := fmt.Sprintf("%s.states[%d]", path, i)
		if s.Key == "" {
			c.fail(spath+".key", "required")
			continue
		}
		node := c.node(spath+".node", &s.Node)
		table := c.table(spath+".on", s.On)
		b.State(s.Key, node, table)
	}
	if len(c.errs) > errsBefore {
		return nil
	}

	var opts []fsm.Option
	if p.MaxHops != nil {
		opts = append(opts, fsm.WithMaxHops(*p.MaxHops))
	}
	m, err := b.Build(opts...)
	if !c.check(path, err) {
		return nil
	}
	return m
}

func (c *Compiler) table(path string, on map[string]string) fsm.Table {
	var t fsm.Table
	// Broad keys first so that a specific result overrides them.
	keys := slices.SortedFunc(maps.Keys(on), func(a, b string) int {
		if c := cmp.Compare(breadth(b), breadth(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for _, result := range keys {
		src := on[result]
		d, err := parseDecision(src)
		if err != nil {
			c.fail(path+"."+result, "%v", err)
			continue
		}
		switch result {
		case "success":
			t.Success = d
		case "failure":
			t.Failure = d
		case "aborted":
			t.Aborted = d
		case "pending":
			t.Pending = d
		case "complete":
			t.Success, t.Failure = d, d
		case "any":
			t.Success, t.Failure, t.Aborted = d, d, d
		default:
			c.fail(path+"."+result, "unknown result (want success, failure, aborted, pending, complete or any)")
		}
	}
	return t
}

func breadth(result string) int {
	switch result {
	case "any":
		return 2
	case "complete":
		return 1
	default:
		return 0
	}
}

func parseDecision(s string) (fsm.Decision, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fsm.Decision{}, fmt.Errorf("empty decision")
	}
	verb := fields[0]
	switch {
	case len(fields) == 1 && verb == "stay":
		return fsm.Stay(), nil
	case len(fields) == 1 && verb == "succeed":
		return fsm.CompleteWith(domain.Success), nil
	case len(fields) == 1 && verb == "fail":
		return fsm.CompleteWith(domain.Failure), nil
	case len(fields) == 1 && verb == "propagate":
		return fsm.Propagate(), nil
	case len(fields) == 2 && verb == "goto":
		return fsm.GoTo(fields[1]), nil
	case len(fields) == 2 && verb == "now":
		return fsm.GoNow(fields[1]), nil
	case len(fields) == 2 && verb == "push":
		return fsm.Push(fields[1]), nil
	case len(fields) == 1 && verb == "pop":
		return fsm.Pop(), nil
	default:
		return fsm.Decision{}, fmt.Errorf("unknown decision %q", s)
	}
}
