package dsl

import (
	"fmt"
	"maps"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is a compiled boolean expression over the tick context.
type Condition struct {
	src     string
	program *vm.Program
}

// CompileCondition compiles src. Undefined variables evaluate to nil rather
// than failing compilation, since the world's shape is only known at tick time.
func CompileCondition(src string) (*Condition, error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", src, err)
	}
	return &Condition{src: src, program: program}, nil
}

// Eval runs the condition. A runtime error counts as false and is logged.
func (c *Condition) Eval(ctx *domain.Context) bool {
	out, err := expr.Run(c.program, Env(ctx))
	if err != nil {
		ctx.Log().Debug("Condition error", "expr", c.src, "err", err)
		return false
	}
	b, _ := out.(bool)
	return b
}

func (c *Condition) String() string { return c.src }

// Env is the expression environment of a tick: the world's keys when it is a
// map, plus "world" and "tick".
func Env(ctx *domain.Context) map[string]any {
	env := make(map[string]any)
	if m, ok := ctx.World.(map[string]any); ok {
		maps.Copy(env, m)
	}
	env["world"] = ctx.World
	env["tick"] = ctx.Tick
	return env
}
