package registry

import (
	"fmt"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/leaf"
	"github.com/aretw0/stackbt/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Builtins registers the generic leaf kinds:
//
//	succeed, fail           complete immediately
//	wait      {ticks}       pending for ticks ticks, then success
//	sleep     {for}         pending until the context clock advanced by for
//	set       {key, value}  world[key] = value, success
//	incr      {key, by?}    world[key] += by (default 1), success
//	log       {message}     logs message at info level, success
func Builtins(r *Registry) *Registry {
	r.Register(Entry{
		Kind:        "succeed",
		Description: "completes with success",
		New:         func(name string, _ map[string]any) (domain.Node, error) { return leaf.Succeed(name), nil },
	})
	r.Register(Entry{
		Kind:        "fail",
		Description: "completes with failure",
		New:         func(name string, _ map[string]any) (domain.Node, error) { return leaf.Fail(name), nil },
	})
	r.Register(Entry{
		Kind:        "wait",
		Description: "pending for a number of ticks",
		Params:      schema.Schema{"ticks": schema.Int()},
		New: func(name string, params map[string]any) (domain.Node, error) {
			var p struct {
				Ticks int `mapstructure:"ticks"`
			}
			if err := Decode(params, &p); err != nil {
				return nil, err
			}
			return leaf.Wait(name, p.Ticks), nil
		},
	})
	r.Register(Entry{
		Kind:        "sleep",
		Description: "pending until the clock advanced",
		Params:      schema.Schema{"for": schema.Duration()},
		New: func(name string, params map[string]any) (domain.Node, error) {
			var p struct {
				For time.Duration `mapstructure:"for"`
			}
			if err := Decode(params, &p); err != nil {
				return nil, err
			}
			return leaf.Sleep(name, p.For), nil
		},
	})
	r.Register(Entry{
		Kind:        "set",
		Description: "sets a world key",
		Params:      schema.Schema{"key": schema.String(), "value": schema.Any()},
		New: func(name string, params map[string]any) (domain.Node, error) {
			key, value := params["key"].(string), params["value"]
			return leaf.Action(name, func(ctx *domain.Context) domain.Result {
				w, ok := ctx.World.(map[string]any)
				if !ok {
					return domain.Fail(fmt.Sprintf("world is %T, not a map", ctx.World))
				}
				w[key] = value
				return domain.Succeed(value)
			}), nil
		},
	})
	r.Register(Entry{
		Kind:        "incr",
		Description: "adds to a numeric world key",
		Params:      schema.Schema{"key": schema.String(), "by": schema.Optional(schema.Float())},
		New: func(name string, params map[string]any) (domain.Node, error) {
			p := struct {
				Key string  `mapstructure:"key"`
				By  float64 `mapstructure:"by"`
			}{By: 1}
			if err := Decode(params, &p); err != nil {
				return nil, err
			}
			return leaf.Action(name, func(ctx *domain.Context) domain.Result {
				w, ok := ctx.World.(map[string]any)
				if !ok {
					return domain.Fail(fmt.Sprintf("world is %T, not a map", ctx.World))
				}
				n, err := toFloat(w[p.Key])
				if err != nil {
					return domain.Fail(err.Error())
				}
				w[p.Key] = n + p.By
				return domain.Succeed(w[p.Key])
			}), nil
		},
	})
	r.Register(Entry{
		Kind:        "log",
		Description: "logs a message",
		Params:      schema.Schema{"message": schema.String()},
		New: func(name string, params map[string]any) (domain.Node, error) {
			msg := params["message"].(string)
			return leaf.Action(name, func(ctx *domain.Context) domain.Result {
				ctx.Log().Info(msg, "node", name, "tick", ctx.Tick)
				return domain.Succeed(nil)
			}), nil
		},
	})
	return r
}

// Default returns a registry holding the builtin kinds.
func Default() *Registry {
	return Builtins(NewRegistry())
}

// Decode decodes validated params into a struct with mapstructure tags,
// converting duration strings and loosely typed numbers.
func Decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("value is %T, not a number", v)
	}
}
