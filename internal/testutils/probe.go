package testutils

import (
	"context"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
)

// Probe is a scripted leaf that records how often it was ticked and aborted.
//
// Each entry runs the script from the start: script[i] is returned on the
// i-th tick of that entry. Once the script is exhausted the last result
// repeats.
type Probe struct {
	Name    string
	Script  []domain.Result
	Ticks   int
	Entries int
	Aborts  []string
}

// NewProbe returns a probe following script.
func NewProbe(name string, script ...domain.Result) *Probe {
	return &Probe{Name: name, Script: script}
}

// Pendings returns a probe that is Pending for n ticks and then yields final.
func Pendings(name string, n int, final domain.Result) *Probe {
	script := make([]domain.Result, 0, n+1)
	for i := 0; i < n; i++ {
		script = append(script, domain.Pending())
	}
	return NewProbe(name, append(script, final)...)
}

// Forever returns a probe that never completes.
func Forever(name string) *Probe {
	return NewProbe(name, domain.Pending())
}

type probeFrame struct {
	step int
}

// Tick implements domain.Node.
func (p *Probe) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
	st, ok := f.Data.(*probeFrame)
	if !ok {
		st = &probeFrame{}
		f.Data = st
		p.Entries++
	}
	p.Ticks++
	r := domain.Succeed(nil)
	if n := len(p.Script); n > 0 {
		r = p.Script[min(st.step, n-1)]
	}
	st.step++
	return domain.Yield(r), nil
}

// Abort implements domain.Aborter.
func (p *Probe) Abort(_ *domain.Context, _ *domain.Frame) {
	p.Aborts = append(p.Aborts, p.Name)
}

// Describe implements domain.Describer.
func (p *Probe) Describe() domain.Descriptor {
	return domain.Descriptor{Name: p.Name, Kind: domain.KindLeaf}
}

// Ctx builds a tick context at tick n with a fixed clock.
func Ctx(n uint64) *domain.Context {
	return domain.NewContext(context.Background(), nil, n, Epoch.Add(time.Duration(n)*time.Second))
}

// Epoch is the clock origin used by Ctx.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Driver ticks a root-level tick function with increasing tick numbers.
type Driver struct {
	tick func(*domain.Context) (domain.Result, error)
	n    uint64
}

// NewDriver wraps a stack-like Tick function.
func NewDriver(tick func(*domain.Context) (domain.Result, error)) *Driver {
	return &Driver{tick: tick}
}

// Next ticks once and returns the result.
func (d *Driver) Next() (domain.Result, error) {
	d.n++
	return d.tick(Ctx(d.n))
}
