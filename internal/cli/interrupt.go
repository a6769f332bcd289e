package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Interrupt is a context cancelled by the first SIGINT or SIGTERM, or by Stop.
// Unlike signal.NotifyContext it remembers which signal arrived.
type Interrupt struct {
	context.Context
	cancel context.CancelFunc
	caught atomic.Value
}

// WatchInterrupts starts listening for SIGINT and SIGTERM until parent is
// done or Stop is called.
func WatchInterrupts(parent context.Context) *Interrupt {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupt{Context: ctx, cancel: cancel}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			in.caught.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return in
}

// Stop cancels the context and releases the signal handler.
func (in *Interrupt) Stop() { in.cancel() }

// Caught returns the signal that cancelled the context, or nil.
func (in *Interrupt) Caught() os.Signal {
	sig, _ := in.caught.Load().(os.Signal)
	return sig
}
