package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/internal/logging"
	"github.com/aretw0/stackbt/internal/presentation/tui"
	httpadapter "github.com/aretw0/stackbt/pkg/adapters/http"
	"github.com/aretw0/stackbt/pkg/adapters/memory"
	"github.com/aretw0/stackbt/pkg/adapters/redis"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/observability"
	"github.com/aretw0/stackbt/pkg/ports"
	"github.com/aretw0/stackbt/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Path      string
	WorldPath string
	Ticks     int           // 0 runs until the root completes
	Interval  time.Duration // pause between ticks
	Debug     bool
	Quiet     bool
	RedisAddr string
	ServeAddr string
	TreeID    string

	Out     io.Writer
	Profile termenv.Profile
}

// ErrRootFailed is returned by Run when the root completes with failure.
var ErrRootFailed = errors.New("tree completed with failure")

// Run loads the tree at opts.Path and ticks it with a runner.Runner, printing
// one line per tick. Cancelling ctx resets the tree and returns nil.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	def, root, err := loadTree(opts.Path)
	if err != nil {
		return err
	}
	world, err := loadWorld(def, opts.WorldPath)
	if err != nil {
		return err
	}

	// Debug logs go to stderr so they never interleave with the tick lines on opts.Out.
	logger := logging.NewNop()
	if opts.Debug {
		logger = logging.New(slog.LevelDebug)
	}
	treeOpts := []stackbt.Option{stackbt.WithLogger(logger), stackbt.WithName(def.Name)}
	if opts.TreeID != "" {
		treeOpts = append(treeOpts, stackbt.WithID(opts.TreeID))
	}
	if opts.Debug {
		treeOpts = append(treeOpts, stackbt.WithLifecycleHooks(observability.LogHooks(logger)))
	}

	var store ports.SnapshotStore = memory.NewStore()
	if opts.RedisAddr != "" {
		rs := redis.New(opts.RedisAddr, "", 0)
		defer rs.Close()
		store = rs
	}
	var publisher ports.SnapshotPublisher = store

	var srv *httpadapter.Server
	if opts.ServeAddr != "" {
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)
		treeOpts = append(treeOpts, stackbt.WithLifecycleHooks(metrics.Hooks()))
		srv = httpadapter.NewServer(store, httpadapter.WithMetrics(reg), httpadapter.WithLogger(logger))
		publisher = srv
	}
	treeOpts = append(treeOpts, stackbt.WithSnapshotPublisher(publisher))

	tree, err := stackbt.New(root, treeOpts...)
	if err != nil {
		return err
	}
	logger.Info("Tree loaded", "path", opts.Path, "id", tree.ID())

	if srv != nil {
		srv.Attach(tree.ID(), root)
		hs := &http.Server{Addr: opts.ServeAddr, Handler: srv.Handler()}
		go func() {
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			hs.Shutdown(shutdownCtx)
		}()
	}

	if !opts.Quiet {
		tui.PrintBanner(opts.Out, opts.Profile)
		fmt.Fprintf(opts.Out, "tree %s (%s)\n", def.Name, tree.ID())
	}
	printer := tui.NewPrinter(opts.Out, opts.Profile)

	loop := runner.New(
		runner.WithLogger(logger),
		runner.WithInterval(opts.Interval),
		runner.WithMaxTicks(opts.Ticks),
		runner.WithWorld(func() any { return world }),
		runner.WithObserver(func(r domain.Result, snap domain.Snapshot) {
			printer.Tick(snap.Tick, r, snap.Path)
		}),
	)
	res, err := loop.Run(ctx, tree)
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil
	case err != nil:
		printer.Error(err)
		return err
	case res.Failed():
		return ErrRootFailed
	}
	return nil
}
