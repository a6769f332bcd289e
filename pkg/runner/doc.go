/*
Package runner drives a stackbt.Tree in a loop: one tick per interval until
the root completes, a tick budget runs out, or the context is cancelled.

It is the reference host loop. Games and simulations usually tick from their
own frame loop instead and call Tree.Tick directly.

# Usage

	r := runner.New(
		runner.WithInterval(100*time.Millisecond),
		runner.WithWorld(func() any { return world }),
		runner.WithObserver(func(r domain.Result, snap domain.Snapshot) {
			fmt.Println(snap.Tick, r)
		}),
	)

	res, err := r.Run(ctx, tree)
*/
package runner
