/*
Package observability turns stack lifecycle events into Prometheus metrics
and structured log lines.

Both are delivered as domain.LifecycleHooks, so they compose with each other
and with caller hooks:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	tree, _ := stackbt.New(root, stackbt.WithLifecycleHooks(m.Hooks().Merge(observability.LogHooks(logger))))
*/
package observability
