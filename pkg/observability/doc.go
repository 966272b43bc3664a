/*
Package observability turns loader lifecycle hooks into logs and Prometheus metrics.

	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks().Combine(observability.LoggingHooks(logger))
	loader, _ := arbor.New("run_params", arbor.WithLifecycleHooks(hooks))
*/
package observability
