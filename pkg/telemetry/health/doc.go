// Package health serves the liveness and readiness probes.
//
// /health answers 200 while the process serves requests. /ready runs the
// registered checks concurrently, each bounded by a timeout, and answers 503
// if any of them fails:
//
//	checker := health.New(5 * time.Second)
//	checker.Register("history", func(ctx context.Context) error {
//	    _, err := store.List(ctx, 1)
//	    return err
//	})
//	mux.Handle("GET /ready", checker.ReadinessHandler())
package health
