// Package app drives the terminal session.
//
// A single goroutine owns the drainer and the sampler. Every tick it drains
// one chunk of shell output, samples frame and process metrics, and
// publishes an immutable View. Other goroutines read the latest View
// through CurrentBytes, CurrentText, CurrentMetrics or Subscribe and never
// touch the session directly.
//
// Modes:
//   - tick: a time.Ticker fires every tick interval
//   - event: wait for pty readiness, bounded by the tick interval
//
// Example Usage:
//
//	a := app.New(session, sampler, app.WithLogger(logger), app.WithMode(app.ModeEvent))
//	go a.Run(ctx)
//	fmt.Println(a.CurrentMetrics().Lines())
package app
