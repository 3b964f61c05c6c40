/*
Package resilience provides a circuit breaker for dependencies polled at
tick cadence.

# Overview

A source that fails on every tick (for example /proc on a system without
procfs) would otherwise be retried sixty times a second. The breaker opens
after ReadyToTrip says so, rejects calls until Timeout has passed, then
admits MaxRequests trial calls.

# Usage

	breaker := resilience.New("procfs", resilience.Settings{
		Timeout: 30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("Breaker state changed", zap.Stringer("to", to))
		},
	})

	if err := breaker.Execute(source.Refresh); errors.Is(err, resilience.ErrCircuitOpen) {
		// skip this tick
	}

# States

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open
*/
package resilience
