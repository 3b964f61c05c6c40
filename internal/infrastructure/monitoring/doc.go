/*
Package monitoring exports session and HTTP metrics to Prometheus.

# Overview

The driving loop reports every tick (frame interval, process usage, pty
read outcomes, sink size); the HTTP middleware reports request latency.
Everything is registered on the Registerer passed to NewMetrics so tests
can use a private registry.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	metrics.ObserveSample(sampler.Sample())
	metrics.RecordRead(monitoring.ReadData, n)
*/
package monitoring
