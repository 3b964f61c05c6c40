// Package monitor samples frame cadence and process resource usage.
//
// A Sampler is driven on the same tick as the pty drain. Each call measures
// the wall-clock interval since the previous call, keeps the last 60 of them
// in a FrameWindow, and reads CPU, resident memory and thread count for the
// current process from a ProcessSource.
//
// Derived values:
//   - FPS: reciprocal of the average interval, 0 when the average is 0
//   - CoresUsed: CPU percent / 100 (percent is relative to one core)
//   - ResidentMB: resident bytes / 1024 / 1024
//
// A process missing from the source's snapshot yields zero values; sampling
// never fails.
//
// Example Usage:
//
//	source := monitor.NewProcfsSource(procfs.DefaultMountPoint)
//	sampler := monitor.NewSampler(source, logger)
//	m := sampler.Sample()
//	fmt.Println(m.Lines())
package monitor
