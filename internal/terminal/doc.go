// Package terminal provides the pseudo-terminal session core.
//
// A single interactive shell is started on the slave side of a freshly
// allocated pty. The master side stays with the caller, configured for
// non-blocking I/O, and is drained once per tick into an append-only Sink.
//
// Components:
//   - Session: owns the master descriptor and the shell process
//   - Sink: append-only byte buffer with an incrementally decoded text view
//   - Drainer: bounded, non-blocking read from the master into the Sink
//
// Lifecycle:
//   - Create allocates the pty, starts the shell and configures O_NONBLOCK
//   - DrainOnce is called every tick and never blocks
//   - Close releases the master; the shell is reaped in the background
//
// Example Usage:
//
//	sess, err := terminal.Create(terminal.Options{Shell: "zsh", Logger: logger})
//	if err != nil {
//	    logger.Fatal("Failed to create session", zap.Error(err))
//	}
//	sink := terminal.NewSink()
//	drainer := terminal.NewDrainer(sess, sink, logger)
//
//	for range ticker.C {
//	    drainer.DrainOnce()
//	    render(sink.Text())
//	}
package terminal
