package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/claritty/internal/api/middleware"
	"github.com/GriffinCanCode/claritty/internal/app"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/config"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/logging"
	"github.com/GriffinCanCode/claritty/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/claritty/internal/monitor"
	"github.com/GriffinCanCode/claritty/internal/server"
	"github.com/GriffinCanCode/claritty/internal/terminal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var rootFlags struct {
	shell       string
	prompt      string
	tick        time.Duration
	mode        string
	metricsLog  time.Duration
	httpEnabled bool
	host        string
	port        string
	logLevel    string
	logDev      bool
}

var rootCmd = &cobra.Command{
	Use:   "claritty",
	Short: "Run a shell in a pseudo-terminal and surface its output",
	Long: `Run a shell in a pseudo-terminal and surface its output.

The shell's output is drained every tick without blocking and mirrored to
stdout. Frame rate and process usage are sampled on the same tick and
logged periodically. With --http, a read-only inspection API serves the
output, the metrics and a live WebSocket stream.

Every flag has an environment variable counterpart; flags win.

Examples:
  claritty                          # zsh, 16ms ticks
  claritty --shell bash --mode event
  claritty --http --port 7681       # also serve /output, /metrics, /stream`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.shell, "shell", "", "shell to run, looked up in PATH (env CLARITTY_SHELL)")
	f.StringVar(&rootFlags.prompt, "prompt", "", "PS1 forced into the shell environment (env CLARITTY_PROMPT)")
	f.DurationVar(&rootFlags.tick, "tick", 0, "tick interval (env TICK_INTERVAL)")
	f.StringVar(&rootFlags.mode, "mode", "", "loop mode: tick or event (env LOOP_MODE)")
	f.DurationVar(&rootFlags.metricsLog, "metrics-log", 0, "how often to log metrics, 0 disables (env METRICS_LOG_INTERVAL)")
	f.BoolVar(&rootFlags.httpEnabled, "http", false, "serve the inspection API (env HTTP_ENABLED)")
	f.StringVar(&rootFlags.host, "host", "", "inspection API host (env HOST)")
	f.StringVar(&rootFlags.port, "port", "", "inspection API port (env PORT)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.BoolVar(&rootFlags.logDev, "log-dev", false, "human-readable console logs (env LOG_DEV)")
}

// loadConfig reads the environment, applies the flags the user set and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Process()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("shell") {
		cfg.Terminal.Shell = rootFlags.shell
	}
	if flags.Changed("prompt") {
		cfg.Terminal.Prompt = rootFlags.prompt
	}
	if flags.Changed("tick") {
		cfg.Loop.TickInterval = rootFlags.tick
	}
	if flags.Changed("mode") {
		cfg.Loop.Mode = rootFlags.mode
	}
	if flags.Changed("metrics-log") {
		cfg.Loop.MetricsLogInterval = rootFlags.metricsLog
	}
	if flags.Changed("http") {
		cfg.Server.Enabled = rootFlags.httpEnabled
	}
	if flags.Changed("host") {
		cfg.Server.Host = rootFlags.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = rootFlags.port
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = rootFlags.logLevel
	}
	if flags.Changed("log-dev") {
		cfg.Logging.Development = rootFlags.logDev
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	session, err := terminal.Create(terminal.Options{
		Shell:  cfg.Terminal.Shell,
		Prompt: cfg.Terminal.Prompt,
		Logger: logger.Component("terminal"),
	})
	if err != nil {
		logger.Error("Failed to start shell session", zap.Error(err))
		return err
	}
	defer session.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	sampler := monitor.NewSampler(monitor.NewProcfsSource(""), logger.Component("monitor"))

	// Validated above.
	mode, _ := app.ParseMode(cfg.Loop.Mode)
	out := newConsole(os.Stdout, logger.Component("console"), cfg.Loop.MetricsLogInterval)
	a := app.New(session, sampler,
		app.WithLogger(logger.Logger),
		app.WithMetrics(metrics),
		app.WithTickInterval(cfg.Loop.TickInterval),
		app.WithMode(mode),
		app.WithConsumer(out.Consume),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Run(gctx); err != nil {
			return err
		}
		// Output written right before the shell exited is still buffered.
		a.Flush()
		return nil
	})

	g.Go(func() error {
		select {
		case <-session.Exited():
			logger.Info("Shell exited, stopping", zap.Error(session.ExitErr()))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			Addr: cfg.Server.Addr(),
			RateLimit: middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				Burst:             cfg.RateLimit.Burst,
			},
			RateLimitEnabled: cfg.RateLimit.Enabled,
			CORS:             middleware.DefaultCORSConfig(),
		}, server.Deps{
			Source:   a,
			Session:  session,
			Metrics:  metrics,
			Registry: reg,
			Logger:   logger.Logger,
		})
		g.Go(func() error { return srv.Run(gctx) })
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Stopped with error", zap.Error(err))
		return err
	}
	return nil
}
