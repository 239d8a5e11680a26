package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/sigwatch/src/features/broadcasting"
	"github.com/contre95/sigwatch/src/features/config"
	"github.com/contre95/sigwatch/src/features/dispatch"
	"github.com/contre95/sigwatch/src/features/hosting"
	"github.com/contre95/sigwatch/src/features/logging"
	"github.com/contre95/sigwatch/src/features/metrics"
	"github.com/contre95/sigwatch/src/features/watching"
	"github.com/contre95/sigwatch/src/infra/launcher"
	"github.com/contre95/sigwatch/src/infra/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	os.Exit(report(os.Stderr, newRootCommand().Execute()))
}

// report prints a fatal error as a single prefixed line and returns the exit
// status.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "%s: %v\n", logging.Prefix, err)
	return 1
}

// flagValues holds the raw command-line flag values.
type flagValues struct {
	configPath  string
	dumpConfig  bool
	verbose     bool
	init        bool
	tty         bool
	period      uint64
	signal      bool
	port        uint16
	name        string
	coalesce    bool
	logLevel    string
	logFormat   string
	metricsPort uint16
}

func newRootCommand() *cobra.Command {
	return newCommand(&flagValues{})
}

func newCommand(flags *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sigwatch [flags] FILES... [-- CMD [ARGS...]]",
		Short: "Run a command and/or push server-sent events when files change",
		Long: `sigwatch watches files and directories and, whenever they change, runs a
command to completion and/or broadcasts a server-sent event to every client
connected to http://127.0.0.1:<port>` + config.EventPath + `.

Arguments after -- form the command to run.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, flags, args)
			if err != nil {
				return err
			}
			if flags.dumpConfig {
				fmt.Fprint(cmd.OutOrStdout(), config.ToYAML(cfg))
				return nil
			}

			cfgManager, err := config.NewManager(cfg)
			if err != nil {
				return err
			}
			logger := logging.SetupLogger(cfgManager)
			slog.SetDefault(logger)
			slog.Debug("Effective configuration", "yaml", cfgManager.GetYAML())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfgManager)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	f.BoolVar(&flags.dumpConfig, "dump-config", false, "Print the effective configuration as YAML and exit")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Inform about event triggers on std output")
	f.BoolVarP(&flags.init, "init", "i", false, "Preemptively trigger command/event immediately at launch")
	f.BoolVar(&flags.tty, "tty", false, "Run the command attached to a pseudo-terminal")
	f.Uint64Var(&flags.period, "period", config.DefaultNotifyPeriod, fmt.Sprintf("File watcher notification period in ms (%d-%d)", config.MinNotifyPeriod, config.MaxNotifyPeriod))
	f.BoolVarP(&flags.signal, "signal", "s", false, "Send server events")
	f.Uint16VarP(&flags.port, "port", "p", config.DefaultEventPort, "TCP port for event broadcast")
	f.StringVarP(&flags.name, "name", "n", config.DefaultEventName, "Server event name")
	f.BoolVar(&flags.coalesce, "coalesce", false, "Collapse pending events of slow subscribers into one")
	f.StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", "text", "Log format: text, json, logfmt")
	f.Uint16Var(&flags.metricsPort, "metrics-port", config.DefaultMetricsPort, "Serve Prometheus metrics on this loopback port")

	return cmd
}

// buildConfig layers the configuration file and the explicitly set flags
// over the defaults. Arguments before -- are watched paths, the rest is the
// command.
func buildConfig(cmd *cobra.Command, flags *flagValues, args []string) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	files, command := args, []string(nil)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		files, command = args[:dash], args[dash:]
	}

	f := cmd.Flags()
	o := config.Overrides{Watch: files, Command: command}
	if f.Changed("verbose") {
		o.Verbose = &flags.verbose
	}
	if f.Changed("init") {
		o.Init = &flags.init
	}
	if f.Changed("tty") {
		o.TTY = &flags.tty
	}
	if f.Changed("period") {
		o.PeriodMs = &flags.period
	}
	if f.Changed("signal") {
		o.Signal = &flags.signal
	}
	if f.Changed("port") {
		o.Port = &flags.port
	}
	if f.Changed("name") {
		o.Name = &flags.name
	}
	if f.Changed("coalesce") {
		o.Coalesce = &flags.coalesce
	}
	if f.Changed("log-level") {
		o.LogLevel = &flags.logLevel
	}
	if f.Changed("log-format") {
		o.LogFormat = &flags.logFormat
	}
	if f.Changed("metrics-port") {
		o.MetricsPort = &flags.metricsPort
	}
	if err := o.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run wires the watcher, the dispatcher and the optional servers, then blocks
// until a fatal error or until ctx is cancelled.
func run(ctx context.Context, cfgManager *config.Manager) error {
	cfg := cfgManager.Get()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	fsWatcher, err := watcher.NewWatcher(time.Duration(cfg.PeriodMs) * time.Millisecond)
	if err != nil {
		return fmt.Errorf("%w: %v", watching.ErrNotifier, err)
	}
	defer fsWatcher.Stop()
	for _, path := range cfg.Watch {
		if err := fsWatcher.Watch(watching.Target{Path: path, Recursive: true}); err != nil {
			return err
		}
	}

	registry := broadcasting.NewRegistry(m)
	var eventServer *broadcasting.Server
	if cfg.Broadcast.Enabled {
		eventServer = broadcasting.NewServer(cfgManager, registry)
		if err := eventServer.Listen(); err != nil {
			return err
		}
	}
	var metricsServer *hosting.Server
	if cfg.Metrics.Enabled {
		metricsServer = hosting.NewServer(cfgManager, m)
		if err := metricsServer.Listen(); err != nil {
			return err
		}
	}

	dispatcher := dispatch.NewService(cfgManager, launcher.New(), registry, m)
	loop := watching.NewService(watching.NewClassifier(fsWatcher), dispatcher, m)

	g, ctx := errgroup.WithContext(ctx)
	if eventServer != nil {
		g.Go(func() error { return eventServer.Serve(ctx) })
	}
	if metricsServer != nil {
		g.Go(metricsServer.Start)
		g.Go(func() error {
			<-ctx.Done()
			return metricsServer.Shutdown()
		})
	}

	fsWatcher.Start(ctx)
	g.Go(func() error {
		if cfg.Init {
			if err := dispatcher.Update(ctx); err != nil {
				return err
			}
		}
		return loop.Run(ctx, fsWatcher.Notices())
	})

	return g.Wait()
}
