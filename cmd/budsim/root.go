package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/budsim/config"
	"github.com/pthm-cable/budsim/metrics"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath  string
	seed        int64
	logLevel    string
	metricsAddr string

	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	server   *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "budsim",
		Short: "Plant branching and hormone transport simulator",
		Long: `budsim grows branching structures from scripted or random scenarios and
relaxes the auxin and PIN distribution on the finished topology.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flags.Int64Var(&a.seed, "seed", 0, "RNG seed (0 = config value, then time-based)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty = config value)")

	root.AddCommand(
		newGrowCmd(a),
		newRelaxCmd(a),
		newStemCmd(a),
		newFitCmd(a),
		newScenariosCmd(),
	)
	return root
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	level, err := parseLevel(a.logLevel)
	if err != nil {
		return err
	}
	// Logs go to stderr so that command output on stdout stays parseable.
	a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	a.recorder = metrics.New()
	addr := a.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		a.serveMetrics(addr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.recorder.Handler())
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("starting metrics server", "addr", addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
}

func (a *app) shutdown() {
	if a.server != nil {
		a.server.Close()
	}
}

// resolveSeed picks the flag, then the config, then the clock.
func (a *app) resolveSeed() int64 {
	if a.seed != 0 {
		return a.seed
	}
	if a.cfg.Scenario.Seed != 0 {
		return a.cfg.Scenario.Seed
	}
	return time.Now().UnixNano()
}
