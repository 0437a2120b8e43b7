// Package cli implements the docinsight command line.
package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"docinsight/internal/config"
	"docinsight/internal/loader"
	"docinsight/internal/logger"
	"docinsight/internal/metrics"
	"docinsight/internal/service"
	"docinsight/internal/session"
)

var (
	configPath  string
	verbose     bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "docinsight",
	Short: "Summarize, question and quiz yourself on a text document",
	Long: `docinsight reads a plain-text or markdown document, summarizes it,
answers free-form questions grounded in its paragraphs and generates
comprehension questions that it scores against the document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file when the command ends")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// app holds the services one command invocation needs.
type app struct {
	cfg      *config.AppConfig
	log      *logger.Logger
	registry *prometheus.Registry
	store    session.Store
	sessions *service.SessionService
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode, verbose || cfg.Log.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	engine, err := service.NewEngineFromConfig(cfg, log, m)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	store, err := service.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	log.Debug("command ready", "command", cmd.Name(), "backend", cfg.Ranker.Backend, "store", cfg.Session.Store)
	return &app{
		cfg:      cfg,
		log:      log,
		registry: reg,
		store:    store,
		sessions: service.NewSessionService(engine, store, log, m),
	}, nil
}

// Close releases the store and writes the metrics file when one was requested.
func (a *app) Close() error {
	defer a.log.Sync()
	if err := a.store.Close(); err != nil {
		a.log.Warn("close session store", "error", err)
	}
	if metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.log.Debug("metrics written", "path", metricsFile)
	return nil
}

func loadConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// upload loads path and opens a new session for it.
func (a *app) upload(ctx context.Context, path string) (*session.Session, string, error) {
	doc, err := loader.Load(path)
	if err != nil {
		return nil, "", err
	}
	return a.sessions.Upload(ctx, doc.Name, doc.Text)
}

// withApp adapts a RunE that needs the application services.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		runErr := run(cmd, args, a)
		if err := a.Close(); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}
