// Package cli implements the duck-job command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"duck-job/internal/config"
	"duck-job/internal/dataframe"
	"duck-job/internal/job"
	"duck-job/internal/session"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// flagValues holds the overrides given on the command line.
type flagValues struct {
	configPath string
	appName    string
	logLevel   string
	logFormat  string
	numRows    int
	truncate   int
}

func (f *flagValues) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML job config file")
	fs.StringVar(&f.appName, "app-name", "", "Session application name (default \"ExampleJob\")")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: auto, json, text")
	fs.IntVar(&f.numRows, "num-rows", config.DefaultNumRows, "Maximum number of rows to show")
	fs.IntVar(&f.truncate, "truncate", config.DefaultTruncate, "Truncate cells to this many characters (0 disables)")
}

// apply overlays the flags the user actually set onto cfg.
func (f *flagValues) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("app-name") {
		cfg.AppName = f.appName
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("num-rows") {
		cfg.Show.NumRows = f.numRows
	}
	if fs.Changed("truncate") {
		cfg.Show.Truncate = f.truncate
	}
}

func newRootCmd() *cobra.Command {
	var flags flagValues

	rootCmd := &cobra.Command{
		Use:           "duck-job",
		Short:         "Run the example dataframe job",
		Long:          "Builds a small in-memory table in a DuckDB session, prints it, and releases the session.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			return runJob(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), session.Default())
		},
	}
	flags.bind(rootCmd.Flags())

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// loadConfig applies precedence: flag > env > config file > default.
func loadConfig(cmd *cobra.Command, flags *flagValues) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	flags.apply(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runJob(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, registry *session.Registry) error {
	logger := newLogger(stderr, cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	spec := job.Example()
	spec.AppName = cfg.AppName

	runner := &job.Runner{
		Registry: registry,
		Session: session.Options{
			AppName:     cfg.AppName,
			Threads:     cfg.Threads,
			MemoryLimit: cfg.MemoryLimit,
			Logger:      logger,
		},
		Show: &dataframe.ShowOptions{
			NumRows:  cfg.Show.NumRows,
			Truncate: cfg.Show.Truncate,
		},
		Out:    stdout,
		Logger: logger,
	}
	return runner.Run(ctx, spec)
}

// stderrIsTerminal is replaced in tests.
var stderrIsTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
