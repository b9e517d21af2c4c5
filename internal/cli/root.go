// Package cli implements the gorules command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jvitoroc/gorules/config"
	"github.com/jvitoroc/gorules/engine"
	"github.com/jvitoroc/gorules/log"
	"github.com/jvitoroc/gorules/store"
	"github.com/jvitoroc/gorules/store/filestore"
	"github.com/jvitoroc/gorules/store/sqlstore"
)

const (
	cmdName = "gorules"
	cmdDesc = `Create, combine and evaluate rules over employee records.`

	cmdExamples = `  # Open the interactive menu:
  gorules

  # Store a rule:
  gorules create senior "age > 30 AND experience >= 5"

  # Evaluate stored rules against a record:
  gorules eval senior,sales --set age=35 --set experience=6 --set department=Sales

  # Keep rules in plain files instead of SQLite:
  gorules --driver file --path ./rules list`

	defaultConfigPath = "gorules.yaml"
)

type RootArgs struct {
	LogLevel     string
	LogFormat    string
	ConfigPath   string
	Driver       string
	Path         string
	OTLPEndpoint string
	WriteConfig  bool

	shutdownTracing func(context.Context) error
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", defaultConfigPath, "Path to the gorules configuration file")
	cmd.PersistentFlags().
		StringVar(&ra.Driver, "driver", "", fmt.Sprintf("Storage driver, one of: %s (overrides config)", config.AllDrivers))
	cmd.PersistentFlags().
		StringVar(&ra.Path, "path", "", "Storage path (overrides config)")
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint, e.g. localhost:4317")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration file and exit")

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("driver",
		cobra.FixedCompletions(config.AllDrivers, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
}

// Execute runs the command line. Exported spans are flushed whether the
// command succeeds or not.
func Execute(ctx context.Context) error {
	args := NewRootArgs()

	return execute(ctx, newRootCmd(args), args)
}

func execute(ctx context.Context, cmd *cobra.Command, ra *RootArgs) error {
	defer ra.flushTraces(ctx)

	return cmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(NewRootArgs())
}

func newRootCmd(args *RootArgs) *cobra.Command {
	menuCmd := NewMenuCmd(args)
	cmd := &cobra.Command{
		Use:           cmdName,
		Short:         cmdDesc,
		Example:       cmdExamples,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, a []string) error {
			if err := setupLogging(args)(cmd, a); err != nil {
				return err
			}

			return setupTracing(args)(cmd, a)
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if args.WriteConfig {
				return writeConfig(cmd, args)
			}

			return menuCmd.RunE(cmd, nil)
		},
	}

	args.AddFlags(cmd)
	cmd.AddCommand(
		menuCmd,
		NewCreateCmd(args),
		NewListCmd(args),
		NewEvalCmd(args),
		NewDeleteCmd(args),
		NewCheckCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}

func writeConfig(cmd *cobra.Command, ra *RootArgs) error {
	if err := config.Default().Write(ra.ConfigPath); err != nil {
		return err
	}

	slog.InfoContext(cmd.Context(), "wrote default configuration", slog.String("path", ra.ConfigPath))

	return nil
}

// loadConfig reads the configuration and applies the storage flag overrides.
func (ra *RootArgs) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(ra.ConfigPath)
	if err != nil {
		return nil, err
	}

	if ra.Driver != "" {
		cfg.Storage.Driver = ra.Driver
	}
	if ra.Path != "" {
		cfg.Storage.Path = ra.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openEngine opens the configured store. The caller must call the returned
// close function.
func (ra *RootArgs) openEngine(ctx context.Context) (*engine.Engine, *config.Config, func(), error) {
	cfg, err := ra.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	var s store.Store
	switch cfg.Storage.Driver {
	case config.DriverFile:
		s, err = filestore.Open(cfg.Storage.Path)
	default:
		s, err = sqlstore.Open(cfg.Storage.Path)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store %q: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}

	slog.DebugContext(ctx, "opened rule store",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path),
	)

	closeStore := func() {
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close rule store", slog.Any("error", err))
		}
	}

	e := engine.New(s, cfg.Catalog(), engine.WithStrict(cfg.Strict))

	return e, cfg, closeStore, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
