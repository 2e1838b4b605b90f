package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gnome-randr.dev/cli/internal/config"
	"gnome-randr.dev/cli/internal/core/query"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// QueryRunner answers the query command
type QueryRunner interface {
	Query(ctx context.Context, opts query.CommandOptions) (string, error)
}

// CLIContainer holds all the dependencies for CLI commands. Constructors
// are deferred so flags are validated before the bus is touched.
type CLIContainer struct {
	LoadConfig     func(path string) (*config.Config, error)
	NewQueryRunner func(cfg *config.Config, stderr io.Writer) (QueryRunner, io.Closer, error)
	IsTerminal     func() bool
}

type globalFlags struct {
	configPath string
	timeout    time.Duration
	logLevel   string
	verbose    bool
	noColor    bool
}

type queryFlags struct {
	connector string
	format    string
}

// NewRootCommand creates the gnome-randr command. Without a subcommand it
// runs query.
func NewRootCommand(container *CLIContainer) *cobra.Command {
	gf := &globalFlags{}
	qf := &queryFlags{}

	rootCmd := &cobra.Command{
		Use:   "gnome-randr",
		Short: "Query information about displays on GNOME with Wayland",
		Long: `gnome-randr queries the display configuration of a running GNOME
(Mutter) session over D-Bus and prints monitors, their modes and the
logical monitor layout.

Default command is ` + "`query`" + `.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := ResolveCommand("")
			if err != nil {
				return err
			}
			return runCommand(cmd, container, gf, qf, command)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "Config file path (default is $XDG_CONFIG_HOME/gnome-randr/config.yaml)")
	pf.DurationVar(&gf.timeout, "timeout", 5*time.Second, "Timeout for the display state call")
	pf.StringVar(&gf.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	pf.BoolVar(&gf.verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&gf.noColor, "no-color", false, "Disable colored output")

	addQueryFlags(rootCmd.Flags(), qf)
	rootCmd.AddCommand(newQueryCommand(container, gf, qf))

	return rootCmd
}

// newQueryCommand creates the query subcommand
func newQueryCommand(container *CLIContainer, gf *globalFlags, qf *queryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the current state of the monitors",
		Long: `Query returns information about the current state of the monitors.
This is the default subcommand.

Examples:
  gnome-randr
  gnome-randr query --connector DP-1
  gnome-randr query --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := ResolveCommand(cmd.Name())
			if err != nil {
				return err
			}
			return runCommand(cmd, container, gf, qf, command)
		},
	}

	addQueryFlags(cmd.Flags(), qf)
	return cmd
}

func addQueryFlags(fs *pflag.FlagSet, qf *queryFlags) {
	fs.StringVar(&qf.connector, "connector", "", "Only show the monitor on this connector (exact match)")
	fs.StringVar(&qf.format, "format", string(query.FormatText), "Output format (text, json, yaml)")
}

func runCommand(cmd *cobra.Command, container *CLIContainer, gf *globalFlags, qf *queryFlags, command Command) error {
	// Reject bad arguments before connecting to the bus
	format, err := query.ParseFormat(qf.format)
	if err != nil {
		return err
	}

	cfg, err := container.LoadConfig(gf.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cmd, cfg, gf)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runner, closer, err := container.NewQueryRunner(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	switch command {
	case CommandQuery:
		out, err := runner.Query(cmd.Context(), query.CommandOptions{
			Connector: qf.connector,
			Format:    format,
			Color:     cfg.Color && container.IsTerminal != nil && container.IsTerminal(),
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// applyFlagOverrides applies flags that were set explicitly on top of the
// file and environment configuration
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, gf *globalFlags) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = gf.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = gf.logLevel
	}
	if gf.verbose {
		cfg.LogLevel = "debug"
	}
	if gf.noColor {
		cfg.Color = false
	}
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command
func Execute(ctx context.Context, container *CLIContainer) error {
	return NewRootCommand(container).ExecuteContext(ctx)
}
