package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wbdeps/internal/config"
	"wbdeps/internal/formatting"
	"wbdeps/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeDefects indicates at least one document has dependency defects.
	ExitCodeDefects = 2
	// ExitCodeConfig indicates the configuration file could not be used.
	ExitCodeConfig = 3
)

// Global flags
var (
	configPath   string
	logLevel     string
	debug        bool
	outputFormat string
	quiet        bool
	noColor      bool
)

// cfg is the configuration loaded before every command runs.
var cfg = config.GetDefaultConfig()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wbdeps",
	Short: "Check and repair variable dependencies in dashboard documents",
	Long: `wbdeps finds the {Variable} placeholders used by the queries, links and
actions of a dashboard document and checks that every node declares the
variables it depends on.

It reports missing and unnecessary declarations, dependency cycles between
variables and references to variables nobody defines, and can repair the
declarations in place.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "wbdeps version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		var ce config.ConfigurationError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.DetailedError())
		}
		os.Exit(getExitCode(err))
	}
}

// DefectsError is returned when analysis finished but found defects. The
// reports have already been printed.
type DefectsError struct {
	Documents int
}

func (e *DefectsError) Error() string {
	if e.Documents == 1 {
		return "1 document has dependency defects"
	}
	return fmt.Sprintf("%d documents have dependency defects", e.Documents)
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var defects *DefectsError
	if errors.As(err, &defects) {
		return ExitCodeDefects
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	return ExitCodeError
}

// setup initializes logging and loads the configuration.
func setup(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	path := configPath
	if path == "" {
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			logging.Warn("CLI", "Using default configuration: %v", err)
			cfg = config.GetDefaultConfig()
			return nil
		}
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if outputFormat != "" {
		if err := config.ValidateOneOf("output", outputFormat, config.OutputFormats); err != nil {
			return err
		}
	}
	return nil
}

// newFormatter creates the formatter selected by flags and configuration.
func newFormatter(cmd *cobra.Command) formatting.Formatter {
	format := outputFormat
	if format == "" {
		format = cfg.Output.Format
	}
	if format == "" {
		format = config.DefaultOutputFormat
	}
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: formatting.OutputFormat(format),
		Quiet:  quiet,
		Color:  cfg.Output.Color && !noColor,
		Out:    cmd.OutOrStdout(),
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Directory holding config.yaml (default: ~/.config/wbdeps)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: table, console, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print summaries")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newFixCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newCyclesCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
