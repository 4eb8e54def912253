package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/dbmatrix/internal/infrastructure/system"
)

var (
	cfgFile     string
	verbose     bool
	quiet       bool
	projectDir  string
	projectArgs []string
	systemArgs  []string
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "dbmatrix",
	Short: "Discover and resolve database profiles for test runs",
	Long: `dbmatrix finds the database profiles available to a project, picks the one
a test run should use and projects its settings into the test environment.

Profiles live in a "databases" directory of the project or of any enclosing
project, or in custom directories named by the custom_profiles_dir property.
The profile is chosen from, in order: the database_profile_name property
(-P, then -D or DBMATRIX_DATABASE_PROFILE_NAME), the legacy "db" property,
the profile remembered from the last run, the project's default_profile
and finally "h2".`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		setupLogging()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return exitCodeFor(err)
	}
	return ExitOK
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dbmatrix.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	flags.StringVar(&projectDir, "project-dir", ".", "project directory")
	flags.StringArrayVarP(&projectArgs, "project-prop", "P", nil, "project property key=value (repeatable)")
	flags.StringArrayVarP(&systemArgs, "system-prop", "D", nil, "system property key=value (repeatable)")
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(ExitError)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dbmatrix")
	}

	viper.SetEnvPrefix(system.EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// parseKeyValues turns repeated key=value flags into a map. Later
// occurrences win.
func parseKeyValues(flag string, args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New("invalid " + flag + " value " + arg + ": expected key=value")
		}
		out[key] = value
	}
	return out, nil
}
