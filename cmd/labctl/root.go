package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sahlab/labctl/internal/apperrors"
	"github.com/sahlab/labctl/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "Shared snpEff toolchain manager",
	Long: `Labctl manages the lab's shared snpEff installation: it installs the
toolchain onto the shared filesystem, keeps named version profiles that
shells and pipelines can switch between without re-registering, and
builds custom snpEff databases for viral genomes.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command. Usage errors get their usage banner on
// stderr; every failure exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var usage *apperrors.UsageError
		if errors.As(err, &usage) && usage.Usage != "" {
			fmt.Fprintln(os.Stderr, usage.Usage)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.labctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".labctl")
	}

	viper.SetEnvPrefix("labctl")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// settings resolves labctl's own configuration after viper has loaded the
// config file and environment.
func settings() config.Settings {
	return config.FromViper(viper.GetViper())
}
