package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/logging"
	"github.com/Rorical/CodeAssist/internal/surface"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "codeassist",
	Short: "AI code assistant for your editor",
	Long: `CodeAssist sends selected code to an analysis backend and shows hints,
explanations and fixes next to your editor. Run "codeassist serve" from the
editor plugin and "codeassist panel" in a terminal split.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: attach the floating panel
		return runSurface(cmd, surface.KindPanel)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CODEASSIST_HOME/.codeassist/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.Flags().StringVar(&hostAddr, "addr", "", "host surface server (default http://<listen_addr>)")

	rootCmd.AddCommand(profileCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.LoadConfig()
}

// setup loads the config and opens the log file for one process
func setup(process string) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		File:    cfg.LogFile,
		Dir:     cfg.Dir(),
		Process: process,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
