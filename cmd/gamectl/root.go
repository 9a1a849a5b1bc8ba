package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/config"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "gamectl",
	Short:         "Operations tool for the gamification service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CONFIG_PATH env var)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(levelsCmd)
}

// loadConfig читает конфиг так же, как сервер: --config, затем CONFIG_PATH, затем config/config.yaml
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
