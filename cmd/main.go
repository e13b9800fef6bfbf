package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := ""
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
			configPath = defaultConfigPath
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Error("application error", "error", err)
		runner.Close()
		stop()
		os.Exit(1)
	}
}

// newApp builds the root command. With no subcommand it runs the transfer.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "plcopy",
		Usage:    "Copy a YouTube playlist into another, resuming where the last run stopped",
		Version:  "0.1.0",
		Flags:    append(globalFlags(), transferFlags(true)...),
		Before:   r.before,
		Action:   r.Transfer,
		Commands: r.register(),
	}
}
