package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/adapter/cli/category"
	"github.com/felixgeelhaar/keepup/adapter/cli/proof"
	"github.com/felixgeelhaar/keepup/adapter/cli/reward"
	"github.com/felixgeelhaar/keepup/adapter/cli/task"
	"github.com/felixgeelhaar/keepup/internal/app"
	"github.com/felixgeelhaar/keepup/pkg/config"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cliApp = cli.NewApp(
			container.AddTaskHandler,
			container.CompleteTaskHandler,
			container.RemoveTaskHandler,
			container.ClaimRewardHandler,
			container.SetCategoryHandler,
			container.GetTaskBoardHandler,
			container.GetRewardsSummaryHandler,
			container.ListProofsHandler,
		)
		cliApp.SetSubjectResolver(container.ResolveSubject)
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(task.Cmd)
	cli.AddCommand(reward.Cmd)
	cli.AddCommand(category.Cmd)
	cli.AddCommand(proof.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	} else if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	logCfg.ServiceVersion = cli.Version
	return observability.NewLogger(logCfg)
}
