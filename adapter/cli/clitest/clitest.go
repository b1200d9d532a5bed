// Package clitest builds CLI applications backed by a real container for
// command tests.
package clitest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/keepup/adapter/cli"
	"github.com/felixgeelhaar/keepup/internal/app"
	"github.com/felixgeelhaar/keepup/pkg/config"
	"github.com/stretchr/testify/require"
)

// Config returns a configuration with an in-memory annotation store and a
// ledger node that is never reachable.
func Config() *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		RPCURL:                  "http://127.0.0.1:1",
		ChainID:                 config.DefaultChainID,
		FactoryAddress:          config.DefaultFactoryAddress,
		StatusConcurrency:       2,
		BreakerMaxRequests:      1,
		BreakerFailureThreshold: 5,
		StoreDriver:             config.StoreMemory,
	}
}

// Setup installs a CLI app built from cfg and removes it when the test ends.
func Setup(t *testing.T, cfg *config.Config) *app.Container {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	cliApp := cli.NewApp(
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
	cli.SetApp(cliApp)

	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return container
}
