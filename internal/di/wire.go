//go:build wireinject
// +build wireinject

package di

import (
	"VolPulse/pkg/config"
	"VolPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideViewCache,

		// Dataset pipeline
		ProvideTableSource,
		ProvideLoader,
		ProvideWatcher,

		// Dashboard
		ProvideHub,
		ProvideController,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
