//go:build wireinject
// +build wireinject

package di

import (
	"EngineMirror/pkg/config"
	"EngineMirror/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideSpecs,
	ProvideFetcher,
	ProvideStore,
	ProvideScheduler,
	ProvideCore,
)

// InitializeCore wires the poller and store only.
func InitializeCore(cfg *config.Config) (*Core, error) {
	wire.Build(coreSet)
	return &Core{}, nil
}

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		coreSet,
		ProvideCache,
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
