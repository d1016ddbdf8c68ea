package app

import (
	"context"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/lsp-graph/src/lspgraph/handler"
	"github.com/uber/lsp-graph/src/lspgraph/internal/clock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	"github.com/uber/lsp-graph/src/lspgraph/internal/executor"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"github.com/uber/lsp-graph/src/lspgraph/internal/jsonrpcfx"
	"go.uber.org/fx"
)

// Module defines the lsp-graph application module.
var Module = fx.Options(
	handler.Module,
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(clock.New),
	fx.Provide(newRootScope),
	fx.Decorate(decorateRunLogger),
)

func newRootScope(lc fx.Lifecycle, cfg core.MetricsConfig) tally.Scope {
	rs, closer := tally.NewRootScope(tally.ScopeOptions{
		Tags: map[string]string{
			"service": cfg.Service,
		},
	}, cfg.FlushInterval)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return closer.Close()
		},
	})

	return rs
}
