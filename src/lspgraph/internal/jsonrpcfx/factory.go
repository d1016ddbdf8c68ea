package jsonrpcfx

import (
	"context"

	"github.com/uber-go/tally/v4"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is an fx module providing a Factory for RPC clients.
var Module = fx.Provide(NewFactory)

// Factory creates clients bound to a transport.
type Factory interface {
	NewClient(t Transport) Client
}

// Params define values to be used by the Factory.
type Params struct {
	fx.In

	LSP    core.LSPConfig
	Logger *zap.SugaredLogger
	Stats  tally.Scope
}

type factory struct {
	params Params
}

// NewFactory creates a Factory. A zero RequestTimeout lets requests wait indefinitely.
func NewFactory(p Params) Factory {
	if p.Stats == nil {
		p.Stats = tally.NoopScope
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop().Sugar()
	}
	return &factory{params: p}
}

func (f *factory) NewClient(t Transport) Client {
	timeout := f.params.LSP.RequestTimeout
	withTimeout := func(ctx context.Context) (context.Context, context.CancelFunc) {
		if timeout <= 0 {
			return context.WithCancel(ctx)
		}
		return context.WithTimeout(ctx, timeout)
	}
	return newClient(t, f.params.Logger, f.params.Stats, withTimeout)
}
