package controller

import (
	codegraph "github.com/uber/lsp-graph/src/lspgraph/controller/code-graph"
	fnusage "github.com/uber/lsp-graph/src/lspgraph/controller/fn-usage"
	"github.com/uber/lsp-graph/src/lspgraph/controller/workspace"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(workspace.New),
	fx.Provide(codegraph.New),
	fx.Provide(fnusage.New),
)
