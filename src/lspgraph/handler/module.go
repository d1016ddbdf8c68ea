package handler

import (
	"github.com/uber/lsp-graph/src/lspgraph/controller"
	"github.com/uber/lsp-graph/src/lspgraph/handler/analysis"
	"go.uber.org/fx"
)

// Module provides the analysis handler into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(analysis.NewServerOutput),
	fx.Provide(analysis.New),
)
