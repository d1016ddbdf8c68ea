package analysis

import (
	"io"
	"os"

	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"github.com/uber/lsp-graph/src/lspgraph/internal/logfilewriter"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerOutput receives every line the language server writes to stderr.
type ServerOutput io.Writer

// ServerOutputParams are inbound parameters to create a ServerOutput.
type ServerOutputParams struct {
	fx.In

	FS        fs.LSPGraphFS
	LSP       core.LSPConfig
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
}

// NewServerOutput sends server stderr to a temp log file named by lsp.serverLog, or to our own stderr.
func NewServerOutput(p ServerOutputParams) (ServerOutput, error) {
	if p.LSP.ServerLog == "" {
		return os.Stderr, nil
	}
	return logfilewriter.SetupOutputWriter(logfilewriter.Params{
		FS:        p.FS,
		Lifecycle: p.Lifecycle,
		Logger:    p.Logger,
	}, p.LSP.ServerLog)
}
