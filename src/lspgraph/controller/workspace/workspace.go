// Package workspace prepares a language server session and reads document symbols from it.
package workspace

import (
	"context"
	"fmt"

	lspserver "github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server"
	"github.com/uber/lsp-graph/src/lspgraph/internal/clock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server capabilities that an analysis may require.
const (
	CapabilityDocumentSymbol = "documentSymbolProvider"
	CapabilityReferences     = "referencesProvider"
	CapabilityCallHierarchy  = "callHierarchyProvider"
)

// Loader opens files in a language server.
type Loader interface {
	// Initialize performs the initialize handshake for root and fails with a *errors.CapabilityError
	// if the server lacks any of the required capabilities. Nothing else is sent in that case.
	Initialize(ctx context.Context, gw lspserver.Gateway, root string, required ...string) error
	// Symbols opens the file at path and returns its symbols, flattened.
	Symbols(ctx context.Context, gw lspserver.Gateway, path string) ([]mapper.Symbol, error)
}

// Params are inbound parameters to create a Loader.
type Params struct {
	fx.In

	FS     fs.LSPGraphFS
	Clock  clock.Clock
	LSP    core.LSPConfig
	Logger *zap.SugaredLogger
}

type loader struct {
	fs     fs.LSPGraphFS
	clock  clock.Clock
	lsp    core.LSPConfig
	logger *zap.SugaredLogger
}

// New creates a Loader.
func New(p Params) Loader {
	return &loader{
		fs:     p.FS,
		clock:  p.Clock,
		lsp:    p.LSP,
		logger: p.Logger,
	}
}

func (l *loader) Initialize(ctx context.Context, gw lspserver.Gateway, root string, required ...string) error {
	result, err := gw.Initialize(ctx, mapper.RootToInitializeParams(root))
	if err != nil {
		return fmt.Errorf("initializing language server: %w", err)
	}

	if err := checkCapabilities(result.Capabilities, required); err != nil {
		return err
	}

	if err := gw.Initialized(ctx); err != nil {
		return fmt.Errorf("sending initialized: %w", err)
	}
	l.logger.Infow("Language server initialized", "root", root)
	return nil
}

func (l *loader) Symbols(ctx context.Context, gw lspserver.Gateway, path string) ([]mapper.Symbol, error) {
	text, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, &lspgrapherrors.FileReadError{Path: path, Err: err}
	}

	doc := mapper.PathToURI(path)
	if err := gw.DidOpen(ctx, mapper.FileToDidOpenParams(doc, l.lsp.LanguageID, string(text))); err != nil {
		return nil, fmt.Errorf("opening %s: %w", doc, err)
	}
	if l.lsp.SettleDelay > 0 {
		l.clock.Sleep(l.lsp.SettleDelay)
	}

	return gw.DocumentSymbol(ctx, mapper.DocumentToDocumentSymbolParams(doc))
}

func checkCapabilities(capabilities protocol.ServerCapabilities, required []string) error {
	providers := map[string]interface{}{
		CapabilityDocumentSymbol: capabilities.DocumentSymbolProvider,
		CapabilityReferences:     capabilities.ReferencesProvider,
		CapabilityCallHierarchy:  capabilities.CallHierarchyProvider,
	}
	for _, name := range required {
		if !mapper.HasProvider(providers[name]) {
			return &lspgrapherrors.CapabilityError{Capability: name}
		}
	}
	return nil
}
