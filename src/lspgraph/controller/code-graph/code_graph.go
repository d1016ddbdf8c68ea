// Package codegraph builds a file level reference graph from a language server.
package codegraph

import (
	"context"

	"github.com/uber-go/tally/v4"
	"github.com/uber/lsp-graph/src/lspgraph/controller/workspace"
	"github.com/uber/lsp-graph/src/lspgraph/entity"
	lspserver "github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_metricFiles   = "code_graph.files"
	_metricSymbols = "code_graph.symbols"
)

// Controller builds reference graphs.
type Controller interface {
	// Build records, for every symbol declared in files, an edge from each file referencing it to the
	// file declaring it. Files are named relative to root; files outside root are dropped.
	Build(ctx context.Context, gw lspserver.Gateway, root string, files []string) (*entity.FileGraph, error)
}

// Params are inbound parameters to create a Controller.
type Params struct {
	fx.In

	Loader workspace.Loader
	Logger *zap.SugaredLogger
	Stats  tally.Scope
}

type controller struct {
	loader workspace.Loader
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// New creates a Controller.
func New(p Params) Controller {
	return &controller{
		loader: p.Loader,
		logger: p.Logger,
		stats:  p.Stats,
	}
}

func (c *controller) Build(ctx context.Context, gw lspserver.Gateway, root string, files []string) (*entity.FileGraph, error) {
	err := c.loader.Initialize(ctx, gw, root, workspace.CapabilityDocumentSymbol, workspace.CapabilityReferences)
	if err != nil {
		return nil, err
	}

	graph := entity.NewFileGraph()
	for i, file := range files {
		c.logger.Infof("Processing file %d/%d: %s", i+1, len(files), file)

		symbols, err := c.loader.Symbols(ctx, gw, file)
		if lspgrapherrors.IsEmptyResult(err) {
			c.logger.Debugw("No symbols", "file", file)
			continue
		}
		if err != nil {
			return nil, err
		}
		c.stats.Counter(_metricFiles).Inc(1)

		for j, symbol := range symbols {
			c.logger.Debugf("Processing symbol %d/%d: %s %q at %s:%d:%d",
				j+1, len(symbols), symbol.Kind, symbol.Name, symbol.Document,
				symbol.Position.Line+1, symbol.Position.Character+1)

			if err := c.addReferences(ctx, gw, graph, symbol); err != nil {
				return nil, err
			}
		}
	}

	return finalize(graph, root), nil
}

func (c *controller) addReferences(ctx context.Context, gw lspserver.Gateway, graph *entity.FileGraph, symbol mapper.Symbol) error {
	declaring := string(symbol.Document)
	graph.AddNode(declaring)
	c.stats.Counter(_metricSymbols).Inc(1)

	references, err := gw.References(ctx, mapper.SymbolToReferenceParams(symbol))
	if lspgrapherrors.IsEmptyResult(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, ref := range references {
		graph.AddEdge(string(ref.URI), declaring)
	}
	return nil
}

// finalize names every file relative to root and drops files outside of it.
func finalize(graph *entity.FileGraph, root string) *entity.FileGraph {
	rootURI := mapper.PathToURI(root)
	return graph.Rename(func(name string) (string, bool) {
		return mapper.URIToRelativePath(rootURI, protocol.DocumentURI(name))
	})
}
