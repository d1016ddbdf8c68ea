// Package fnusage scores functions by how many other functions transitively call them.
package fnusage

import (
	"context"

	"github.com/uber-go/tally/v4"
	"github.com/uber/lsp-graph/src/lspgraph/controller/workspace"
	"github.com/uber/lsp-graph/src/lspgraph/entity"
	lspserver "github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	_metricDeclarations = "fn_usage.declarations"
	_metricItems        = "fn_usage.items"
	_metricEdges        = "fn_usage.edges"
)

// Controller computes usage scores.
type Controller interface {
	// Analyze scores every function and method declared in files, and every caller found under root.
	Analyze(ctx context.Context, gw lspserver.Gateway, root string, files []string) ([]entity.UsageScore, error)
	// Declarations returns the functions and methods declared in files.
	Declarations(ctx context.Context, gw lspserver.Gateway, files []string) ([]mapper.Symbol, error)
	// CallEdges resolves declarations to call hierarchy items and collects their callers under root.
	CallEdges(ctx context.Context, gw lspserver.Gateway, root string, declarations []mapper.Symbol) ([]protocol.CallHierarchyItem, []entity.CallEdge, error)
}

// Params are inbound parameters to create a Controller.
type Params struct {
	fx.In

	Loader workspace.Loader
	LSP    core.LSPConfig
	Logger *zap.SugaredLogger
	Stats  tally.Scope
}

type controller struct {
	loader workspace.Loader
	lsp    core.LSPConfig
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// New creates a Controller.
func New(p Params) Controller {
	return &controller{
		loader: p.Loader,
		lsp:    p.LSP,
		logger: p.Logger,
		stats:  p.Stats,
	}
}

func (c *controller) Analyze(ctx context.Context, gw lspserver.Gateway, root string, files []string) ([]entity.UsageScore, error) {
	err := c.loader.Initialize(ctx, gw, root, workspace.CapabilityDocumentSymbol, workspace.CapabilityCallHierarchy)
	if err != nil {
		return nil, err
	}

	declarations, err := c.Declarations(ctx, gw, files)
	if err != nil {
		return nil, err
	}

	items, edges, err := c.CallEdges(ctx, gw, root, declarations)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("Call graph collected", "items", len(items), "edges", len(edges))

	return Scores(items, edges), nil
}

func (c *controller) Declarations(ctx context.Context, gw lspserver.Gateway, files []string) ([]mapper.Symbol, error) {
	var declarations []mapper.Symbol
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
		declarations = append(declarations, mapper.CallableSymbols(symbols)...)
	}
	c.stats.Counter(_metricDeclarations).Inc(int64(len(declarations)))
	return declarations, nil
}

func (c *controller) CallEdges(ctx context.Context, gw lspserver.Gateway, root string, declarations []mapper.Symbol) ([]protocol.CallHierarchyItem, []entity.CallEdge, error) {
	items, err := c.prepare(ctx, gw, declarations)
	if err != nil {
		return nil, nil, err
	}
	c.stats.Counter(_metricItems).Inc(int64(len(items)))

	incoming := make([][]protocol.CallHierarchyIncomingCall, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())
	for i, item := range items {
		g.Go(func() error {
			calls, err := gw.IncomingCalls(gctx, mapper.ItemToIncomingCallsParams(item))
			if lspgrapherrors.IsEmptyResult(err) {
				return nil
			}
			if err != nil {
				return err
			}
			incoming[i] = calls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var edges []entity.CallEdge
	for i, calls := range incoming {
		for _, call := range calls {
			if !mapper.IsUnderRoot(root, call.From.URI) {
				continue
			}
			edges = append(edges, entity.CallEdge{Caller: call.From, Callee: items[i]})
		}
	}
	c.stats.Counter(_metricEdges).Inc(int64(len(edges)))
	return items, edges, nil
}

// prepare resolves each declaration to its callable items, dropping duplicates.
func (c *controller) prepare(ctx context.Context, gw lspserver.Gateway, declarations []mapper.Symbol) ([]protocol.CallHierarchyItem, error) {
	var items []protocol.CallHierarchyItem
	seen := make(map[entity.CallKey]struct{})
	for j, declaration := range declarations {
		c.logger.Debugf("Processing symbol %d/%d: %s %q at %s:%d:%d",
			j+1, len(declarations), declaration.Kind, declaration.Name, declaration.Document,
			declaration.Position.Line+1, declaration.Position.Character+1)

		prepared, err := gw.PrepareCallHierarchy(ctx, mapper.SymbolToCallHierarchyPrepareParams(declaration))
		if lspgrapherrors.IsEmptyResult(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, item := range mapper.CallableItems(prepared) {
			key := entity.KeyOf(item)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *controller) concurrency() int {
	if c.lsp.Concurrency < 1 {
		return 1
	}
	return c.lsp.Concurrency
}

// Scores interns items and the endpoints of edges, then scores every node.
// A caller that prepareCallHierarchy never returned still becomes a node of its own,
// so it receives a score and counts toward the node total every score is divided by.
func Scores(items []protocol.CallHierarchyItem, edges []entity.CallEdge) []entity.UsageScore {
	graph := entity.NewCallGraph()
	for _, item := range items {
		graph.Intern(item)
	}
	for _, e := range edges {
		graph.AddEdge(e)
	}
	return graph.UsageScores()
}
