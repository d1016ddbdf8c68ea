// Package analysis runs one analysis against a language server process and renders its result.
package analysis

import (
	"context"
	"fmt"
	"io"

	codegraph "github.com/uber/lsp-graph/src/lspgraph/controller/code-graph"
	fnusage "github.com/uber/lsp-graph/src/lspgraph/controller/fn-usage"
	"github.com/uber/lsp-graph/src/lspgraph/entity"
	lspserver "github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server"
	"github.com/uber/lsp-graph/src/lspgraph/handler/render"
	"github.com/uber/lsp-graph/src/lspgraph/internal/executor"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"github.com/uber/lsp-graph/src/lspgraph/internal/jsonrpcfx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options select the files to analyze and the language server to run.
type Options struct {
	// Root is the directory to analyze.
	Root string
	// Suffixes keeps files whose name ends with one of them. Empty keeps every file.
	Suffixes []string
	// Ignore drops files whose path contains one of them.
	Ignore []string
	// Server is the language server command line. It is started in Root.
	Server []string
	// Format is the usage report format.
	Format string
}

// Handler runs analyses.
type Handler interface {
	// CodeGraph writes the file reference graph of opts.Root to w in Graphviz format.
	CodeGraph(ctx context.Context, opts Options, w io.Writer) error
	// FnUsage writes the usage report of opts.Root to w.
	FnUsage(ctx context.Context, opts Options, w io.Writer) error
}

// Params are inbound parameters to create a Handler.
type Params struct {
	fx.In

	FS           fs.LSPGraphFS
	Executor     executor.Executor
	Factory      jsonrpcfx.Factory
	CodeGraph    codegraph.Controller
	FnUsage      fnusage.Controller
	ServerOutput ServerOutput
	Logger       *zap.SugaredLogger
}

type handler struct {
	fs           fs.LSPGraphFS
	executor     executor.Executor
	factory      jsonrpcfx.Factory
	codeGraph    codegraph.Controller
	fnUsage      fnusage.Controller
	serverOutput ServerOutput
	logger       *zap.SugaredLogger
}

// analyzeFunc drives a started language server over the files found under root.
type analyzeFunc func(ctx context.Context, gw lspserver.Gateway, root string, files []string) error

// New creates a Handler.
func New(p Params) Handler {
	return &handler{
		fs:           p.FS,
		executor:     p.Executor,
		factory:      p.Factory,
		codeGraph:    p.CodeGraph,
		fnUsage:      p.FnUsage,
		serverOutput: p.ServerOutput,
		logger:       p.Logger,
	}
}

func (h *handler) CodeGraph(ctx context.Context, opts Options, w io.Writer) error {
	var graph *entity.FileGraph
	err := h.run(ctx, opts, func(ctx context.Context, gw lspserver.Gateway, root string, files []string) (err error) {
		graph, err = h.codeGraph.Build(ctx, gw, root, files)
		return err
	})
	if err != nil {
		return err
	}

	h.logger.Infow("Reference graph built", "nodes", graph.NodeCount(), "edges", graph.EdgeCount())
	return render.Dot(w, graph)
}

func (h *handler) FnUsage(ctx context.Context, opts Options, w io.Writer) error {
	var scores []entity.UsageScore
	err := h.run(ctx, opts, func(ctx context.Context, gw lspserver.Gateway, root string, files []string) (err error) {
		scores, err = h.fnUsage.Analyze(ctx, gw, root, files)
		return err
	})
	if err != nil {
		return err
	}

	h.logger.Infow("Usage scores computed", "functions", len(scores))
	return render.UsageReport(w, scores, opts.Format)
}

// run enumerates the files, starts the server and tears it down once analyze returns.
func (h *handler) run(ctx context.Context, opts Options, analyze analyzeFunc) error {
	root, err := h.fs.Canonicalize(opts.Root)
	if err != nil {
		return fmt.Errorf("resolving root %q: %w", opts.Root, err)
	}

	files, err := h.fs.ListFiles(root, opts.Suffixes, opts.Ignore)
	if err != nil {
		return fmt.Errorf("listing files under %s: %w", root, err)
	}
	h.logger.Infow("Using base path", "root", root, "suffixes", opts.Suffixes, "ignore", opts.Ignore, "files", len(files))

	s, err := h.startSession(root, opts.Server)
	if err != nil {
		return err
	}
	defer s.close(context.WithoutCancel(ctx))

	return analyze(ctx, s.gateway, root, files)
}
