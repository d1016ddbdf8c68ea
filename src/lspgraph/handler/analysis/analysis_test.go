package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	codegraph "github.com/uber/lsp-graph/src/lspgraph/controller/code-graph"
	fnusage "github.com/uber/lsp-graph/src/lspgraph/controller/fn-usage"
	"github.com/uber/lsp-graph/src/lspgraph/controller/workspace"
	"github.com/uber/lsp-graph/src/lspgraph/factory"
	"github.com/uber/lsp-graph/src/lspgraph/handler/render"
	"github.com/uber/lsp-graph/src/lspgraph/internal/clock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/executor"
	"github.com/uber/lsp-graph/src/lspgraph/internal/executor/executormock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"github.com/uber/lsp-graph/src/lspgraph/internal/jsonrpcfx"
	"github.com/uber/lsp-graph/src/lspgraph/internal/lsptest"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// project is a directory where a.txt declares f and b.txt declares g, which calls f.
type project struct {
	root string
	docA protocol.DocumentURI
	docB protocol.DocumentURI
}

func newProject(t *testing.T) project {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("fn f() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("fn g() { f() }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes\n"), 0o644))

	root, err := fs.New().Canonicalize(dir)
	require.NoError(t, err)
	return project{
		root: root,
		docA: mapper.PathToURI(filepath.Join(root, "a.txt")),
		docB: mapper.PathToURI(filepath.Join(root, "b.txt")),
	}
}

func (p project) server(capabilities protocol.ServerCapabilities) *lsptest.Server {
	f := factory.CallHierarchyItem(p.docA, "f", 0)
	g := factory.CallHierarchyItem(p.docB, "g", 0)
	location := func(doc protocol.DocumentURI, line uint32) protocol.Location {
		return protocol.Location{URI: doc, Range: factory.LineRange(line, 1)}
	}

	return &lsptest.Server{
		Chatter: true,
		Handlers: map[string]lsptest.Handler{
			protocol.MethodInitialize: lsptest.Result(protocol.InitializeResult{Capabilities: capabilities}),
			protocol.MethodShutdown:   lsptest.Result(nil),
			protocol.MethodTextDocumentDocumentSymbol: func(raw json.RawMessage) (interface{}, error) {
				var params protocol.DocumentSymbolParams
				if err := json.Unmarshal(raw, &params); err != nil {
					return nil, err
				}
				switch params.TextDocument.URI {
				case p.docA:
					return []protocol.DocumentSymbol{factory.Function("f", 0)}, nil
				case p.docB:
					return []protocol.DocumentSymbol{factory.Function("g", 0)}, nil
				}
				return nil, nil
			},
			protocol.MethodTextDocumentReferences: func(raw json.RawMessage) (interface{}, error) {
				var params protocol.ReferenceParams
				if err := json.Unmarshal(raw, &params); err != nil {
					return nil, err
				}
				switch params.TextDocument.URI {
				case p.docA:
					return []protocol.Location{location(p.docA, 0), location(p.docB, 0)}, nil
				case p.docB:
					return []protocol.Location{location(p.docB, 0)}, nil
				}
				return nil, nil
			},
			protocol.MethodTextDocumentPrepareCallHierarchy: func(raw json.RawMessage) (interface{}, error) {
				var params protocol.CallHierarchyPrepareParams
				if err := json.Unmarshal(raw, &params); err != nil {
					return nil, err
				}
				switch params.TextDocument.URI {
				case p.docA:
					return []protocol.CallHierarchyItem{f}, nil
				case p.docB:
					return []protocol.CallHierarchyItem{g}, nil
				}
				return nil, nil
			},
			protocol.MethodCallHierarchyIncomingCalls: func(raw json.RawMessage) (interface{}, error) {
				var params protocol.CallHierarchyIncomingCallsParams
				if err := json.Unmarshal(raw, &params); err != nil {
					return nil, err
				}
				if params.Item.Name == "f" {
					return []protocol.CallHierarchyIncomingCall{{From: g, FromRanges: []protocol.Range{factory.LineRange(0, 14)}}}, nil
				}
				return []protocol.CallHierarchyIncomingCall{}, nil
			},
		},
	}
}

func newTestHandler(t *testing.T, p project, server *lsptest.Server) (Handler, *observer.ObservedLogs) {
	ctrl := gomock.NewController(t)
	observed, recorded := observer.New(zap.InfoLevel)
	logger := zap.New(observed).Sugar()
	lsp := core.LSPConfig{Concurrency: 2}
	stats := tally.NewTestScope("", nil)
	lspFS := fs.New()

	exe := executormock.NewMockExecutor(ctrl)
	exe.EXPECT().Start(gomock.Any()).DoAndReturn(func(cmd *exec.Cmd) (*executor.Process, error) {
		assert.Equal(t, p.root, cmd.Dir)
		assert.Equal(t, []string{"fake-ls", "--stdio"}, cmd.Args)
		return executor.NewProcess(server.Start(), cmd, func(*exec.Cmd) error {
			server.Wait()
			return nil
		}), nil
	}).MaxTimes(1)

	loader := workspace.New(workspace.Params{FS: lspFS, Clock: clock.New(), LSP: lsp, Logger: logger})
	h := New(Params{
		FS:           lspFS,
		Executor:     exe,
		Factory:      jsonrpcfx.NewFactory(jsonrpcfx.Params{LSP: lsp, Logger: logger, Stats: stats}),
		CodeGraph:    codegraph.New(codegraph.Params{Loader: loader, Logger: logger, Stats: stats}),
		FnUsage:      fnusage.New(fnusage.Params{Loader: loader, LSP: lsp, Logger: logger, Stats: stats}),
		ServerOutput: &bytes.Buffer{},
		Logger:       logger,
	})
	return h, recorded
}

func (p project) options() Options {
	return Options{
		Root:     p.root,
		Suffixes: []string{".txt"},
		Server:   []string{"fake-ls", "--stdio"},
		Format:   render.FormatYAML,
	}
}

func assertTornDown(t *testing.T, server *lsptest.Server) {
	assert.Equal(t, 1, server.Count(protocol.MethodShutdown))
	assert.Equal(t, 1, server.Count(protocol.MethodExit))
}

func TestCodeGraph(t *testing.T) {
	p := newProject(t)
	server := p.server(protocol.ServerCapabilities{DocumentSymbolProvider: true, ReferencesProvider: true})
	h, recorded := newTestHandler(t, p, server)

	var out bytes.Buffer
	require.NoError(t, h.CodeGraph(context.Background(), p.options(), &out))

	assert.Equal(t, `digraph G {
    rankdir=LR;
    node [shape=rect];
    "a.txt";
    "b.txt";
    "b.txt" -> "a.txt";
}
`, out.String())
	assertTornDown(t, server)
	assert.Equal(t, 2, server.Count(protocol.MethodTextDocumentDidOpen))
	assert.Equal(t, 1, recorded.FilterMessage("Using base path").Len())
}

func TestFnUsage(t *testing.T) {
	p := newProject(t)
	server := p.server(protocol.ServerCapabilities{DocumentSymbolProvider: true, CallHierarchyProvider: true})
	h, _ := newTestHandler(t, p, server)

	var out bytes.Buffer
	require.NoError(t, h.FnUsage(context.Background(), p.options(), &out))

	var rows []render.UsageRow
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rows))
	assert.Equal(t, []render.UsageRow{
		{Name: "f", URI: string(p.docA), Line: 1, Score: 50},
		{Name: "g", URI: string(p.docB), Line: 1, Score: 0},
	}, rows)
	assertTornDown(t, server)
}

func TestCapabilityMismatchStillTearsDown(t *testing.T) {
	p := newProject(t)
	server := p.server(protocol.ServerCapabilities{DocumentSymbolProvider: true})
	h, _ := newTestHandler(t, p, server)

	var out bytes.Buffer
	err := h.CodeGraph(context.Background(), p.options(), &out)
	assert.True(t, lspgrapherrors.IsCapability(err))
	assert.Empty(t, out.String())

	assertTornDown(t, server)
	assert.Zero(t, server.Count(protocol.MethodInitialized))
	assert.Zero(t, server.Count(protocol.MethodTextDocumentDidOpen))
}

func TestRequestErrorAbortsRun(t *testing.T) {
	p := newProject(t)
	server := p.server(protocol.ServerCapabilities{DocumentSymbolProvider: true, ReferencesProvider: true})
	server.Handlers[protocol.MethodTextDocumentReferences] = lsptest.Fail(-32000, "index not ready")
	h, _ := newTestHandler(t, p, server)

	err := h.CodeGraph(context.Background(), p.options(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "textDocument/references")
	assert.Contains(t, err.Error(), "index not ready")
	assertTornDown(t, server)
}

func TestRunErrors(t *testing.T) {
	p := newProject(t)

	t.Run("no server command", func(t *testing.T) {
		h, _ := newTestHandler(t, p, &lsptest.Server{})
		opts := p.options()
		opts.Server = nil
		err := h.CodeGraph(context.Background(), opts, &bytes.Buffer{})
		assert.ErrorIs(t, err, errNoServer)
	})

	t.Run("missing root", func(t *testing.T) {
		h, _ := newTestHandler(t, p, &lsptest.Server{})
		opts := p.options()
		opts.Root = filepath.Join(p.root, "missing")
		err := h.FnUsage(context.Background(), opts, &bytes.Buffer{})
		assert.ErrorContains(t, err, "resolving root")
	})
}
