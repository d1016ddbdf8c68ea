package codegraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"github.com/uber/lsp-graph/src/lspgraph/controller/workspace"
	"github.com/uber/lsp-graph/src/lspgraph/entity"
	"github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server/lspservermock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/clock"
	"github.com/uber/lsp-graph/src/lspgraph/internal/core"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/fs/fsmock"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	_root  = "/root/proj"
	_fileA = "/root/proj/a.txt"
	_fileB = "/root/proj/b.txt"

	_docA   = protocol.DocumentURI("file:///root/proj/a.txt")
	_docB   = protocol.DocumentURI("file:///root/proj/b.txt")
	_docStd = protocol.DocumentURI("file:///usr/lib/std.txt")
)

var _capabilities = protocol.ServerCapabilities{
	DocumentSymbolProvider: true,
	ReferencesProvider:     true,
}

// model is a language server's view of a workspace.
type model struct {
	symbols    map[protocol.DocumentURI][]mapper.Symbol
	references map[protocol.Position][]protocol.Location
}

func location(doc protocol.DocumentURI, line uint32) protocol.Location {
	return protocol.Location{URI: doc, Range: protocol.Range{Start: protocol.Position{Line: line}}}
}

// workedScenario has a.txt declare f and b.txt declare g, which calls f.
func workedScenario() model {
	f := mapper.Symbol{Name: "f", Kind: protocol.SymbolKindFunction, Document: _docA, Position: protocol.Position{Line: 0, Character: 3}}
	g := mapper.Symbol{Name: "g", Kind: protocol.SymbolKindFunction, Document: _docB, Position: protocol.Position{Line: 10, Character: 3}}
	return model{
		symbols: map[protocol.DocumentURI][]mapper.Symbol{
			_docA: {f},
			_docB: {g},
		},
		references: map[protocol.Position][]protocol.Location{
			f.Position: {location(_docA, 0), location(_docB, 11)},
			g.Position: {location(_docB, 10)},
		},
	}
}

func newTestController(t *testing.T) (Controller, *lspservermock.MockGateway, *fsmock.MockLSPGraphFS, tally.TestScope) {
	ctrl := gomock.NewController(t)
	gw := lspservermock.NewMockGateway(ctrl)
	fsMock := fsmock.NewMockLSPGraphFS(ctrl)
	stats := tally.NewTestScope("", nil)
	logger := zap.NewNop().Sugar()

	loader := workspace.New(workspace.Params{
		FS:     fsMock,
		Clock:  clock.New(),
		LSP:    core.LSPConfig{Concurrency: 1},
		Logger: logger,
	})
	c := New(Params{Loader: loader, Logger: logger, Stats: stats})
	return c, gw, fsMock, stats
}

func expectModel(gw *lspservermock.MockGateway, fsMock *fsmock.MockLSPGraphFS, m model) {
	gw.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(&protocol.InitializeResult{Capabilities: _capabilities}, nil).AnyTimes()
	gw.EXPECT().Initialized(gomock.Any()).Return(nil).AnyTimes()
	fsMock.EXPECT().ReadFile(gomock.Any()).Return([]byte("text"), nil).AnyTimes()
	gw.EXPECT().DidOpen(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	gw.EXPECT().DocumentSymbol(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params *protocol.DocumentSymbolParams) ([]mapper.Symbol, error) {
			symbols, ok := m.symbols[params.TextDocument.URI]
			if !ok {
				return nil, &lspgrapherrors.RequestError{Err: lspgrapherrors.ErrEmptyResult}
			}
			return symbols, nil
		}).AnyTimes()
	gw.EXPECT().References(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
			refs, ok := m.references[params.Position]
			if !ok {
				return nil, &lspgrapherrors.RequestError{Err: lspgrapherrors.ErrEmptyResult}
			}
			return refs, nil
		}).AnyTimes()
}

func TestBuildWorkedScenario(t *testing.T) {
	c, gw, fsMock, stats := newTestController(t)
	expectModel(gw, fsMock, workedScenario())

	graph, err := c.Build(context.Background(), gw, _root, []string{_fileA, _fileB})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, graph.Nodes())
	assert.Equal(t, []entity.FileEdge{{From: "b.txt", To: "a.txt"}}, graph.Edges())

	counters := stats.Snapshot().Counters()
	assert.Equal(t, int64(2), counters[_metricFiles+"+"].Value())
	assert.Equal(t, int64(2), counters[_metricSymbols+"+"].Value())
}

func TestBuildIsIdempotent(t *testing.T) {
	c, gw, fsMock, _ := newTestController(t)
	expectModel(gw, fsMock, workedScenario())
	files := []string{_fileA, _fileB}

	first, err := c.Build(context.Background(), gw, _root, files)
	require.NoError(t, err)
	second, err := c.Build(context.Background(), gw, _root, files)
	require.NoError(t, err)

	assert.Equal(t, first.Nodes(), second.Nodes())
	assert.Equal(t, first.Edges(), second.Edges())
}

func TestBuildDropsSelfLoopsAndOutsiders(t *testing.T) {
	m := workedScenario()
	f := m.symbols[_docA][0]
	m.references[f.Position] = append(m.references[f.Position], location(_docA, 5), location(_docStd, 1))

	c, gw, fsMock, _ := newTestController(t)
	expectModel(gw, fsMock, m)

	graph, err := c.Build(context.Background(), gw, _root, []string{_fileA, _fileB})
	require.NoError(t, err)

	for _, e := range graph.Edges() {
		assert.NotEqual(t, e.From, e.To)
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, graph.Nodes())
	assert.Equal(t, []entity.FileEdge{{From: "b.txt", To: "a.txt"}}, graph.Edges())
}

func TestBuildSkipsEmptyResults(t *testing.T) {
	m := workedScenario()
	g := m.symbols[_docB][0]
	delete(m.references, g.Position)

	c, gw, fsMock, _ := newTestController(t)
	expectModel(gw, fsMock, m)

	// c.txt has no symbols at all.
	graph, err := c.Build(context.Background(), gw, _root, []string{_fileA, _fileB, "/root/proj/c.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, graph.Nodes())
	assert.Equal(t, []entity.FileEdge{{From: "b.txt", To: "a.txt"}}, graph.Edges())
}

func TestBuildCapabilityGate(t *testing.T) {
	tests := []struct {
		name         string
		capabilities protocol.ServerCapabilities
		missing      string
	}{
		{
			name:         "no references provider",
			capabilities: protocol.ServerCapabilities{DocumentSymbolProvider: true},
			missing:      workspace.CapabilityReferences,
		},
		{
			name:         "document symbols disabled",
			capabilities: protocol.ServerCapabilities{DocumentSymbolProvider: false, ReferencesProvider: true},
			missing:      workspace.CapabilityDocumentSymbol,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			// Only initialize is expected: any per-file call fails the test.
			c, gw, _, _ := newTestController(t)
			gw.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(&protocol.InitializeResult{Capabilities: tt.capabilities}, nil)

			_, err := c.Build(context.Background(), gw, _root, []string{_fileA, _fileB})
			require.True(t, lspgrapherrors.IsCapability(err))
			var capErr *lspgrapherrors.CapabilityError
			require.True(t, errors.As(err, &capErr))
			assert.Equal(t, tt.missing, capErr.Capability)
		})
	}
}

func TestBuildAbortsOnRequestError(t *testing.T) {
	c, gw, fsMock, _ := newTestController(t)
	gw.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(&protocol.InitializeResult{Capabilities: _capabilities}, nil)
	gw.EXPECT().Initialized(gomock.Any()).Return(nil)
	fsMock.EXPECT().ReadFile(_fileA).Return([]byte("text"), nil)
	gw.EXPECT().DidOpen(gomock.Any(), gomock.Any()).Return(nil)
	gw.EXPECT().DocumentSymbol(gomock.Any(), gomock.Any()).Return(workedScenario().symbols[_docA], nil)

	position := protocol.Position{Line: 0, Character: 3}
	reqErr := &lspgrapherrors.RequestError{
		Method:   protocol.MethodTextDocumentReferences,
		ID:       3,
		Document: _docA,
		Position: &position,
		Err:      jsonrpc2.NewError(jsonrpc2.InternalError, "boom"),
	}
	gw.EXPECT().References(gomock.Any(), gomock.Any()).Return(nil, reqErr)

	_, err := c.Build(context.Background(), gw, _root, []string{_fileA, _fileB})
	assert.Equal(t, reqErr, err)
	assert.EqualError(t, err, "textDocument/references (id 3) for file:///root/proj/a.txt:1:4: boom")
}

func TestBuildAbortsOnUnreadableFile(t *testing.T) {
	c, gw, fsMock, _ := newTestController(t)
	gw.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(&protocol.InitializeResult{Capabilities: _capabilities}, nil)
	gw.EXPECT().Initialized(gomock.Any()).Return(nil)
	fsMock.EXPECT().ReadFile(_fileA).Return(nil, errors.New("no such file"))

	_, err := c.Build(context.Background(), gw, _root, []string{_fileA})
	var readErr *lspgrapherrors.FileReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, _fileA, readErr.Path)
}
