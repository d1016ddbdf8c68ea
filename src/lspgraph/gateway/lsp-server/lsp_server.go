// Package lspserver is a typed gateway to an external language server.
package lspserver

//go:generate mockgen -destination=lspservermock/lsp_server_mock.go -package=lspservermock . Gateway

import (
	"context"
	"errors"

	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/jsonrpcfx"
	"github.com/uber/lsp-graph/src/lspgraph/mapper"
	"go.lsp.dev/protocol"
)

// Gateway issues the LSP requests needed to build code graphs.
// Failed requests are returned as *errors.RequestError naming the document and position involved.
// Null results are reported as errors for which errors.IsEmptyResult is true.
type Gateway interface {
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context) error
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]mapper.Symbol, error)
	References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error)
	PrepareCallHierarchy(ctx context.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error)
	IncomingCalls(ctx context.Context, params *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error)
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error
}

type gateway struct {
	client jsonrpcfx.Client
}

// New returns a Gateway that sends through client.
func New(client jsonrpcfx.Client) Gateway {
	return &gateway{client: client}
}

func (g *gateway) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	var result protocol.InitializeResult
	if err := g.client.Call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *gateway) Initialized(ctx context.Context) error {
	return g.client.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{})
}

func (g *gateway) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	return g.client.Notify(ctx, protocol.MethodTextDocumentDidOpen, params)
}

func (g *gateway) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]mapper.Symbol, error) {
	result := symbolResult{doc: params.TextDocument.URI}
	if err := g.client.Call(ctx, protocol.MethodTextDocumentDocumentSymbol, params, &result); err != nil {
		return nil, locate(err, params.TextDocument.URI, nil)
	}
	return result.symbols, nil
}

// symbolResult decodes either shape of a documentSymbol result while the response is
// still being decoded, so decoding failures carry the request id.
type symbolResult struct {
	doc     protocol.DocumentURI
	symbols []mapper.Symbol
}

func (r *symbolResult) UnmarshalJSON(data []byte) error {
	symbols, err := mapper.ResultToSymbols(r.doc, data)
	if err != nil {
		return err
	}
	r.symbols = symbols
	return nil
}

func (g *gateway) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	var result []protocol.Location
	if err := g.client.Call(ctx, protocol.MethodTextDocumentReferences, params, &result); err != nil {
		return nil, locate(err, params.TextDocument.URI, &params.Position)
	}
	return result, nil
}

func (g *gateway) PrepareCallHierarchy(ctx context.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	var result []protocol.CallHierarchyItem
	if err := g.client.Call(ctx, protocol.MethodTextDocumentPrepareCallHierarchy, params, &result); err != nil {
		return nil, locate(err, params.TextDocument.URI, &params.Position)
	}
	return result, nil
}

func (g *gateway) IncomingCalls(ctx context.Context, params *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	var result []protocol.CallHierarchyIncomingCall
	if err := g.client.Call(ctx, protocol.MethodCallHierarchyIncomingCalls, params, &result); err != nil {
		return nil, locate(err, params.Item.URI, &params.Item.SelectionRange.Start)
	}
	return result, nil
}

func (g *gateway) Shutdown(ctx context.Context) error {
	err := g.client.Call(ctx, protocol.MethodShutdown, nil, nil)
	if lspgrapherrors.IsEmptyResult(err) {
		// A successful shutdown answers with a null result.
		return nil
	}
	return err
}

func (g *gateway) Exit(ctx context.Context) error {
	return g.client.Notify(ctx, protocol.MethodExit, nil)
}

// locate attaches the document and position a request was about to its error.
func locate(err error, doc protocol.DocumentURI, pos *protocol.Position) error {
	var reqErr *lspgrapherrors.RequestError
	if !errors.As(err, &reqErr) {
		return err
	}
	located := *reqErr
	located.Document = doc
	if pos != nil {
		p := *pos
		located.Position = &p
	}
	return &located
}
