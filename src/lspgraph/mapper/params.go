package mapper

import (
	"os"
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// AllSymbolKinds lists every symbol kind this client understands.
func AllSymbolKinds() []protocol.SymbolKind {
	kinds := make([]protocol.SymbolKind, 0, int(protocol.SymbolKindTypeParameter))
	for k := protocol.SymbolKindFile; k <= protocol.SymbolKindTypeParameter; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// RootToInitializeParams builds initialize params announcing the capabilities the graph builders rely on.
// The root is sent both as rootUri and as the only workspace folder.
func RootToInitializeParams(root string) *protocol.InitializeParams {
	rootURI := uri.File(root)
	kinds := &protocol.SymbolKindCapabilities{ValueSet: AllSymbolKinds()}

	return &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   rootURI,
		Capabilities: protocol.ClientCapabilities{
			Workspace: &protocol.WorkspaceClientCapabilities{
				Symbol:           &protocol.WorkspaceSymbolClientCapabilities{SymbolKind: kinds},
				WorkspaceFolders: true,
			},
			TextDocument: &protocol.TextDocumentClientCapabilities{
				References: &protocol.ReferencesTextDocumentClientCapabilities{},
				Definition: &protocol.DefinitionTextDocumentClientCapabilities{},
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					SymbolKind:                        kinds,
					HierarchicalDocumentSymbolSupport: true,
				},
				CallHierarchy: &protocol.CallHierarchyClientCapabilities{},
			},
		},
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: string(rootURI), Name: filepath.Base(root)},
		},
	}
}

// FileToDidOpenParams opens a document with its full text at version 1.
func FileToDidOpenParams(doc protocol.DocumentURI, languageID string, text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        doc,
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    1,
			Text:       text,
		},
	}
}

// DocumentToDocumentSymbolParams requests the symbols of doc.
func DocumentToDocumentSymbolParams(doc protocol.DocumentURI) *protocol.DocumentSymbolParams {
	return &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc},
	}
}

// SymbolToReferenceParams requests every reference to s, its declaration included.
func SymbolToReferenceParams(s Symbol) *protocol.ReferenceParams {
	return &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: s.Document},
			Position:     s.Position,
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: true},
	}
}

// SymbolToCallHierarchyPrepareParams resolves the call hierarchy item declared at s.
func SymbolToCallHierarchyPrepareParams(s Symbol) *protocol.CallHierarchyPrepareParams {
	return &protocol.CallHierarchyPrepareParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: s.Document},
			Position:     s.Position,
		},
	}
}

// ItemToIncomingCallsParams requests the callers of item.
func ItemToIncomingCallsParams(item protocol.CallHierarchyItem) *protocol.CallHierarchyIncomingCallsParams {
	return &protocol.CallHierarchyIncomingCallsParams{Item: item}
}

// HasProvider reports whether a server capability value advertises support.
// Providers are either a boolean or an options object.
func HasProvider(provider interface{}) bool {
	switch p := provider.(type) {
	case nil:
		return false
	case bool:
		return p
	default:
		return true
	}
}
