package mapper

import (
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Symbol is a declaration reported by a documentSymbol request, independent of whether the
// server answered with hierarchical or flat symbols.
type Symbol struct {
	Name     string
	Kind     protocol.SymbolKind
	Document protocol.DocumentURI
	// Position is where the declared name starts.
	Position protocol.Position
}

type symbolProbe struct {
	Location *json.RawMessage `json:"location"`
}

// ResultToSymbols decodes a documentSymbol result for doc into a flat, pre-ordered list of symbols.
// Hierarchical results are flattened with every child kept; flat results are taken as is.
func ResultToSymbols(doc protocol.DocumentURI, result json.RawMessage) ([]Symbol, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(result, &elements); err != nil {
		return nil, wrapErrParse(err)
	}

	symbols := make([]Symbol, 0, len(elements))
	for _, element := range elements {
		var probe symbolProbe
		if err := json.Unmarshal(element, &probe); err != nil {
			return nil, wrapErrParse(err)
		}

		if probe.Location != nil {
			var info protocol.SymbolInformation
			if err := json.Unmarshal(element, &info); err != nil {
				return nil, wrapErrParse(err)
			}
			symbols = append(symbols, SymbolInformationToSymbol(info))
			continue
		}

		var ds protocol.DocumentSymbol
		if err := json.Unmarshal(element, &ds); err != nil {
			return nil, wrapErrParse(err)
		}
		symbols = appendDocumentSymbol(symbols, doc, ds)
	}
	return symbols, nil
}

// SymbolInformationToSymbol maps a flat symbol, which carries its own document.
func SymbolInformationToSymbol(info protocol.SymbolInformation) Symbol {
	return Symbol{
		Name:     info.Name,
		Kind:     info.Kind,
		Document: info.Location.URI,
		Position: info.Location.Range.Start,
	}
}

// DocumentSymbolsToSymbols flattens hierarchical symbols of doc, parents before children.
func DocumentSymbolsToSymbols(doc protocol.DocumentURI, tree []protocol.DocumentSymbol) []Symbol {
	var symbols []Symbol
	for _, ds := range tree {
		symbols = appendDocumentSymbol(symbols, doc, ds)
	}
	return symbols
}

func appendDocumentSymbol(symbols []Symbol, doc protocol.DocumentURI, ds protocol.DocumentSymbol) []Symbol {
	symbols = append(symbols, Symbol{
		Name:     ds.Name,
		Kind:     ds.Kind,
		Document: doc,
		Position: ds.SelectionRange.Start,
	})
	for _, child := range ds.Children {
		symbols = appendDocumentSymbol(symbols, doc, child)
	}
	return symbols
}

// IsCallable reports whether the kind denotes something that can appear in a call hierarchy.
func IsCallable(kind protocol.SymbolKind) bool {
	return kind == protocol.SymbolKindFunction || kind == protocol.SymbolKindMethod
}

// CallableSymbols keeps functions and methods.
func CallableSymbols(symbols []Symbol) []Symbol {
	var result []Symbol
	for _, s := range symbols {
		if IsCallable(s.Kind) {
			result = append(result, s)
		}
	}
	return result
}

// CallableItems keeps call hierarchy items for functions and methods.
func CallableItems(items []protocol.CallHierarchyItem) []protocol.CallHierarchyItem {
	var result []protocol.CallHierarchyItem
	for _, item := range items {
		if IsCallable(item.Kind) {
			result = append(result, item)
		}
	}
	return result
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
