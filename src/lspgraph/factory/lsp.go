package factory

import (
	"math/rand"

	"go.lsp.dev/protocol"
)

// Range returns a random protocol.Range.
func Range() protocol.Range {
	start := protocol.Position{Line: uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}
	end := protocol.Position{Line: start.Line + uint32(rand.Intn(100)), Character: uint32(rand.Intn(100))}

	if start.Line == end.Line && start.Character > end.Character {
		end.Character = start.Character + uint32(rand.Intn(100))
	}

	return protocol.Range{
		Start: start,
		End:   end,
	}
}

// LineRange returns a range covering the first n characters of line.
func LineRange(line uint32, n uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line},
		End:   protocol.Position{Line: line, Character: n},
	}
}

// Function returns a hierarchical symbol for a function declared on line.
func Function(name string, line uint32) protocol.DocumentSymbol {
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           protocol.SymbolKindFunction,
		Range:          LineRange(line, 40),
		SelectionRange: protocol.Range{Start: protocol.Position{Line: line, Character: 3}, End: protocol.Position{Line: line, Character: 3 + uint32(len(name))}},
	}
}

// CallHierarchyItem returns a function item declared in doc on line.
func CallHierarchyItem(doc protocol.DocumentURI, name string, line uint32) protocol.CallHierarchyItem {
	fn := Function(name, line)
	return protocol.CallHierarchyItem{
		Name:           name,
		Kind:           protocol.SymbolKindFunction,
		URI:            doc,
		Range:          fn.Range,
		SelectionRange: fn.SelectionRange,
	}
}
