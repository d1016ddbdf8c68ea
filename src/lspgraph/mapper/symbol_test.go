package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/lsp-graph/src/lspgraph/factory"
	"go.lsp.dev/protocol"
)

const _doc = protocol.DocumentURI("file:///root/proj/a.txt")

func TestResultToSymbols(t *testing.T) {
	t.Run("hierarchical", func(t *testing.T) {
		outer := factory.Function("outer", 0)
		outer.Kind = protocol.SymbolKindClass
		inner := factory.Function("inner", 2)
		innermost := factory.Function("innermost", 3)
		inner.Children = []protocol.DocumentSymbol{innermost}
		outer.Children = []protocol.DocumentSymbol{inner}
		other := factory.Function("other", 10)

		raw, err := json.Marshal([]protocol.DocumentSymbol{outer, other})
		require.NoError(t, err)

		symbols, err := ResultToSymbols(_doc, raw)
		require.NoError(t, err)

		names := make([]string, len(symbols))
		for i, s := range symbols {
			names[i] = s.Name
			assert.Equal(t, _doc, s.Document)
		}
		assert.Equal(t, []string{"outer", "inner", "innermost", "other"}, names)
		assert.Equal(t, protocol.SymbolKindClass, symbols[0].Kind)
		assert.Equal(t, inner.SelectionRange.Start, symbols[1].Position)
	})

	t.Run("flat", func(t *testing.T) {
		info := protocol.SymbolInformation{
			Name: "f",
			Kind: protocol.SymbolKindFunction,
			Location: protocol.Location{
				URI:   "file:///root/proj/b.txt",
				Range: factory.LineRange(4, 10),
			},
		}
		raw, err := json.Marshal([]protocol.SymbolInformation{info})
		require.NoError(t, err)

		symbols, err := ResultToSymbols(_doc, raw)
		require.NoError(t, err)
		require.Len(t, symbols, 1)
		assert.Equal(t, Symbol{
			Name:     "f",
			Kind:     protocol.SymbolKindFunction,
			Document: "file:///root/proj/b.txt",
			Position: protocol.Position{Line: 4},
		}, symbols[0])
	})

	t.Run("empty list", func(t *testing.T) {
		symbols, err := ResultToSymbols(_doc, json.RawMessage(`[]`))
		require.NoError(t, err)
		assert.Empty(t, symbols)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ResultToSymbols(_doc, json.RawMessage(`{"name":"f"}`))
		assert.Error(t, err)
	})
}

func TestCallableSymbols(t *testing.T) {
	symbols := []Symbol{
		{Name: "f", Kind: protocol.SymbolKindFunction},
		{Name: "T", Kind: protocol.SymbolKindStruct},
		{Name: "m", Kind: protocol.SymbolKindMethod},
		{Name: "x", Kind: protocol.SymbolKindVariable},
	}
	assert.Equal(t, []Symbol{symbols[0], symbols[2]}, CallableSymbols(symbols))

	items := []protocol.CallHierarchyItem{
		factory.CallHierarchyItem(_doc, "f", 0),
		{Name: "C", Kind: protocol.SymbolKindClass},
	}
	assert.Equal(t, items[:1], CallableItems(items))
}
