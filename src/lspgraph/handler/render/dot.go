// Package render writes analysis results for people and tools downstream.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/uber/lsp-graph/src/lspgraph/entity"
)

var _dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Dot writes graph in Graphviz format, nodes and edges in lexical order.
func Dot(w io.Writer, graph *entity.FileGraph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "    rankdir=LR;")
	fmt.Fprintln(bw, "    node [shape=rect];")
	for _, node := range graph.Nodes() {
		fmt.Fprintf(bw, "    %s;\n", quote(node))
	}
	for _, edge := range graph.Edges() {
		fmt.Fprintf(bw, "    %s -> %s;\n", quote(edge.From), quote(edge.To))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func quote(id string) string {
	return `"` + _dotEscaper.Replace(id) + `"`
}
