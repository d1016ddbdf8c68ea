// Package entity contains the graphs built from language server answers.
package entity

import (
	"sort"
)

// FileEdge records that the file From references a symbol declared in the file To.
type FileEdge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// FileGraph is a set of files and the reference edges between them.
type FileGraph struct {
	nodes map[string]struct{}
	edges map[FileEdge]struct{}
}

// NewFileGraph returns an empty graph.
func NewFileGraph() *FileGraph {
	return &FileGraph{
		nodes: make(map[string]struct{}),
		edges: make(map[FileEdge]struct{}),
	}
}

// AddNode adds a file. Adding a file twice has no effect.
func (g *FileGraph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge adds both files and, unless they are the same file, the edge between them.
// It reports whether an edge was recorded.
func (g *FileGraph) AddEdge(from, to string) bool {
	g.AddNode(from)
	g.AddNode(to)
	if from == to {
		return false
	}
	g.edges[FileEdge{From: from, To: to}] = struct{}{}
	return true
}

// HasEdge reports whether from references to.
func (g *FileGraph) HasEdge(from, to string) bool {
	_, ok := g.edges[FileEdge{From: from, To: to}]
	return ok
}

// NodeCount returns the number of files.
func (g *FileGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *FileGraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns the files in lexical order.
func (g *FileGraph) Nodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Edges returns the edges ordered by source, then target.
func (g *FileGraph) Edges() []FileEdge {
	edges := make([]FileEdge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Rename returns a graph whose files are renamed by rename. Files for which rename reports
// false are dropped together with their edges.
func (g *FileGraph) Rename(rename func(string) (string, bool)) *FileGraph {
	renamed := NewFileGraph()
	names := make(map[string]string, len(g.nodes))
	for n := range g.nodes {
		if newName, ok := rename(n); ok {
			names[n] = newName
			renamed.AddNode(newName)
		}
	}
	for e := range g.edges {
		from, fromOK := names[e.From]
		to, toOK := names[e.To]
		if fromOK && toOK {
			renamed.AddEdge(from, to)
		}
	}
	return renamed
}
