package entity

import (
	"go.lsp.dev/protocol"
)

// CallKey identifies a call hierarchy item by the document and range of its declared name.
type CallKey struct {
	Document  protocol.DocumentURI
	Selection protocol.Range
}

// KeyOf returns the identity of item.
func KeyOf(item protocol.CallHierarchyItem) CallKey {
	return CallKey{Document: item.URI, Selection: item.SelectionRange}
}

// CallEdge records that Caller calls Callee.
type CallEdge struct {
	Caller protocol.CallHierarchyItem
	Callee protocol.CallHierarchyItem
}

// UsageScore is the share of all functions in the graph that transitively call Item, in percent.
type UsageScore struct {
	Item  protocol.CallHierarchyItem
	Score float64
}

// CallGraph is a directed graph of interned call hierarchy items.
type CallGraph struct {
	ids   map[CallKey]int
	items []protocol.CallHierarchyItem
	// callers[n] holds every m with an edge m -> n.
	callers []map[int]struct{}
}

// NewCallGraph returns an empty graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{ids: make(map[CallKey]int)}
}

// Intern returns the node id of item, adding it on first sight.
func (g *CallGraph) Intern(item protocol.CallHierarchyItem) int {
	key := KeyOf(item)
	if id, ok := g.ids[key]; ok {
		return id
	}
	id := len(g.items)
	g.ids[key] = id
	g.items = append(g.items, item)
	g.callers = append(g.callers, make(map[int]struct{}))
	return id
}

// AddEdge records a call, interning both endpoints.
func (g *CallGraph) AddEdge(e CallEdge) {
	caller := g.Intern(e.Caller)
	callee := g.Intern(e.Callee)
	g.callers[callee][caller] = struct{}{}
}

// Len returns the number of nodes.
func (g *CallGraph) Len() int {
	return len(g.items)
}

// Dependents returns how many other nodes reach id through one or more calls.
func (g *CallGraph) Dependents(id int) int {
	seen := make([]bool, len(g.items))
	seen[id] = true
	queue := []int{id}
	count := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for m := range g.callers[n] {
			if seen[m] {
				continue
			}
			seen[m] = true
			count++
			queue = append(queue, m)
		}
	}
	return count
}

// UsageScores returns a score for every node, in interning order.
func (g *CallGraph) UsageScores() []UsageScore {
	scores := make([]UsageScore, len(g.items))
	total := float64(len(g.items))
	for id, item := range g.items {
		scores[id] = UsageScore{
			Item:  item,
			Score: 100 * float64(g.Dependents(id)) / total,
		}
	}
	return scores
}
