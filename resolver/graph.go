package resolver

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// A Graph is the symbol reference graph of a resolved function. Nodes are
// functions and imports; an edge from A to B means A references B.
type Graph struct {
	*simple.DirectedGraph
	functions map[string]*Symbol
	imports   map[string]*Symbol
}

// SymbolKind is the kind of a node in the graph.
type SymbolKind string

// Symbol kinds.
const (
	FunctionSymbol SymbolKind = "function"
	ImportSymbol   SymbolKind = "import"
)

// A Symbol is a node in the graph.
type Symbol struct {
	graph.Node
	Name string
	Kind SymbolKind

	// Recursive is set if the function calls itself.
	Recursive bool
}

// Attributes returns attributes for the node when the graph is marshalled to
// graphviz dot format.
func (s *Symbol) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: s.Name}}
	if s.Kind == ImportSymbol {
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	}
	if s.Recursive {
		attrs = append(attrs, encoding.Attribute{Key: "peripheries", Value: "2"})
	}
	return attrs
}

func newGraph() *Graph {
	return &Graph{
		DirectedGraph: simple.NewDirectedGraph(),
		functions:     make(map[string]*Symbol),
		imports:       make(map[string]*Symbol),
	}
}

func (g *Graph) function(name string) *Symbol {
	if n, ok := g.functions[name]; ok {
		return n
	}
	n := &Symbol{Node: g.NewNode(), Name: name, Kind: FunctionSymbol}
	g.AddNode(n)
	g.functions[name] = n
	return n
}

func (g *Graph) call(from, to string) {
	if from == to {
		g.function(from).Recursive = true
		return
	}
	g.SetEdge(g.NewEdge(g.function(from), g.function(to)))
}

func (g *Graph) uses(from string, imp Import) {
	n, ok := g.imports[imp.Source]
	if !ok {
		name := imp.Module
		if imp.Symbol != "" {
			name += "." + imp.Symbol
		}
		n = &Symbol{Node: g.NewNode(), Name: name, Kind: ImportSymbol}
		g.AddNode(n)
		g.imports[imp.Source] = n
	}
	g.SetEdge(g.NewEdge(g.function(from), n))
}

// Cycles returns groups of mutually recursive functions. Each cycle lists
// the function names in sorted order; the cycles themselves are sorted too.
// Direct self recursion is not reported, see Symbol.Recursive.
func (g *Graph) Cycles() [][]string {
	var out [][]string // nolint: prealloc
	for _, c := range topo.DirectedCyclesIn(g) {
		seen := make(map[string]bool)
		var names []string
		for _, n := range c {
			name := n.(*Symbol).Name
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		sort.Strings(names)
		out = append(out, names)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], ",") < strings.Join(out[j], ",")
	})
	return out
}

// DOT marshals the graph to graphviz dot format.
func (g *Graph) DOT(name string) ([]byte, error) {
	return dot.Marshal(g, name, "", "\t")
}
