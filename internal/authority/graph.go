package authority

import (
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
)

// Graph is the directed link relation over a collection. Nodes are listing
// positions. Each source links to a given target at most once and never to
// itself.
type Graph struct {
	ids      []string
	out      [][]int
	in       [][]int
	outDeg   []int
	numEdges int
}

// BuildGraph scans every document's tokens for identifiers of other
// documents in the collection.
func BuildGraph(c *collection.Collection) *Graph {
	n := c.Len()
	g := &Graph{
		ids:    c.IDs(),
		out:    make([][]int, n),
		in:     make([][]int, n),
		outDeg: make([]int, n),
	}
	for src, doc := range c.Docs {
		seen := make(map[int]struct{})
		for _, tok := range doc.Tokens {
			dst, ok := c.Index(tok)
			if !ok || dst == src {
				continue
			}
			if _, dup := seen[dst]; dup {
				continue
			}
			seen[dst] = struct{}{}
			g.out[src] = append(g.out[src], dst)
			g.in[dst] = append(g.in[dst], src)
		}
		g.outDeg[src] = len(g.out[src])
		g.numEdges += len(g.out[src])
	}
	return g
}

func (g *Graph) Len() int {
	return len(g.ids)
}

func (g *Graph) ID(i int) string {
	return g.ids[i]
}

func (g *Graph) OutDegree(i int) int {
	return g.outDeg[i]
}

// InLinks returns the sources that link to i, in listing order.
func (g *Graph) InLinks(i int) []int {
	return g.in[i]
}

// OutLinks returns the distinct targets of i in first-mention order.
func (g *Graph) OutLinks(i int) []int {
	return g.out[i]
}

func (g *Graph) NumEdges() int {
	return g.numEdges
}
