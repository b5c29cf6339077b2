package headings

import (
	"strconv"

	"github.com/dgallion1/inkwell/internal/slug"
)

// TableOfContents folds a flat heading list into a tree. Every heading owns
// the run of headings directly after it whose level is strictly greater, so a
// jump from h2 to h4 still nests. Top-level nodes sit at depth 1 and children
// are only built while the depth is below opts.MaxDepth.
//
// Every node carries an id: the heading's own, a slug of its text, or
// "section-N" for its 1-based position in hs.
func TableOfContents(hs []Heading, opts Options) []TocNode {
	nodes := buildTOC(hs, 0, 1, opts.MaxDepth)
	if nodes == nil {
		return []TocNode{}
	}
	return nodes
}

func buildTOC(hs []Heading, offset, depth, maxDepth int) []TocNode {
	var nodes []TocNode
	for i := 0; i < len(hs); {
		h := hs[i]
		j := i + 1
		for j < len(hs) && hs[j].Level > h.Level {
			j++
		}

		node := TocNode{Level: h.Level, Text: h.Text, ID: tocID(h, offset+i)}
		if maxDepth <= 0 || depth < maxDepth {
			node.Children = buildTOC(hs[i+1:j], offset+i+1, depth+1, maxDepth)
		}
		nodes = append(nodes, node)
		i = j
	}
	return nodes
}

func tocID(h Heading, pos int) string {
	if h.ID != "" {
		return h.ID
	}
	if id := slug.Make(h.Text); id != "" {
		return id
	}
	return "section-" + strconv.Itoa(pos+1)
}

// Walk visits every node of toc depth-first in document order. depth is 1 for
// top-level nodes.
func Walk(toc []TocNode, fn func(n TocNode, depth int)) {
	var walk func([]TocNode, int)
	walk = func(nodes []TocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(toc, 1)
}
