package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/wlattner/cforest/forest"
	"github.com/wlattner/cforest/frame"
	"github.com/wlattner/cforest/tree"
)

var renderFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

// renderFormat picks the format from name, or from the extension of path
// when name is empty.
func renderFormat(name, path string) (graphviz.Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	format, ok := renderFormats[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown image format %q, use png, svg, jpg or dot", name)
	}
	return format, nil
}

func nodeDescription(clf *forest.Classifier, n *tree.Node) string {
	if n.Leaf {
		return fmt.Sprintf("%s\nn=%.4g\n%s", clf.Classes[n.Label], n.Total, n.Reason)
	}
	name := clf.Names[n.Feature]
	if n.Kind == frame.Nominal {
		return fmt.Sprintf("%s = %s\nn=%.4g gain=%.4f", name, clf.Levels[n.Feature][n.Level], n.Total, n.Score)
	}
	return fmt.Sprintf("%s <= %.4g\nn=%.4g gain=%.4f", name, n.Threshold, n.Total, n.Score)
}

// drawTree adds the nodes of t to g, parents before children.
func drawTree(g *cgraph.Graph, clf *forest.Classifier, t *tree.Classifier) error {
	type item struct {
		id     int
		parent *cgraph.Node
		left   bool
	}

	stack := []item{{id: 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.Nodes[it.id]
		node, err := g.CreateNode(fmt.Sprint(it.id))
		if err != nil {
			return err
		}
		node.Set("label", nodeDescription(clf, n))

		if it.parent != nil {
			edge, err := g.CreateEdge("", it.parent, node)
			if err != nil {
				return err
			}
			if it.left {
				edge.SetLabel("yes")
			} else {
				edge.SetLabel("no")
			}
		}

		if n.Leaf {
			node.Set("shape", "box")
			continue
		}
		stack = append(stack, item{n.Right, node, false}, item{n.Left, node, true})
	}
	return nil
}

// renderTree draws tree i of clf to path.
func renderTree(clf *forest.Classifier, i int, path, format string) error {
	if i < 0 || i >= len(clf.Trees) {
		return fmt.Errorf("tree %d out of range, model has %d trees", i, len(clf.Trees))
	}
	f, err := renderFormat(format, path)
	if err != nil {
		return err
	}

	gv := graphviz.New()
	defer gv.Close()
	g, err := gv.Graph()
	if err != nil {
		return err
	}
	defer g.Close()

	if err := drawTree(g, clf, clf.Trees[i]); err != nil {
		return err
	}
	return gv.RenderFilename(g, f, path)
}
