// Package structure derives structural views from query captures: nested
// overlay trees of syntactically atomic blocks, block-name trees, and an
// indentation-based fallback for languages without a grammar.
package structure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nextedit-lsp/nextedit/textedit"
)

// OverlayNode is one node of a structural overlay tree. Children are
// ordered, pairwise disjoint, and contained in the parent's range; the
// constructor enforces this, a violation is a defect in the producing code.
type OverlayNode struct {
	Kind     string
	Range    textedit.OffsetRange
	Children []*OverlayNode
}

// NewOverlayNode builds a node and validates the containment invariant.
func NewOverlayNode(kind string, r textedit.OffsetRange, children []*OverlayNode) *OverlayNode {
	prev := r.Start
	for _, child := range children {
		if !r.ContainsRange(child.Range) {
			panic(fmt.Sprintf("structure: child %v exceeds parent %v", child.Range, r))
		}
		if child.Range.Start < prev {
			panic(fmt.Sprintf("structure: children unordered or overlapping at %v", child.Range))
		}
		prev = child.Range.EndEx
	}
	return &OverlayNode{Kind: kind, Range: r, Children: children}
}

// addChild appends a child, assuming the caller feeds children in order.
func (n *OverlayNode) addChild(child *OverlayNode) {
	if !n.Range.ContainsRange(child.Range) {
		panic(fmt.Sprintf("structure: child %v exceeds parent %v", child.Range, n.Range))
	}
	n.Children = append(n.Children, child)
}

// BuildMatchTree nests flat nodes into a forest by range containment. Input
// ranges must either nest or be disjoint; a partial overlap panics. Nodes
// with equal ranges keep only the first seen.
func BuildMatchTree(nodes []*OverlayNode) []*OverlayNode {
	sorted := make([]*OverlayNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Range.Start != sorted[j].Range.Start {
			return sorted[i].Range.Start < sorted[j].Range.Start
		}
		return sorted[i].Range.EndEx > sorted[j].Range.EndEx
	})

	var roots []*OverlayNode
	var stack []*OverlayNode
	for _, node := range sorted {
		if len(stack) > 0 && stack[len(stack)-1].Range == node.Range {
			continue
		}
		for len(stack) > 0 && !stack[len(stack)-1].Range.StrictlyContains(node.Range) {
			top := stack[len(stack)-1]
			if top.Range.Intersects(node.Range) && top.Range != node.Range {
				panic(fmt.Sprintf("structure: crossing ranges %v and %v", top.Range, node.Range))
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			stack[len(stack)-1].addChild(node)
		} else {
			roots = append(roots, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// MergeWrappers collapses wrapper nodes (export statements, ambient
// declarations) that contain exactly one child into a single node carrying
// the child's kind and the wrapper's outer range.
func MergeWrappers(roots []*OverlayNode, wrapperKinds map[string]bool) []*OverlayNode {
	for _, root := range roots {
		mergeWrappers(root, wrapperKinds)
	}
	return roots
}

func mergeWrappers(n *OverlayNode, wrapperKinds map[string]bool) {
	for wrapperKinds[n.Kind] && len(n.Children) == 1 {
		child := n.Children[0]
		n.Kind = child.Kind
		n.Children = child.Children
	}
	for _, c := range n.Children {
		mergeWrappers(c, wrapperKinds)
	}
}

// AbsorbTrailing extends each node's end over trivial trailing siblings:
// semicolons, commas and a same-line line comment. Extension never crosses
// the next sibling, the parent's end, or a newline (the comment runs to it).
func AbsorbTrailing(roots []*OverlayNode, source string) []*OverlayNode {
	for i, root := range roots {
		limit := len(source)
		if i+1 < len(roots) {
			limit = roots[i+1].Range.Start
		}
		absorbTrailing(root, source, limit)
	}
	return roots
}

func absorbTrailing(n *OverlayNode, source string, limit int) {
	for i, c := range n.Children {
		childLimit := n.Range.EndEx
		if i+1 < len(n.Children) {
			childLimit = n.Children[i+1].Range.Start
		}
		absorbTrailing(c, source, childLimit)
	}
	n.Range.EndEx = extendOverTrivia(source, n.Range.EndEx, limit)
}

// extendOverTrivia advances end over `;`, `,`, spaces/tabs, and one line
// comment, stopping at limit or the newline.
func extendOverTrivia(source string, end, limit int) int {
	i := end
	for i < limit {
		switch {
		case source[i] == ';' || source[i] == ',':
			i++
			end = i
		case source[i] == ' ' || source[i] == '\t':
			i++
		case strings.HasPrefix(source[i:], "//") || source[i] == '#':
			j := strings.IndexByte(source[i:], '\n')
			if j < 0 || i+j > limit {
				return limit
			}
			return i + j
		default:
			return end
		}
	}
	return end
}

// ExtendToNewline pushes each node's end past the next newline when only
// whitespace intervenes, producing line-aligned ranges. Extension is
// bounded by the next sibling and the parent.
func ExtendToNewline(roots []*OverlayNode, source string) []*OverlayNode {
	for i, root := range roots {
		limit := len(source)
		if i+1 < len(roots) {
			limit = roots[i+1].Range.Start
		}
		extendToNewline(root, source, limit)
	}
	return roots
}

func extendToNewline(n *OverlayNode, source string, limit int) {
	n.Range.EndEx = extendPastNewline(source, n.Range.EndEx, limit)
	for i, c := range n.Children {
		childLimit := n.Range.EndEx
		if i+1 < len(n.Children) {
			childLimit = n.Children[i+1].Range.Start
		}
		extendToNewline(c, source, childLimit)
	}
}

func extendPastNewline(source string, end, limit int) int {
	i := end
	for i < limit && i < len(source) {
		switch source[i] {
		case ' ', '\t', '\r':
			i++
		case '\n':
			return i + 1
		default:
			return end
		}
	}
	return end
}
