package structure

import (
	"strings"

	"github.com/nextedit-lsp/nextedit/textedit"
)

// FromIndentation builds a structural forest from leading whitespace alone,
// the fallback for languages without a registered grammar. Each non-blank
// line starts a node; deeper-indented lines nest under the nearest
// shallower line. Blank lines extend the enclosing node.
func FromIndentation(source string) []*OverlayNode {
	type frame struct {
		node   *OverlayNode
		indent int
	}

	var roots []*OverlayNode
	var stack []frame

	extend := func(end int) {
		for _, f := range stack {
			if f.node.Range.EndEx < end {
				f.node.Range.EndEx = end
			}
		}
	}

	offset := 0
	for _, line := range strings.SplitAfter(source, "\n") {
		start := offset
		offset += len(line)
		trimmed := strings.TrimRight(line, "\n\r")
		if strings.TrimSpace(trimmed) == "" {
			if len(stack) > 0 {
				extend(offset)
			}
			continue
		}

		indent := indentWidth(trimmed)
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		node := &OverlayNode{Kind: "block", Range: textedit.NewOffsetRange(start, offset)}
		if len(stack) > 0 {
			extend(offset)
			stack[len(stack)-1].node.Children = append(stack[len(stack)-1].node.Children, node)
		} else {
			roots = append(roots, node)
		}
		stack = append(stack, frame{node: node, indent: indent})
	}
	return roots
}

// indentWidth counts leading whitespace columns, a tab counting as one.
func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}
