package structure

import (
	"sort"

	"github.com/nextedit-lsp/nextedit/textedit"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

// MatchGroup pairs a definition-like capture with the detail captures that
// fall inside it, e.g. a function declaration with its name and body.
type MatchGroup struct {
	Main    treesitter.Capture
	Details []treesitter.Capture
}

// Range returns the group's main range.
func (g MatchGroup) Range() textedit.OffsetRange { return g.Main.Range() }

// Detail returns the first detail capture with the given name, or nil.
func (g MatchGroup) Detail(name string) *treesitter.Capture {
	for i := range g.Details {
		if g.Details[i].Name == name {
			return &g.Details[i]
		}
	}
	return nil
}

type captureIdentity struct {
	kind     string
	startB   int
	endB     int
}

func identityOf(c treesitter.Capture) captureIdentity {
	return captureIdentity{kind: c.Kind, startB: c.StartByte, endB: c.EndByte}
}

// GroupMatches groups captures into MatchGroups. isDefinition selects the
// main captures; every other capture attaches to the innermost definition
// whose range contains it. Repeated captures of the same node are
// deduplicated, keeping the first seen.
func GroupMatches(captures []treesitter.Capture, isDefinition func(treesitter.Capture) bool) []MatchGroup {
	var groups []MatchGroup
	index := make(map[captureIdentity]int)
	for _, c := range captures {
		if !isDefinition(c) {
			continue
		}
		id := identityOf(c)
		if _, ok := index[id]; ok {
			continue
		}
		index[id] = len(groups)
		groups = append(groups, MatchGroup{Main: c})
	}

	seenDetail := make(map[int]map[captureIdentity]bool)
	for _, c := range captures {
		if isDefinition(c) {
			continue
		}
		gi := innermostGroup(groups, c.Range())
		if gi < 0 {
			continue
		}
		id := identityOf(c)
		if seenDetail[gi] == nil {
			seenDetail[gi] = make(map[captureIdentity]bool)
		}
		if seenDetail[gi][id] {
			continue
		}
		seenDetail[gi][id] = true
		groups[gi].Details = append(groups[gi].Details, c)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := groups[i].Range(), groups[j].Range()
		if ri.Start != rj.Start {
			return ri.Start < rj.Start
		}
		return ri.EndEx > rj.EndEx
	})
	return groups
}

// innermostGroup returns the index of the smallest group range containing r,
// or -1.
func innermostGroup(groups []MatchGroup, r textedit.OffsetRange) int {
	best := -1
	for i := range groups {
		gr := groups[i].Range()
		if !gr.ContainsRange(r) {
			continue
		}
		if best < 0 || gr.Len() < groups[best].Range().Len() {
			best = i
		}
	}
	return best
}

// MatchTree nests match groups into an overlay forest by containment.
func MatchTree(groups []MatchGroup) []*OverlayNode {
	nodes := make([]*OverlayNode, len(groups))
	for i, g := range groups {
		nodes[i] = &OverlayNode{Kind: g.Main.Kind, Range: g.Range()}
	}
	return BuildMatchTree(nodes)
}

// BlockName is one node of the block-name tree: the human-readable name of
// a structural block, nested like the blocks themselves.
type BlockName struct {
	Name     string
	Range    textedit.OffsetRange
	Children []*BlockName
}

// BlockNameTree builds the name tree from match groups. A group's name is
// its "name" detail capture's text, falling back to the main capture kind.
func BlockNameTree(groups []MatchGroup) []*BlockName {
	nodes := make([]*OverlayNode, len(groups))
	names := make(map[textedit.OffsetRange]string, len(groups))
	for i, g := range groups {
		name := g.Main.Kind
		if d := g.Detail("name"); d != nil {
			name = d.Text
		}
		r := g.Range()
		nodes[i] = &OverlayNode{Kind: name, Range: r}
		if _, ok := names[r]; !ok {
			names[r] = name
		}
	}
	return toBlockNames(BuildMatchTree(nodes))
}

func toBlockNames(nodes []*OverlayNode) []*BlockName {
	var out []*BlockName
	for _, n := range nodes {
		out = append(out, &BlockName{
			Name:     n.Kind,
			Range:    n.Range,
			Children: toBlockNames(n.Children),
		})
	}
	return out
}

// Overlay derives the full structural overlay from raw query captures:
// excluded ranges are dropped, captures nest into a tree, wrapper nodes
// collapse into their child, trailing trivia is absorbed, and ranges align
// to line boundaries.
func Overlay(source string, captures []treesitter.Capture, wrapperKinds map[string]bool) []*OverlayNode {
	kept, _ := treesitter.SplitExcluded(captures)
	nodes := make([]*OverlayNode, 0, len(kept))
	for _, c := range kept {
		nodes = append(nodes, &OverlayNode{Kind: c.Kind, Range: c.Range()})
	}
	roots := BuildMatchTree(nodes)
	roots = MergeWrappers(roots, wrapperKinds)
	roots = AbsorbTrailing(roots, source)
	roots = ExtendToNewline(roots, source)
	return roots
}
