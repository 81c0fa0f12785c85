package textedit

import "strings"

// Composition works on operation streams in the style of operational
// transformation: each edit is decomposed into retain/delete/insert
// operations, the two streams are merged, and the merged stream is folded
// back into replacements. The second edit's operations consume the output of
// the first, which handles the coordinate shift between the two edits.

type opKind int

const (
	opRetain opKind = iota
	opDelete
	opInsert
)

type editOp[T any] struct {
	kind opKind
	n    int    // retain or delete length
	s    string // insert text
	tag  T      // source replacement tag (delete/insert only)
}

// outLen is the length the op contributes to the post-edit text.
func (o editOp[T]) outLen() int {
	switch o.kind {
	case opRetain:
		return o.n
	case opInsert:
		return len(o.s)
	default:
		return 0
	}
}

func toOps[T any](reps []TaggedReplacement[T]) []editOp[T] {
	var out []editOp[T]
	pos := 0
	for _, r := range reps {
		if r.Range.Start > pos {
			out = append(out, editOp[T]{kind: opRetain, n: r.Range.Start - pos})
		}
		if r.Range.Len() > 0 {
			out = append(out, editOp[T]{kind: opDelete, n: r.Range.Len(), tag: r.Tag})
		}
		if r.NewText != "" {
			out = append(out, editOp[T]{kind: opInsert, s: r.NewText, tag: r.Tag})
		}
		pos = r.Range.EndEx
	}
	return out
}

// composeTagged merges two sequential edits into one. The trailing text both
// edits leave untouched is an implicit retain, so streams of different
// lengths compose fine.
func composeTagged[T any](a, b []TaggedReplacement[T], merge func(x, y T) T) []TaggedReplacement[T] {
	opsA := toOps(a)
	opsB := toOps(b)

	var out []editOp[T]
	ia, ib := 0, 0
	var curA, curB editOp[T]
	haveA, haveB := false, false

	nextA := func() {
		if ia < len(opsA) {
			curA = opsA[ia]
			ia++
			haveA = true
		} else {
			haveA = false
		}
	}
	nextB := func() {
		if ib < len(opsB) {
			curB = opsB[ib]
			ib++
			haveB = true
		} else {
			haveB = false
		}
	}
	nextA()
	nextB()

	for haveA || haveB {
		if haveA && curA.kind == opDelete {
			out = append(out, curA)
			nextA()
			continue
		}
		if haveB && curB.kind == opInsert {
			out = append(out, curB)
			nextB()
			continue
		}
		if !haveA {
			// b consumes base text beyond a's last op.
			out = append(out, curB)
			nextB()
			continue
		}
		if !haveB {
			out = append(out, curA)
			nextA()
			continue
		}

		// curA is retain or insert; curB is retain or delete.
		n := min(curA.outLen(), curB.n)
		switch {
		case curA.kind == opRetain && curB.kind == opRetain:
			out = append(out, editOp[T]{kind: opRetain, n: n})
		case curA.kind == opRetain && curB.kind == opDelete:
			out = append(out, editOp[T]{kind: opDelete, n: n, tag: curB.tag})
		case curA.kind == opInsert && curB.kind == opRetain:
			out = append(out, editOp[T]{kind: opInsert, s: curA.s[:n], tag: curA.tag})
		case curA.kind == opInsert && curB.kind == opDelete:
			// a's insertion is consumed by b's deletion; nothing survives.
		}

		if curA.outLen() == n {
			nextA()
		} else if curA.kind == opInsert {
			curA.s = curA.s[n:]
		} else {
			curA.n -= n
		}
		if curB.n == n {
			nextB()
		} else {
			curB.n -= n
		}
	}

	return opsToReps(out, merge)
}

// opsToReps folds a merged op stream back into sorted replacements. Runs of
// delete/insert ops between retains collapse into a single replacement whose
// tag is the merge-fold of all contributing tags.
func opsToReps[T any](ops []editOp[T], merge func(x, y T) T) []TaggedReplacement[T] {
	var reps []TaggedReplacement[T]
	pos := 0
	pendStart := -1
	pendDel := 0
	var pendIns strings.Builder
	var pendTag T
	pendTagged := false

	addTag := func(t T) {
		if pendTagged {
			pendTag = merge(pendTag, t)
		} else {
			pendTag = t
			pendTagged = true
		}
	}
	flush := func() {
		if pendStart >= 0 && (pendDel > 0 || pendIns.Len() > 0) {
			reps = append(reps, TaggedReplacement[T]{
				Replacement: Replacement{
					Range:   OffsetRange{Start: pendStart, EndEx: pendStart + pendDel},
					NewText: pendIns.String(),
				},
				Tag: pendTag,
			})
		}
		pendStart = -1
		pendDel = 0
		pendIns.Reset()
		var zero T
		pendTag = zero
		pendTagged = false
	}

	for _, o := range ops {
		switch o.kind {
		case opRetain:
			flush()
			pos += o.n
		case opDelete:
			if pendStart < 0 {
				pendStart = pos
			}
			pendDel += o.n
			pos += o.n
			addTag(o.tag)
		case opInsert:
			if pendStart < 0 {
				pendStart = pos
			}
			pendIns.WriteString(o.s)
			addTag(o.tag)
		}
	}
	flush()
	return reps
}
