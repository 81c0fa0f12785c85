package textedit

import (
	"fmt"
	"strings"
)

// TaggedReplacement is a replacement carrying caller-supplied metadata, e.g.
// a monotonic edit-sequence id the history layer uses to split recent from
// stale edits.
type TaggedReplacement[T any] struct {
	Replacement
	Tag T
}

// AnnotatedEdit is a StringEdit whose replacements carry tags. The zero
// value is the empty edit.
type AnnotatedEdit[T any] struct {
	reps []TaggedReplacement[T]
}

// NewAnnotatedEdit creates a tagged edit. The same ordering and disjointness
// rules as NewStringEdit apply.
func NewAnnotatedEdit[T any](reps ...TaggedReplacement[T]) AnnotatedEdit[T] {
	kept := make([]TaggedReplacement[T], 0, len(reps))
	for _, r := range reps {
		if r.IsEmpty() {
			continue
		}
		if n := len(kept); n > 0 && kept[n-1].Range.EndEx > r.Range.Start {
			panic(fmt.Sprintf("textedit: tagged replacements out of order or overlapping: %v then %v",
				kept[n-1].Range, r.Range))
		}
		kept = append(kept, r)
	}
	return AnnotatedEdit[T]{reps: kept}
}

// Annotate tags every replacement of a StringEdit with the same tag.
func Annotate[T any](e StringEdit, tag T) AnnotatedEdit[T] {
	reps := make([]TaggedReplacement[T], len(e.reps))
	for i, r := range e.reps {
		reps[i] = TaggedReplacement[T]{Replacement: r, Tag: tag}
	}
	return AnnotatedEdit[T]{reps: reps}
}

// Replacements returns the tagged replacements in order.
func (e AnnotatedEdit[T]) Replacements() []TaggedReplacement[T] { return e.reps }

// IsEmpty reports whether the edit changes nothing.
func (e AnnotatedEdit[T]) IsEmpty() bool { return len(e.reps) == 0 }

// StringEdit returns the edit with tags dropped.
func (e AnnotatedEdit[T]) StringEdit() StringEdit {
	return StringEdit{reps: stripTags(e.reps)}
}

// Apply applies the edit to text.
func (e AnnotatedEdit[T]) Apply(text string) string {
	return e.StringEdit().Apply(text)
}

// Compose returns the edit equivalent to applying e then other. Where a
// resulting replacement draws from both edits, merge combines the
// contributing tags left to right.
func (e AnnotatedEdit[T]) Compose(other AnnotatedEdit[T], merge func(a, b T) T) AnnotatedEdit[T] {
	return AnnotatedEdit[T]{reps: composeTagged(e.reps, other.reps, merge)}
}

// DecomposeSplit partitions the replacements by a predicate on their tags.
// It returns (rest, matched) such that applying rest to the base and then
// matched to the result is behaviorally equivalent to applying e; matched's
// ranges are expressed in post-rest coordinates.
func (e AnnotatedEdit[T]) DecomposeSplit(pred func(T) bool) (rest, matched AnnotatedEdit[T]) {
	var restReps, matchedReps []TaggedReplacement[T]
	delta := 0
	for _, r := range e.reps {
		if pred(r.Tag) {
			nr := r
			nr.Range = r.Range.Delta(delta)
			matchedReps = append(matchedReps, nr)
		} else {
			restReps = append(restReps, r)
			delta += r.LenDelta()
		}
	}
	return AnnotatedEdit[T]{reps: restReps}, AnnotatedEdit[T]{reps: matchedReps}
}

func (e AnnotatedEdit[T]) String() string {
	if len(e.reps) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.reps))
	for i, r := range e.reps {
		parts[i] = fmt.Sprintf("%v -> %q (%v)", r.Range, r.NewText, r.Tag)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func annotate[T any](reps []Replacement) []TaggedReplacement[T] {
	out := make([]TaggedReplacement[T], len(reps))
	for i, r := range reps {
		out[i] = TaggedReplacement[T]{Replacement: r}
	}
	return out
}

func stripTags[T any](reps []TaggedReplacement[T]) []Replacement {
	out := make([]Replacement, len(reps))
	for i, r := range reps {
		out[i] = r.Replacement
	}
	return out
}
