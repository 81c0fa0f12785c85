package document

import (
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// ChangesToEdit converts a sequence of content change events into a single
// StringEdit against the given snapshot. Each event's range refers to the
// text after the preceding events, so the events are composed in order.
func ChangesToEdit(before *textedit.Snapshot, changes []protocol.TextDocumentContentChangeEvent) textedit.StringEdit {
	var total textedit.StringEdit
	cur := before
	for _, change := range changes {
		var single textedit.StringEdit
		if change.Range == nil {
			single = textedit.SingleReplacement(textedit.NewOffsetRange(0, cur.Len()), change.Text)
		} else {
			start := OffsetAt(cur, change.Range.Start)
			end := OffsetAt(cur, change.Range.End)
			if start > end {
				start = end
			}
			single = textedit.SingleReplacement(textedit.NewOffsetRange(start, end), change.Text)
		}
		total = total.Compose(single)
		cur = cur.Apply(single)
	}
	return total
}
