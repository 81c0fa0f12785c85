package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nextedit-lsp/nextedit/document"
	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

const (
	// checkoutCooldown is how long after a branch change incoming edits are
	// treated as checkout noise rather than user edits.
	checkoutCooldown = 2 * time.Second
	// maxTrackedDocuments bounds the recently-touched list.
	maxTrackedDocuments = 50
	// contextLineBudget is the total number of line replacements spent
	// across all documents when assembling history context.
	contextLineBudget = 5
	// maxLineReplacementsPerDoc is the per-document cap when no tighter
	// budget applies.
	maxLineReplacementsPerDoc = 25
)

// BranchSignal notifies about version-control branch changes. Subscribe
// registers a callback and returns a function removing it.
type BranchSignal interface {
	Subscribe(fn func(branch string)) (unsubscribe func())
}

// DocumentHistory is the history contribution of a single document, oldest
// documents first in the assembled context.
type DocumentHistory struct {
	URI        protocol.DocumentURI
	LanguageID string
	// Before is the document content preceding the recent edits.
	Before *textedit.Snapshot
	// Edits maps Before to the current content at line granularity.
	Edits textedit.LineEdit
	// Selection is the last known selection, valid only for user documents.
	Selection protocol.Selection
}

// Provider wires a document.Store into per-document Trackers and assembles
// cross-document history context.
type Provider struct {
	mu       sync.Mutex
	trackers map[protocol.DocumentURI]*Tracker
	// touched lists recently interacted documents, most recent first.
	touched []protocol.DocumentURI

	clock  func() time.Time
	logger *slog.Logger

	unsubscribe func()
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClock replaces the provider's time source, mainly for tests.
func WithClock(clock func() time.Time) ProviderOption {
	return func(p *Provider) { p.clock = clock }
}

// WithLogger sets the provider's logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) { p.logger = logger }
}

// WithBranchSignal subscribes the provider to branch-change notifications.
// On every change all history is flushed and a short cooldown starts during
// which edits bypass history.
func WithBranchSignal(sig BranchSignal) ProviderOption {
	return func(p *Provider) {
		if sig != nil {
			p.unsubscribe = sig.Subscribe(p.handleBranchChange)
		}
	}
}

// NewProvider creates a Provider listening on the given store.
func NewProvider(store *document.Store, opts ...ProviderOption) *Provider {
	p := &Provider{
		trackers: make(map[protocol.DocumentURI]*Tracker),
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	store.OnOpen(p.handleOpen)
	store.OnChange(p.handleChange)
	store.OnSelection(p.handleSelection)
	store.OnClose(p.handleClose)
	return p
}

// Close detaches the provider from its branch signal.
func (p *Provider) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func (p *Provider) handleOpen(doc *document.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trackers[doc.URI()] = NewTracker(doc.URI(), doc.LanguageID(), doc.Snapshot(), p.clock)
}

func (p *Provider) handleChange(doc *document.Document, edit textedit.StringEdit, before, after *textedit.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.trackers[doc.URI()]
	if t == nil {
		t = NewTracker(doc.URI(), doc.LanguageID(), before, p.clock)
		p.trackers[doc.URI()] = t
	}
	t.HandleEdit(edit, before, after)
	p.touch(doc.URI())
}

func (p *Provider) handleSelection(doc *document.Document, sel protocol.Selection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.trackers[doc.URI()]
	if t == nil {
		return
	}
	t.HandleSelection(sel)
	p.touch(doc.URI())
}

func (p *Provider) handleClose(uri protocol.DocumentURI) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.trackers, uri)
	p.removeTouched(uri)
}

func (p *Provider) handleBranchChange(branch string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debug("branch changed, flushing edit history", "branch", branch)
	until := p.clock().Add(checkoutCooldown)
	for _, t := range p.trackers {
		t.Flush()
		t.setCooldown(until)
	}
}

// touch moves uri to the front of the recently-touched list, evicting the
// least recent entry past capacity. Caller holds p.mu.
func (p *Provider) touch(uri protocol.DocumentURI) {
	p.removeTouched(uri)
	p.touched = append([]protocol.DocumentURI{uri}, p.touched...)
	if len(p.touched) > maxTrackedDocuments {
		p.touched = p.touched[:maxTrackedDocuments]
	}
}

// removeTouched drops uri from the touched list. Caller holds p.mu.
func (p *Provider) removeTouched(uri protocol.DocumentURI) {
	for i, u := range p.touched {
		if u == uri {
			p.touched = append(p.touched[:i], p.touched[i+1:]...)
			return
		}
	}
}

// GetRecentEdits returns the retained edit window of a single document, or
// a zero-count result if the document is unknown.
func (p *Provider) GetRecentEdits(uri protocol.DocumentURI) RecentEdits {
	return p.GetNRecentEdits(uri, maxLineReplacementsPerDoc)
}

// GetNRecentEdits is GetRecentEdits with an explicit cap on the number of
// line replacements in the composed result.
func (p *Provider) GetNRecentEdits(uri protocol.DocumentURI, maxLineReplacements int) RecentEdits {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.trackers[uri]
	if t == nil {
		return RecentEdits{}
	}
	return t.RecentEdits(maxLineReplacements)
}

// GetHistoryContext assembles cross-document history for a request on the
// target document. Documents contribute most recently touched first until
// the shared line budget runs out; the result is ordered least recently
// touched first. Returns nil when the target has no usable history.
func (p *Provider) GetHistoryContext(target protocol.DocumentURI) []DocumentHistory {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.trackers[target] == nil {
		return nil
	}

	var out []DocumentHistory
	budget := contextLineBudget
	targetIncluded := false

	for _, uri := range p.touched {
		t := p.trackers[uri]
		if t == nil || !t.IsUserDocument() {
			continue
		}
		re := t.RecentEdits(budget)
		if re.EditCount == 0 || re.LineEdit.IsEmpty() {
			// Context stands or falls with the focal document: if it has
			// nothing to contribute, there is no context at all.
			if uri == target {
				return nil
			}
			// Once the target is in, the first stale document ends the
			// walk: anything touched before it is older still.
			if targetIncluded {
				break
			}
			continue
		}
		out = append(out, DocumentHistory{
			URI:        uri,
			LanguageID: t.LanguageID(),
			Before:     re.Before,
			Edits:      re.LineEdit,
			Selection:  t.Selection(),
		})
		if uri == target {
			targetIncluded = true
		}
		budget -= re.LineEdit.Count()
		if budget <= 0 {
			break
		}
	}

	if !targetIncluded {
		return nil
	}
	// Oldest documents first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
