package csl

// CiteItem is one entry reference within a citation event: the entry id
// plus an optional locator and local affixes.
type CiteItem struct {
	EntryID      string `json:"entry_id"`
	Locator      string `json:"locator,omitempty"`       // "12-14"
	LocatorLabel string `json:"locator_label,omitempty"` // term name: "page", "chapter"
	Prefix       string `json:"prefix,omitempty"`
	Suffix       string `json:"suffix,omitempty"`
}

// CitationEvent is an ordered group of cite items cited together at one
// point in the document. Seq is the monotonically increasing document
// position, stamped by the driver's logical clock - never a wall-clock
// timestamp.
type CitationEvent struct {
	Seq   int64      `json:"seq"`
	Items []CiteItem `json:"items"`
}

// EntryIDs returns the ids cited by the event, in item order.
func (ev CitationEvent) EntryIDs() []string {
	ids := make([]string, len(ev.Items))
	for i, it := range ev.Items {
		ids[i] = it.EntryID
	}
	return ids
}

// SameEntries reports whether two events cite exactly the same entry
// set in the same order. Used for ibid classification.
func (ev CitationEvent) SameEntries(o CitationEvent) bool {
	if len(ev.Items) != len(o.Items) {
		return false
	}
	for i := range ev.Items {
		if ev.Items[i].EntryID != o.Items[i].EntryID {
			return false
		}
	}
	return true
}

// SameLocators reports whether two events carry identical locators,
// item by item. Only meaningful when SameEntries holds.
func (ev CitationEvent) SameLocators(o CitationEvent) bool {
	if len(ev.Items) != len(o.Items) {
		return false
	}
	for i := range ev.Items {
		if ev.Items[i].Locator != o.Items[i].Locator ||
			ev.Items[i].LocatorLabel != o.Items[i].LocatorLabel {
			return false
		}
	}
	return true
}
