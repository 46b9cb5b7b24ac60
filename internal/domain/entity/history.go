package entity

import "time"

// HistoryEntry represents a visited URL in browsing history.
// Entries are unique by their normalized URL key (see urlx.NormalizeKey);
// repeat visits merge into the existing entry instead of inserting.
type HistoryEntry struct {
	ID          int64      `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	LastVisited time.Time  `json:"last_visited"`
	VisitCount  int64      `json:"visit_count"`
	TypedCount  int64      `json:"typed_count"`
	LastTypedAt *time.Time `json:"last_typed_at,omitempty"`
}

// NewHistoryEntry creates a new history entry for a URL.
func NewHistoryEntry(url, title string) *HistoryEntry {
	return &HistoryEntry{
		URL:         url,
		Title:       title,
		VisitCount:  1,
		LastVisited: time.Now(),
	}
}

// IncrementVisit updates the entry for a new visit.
func (h *HistoryEntry) IncrementVisit() {
	h.VisitCount++
	h.LastVisited = time.Now()
}

// IncrementTyped records an explicit address-bar navigation.
// Typed navigations are a stronger relevance signal than incidental
// link clicks and are tracked separately.
func (h *HistoryEntry) IncrementTyped() {
	h.IncrementVisit()
	h.TypedCount++
	now := time.Now()
	h.LastTypedAt = &now
}

// Clone returns a deep copy, used when handing entries across the
// persistence snapshot boundary.
func (h *HistoryEntry) Clone() *HistoryEntry {
	c := *h
	if h.LastTypedAt != nil {
		t := *h.LastTypedAt
		c.LastTypedAt = &t
	}
	return &c
}
