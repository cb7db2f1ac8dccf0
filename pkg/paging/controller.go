// Package paging tracks the offset/limit window of a paginated option source.
package paging

import (
	"github.com/goliatone/go-choices/pkg/model"
)

// Controller tracks the current page of one field. It is not safe for
// concurrent use; the owning field serialises access.
type Controller struct {
	paginated  bool
	offset     int
	limit      int
	hasMore    bool
	searchText string
}

// New returns a controller positioned on the first page. Sources that do not
// paginate never report more results.
func New(kind model.SourceKind, limit int) *Controller {
	c := &Controller{paginated: kind.Paginated(), limit: limit}
	c.Reset()
	return c
}

// Reset moves back to the first page and re-arms HasMore.
func (c *Controller) Reset() {
	c.offset = 0
	c.hasMore = c.paginated
}

// Search records the current search text. A different text restarts paging
// from the first page; the return value reports whether that happened.
func (c *Controller) Search(text string) bool {
	if text == c.searchText {
		return false
	}
	c.searchText = text
	c.Reset()
	return true
}

// SearchText returns the last recorded search text.
func (c *Controller) SearchText() string {
	return c.searchText
}

// Advance moves to the next page. It reports false, leaving the window
// untouched, when the previous page was the last one.
func (c *Controller) Advance() bool {
	if !c.paginated || !c.hasMore {
		return false
	}
	c.offset += c.limit
	return true
}

// Rewind undoes the last Advance, typically after the continuation failed.
func (c *Controller) Rewind() {
	c.offset -= c.limit
	if c.offset < 0 {
		c.offset = 0
	}
}

// Observe records the size of the page just loaded. A page shorter than the
// limit means the source is exhausted.
func (c *Controller) Observe(n int) {
	if !c.paginated {
		c.hasMore = false
		return
	}
	c.hasMore = c.limit > 0 && n >= c.limit
}

// Window is a saved controller position.
type Window struct {
	offset     int
	hasMore    bool
	searchText string
}

// Save returns the current position so a failed load can be undone.
func (c *Controller) Save() Window {
	return Window{offset: c.offset, hasMore: c.hasMore, searchText: c.searchText}
}

// Restore moves back to a position returned by Save.
func (c *Controller) Restore(w Window) {
	c.offset = w.offset
	c.hasMore = w.hasMore
	c.searchText = w.searchText
}

// HasMore reports whether another page may exist.
func (c *Controller) HasMore() bool {
	return c.hasMore
}

// Request describes a load of the current window.
func (c *Controller) Request(trigger model.Trigger) model.LoadRequest {
	return model.LoadRequest{
		SearchText: c.searchText,
		Offset:     c.offset,
		Limit:      c.limit,
		Append:     trigger == model.TriggerLoadMore,
		Trigger:    trigger,
	}
}

// State returns a snapshot of the window.
func (c *Controller) State() model.PaginationState {
	return model.PaginationState{Offset: c.offset, Limit: c.limit, HasMore: c.hasMore}
}
