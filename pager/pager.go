// ABOUTME: Chooses between server-side paging and client-side slicing of listings
// ABOUTME: Tracks the current mode and criteria so changes reset to the first page
package pager

import (
	"fmt"
	"sync"

	"github.com/harperreed/leadgen/filter"
)

const (
	DefaultPageSize         = 50
	DefaultClientFetchLimit = 10000
)

// Mode says where paging happens.
type Mode int

const (
	// ModeServer delegates page and page size to the source.
	ModeServer Mode = iota
	// ModeClient fetches one large page, filters and sorts it, then slices locally.
	ModeClient
)

func (m Mode) String() string {
	if m == ModeClient {
		return "client"
	}
	return "server"
}

// Plan is what the caller should fetch for one listing request.
type Plan struct {
	Mode     Mode
	Page     int
	PageSize int
	// FetchPage and FetchSize are the arguments for the source call.
	FetchPage int
	FetchSize int
	// Reset is true when the requested page was discarded because the mode
	// or the criteria changed.
	Reset bool
}

// Controller remembers the previous listing so it can detect changes.
type Controller struct {
	mu          sync.Mutex
	pageSize    int
	fetchLimit  int
	planned     bool
	lastMode    Mode
	lastSig     string
	currentPage int
}

// NewController creates a controller. Non-positive sizes fall back to the defaults.
func NewController(pageSize, clientFetchLimit int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if clientFetchLimit <= 0 {
		clientFetchLimit = DefaultClientFetchLimit
	}
	return &Controller{pageSize: pageSize, fetchLimit: clientFetchLimit}
}

func (c *Controller) PageSize() int {
	return c.pageSize
}

// Plan picks the mode for criteria and the page to show. The requested page
// is honoured unless the mode or criteria signature differs from the previous
// plan, in which case paging restarts at page 1.
func (c *Controller) Plan(criteria filter.Criteria, requestedPage int) Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode := ModeServer
	if criteria.Active() || criteria.Ordered() {
		mode = ModeClient
	}
	sig := criteria.Signature()

	page := requestedPage
	if page < 1 {
		page = 1
	}
	reset := false
	if c.planned && (mode != c.lastMode || sig != c.lastSig) && page != 1 {
		page, reset = 1, true
	}

	c.planned = true
	c.lastMode = mode
	c.lastSig = sig
	c.currentPage = page

	p := Plan{Mode: mode, Page: page, PageSize: c.pageSize, Reset: reset}
	if mode == ModeServer {
		p.FetchPage, p.FetchSize = page, c.pageSize
	} else {
		p.FetchPage, p.FetchSize = 1, c.fetchLimit
	}
	return p
}

// CurrentPage is the page chosen by the last plan.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPage < 1 {
		return 1
	}
	return c.currentPage
}

// Window describes the rows on screen for "showing X–Y of N".
type Window struct {
	Mode       Mode `json:"-"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	From       int  `json:"from"`
	To         int  `json:"to"`
}

func (w Window) String() string {
	if w.Total == 0 || w.From == 0 {
		return fmt.Sprintf("showing 0 of %d", w.Total)
	}
	return fmt.Sprintf("showing %d–%d of %d", w.From, w.To, w.Total)
}

// HasNext reports whether a later page exists.
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages
}

func totalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClientWindow computes the window over a locally filtered set of total
// rows. Pages past the end clamp to the last page.
func ClientWindow(total, page, size int) Window {
	w := Window{Mode: ModeClient, PageSize: size, Total: total, TotalPages: totalPages(total, size)}
	if page < 1 {
		page = 1
	}
	if w.TotalPages > 0 && page > w.TotalPages {
		page = w.TotalPages
	}
	w.Page = page
	if total == 0 {
		return w
	}
	w.From = (page-1)*size + 1
	w.To = min(page*size, total)
	return w
}

// ServerWindow computes the window for a server page. rows is the number of
// rows shown after tombstone filtering and dropped the number removed from
// this page; dropped rows are subtracted from the server's total.
func ServerWindow(page, size, total, rows, dropped int) Window {
	if page < 1 {
		page = 1
	}
	total -= dropped
	if total < 0 {
		total = 0
	}
	w := Window{Mode: ModeServer, Page: page, PageSize: size, Total: total, TotalPages: totalPages(total, size)}
	if rows == 0 {
		return w
	}
	w.From = (page-1)*size + 1
	w.To = min(w.From+rows-1, total)
	return w
}

// Slice returns the items on the window's page.
func Slice[T any](items []T, w Window) []T {
	if w.From == 0 {
		return nil
	}
	return items[w.From-1 : w.To]
}
