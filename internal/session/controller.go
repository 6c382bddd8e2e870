// Package session holds the mutable state of one interactive search
// session: the active query, pagination, the filtered result list, and
// the open/record transaction. The presentation layer reads state through
// accessors and drives transitions through Dispatch; nothing else mutates
// session fields.
package session

import (
	"log/slog"
	"strings"
	"time"

	"github.com/runger/seek/internal/brave"
	"github.com/runger/seek/internal/query"
)

// State is the session's position in its lifecycle.
type State int

const (
	StateIdle      State = iota // No active query
	StateSearching              // Search request in flight
	StateShowing                // Filtered results on display
	StateError                  // Last search failed; still queryable
)

// Command is an input-layer event translated into a session transition.
type Command int

const (
	CmdSubmitQuery Command = iota
	CmdNextPage
	CmdPrevPage
	CmdOpenSelected
	CmdClearQuery
	CmdQuit
)

// EffectKind classifies what the caller must do after a Dispatch.
type EffectKind int

const (
	EffectNone   EffectKind = iota
	EffectSearch            // Start the search described by the Effect
	EffectQuit              // Terminate the program
)

// Effect is Dispatch's instruction back to the presentation layer.
// For EffectSearch it carries the query, page, and the request ID that a
// later ApplyResults/ApplyError call must present.
type Effect struct {
	Kind      EffectKind
	Query     string
	Page      int
	RequestID uint64
}

// ClickStore is the click-memory surface the controller consults and
// mutates. clickstore.Store satisfies it.
type ClickStore interface {
	ClickChecker
	Record(key, url string)
	Save() error
}

// AuditLogger appends one durable record per opened result.
// auditlog.Logger satisfies it.
type AuditLogger interface {
	Append(ts time.Time, query, title, url string) error
}

// Controller owns all mutable session state. It is not safe for
// concurrent use; callers drive it from a single event loop.
type Controller struct {
	state     State
	rawQuery  string
	key       string // normalized form of rawQuery
	page      int
	results   []brave.Result // visible results for the current page
	hidden    int            // results suppressed by click history
	altered   string
	selection int // index into results; -1 when empty
	requestID uint64
	notice    string
	err       error

	clicks  ClickStore
	audit   AuditLogger
	openURL func(url string) error
	logger  *slog.Logger
	now     func() time.Time
}

// NewController creates a session controller. audit may be nil to disable
// click logging; clicks and openURL are required.
func NewController(clicks ClickStore, audit AuditLogger, openURL func(url string) error, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		state:     StateIdle,
		selection: -1,
		clicks:    clicks,
		audit:     audit,
		openURL:   openURL,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch applies a command to the session and returns the effect the
// caller must execute. It never blocks.
func (c *Controller) Dispatch(cmd Command, arg string) Effect {
	switch cmd {
	case CmdSubmitQuery:
		return c.submitQuery(arg)

	case CmdNextPage:
		if c.key == "" {
			return Effect{}
		}
		return c.startSearch(c.page + 1)

	case CmdPrevPage:
		// Page never goes below zero.
		if c.key == "" || c.page == 0 {
			return Effect{}
		}
		return c.startSearch(c.page - 1)

	case CmdOpenSelected:
		c.openSelected()
		return Effect{}

	case CmdClearQuery:
		c.reset()
		return Effect{}

	case CmdQuit:
		return Effect{Kind: EffectQuit}
	}

	return Effect{}
}

// submitQuery begins a fresh search at page 0. Input that normalizes to
// the empty string means "no active query" and is ignored.
func (c *Controller) submitQuery(raw string) Effect {
	key := query.Normalize(raw)
	if key == "" {
		return Effect{}
	}
	c.rawQuery = strings.TrimSpace(raw)
	c.key = key
	return c.startSearch(0)
}

// startSearch moves to Searching and hands the caller a search effect.
// Incrementing requestID supersedes any in-flight request; its response
// will be discarded as stale on arrival.
func (c *Controller) startSearch(page int) Effect {
	c.page = page
	c.requestID++
	c.state = StateSearching
	c.notice = ""
	c.err = nil
	return Effect{
		Kind:      EffectSearch,
		Query:     c.rawQuery,
		Page:      c.page,
		RequestID: c.requestID,
	}
}

// ApplyResults filters a raw result page against the click store and
// installs it. Responses from a superseded request are discarded; the
// return value reports whether the page was applied.
func (c *Controller) ApplyResults(requestID uint64, results []brave.Result, altered string) bool {
	if requestID != c.requestID {
		return false
	}

	visible, hidden := FilterClicked(results, c.clicks, c.key)
	c.results = visible
	c.hidden = hidden
	c.altered = altered
	if len(visible) > 0 {
		c.selection = 0
	} else {
		c.selection = -1
	}
	c.state = StateShowing
	return true
}

// ApplyError surfaces a search failure. Stale errors are discarded.
// The session stays queryable: a new submission leaves the error state.
func (c *Controller) ApplyError(requestID uint64, err error) bool {
	if requestID != c.requestID {
		return false
	}
	c.err = err
	c.state = StateError
	return true
}

// MoveSelection moves the cursor by delta, clamped to the visible list.
func (c *Controller) MoveSelection(delta int) {
	if c.state != StateShowing || len(c.results) == 0 {
		return
	}
	c.selection += delta
	c.clampSelection()
}

// resolveSelection picks the item an open acts on: the cursor when it is
// in bounds, else the first visible item, else nothing. Absence of a
// selection is a normal outcome, not an error.
func (c *Controller) resolveSelection() int {
	if c.selection >= 0 && c.selection < len(c.results) {
		return c.selection
	}
	if len(c.results) > 0 {
		return 0
	}
	return -1
}

// openSelected runs the open transaction on the resolved result:
// launch the browser, append the audit record, record and persist the
// click, then drop the item from the visible list. Every step is
// best-effort and never blocks the following ones; in particular the
// click is recorded and persisted even when the browser launch fails.
func (c *Controller) openSelected() {
	if c.state != StateShowing {
		return
	}

	idx := c.resolveSelection()
	if idx < 0 {
		return
	}

	item := c.results[idx]
	if item.URL == "" {
		c.notice = "Selected result has no URL."
		return
	}

	launched := true
	if err := c.openURL(item.URL); err != nil {
		launched = false
		c.logger.Warn("failed to launch browser", "url", item.URL, "error", err)
	}

	if c.audit != nil {
		if err := c.audit.Append(c.now(), c.rawQuery, item.Title, item.URL); err != nil {
			c.logger.Warn("failed to append click log", "error", err)
		}
	}

	// Record and persist together: the store must never hold a click
	// that was not at least handed to Save.
	c.clicks.Record(c.key, item.URL)
	if err := c.clicks.Save(); err != nil {
		c.logger.Warn("failed to save click store", "error", err)
	}

	c.results = append(c.results[:idx], c.results[idx+1:]...)
	c.clampSelection()

	label := item.Title
	if label == "" {
		label = item.URL
	}
	if launched {
		c.notice = "Opened: " + label
	} else {
		c.notice = "Tried to open: " + label
	}
}

// reset abandons the active query and returns to Idle.
func (c *Controller) reset() {
	c.state = StateIdle
	c.rawQuery = ""
	c.key = ""
	c.page = 0
	c.results = nil
	c.hidden = 0
	c.altered = ""
	c.selection = -1
	c.notice = ""
	c.err = nil
}

// clampSelection keeps the cursor inside the visible list.
func (c *Controller) clampSelection() {
	if len(c.results) == 0 {
		c.selection = -1
		return
	}
	if c.selection < 0 {
		c.selection = 0
	}
	if c.selection >= len(c.results) {
		c.selection = len(c.results) - 1
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Query returns the active raw query as submitted (trimmed).
func (c *Controller) Query() string { return c.rawQuery }

// Key returns the normalized form of the active query.
func (c *Controller) Key() string { return c.key }

// Page returns the zero-based page index.
func (c *Controller) Page() int { return c.page }

// Results returns the visible results for the current page.
func (c *Controller) Results() []brave.Result { return c.results }

// Selection returns the cursor index into Results, or -1 when empty.
func (c *Controller) Selection() int { return c.selection }

// Hidden returns how many results click history suppressed on this page.
func (c *Controller) Hidden() int { return c.hidden }

// Altered returns the provider's spell-corrected query, if any.
func (c *Controller) Altered() string { return c.altered }

// Notice returns the outcome message of the last open, if any.
func (c *Controller) Notice() string { return c.notice }

// Err returns the failure that put the session into StateError.
func (c *Controller) Err() error { return c.err }

// RequestID returns the ID of the most recently issued search.
func (c *Controller) RequestID() uint64 { return c.requestID }
