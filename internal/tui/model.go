// Package tui implements the interactive search screen: a query input,
// a scrollable result list, and a status line, rendered with Bubble Tea.
// All session semantics live in the session controller; the model owns
// presentation concerns only (focus, scrolling, widgets, query recall).
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/seek/internal/brave"
	"github.com/runger/seek/internal/query"
	"github.com/runger/seek/internal/session"
	"github.com/runger/seek/internal/storage"
)

// rowsPerResult is how many screen rows one result occupies: title, url,
// and a single snippet line.
const rowsPerResult = 3

// defaultRecallLimit bounds the recall list when no limit is configured.
const defaultRecallLimit = 25

// Searcher fetches one page of web results. brave.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, page int) (*brave.ResultPage, error)
}

// History records searches and serves the recall list shown on up/down
// in an empty input. storage.SQLiteStore satisfies it; nil disables both.
type History interface {
	RecordSearch(ctx context.Context, search *storage.Search) error
	RecentQueries(ctx context.Context, limit int) ([]storage.QueryRow, error)
}

// focusArea is which pane receives non-global keys.
type focusArea int

const (
	focusInput   focusArea = iota // query box owns keystrokes
	focusResults                  // result list owns navigation
)

// searchDoneMsg is sent when an async Searcher.Search completes. The
// request ID rides along so the reply can be matched against the
// session; query and page identify the request for the history record.
type searchDoneMsg struct {
	requestID uint64
	query     string
	page      int
	results   []brave.Result
	altered   string
	err       error
}

// recentLoadedMsg carries the recall list fetched at startup.
type recentLoadedMsg struct {
	queries []string
}

// Options configures a Model beyond its two required collaborators.
type Options struct {
	History     History // nil disables history recording and recall
	SessionID   string  // attached to history rows
	RecallLimit int
	Version     string
	Logger      *slog.Logger
}

// Model is the Bubble Tea model for the search screen.
type Model struct {
	ctrl     *session.Controller
	searcher Searcher
	history  History

	sessionID   string
	recallLimit int
	version     string
	logger      *slog.Logger

	input textinput.Model
	spin  spinner.Model
	focus focusArea

	// recent holds the recall list, newest first. recentIdx is the
	// cursor into it while cycling; -1 means the input is live text.
	recent    []string
	recentIdx int

	width  int
	height int
	scroll int // first visible result index

	quitting bool
}

// NewModel creates the search screen model.
func NewModel(ctrl *session.Controller, searcher Searcher, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.RecallLimit <= 0 {
		opts.RecallLimit = defaultRecallLimit
	}

	ti := textinput.New()
	ti.Placeholder = "Type your query and press Enter…"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return Model{
		ctrl:        ctrl,
		searcher:    searcher,
		history:     opts.History,
		sessionID:   opts.SessionID,
		recallLimit: opts.RecallLimit,
		version:     opts.Version,
		logger:      opts.Logger,
		input:       ti,
		spin:        sp,
		focus:       focusInput,
		recentIdx:   -1,
		width:       80,
		height:      24,
	}
}

// Init implements tea.Model. The recall list loads in the background so
// the prompt is usable immediately.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadRecentCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = inputWidth(msg.Width)
		m.ensureVisible()
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case recentLoadedMsg:
		m.recent = msg.queries
		return m, nil

	case spinner.TickMsg:
		// The spinner only animates while a search is in flight;
		// dropping the tick here ends the tick loop.
		if m.ctrl.State() != session.StateSearching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	// Whatever remains (cursor blinks and the like) belongs to the
	// input widget.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit and clear work regardless of focus.
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlQ:
		return m, m.runEffect(m.ctrl.Dispatch(session.CmdQuit, ""))

	case tea.KeyEsc:
		return m.clearSession()
	}

	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleResultsKey(msg)
}

// handleInputKey processes keys while the query box has focus.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.runEffect(m.ctrl.Dispatch(session.CmdSubmitQuery, m.input.Value()))

	case tea.KeyTab:
		if len(m.ctrl.Results()) > 0 {
			m.focus = focusResults
			m.input.Blur()
		}
		return m, nil

	case tea.KeyUp:
		m.recallOlder()
		return m, nil

	case tea.KeyDown:
		m.recallNewer()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		// Editing leaves recall mode; the text becomes a fresh draft.
		m.recentIdx = -1
	}
	return m, cmd
}

// handleResultsKey processes keys while the result list has focus.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.ctrl.Dispatch(session.CmdOpenSelected, "")
		m.ensureVisible()
		return m, nil

	case tea.KeyUp:
		m.ctrl.MoveSelection(-1)
		m.ensureVisible()
		return m, nil

	case tea.KeyDown:
		m.ctrl.MoveSelection(1)
		m.ensureVisible()
		return m, nil

	case tea.KeyTab:
		m.focus = focusInput
		return m, m.input.Focus()

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "n":
			return m, m.runEffect(m.ctrl.Dispatch(session.CmdNextPage, ""))
		case "p":
			return m, m.runEffect(m.ctrl.Dispatch(session.CmdPrevPage, ""))
		case "q":
			return m, m.runEffect(m.ctrl.Dispatch(session.CmdQuit, ""))
		}
	}

	return m, nil
}

// handleSearchDone applies a finished search to the session. Replies
// from a superseded request are dropped by the controller; nothing here
// runs for them.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.ctrl.ApplyError(msg.requestID, msg.err)
		return m, nil
	}

	if !m.ctrl.ApplyResults(msg.requestID, msg.results, msg.altered) {
		return m, nil
	}

	m.scroll = 0
	var cmds []tea.Cmd
	if len(m.ctrl.Results()) > 0 {
		// Hand focus to the list so Enter opens the selection at once.
		m.focus = focusResults
		m.input.Blur()
	} else if m.focus != focusInput {
		m.focus = focusInput
		cmds = append(cmds, m.input.Focus())
	}

	m.remember(msg.query)
	if cmd := m.recordSearchCmd(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// clearSession abandons the query and returns the screen to its initial
// state, ready for fresh input.
func (m Model) clearSession() (tea.Model, tea.Cmd) {
	m.ctrl.Dispatch(session.CmdClearQuery, "")
	m.input.SetValue("")
	m.recentIdx = -1
	m.scroll = 0
	m.focus = focusInput
	return m, m.input.Focus()
}

// runEffect turns a controller effect into the Bubble Tea command that
// carries it out.
func (m *Model) runEffect(eff session.Effect) tea.Cmd {
	switch eff.Kind {
	case session.EffectSearch:
		m.scroll = 0
		return tea.Batch(m.searchCmd(eff), m.spin.Tick)

	case session.EffectQuit:
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// searchCmd performs the fetch on its own goroutine.
func (m Model) searchCmd(eff session.Effect) tea.Cmd {
	s := m.searcher
	return func() tea.Msg {
		page, err := s.Search(context.Background(), eff.Query, eff.Page)
		if err != nil {
			return searchDoneMsg{requestID: eff.RequestID, query: eff.Query, page: eff.Page, err: err}
		}
		return searchDoneMsg{
			requestID: eff.RequestID,
			query:     eff.Query,
			page:      eff.Page,
			results:   page.Results,
			altered:   page.Altered,
		}
	}
}

// loadRecentCmd fetches the recall list from history.
func (m Model) loadRecentCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	h, limit, logger := m.history, m.recallLimit, m.logger
	return func() tea.Msg {
		rows, err := h.RecentQueries(context.Background(), limit)
		if err != nil {
			logger.Warn("failed to load recent queries", "error", err)
			return recentLoadedMsg{}
		}
		queries := make([]string, 0, len(rows))
		for _, row := range rows {
			queries = append(queries, row.Query)
		}
		return recentLoadedMsg{queries: queries}
	}
}

// recordSearchCmd persists the applied page to history. Failures are
// logged and otherwise invisible; the session does not depend on them.
func (m Model) recordSearchCmd(msg searchDoneMsg) tea.Cmd {
	if m.history == nil {
		return nil
	}
	rec := &storage.Search{
		SessionID:   m.sessionID,
		Query:       msg.query,
		Page:        msg.page,
		ResultCount: len(m.ctrl.Results()),
		HiddenCount: m.ctrl.Hidden(),
		Altered:     msg.altered,
	}
	h, logger := m.history, m.logger
	return func() tea.Msg {
		if err := h.RecordSearch(context.Background(), rec); err != nil {
			logger.Warn("failed to record search history", "error", err)
		}
		return nil
	}
}

// remember puts a just-searched query at the front of the recall list,
// replacing any older spelling with the same normalized form.
func (m *Model) remember(q string) {
	key := query.Normalize(q)
	if key == "" {
		return
	}
	kept := make([]string, 0, len(m.recent)+1)
	kept = append(kept, strings.TrimSpace(q))
	for _, prev := range m.recent {
		if query.Normalize(prev) == key {
			continue
		}
		kept = append(kept, prev)
	}
	if len(kept) > m.recallLimit {
		kept = kept[:m.recallLimit]
	}
	m.recent = kept
	m.recentIdx = -1
}

// recallOlder steps backward through the recall list. Recall only
// engages on an empty input so half-typed queries are never clobbered.
func (m *Model) recallOlder() {
	if len(m.recent) == 0 {
		return
	}
	if m.input.Value() != "" && m.recentIdx < 0 {
		return
	}
	if m.recentIdx < len(m.recent)-1 {
		m.recentIdx++
	}
	m.input.SetValue(m.recent[m.recentIdx])
	m.input.CursorEnd()
}

// recallNewer steps forward through the recall list, landing back on
// the empty prompt past the newest entry.
func (m *Model) recallNewer() {
	if m.recentIdx < 0 {
		return
	}
	m.recentIdx--
	if m.recentIdx < 0 {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.recent[m.recentIdx])
	m.input.CursorEnd()
}

// listCapacity returns how many results fit in the list area.
func (m Model) listCapacity() int {
	// Header, input, status, and help each take one row.
	const chrome = 4
	n := (m.height - chrome) / rowsPerResult
	if n < 1 {
		n = 1
	}
	return n
}

// ensureVisible scrolls the window so the selection stays on screen.
func (m *Model) ensureVisible() {
	sel := m.ctrl.Selection()
	if sel < 0 {
		m.scroll = 0
		return
	}
	capacity := m.listCapacity()
	if sel < m.scroll {
		m.scroll = sel
	}
	if sel >= m.scroll+capacity {
		m.scroll = sel - capacity + 1
	}
	// The window never starts past the end of the list.
	maxStart := len(m.ctrl.Results()) - capacity
	if maxStart < 0 {
		maxStart = 0
	}
	if m.scroll > maxStart {
		m.scroll = maxStart
	}
}

// inputWidth sizes the text field to the terminal, leaving room for the
// prompt and cursor.
func inputWidth(termWidth int) int {
	w := termWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}

// lineWidth is the usable row width for rendered text.
func (m Model) lineWidth() int {
	if m.width < 20 {
		return 20
	}
	return m.width
}

// --- View rendering ---

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	urlStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	snippetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := "seek"
	if m.version != "" {
		title += " " + m.version
	}

	sections := []string{
		headerStyle.Render(title),
		m.input.View(),
		m.viewStatus(),
	}
	if list := m.viewResults(); list != "" {
		sections = append(sections, list)
	}
	sections = append(sections, m.viewHelp())

	return strings.Join(sections, "\n") + "\n"
}

// viewStatus composes the status row from the session state.
func (m Model) viewStatus() string {
	switch m.ctrl.State() {
	case session.StateSearching:
		return m.spin.View() + " " + statusStyle.Render("Searching…")

	case session.StateError:
		return errorStyle.Render(Truncate(CleanLine(fmt.Sprintf("[error] %v", m.ctrl.Err())), m.lineWidth()))

	case session.StateShowing:
		if notice := m.ctrl.Notice(); notice != "" {
			return noticeStyle.Render(Truncate(CleanLine(notice), m.lineWidth()))
		}
		results := m.ctrl.Results()
		hidden := m.ctrl.Hidden()
		if len(results) == 0 {
			if hidden > 0 {
				return statusStyle.Render(fmt.Sprintf(
					"All %d results were previously opened. Try another page or query.", hidden))
			}
			return statusStyle.Render("No results.")
		}
		line := fmt.Sprintf("Showing %d results (hidden %d)", len(results), hidden)
		if altered := m.ctrl.Altered(); altered != "" {
			line += " | spellchecked to: " + altered
		}
		return statusStyle.Render(Truncate(line, m.lineWidth()))
	}

	return ""
}

// viewResults renders the visible window of the result list, three rows
// per hit: title, url, snippet. Rows stay fixed-height so scrolling
// arithmetic holds.
func (m Model) viewResults() string {
	results := m.ctrl.Results()
	if m.ctrl.State() != session.StateShowing || len(results) == 0 {
		return ""
	}

	capacity := m.listCapacity()
	end := m.scroll + capacity
	if end > len(results) {
		end = len(results)
	}

	width := m.lineWidth()

	lines := make([]string, 0, (end-m.scroll)*rowsPerResult)
	for i := m.scroll; i < end; i++ {
		r := results[i]

		marker := "  "
		tStyle := titleStyle
		if i == m.ctrl.Selection() {
			marker = "> "
			tStyle = selectedStyle
		}

		title := CleanLine(r.Title)
		if title == "" {
			title = "(untitled)"
		}
		lines = append(lines, marker+tStyle.Render(Truncate(title, width-2)))

		urlLine := ""
		if r.URL != "" {
			urlLine = "  " + urlStyle.Render(MiddleTruncate(CleanLine(r.URL), width-2))
		}
		lines = append(lines, urlLine)

		snippetLine := ""
		if snippet := CleanLine(r.Snippet); snippet != "" {
			snippetLine = "  " + snippetStyle.Render(Truncate(snippet, width-2))
		}
		lines = append(lines, snippetLine)
	}

	return strings.Join(lines, "\n")
}

// viewHelp renders the key bindings row for the focused pane.
func (m Model) viewHelp() string {
	help := "Enter: open • ↑/↓: select • n/p: next/prev • Tab: query • Esc: clear • q: quit"
	if m.focus == focusInput {
		help = "Enter: search • ↑/↓: recent queries • Tab: results • Ctrl+C: quit"
	}
	return dimStyle.Render(Truncate(help, m.lineWidth()))
}
