// internal/tui/app.go
//
// The leads screen. It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App below, holding the cached leads and the form state
// 2. Update: applies key presses and the results of remote calls
// 3. View: renders the table or the editor to a string
//
// Remote calls run as tea.Cmds on their own goroutines. Their results come
// back as messages, so the cache is only ever touched inside Update.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/leads-admin/internal/journal"
	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/session"
)

// appState represents which part of the screen has the keyboard.
type appState int

const (
	stateBrowse appState = iota // Table of leads
	stateSearch                 // Typing into the search box
	stateEdit                   // Lead form open
)

const defaultRequestTimeout = 15 * time.Second

type leadsLoadedMsg struct {
	leads []lead.Lead
	err   error
}

type leadSavedMsg struct {
	lead    lead.Lead
	created bool
	err     error
}

type leadDeletedMsg struct {
	id  int64
	err error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithJournal records successful changes to the activity journal.
func WithJournal(j *journal.Journal) AppOption {
	return func(a *App) {
		if j != nil {
			a.journal = j
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRequestTimeout bounds each remote call.
func WithRequestTimeout(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithUser shows the signed-in user in the header.
func WithUser(u *session.User) AppOption {
	return func(a *App) {
		a.user = u
	}
}

// App is the main application model.
type App struct {
	state   appState
	store   LeadStore
	journal *journal.Journal
	logger  *zap.Logger
	timeout time.Duration
	user    *session.User

	view   leadsView
	editor *editor

	// UI components
	table     table.Model
	search    textinput.Model
	statusMsg string

	width  int
	height int
}

var leadColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Name", Width: 22},
	{Title: "Company", Width: 18},
	{Title: "Position", Width: 22},
	{Title: "Location", Width: 14},
	{Title: "Followers", Width: 9},
}

// NewApp creates the leads screen on top of store.
func NewApp(store LeadStore, opts ...AppOption) *App {
	tbl := table.New(
		table.WithColumns(leadColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF")).
		Bold(false)
	tbl.SetStyles(styles)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, company or position"
	search.CharLimit = 128
	search.Cursor.SetMode(cursor.CursorStatic)

	app := &App{
		state:   stateBrowse,
		store:   store,
		logger:  zap.NewNop(),
		timeout: defaultRequestTimeout,
		editor:  newEditor(),
		table:   tbl,
		search:  search,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.view.leads = []lead.Lead{}
	return app
}

// Init is called once when the program starts and fetches the leads.
func (a *App) Init() tea.Cmd {
	return a.loadLeads()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetHeight(max(5, msg.Height-14))
		return a, nil

	case leadsLoadedMsg:
		a.view.applyLoaded(msg.leads, msg.err)
		if msg.err != nil {
			a.logError("Fetch failed: %v", msg.err)
		} else {
			a.statusMsg = fmt.Sprintf("%d leads", len(a.view.leads))
		}
		a.refreshTable()
		return a, nil

	case leadSavedMsg:
		a.view.applySaved(msg.lead, msg.created, msg.err)
		if msg.err != nil {
			a.logError("Save failed: %v", msg.err)
			return a, nil
		}
		if msg.created {
			a.journal.Record(journal.ActionCreated, msg.lead)
			a.statusMsg = fmt.Sprintf("Created lead #%d", msg.lead.ID)
		} else {
			a.journal.Record(journal.ActionUpdated, msg.lead)
			a.statusMsg = fmt.Sprintf("Updated lead #%d", msg.lead.ID)
		}
		a.state = stateBrowse
		a.refreshTable()
		return a, nil

	case leadDeletedMsg:
		removed := a.cachedLead(msg.id)
		a.view.applyDeleted(msg.id, msg.err)
		if msg.err != nil {
			a.logError("Delete of lead #%d failed: %v", msg.id, msg.err)
			return a, nil
		}
		if removed == nil {
			removed = &lead.Lead{ID: msg.id}
		}
		a.journal.Record(journal.ActionDeleted, *removed)
		a.statusMsg = fmt.Sprintf("Deleted lead #%d", msg.id)
		a.refreshTable()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateEdit:
			return a.updateEditor(msg)
		case stateSearch:
			return a.updateSearch(msg)
		}
		return a.updateBrowse(msg)
	}

	return a, nil
}

func (a *App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "/":
		a.state = stateSearch
		a.search.Focus()
		return a, nil
	case "n":
		a.openEditor(nil)
		return a, nil
	case "e", "enter":
		if selected := a.selectedLead(); selected != nil {
			a.openEditor(selected)
		}
		return a, nil
	case "d":
		if selected := a.selectedLead(); selected != nil {
			a.statusMsg = fmt.Sprintf("Deleting lead #%d...", selected.ID)
			return a, a.deleteLead(selected.ID)
		}
		return a, nil
	case "r":
		a.statusMsg = "Refreshing leads..."
		return a, a.loadLeads()
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.search.SetValue("")
		a.search.Blur()
		a.state = stateBrowse
		a.setSearch("")
		return a, nil
	case "enter", "tab":
		a.search.Blur()
		a.state = stateBrowse
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.setSearch(a.search.Value())
	return a, cmd
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeEditor()
		return a, nil
	case "ctrl+s":
		target, draft := a.editor.Submit()
		a.statusMsg = "Saving..."
		return a, a.saveLead(target, draft)
	}
	return a, a.editor.Update(msg)
}

func (a *App) openEditor(target *lead.Lead) {
	a.view.openEditor(target)
	a.editor.Open(a.view.editing)
	a.state = stateEdit
}

func (a *App) closeEditor() {
	a.view.closeEditor()
	a.state = stateBrowse
}

func (a *App) setSearch(term string) {
	a.view.search = term
	a.refreshTable()
}

// refreshTable rebuilds the rows from the filtered cache.
func (a *App) refreshTable() {
	visible := a.view.filtered()
	rows := make([]table.Row, len(visible))
	for i, l := range visible {
		rows[i] = table.Row{
			strconv.FormatInt(l.ID, 10),
			l.FullName,
			l.Company,
			l.Position,
			l.Location,
			strconv.FormatInt(l.Followers, 10),
		}
	}
	a.table.SetRows(rows)
	if a.table.Cursor() >= len(rows) {
		a.table.SetCursor(max(0, len(rows)-1))
	}
}

func (a *App) selectedLead() *lead.Lead {
	visible := a.view.filtered()
	idx := a.table.Cursor()
	if idx < 0 || idx >= len(visible) {
		return nil
	}
	selected := visible[idx]
	return &selected
}

func (a *App) cachedLead(id int64) *lead.Lead {
	idx := lead.IndexOf(a.view.leads, id)
	if idx < 0 {
		return nil
	}
	found := a.view.leads[idx]
	return &found
}

func (a *App) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *App) loadLeads() tea.Cmd {
	a.view.beginLoad()
	store := a.store
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()
		leads, err := store.List(ctx)
		return leadsLoadedMsg{leads: leads, err: err}
	}
}

func (a *App) saveLead(target *lead.Lead, draft lead.CreateLeadPayload) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()
		if target != nil {
			updated, err := store.Update(ctx, target.ID, draft.AsUpdate())
			return leadSavedMsg{lead: updated, err: err}
		}
		created, err := store.Create(ctx, draft)
		return leadSavedMsg{lead: created, created: true, err: err}
	}
}

func (a *App) deleteLead(id int64) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()
		return leadDeletedMsg{id: id, err: store.Delete(ctx, id)}
	}
}

func (a *App) logError(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
	a.journal.Error(format, args...)
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render(a.headerText())

	var content string
	switch {
	case a.state == stateEdit:
		content = a.editor.View()
	case a.view.loading:
		content = "Loading leads..."
	default:
		content = a.renderList()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-4)).
		Render(content)

	sections := []string{header, box}
	if a.view.failed {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Render(a.view.errMsg))
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.footerText())
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) headerText() string {
	title := "⬡ LEADS"
	if a.user != nil {
		who := a.user.Email
		if who == "" {
			who = a.user.Name
		}
		title = fmt.Sprintf("%s · %s · org %d", title, who, a.user.OrganisationID)
	}
	return title
}

func (a *App) renderList() string {
	parts := []string{}
	if a.state == stateSearch || a.view.search != "" {
		parts = append(parts, a.search.View(), "")
	}
	if len(a.view.filtered()) == 0 {
		note := "No leads yet. Press n to add one."
		if a.view.search != "" {
			note = fmt.Sprintf("No leads match %q.", a.view.search)
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(note))
		return strings.Join(parts, "\n")
	}
	parts = append(parts, a.table.View())
	return strings.Join(parts, "\n")
}

func (a *App) renderLogPanel() string {
	if a.journal == nil || a.state == stateEdit {
		return ""
	}
	lines := a.journal.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.journal.Path())
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) footerText() string {
	var hint string
	switch a.state {
	case stateEdit:
		hint = "tab/shift+tab move · ctrl+s save · esc close"
	case stateSearch:
		hint = "enter keep filter · esc clear"
	default:
		hint = "/ search · n new · e edit · d delete · r refresh · q quit"
	}
	if a.statusMsg == "" {
		return hint
	}
	return a.statusMsg + "  ·  " + hint
}
