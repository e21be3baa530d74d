package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/leads-admin/internal/journal"
	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/session"
)

func TestInitLoadsLeads(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane(), bob()}}
	app := newTestApp(t, store)
	if !app.view.loading {
		t.Fatalf("expected loading flag before the first fetch completes")
	}
	app = runCommands(t, app, app.Init())
	if store.listCalls != 1 {
		t.Fatalf("expected one list call, got %d", store.listCalls)
	}
	if app.view.loading || app.view.failed {
		t.Fatalf("unexpected state loading=%v failed=%v", app.view.loading, app.view.failed)
	}
	if got := len(app.table.Rows()); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	if !strings.Contains(app.View(), "Jane Doe") {
		t.Fatalf("expected Jane Doe in the rendered table")
	}
}

func TestFetchFailureShowsError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("offline")}
	app := newTestApp(t, store)
	app = runCommands(t, app, app.Init())
	if !app.view.failed || app.view.loading {
		t.Fatalf("expected failed view, got failed=%v loading=%v", app.view.failed, app.view.loading)
	}
	if !strings.Contains(app.View(), msgFetchFailed) {
		t.Fatalf("expected error message in view")
	}
}

func TestSearchFiltersRows(t *testing.T) {
	app := loadedApp(t, &fakeStore{leads: []lead.Lead{jane(), bob()}})
	app = press(t, app, typeRunes("/"))
	if app.state != stateSearch {
		t.Fatalf("expected search state, got %d", app.state)
	}
	app = press(t, app, typeRunes("acme"))
	if got := len(app.table.Rows()); got != 1 {
		t.Fatalf("expected 1 row after filtering, got %d", got)
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.state != stateBrowse || app.view.search != "acme" {
		t.Fatalf("enter should keep the filter, got state=%d search=%q", app.state, app.view.search)
	}
	if sel := app.selectedLead(); sel == nil || sel.ID != 1 {
		t.Fatalf("expected Jane selected, got %+v", sel)
	}

	app = press(t, app, typeRunes("/"))
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEscape})
	if app.view.search != "" || len(app.table.Rows()) != 2 {
		t.Fatalf("esc should clear the filter")
	}
	if len(app.view.leads) != 2 {
		t.Fatalf("search must not change the cache")
	}
}

func TestCreateLeadFromEditor(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane()}, nextID: 2}
	app := loadedApp(t, store)

	app = press(t, app, typeRunes("n"))
	if app.state != stateEdit || !app.editor.Creating() {
		t.Fatalf("expected blank editor")
	}
	app = press(t, app, typeRunes("Bob"))
	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app = press(t, app, typeRunes("Y"))
	if err := app.editor.SetField("company", "X"); err != nil {
		t.Fatalf("set field: %v", err)
	}

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	app = runCommands(t, model, cmd)

	if len(store.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(store.created))
	}
	got := store.created[0]
	if got.FullName != "Bob" || got.Position != "Y" || got.Company != "X" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(app.view.leads) != 2 || app.view.leads[1].ID != 2 || app.view.leads[0].ID != 1 {
		t.Fatalf("expected new lead appended, got %+v", app.view.leads)
	}
	if app.state != stateBrowse || app.view.editorOpen {
		t.Fatalf("editor should close after save")
	}
	lines := app.journal.Tail(1)
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "created lead #2 Bob") {
		t.Fatalf("expected journal entry, got %v", lines)
	}
}

func TestEditLeadSendsFullUpdate(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane(), bob()}}
	app := loadedApp(t, store)

	app = press(t, app, typeRunes("e"))
	if app.state != stateEdit || app.editor.Target() == nil || app.editor.Target().ID != 1 {
		t.Fatalf("expected editor on lead 1")
	}
	if err := app.editor.SetField("position", "Senior Eng"); err != nil {
		t.Fatalf("set field: %v", err)
	}
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	app = runCommands(t, model, cmd)

	if len(store.updated) != 1 || store.updatedIDs[0] != 1 {
		t.Fatalf("expected update of lead 1, got %v", store.updatedIDs)
	}
	payload := store.updated[0]
	if payload.Position == nil || *payload.Position != "Senior Eng" {
		t.Fatalf("expected new position in payload")
	}
	if payload.FullName == nil || *payload.FullName != "Jane Doe" {
		t.Fatalf("expected unchanged fields to be sent too")
	}
	if app.view.leads[0].Position != "Senior Eng" || app.view.leads[0].Company != "Acme" {
		t.Fatalf("unexpected cached lead %+v", app.view.leads[0])
	}
	if app.view.leads[1].ID != 2 {
		t.Fatalf("order changed")
	}
}

func TestSaveFailureKeepsEditorOpen(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane()}, saveErr: errors.New("422")}
	app := loadedApp(t, store)

	app = press(t, app, typeRunes("e"))
	if err := app.editor.SetField("company", "Initech"); err != nil {
		t.Fatalf("set field: %v", err)
	}
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	app = runCommands(t, model, cmd)

	if app.state != stateEdit || !app.view.editorOpen {
		t.Fatalf("editor should stay open after a failed save")
	}
	if !app.view.failed || app.view.errMsg != msgSaveFailed {
		t.Fatalf("expected save error, got %q", app.view.errMsg)
	}
	if app.view.leads[0].Company != "Acme" {
		t.Fatalf("cache must not change on failure")
	}
	if app.editor.Draft().Company != "Initech" {
		t.Fatalf("draft should survive the failure")
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEscape})
	if app.state != stateBrowse || app.view.editorOpen {
		t.Fatalf("esc should close the editor")
	}
}

func TestDeleteSelectedLead(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane(), bob()}}
	app := loadedApp(t, store)
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	if sel := app.selectedLead(); sel == nil || sel.ID != 2 {
		t.Fatalf("expected Bob selected, got %+v", sel)
	}

	model, cmd := app.Update(typeRunes("d"))
	app = runCommands(t, model, cmd)
	if len(store.deleted) != 1 || store.deleted[0] != 2 {
		t.Fatalf("expected delete of 2, got %v", store.deleted)
	}
	if len(app.view.leads) != 1 || app.view.leads[0].ID != 1 {
		t.Fatalf("expected only Jane left, got %+v", app.view.leads)
	}
	if len(app.table.Rows()) != 1 {
		t.Fatalf("table not refreshed")
	}
}

func TestDeleteFailureKeepsLead(t *testing.T) {
	store := &fakeStore{leads: []lead.Lead{jane()}, deleteErr: errors.New("connection reset")}
	app := loadedApp(t, store)
	model, cmd := app.Update(typeRunes("d"))
	app = runCommands(t, model, cmd)
	if !app.view.failed || app.view.errMsg != msgDeleteFailed {
		t.Fatalf("expected delete error")
	}
	if len(app.view.leads) != 1 || app.view.leads[0].ID != 1 {
		t.Fatalf("lead must remain cached")
	}
}

func TestHeaderShowsUser(t *testing.T) {
	app := newTestApp(t, &fakeStore{}, WithUser(&session.User{Email: "test@example.com", OrganisationID: 1}))
	if !strings.Contains(app.View(), "test@example.com · org 1") {
		t.Fatalf("expected user in header")
	}
}

func TestQuitKeys(t *testing.T) {
	app := loadedApp(t, &fakeStore{})
	if _, cmd := app.Update(typeRunes("q")); cmd == nil {
		t.Fatalf("expected quit command")
	}
	app = press(t, app, typeRunes("n"))
	app = press(t, app, typeRunes("q"))
	if app.state != stateEdit || app.editor.Draft().FullName != "q" {
		t.Fatalf("expected q typed into the name field")
	}
}

func newTestApp(t *testing.T, store *fakeStore, opts ...AppOption) *App {
	t.Helper()
	j, err := journal.New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	baseOpts := []AppOption{WithJournal(j)}
	baseOpts = append(baseOpts, opts...)
	app := NewApp(store, baseOpts...)
	app.view.beginLoad()
	return app
}

func loadedApp(t *testing.T, store *fakeStore) *App {
	t.Helper()
	app := newTestApp(t, store)
	return runCommands(t, app, app.Init())
}

func press(t *testing.T, app *App, msg tea.KeyMsg) *App {
	t.Helper()
	model, _ := app.Update(msg)
	next, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return next
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		nextModel, nextCmd := app.Update(msg)
		var ok bool
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		cmd = nextCmd
	}
	return app
}

type fakeStore struct {
	leads     []lead.Lead
	nextID    int64
	listErr   error
	saveErr   error
	deleteErr error

	listCalls  int
	created    []lead.CreateLeadPayload
	updated    []lead.UpdatePayload
	updatedIDs []int64
	deleted    []int64
}

func (s *fakeStore) List(context.Context) ([]lead.Lead, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]lead.Lead(nil), s.leads...), nil
}

func (s *fakeStore) Create(_ context.Context, p lead.CreateLeadPayload) (lead.Lead, error) {
	s.created = append(s.created, p)
	if s.saveErr != nil {
		return lead.Lead{}, s.saveErr
	}
	l := lead.Lead{
		ID:          s.nextID,
		FullName:    p.FullName,
		Company:     p.Company,
		Position:    p.Position,
		Followers:   p.Followers,
		Connections: p.Connections,
	}
	s.leads = append(s.leads, l)
	return l, nil
}

func (s *fakeStore) Update(_ context.Context, id int64, u lead.UpdatePayload) (lead.Lead, error) {
	s.updated = append(s.updated, u)
	s.updatedIDs = append(s.updatedIDs, id)
	if s.saveErr != nil {
		return lead.Lead{}, s.saveErr
	}
	idx := lead.IndexOf(s.leads, id)
	if idx < 0 {
		return lead.Lead{}, errors.New("not found")
	}
	u.Apply(&s.leads[idx])
	return s.leads[idx], nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if idx := lead.IndexOf(s.leads, id); idx >= 0 {
		s.leads = append(s.leads[:idx], s.leads[idx+1:]...)
	}
	return nil
}
