package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/leads-admin/internal/logging"
	"github.com/kingrea/leads-admin/internal/session"
	"github.com/kingrea/leads-admin/internal/tui"
)

// runInteractive opens the leads screen. Without a session it still starts so
// the authentication failure is shown in place.
func runInteractive(rt *cliState) error {
	user := interactiveUser(rt)
	app := tui.NewApp(rt.leads,
		tui.WithJournal(rt.journal),
		tui.WithLogger(rt.logger.Named("tui")),
		tui.WithRequestTimeout(rt.cfg.APITimeout()),
		tui.WithUser(user),
	)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w (log: %s)", err, logging.Path(rt.cfg.ProjectDir))
	}
	return nil
}

// interactiveUser returns the stored user, noting in the log and the journal
// when the screen opens signed out.
func interactiveUser(rt *cliState) *session.User {
	user := rt.sessions.StoredUser()
	if user == nil {
		rt.logger.Warn("starting without a session; run 'leads login'")
		rt.journal.Warn("opened leads screen without a session")
	}
	return user
}
