package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/leads"
)

func newListCmd(rt *cliState) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the organisation's leads",
		Long: `Fetch the leads of the signed-in user's organisation and print them as a table.

--search keeps leads whose name, company or position contains the term,
ignoring case.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.APITimeout())
			defer cancel()
			all, err := rt.leads.List(ctx)
			if err != nil {
				if errors.Is(err, leads.ErrAuthentication) {
					return fmt.Errorf("not signed in: run 'leads login' first")
				}
				return err
			}
			visible := lead.Filter(all, search)
			if len(visible) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No leads found.")
				return nil
			}
			renderLeads(cmd.OutOrStdout(), visible)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d leads\n", len(visible), len(all))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name, company or position")
	return cmd
}

func renderLeads(w io.Writer, rows []lead.Lead) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("ID", "NAME", "COMPANY", "POSITION", "LOCATION", "FOLLOWERS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, l := range rows {
		t.Row(
			strconv.FormatInt(l.ID, 10),
			l.FullName,
			l.Company,
			l.Position,
			l.Location,
			strconv.FormatInt(l.Followers, 10),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func newHistoryCmd(rt *cliState) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lead changes made from this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := rt.journal.Tail(lines)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded yet.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of entries to show")
	return cmd
}
