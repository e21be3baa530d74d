package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/leads-admin/internal/session"
)

func newLoginCmd(rt *cliState) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Exchange an email and password for an API token.

The token and user are written to .leads/state/session.json and used by every
other command until 'leads logout'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.APITimeout())
			defer cancel()
			auth := session.NewAuthenticator(rt.api, rt.sessions, rt.logger.Named("session"))
			user, err := auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s (organisation %d)\n", user.Email, user.OrganisationID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
			return nil
		},
	}
}
