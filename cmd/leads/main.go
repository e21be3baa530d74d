// cmd/leads/main.go
//
// Entry point for the leads admin CLI.
// Running `leads` with no subcommand opens the interactive leads screen for
// the signed-in user. Subcommands cover sign-in, a plain listing, the
// activity history and a local development API.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/leads-admin/internal/config"
	"github.com/kingrea/leads-admin/internal/journal"
	"github.com/kingrea/leads-admin/internal/leads"
	"github.com/kingrea/leads-admin/internal/logging"
	"github.com/kingrea/leads-admin/internal/session"
	"github.com/kingrea/leads-admin/internal/transport"
)

// cliState bundles everything a command needs once flags are parsed.
type cliState struct {
	verbose   bool
	workspace string

	cfg      *config.Config
	logger   *zap.Logger
	sessions *session.Store
	api      *transport.Client
	leads    *leads.Client
	journal  *journal.Journal
}

func newRootCmd() *cobra.Command {
	rt := &cliState{}
	root := &cobra.Command{
		Use:   "leads",
		Short: "Manage your organisation's leads from the terminal",
		Long: `leads is a terminal admin for lead records.

Run without arguments to open the interactive leads screen. Sign in first
with 'leads login'. 'leads devserver' starts a local API with a demo account
(test@example.com / password) when the real backend is not available.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so it logs to .leads/logs instead.
			return rt.setup(cmd == cmd.Root())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(rt)
		},
	}
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&rt.workspace, "workspace", "w", "", "Directory holding .leads (default: current)")

	root.AddCommand(newLoginCmd(rt))
	root.AddCommand(newLogoutCmd(rt))
	root.AddCommand(newListCmd(rt))
	root.AddCommand(newHistoryCmd(rt))
	root.AddCommand(newDevServerCmd(rt))
	root.AddCommand(newConfigCmd(rt))
	return root
}

// setup loads configuration and wires the client stack.
func (rt *cliState) setup(logToFile bool) error {
	dir := strings.TrimSpace(rt.workspace)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		dir = cwd
	}
	if err := config.InitLeadsDir(dir); err != nil {
		return fmt.Errorf("initialize .leads directory: %w", err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	opts := logging.Options{Verbose: rt.verbose}
	if logToFile {
		opts.ProjectDir = dir
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	rt.logger = logger

	rt.sessions = session.NewStore(cfg.SessionPath())
	api, err := transport.NewClient(cfg.APIBaseURL(),
		transport.WithTokenSource(rt.sessions),
		transport.WithTimeout(cfg.APITimeout()),
		transport.WithLogger(logger.Named("transport")),
	)
	if err != nil {
		return err
	}
	rt.api = api
	rt.leads = leads.NewClient(api, rt.sessions, leads.WithLogger(logger.Named("leads")))

	j, err := journal.New(cfg.JournalPath())
	if err != nil {
		logger.Warn("activity journal unavailable", zap.Error(err))
	}
	rt.journal = j
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
