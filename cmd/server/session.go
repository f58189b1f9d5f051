package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/requestline/internal/app"
	"github.com/cesargomez89/requestline/internal/http/dto"
	"github.com/cesargomez89/requestline/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions from the command line",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a session and print its code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openSessions(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		session, err := svc.CreateSession(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), session.ID)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openSessions(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		sessions, err := svc.ListSessions(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tCREATED")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, dto.FormatTimestamp(s.CreatedAt))
		}
		return tw.Flush()
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close <code>",
	Short: "Deactivate a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openSessions(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		return svc.DeactivateSession(cmd.Context(), strings.ToUpper(args[0]))
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached lookup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := store.Open(cmd.Context(), cfg.DBPath, log)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.ClearCache(cmd.Context())
	},
}

func openSessions(cmd *cobra.Command) (*app.SessionService, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(cmd.Context(), cfg.DBPath, log)
	if err != nil {
		return nil, nil, err
	}
	return app.NewSessionService(db, nil, log), func() { db.Close() }, nil
}

func init() {
	sessionCmd.AddCommand(sessionCreateCmd, sessionListCmd, sessionCloseCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(sessionCmd, cacheCmd)
}
