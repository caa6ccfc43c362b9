package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"care-advisor/internal/models"
	"care-advisor/internal/repository"
	"care-advisor/pkg/postgres"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent advisory audit rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.NewPool(ctx, &cfg.Database, appLog)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewAuditRepository(db, cfg.Audit.Table, appLog)
			entries, err := repo.ListRecent(ctx, models.AdvisoryStatus(status), limit)
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSTATUS\tPRODUCT\tKEYWORD\tQUERY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Status, e.Product, e.TriggeringKeyword, truncate(e.Query, 60))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (matrix, gpt-fallback, no-match, error)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of rows")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the audit table migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(&cfg.Database, appLog)
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
