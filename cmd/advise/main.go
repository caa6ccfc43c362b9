// Command advise is the operator CLI for the care advisor: it runs single
// advisory queries or whole query files, checks catalog files and inspects
// the audit trail.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"care-advisor/pkg/config"
	"care-advisor/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	catalogPath string
	outputJSON  bool

	cfg    *config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "advise",
	Short:         "Care advisor operator CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if catalogPath != "" {
			cfg.Catalog.Path = catalogPath
		}

		appLog, err = logger.New(cfg.Logger.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (default: CATALOG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newMigrateCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
