package main

import (
	"fmt"
	"strings"

	"care-advisor/internal/catalog"
	"care-advisor/internal/service"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect solution catalog files",
	}

	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogMatchCmd())

	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Load a catalog file and report the first invalid record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Catalog.Path
			if len(args) == 1 {
				path = args[0]
			}

			store, err := catalog.Load(path)
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"path":    store.Path(),
					"records": store.Len(),
					"valid":   true,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records OK\n", store.Path(), store.Len())
			return nil
		},
	}
}

func newCatalogMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <message>",
		Short: "Score a message against the catalog without calling the LLM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Load(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			result := service.NewMatcher(cfg.Matcher).Match(strings.Join(args, " "), store.Records())

			if outputJSON {
				body := map[string]any{
					"score":              result.Score,
					"triggering_keyword": result.TriggeringKeyword,
					"fuzzy_bonus":        result.FuzzyBonus,
				}
				if result.Matched() {
					body["issue"] = result.Record.Issue
					body["product"] = result.Record.Product
					body["features"] = result.Record.Features
				}
				return printJSON(cmd.OutOrStdout(), body)
			}

			w := cmd.OutOrStdout()
			if !result.Matched() {
				fmt.Fprintln(w, "No catalog match (score 0)")
				return nil
			}
			fmt.Fprintf(w, "Score:    %d (fuzzy bonus: %t)\n", result.Score, result.FuzzyBonus)
			fmt.Fprintf(w, "Keyword:  %s\n", result.TriggeringKeyword)
			fmt.Fprintf(w, "Issue:    %s\n", result.Record.Issue)
			fmt.Fprintf(w, "Product:  %s\n", result.Record.Product)
			fmt.Fprintf(w, "Features: %s\n", strings.Join(result.Record.Features, ", "))
			return nil
		},
	}
}
