package main

import (
	"context"
	"fmt"
	"strings"

	"care-advisor/internal/cache"
	"care-advisor/internal/catalog"
	"care-advisor/internal/dto"
	"care-advisor/internal/repository"
	"care-advisor/internal/service"
	"care-advisor/pkg/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newQueryCmd() *cobra.Command {
	var (
		pageURL string
		audit   bool
	)

	cmd := &cobra.Command{
		Use:   "query <message>",
		Short: "Run one advisory query through the full pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("message is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout+cfg.Audit.WriteTimeout)
			defer cancel()

			p, err := newPipeline(ctx, audit)
			if err != nil {
				return err
			}
			defer p.close(ctx)

			out := p.service.Evaluate(ctx, dto.AdvisoryRequest{Message: message, PageURL: pageURL})

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), out.Response)
			}
			printOutcome(cmd, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&pageURL, "page-url", "", "page URL recorded with the query")
	cmd.Flags().BoolVar(&audit, "audit", false, "write the interaction to the audit table")

	return cmd
}

// pipeline is the advisory service plus the resources it owns.
type pipeline struct {
	service *service.AdvisoryService
	audit   *service.AuditLogger
	closers []func()
}

func newPipeline(ctx context.Context, withAudit bool) (*pipeline, error) {
	p := &pipeline{}

	store, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	var sink service.AuditSink
	if withAudit {
		db, err := postgres.NewPool(ctx, &cfg.Database, appLog)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, db.Close)
		sink = repository.NewAuditRepository(db, cfg.Audit.Table, appLog)
	}

	cacheClient, err := cache.New(&cfg.Cache)
	if err != nil {
		p.close(ctx)
		return nil, fmt.Errorf("init cache: %w", err)
	}
	if cacheClient != nil {
		p.closers = append(p.closers, func() { _ = cacheClient.Close() })
	}

	completer, err := service.NewCompleter(cfg, appLog)
	if err != nil {
		p.close(ctx)
		return nil, err
	}
	if completer != nil {
		p.closers = append(p.closers, func() { _ = completer.Close() })
	}

	p.audit = service.NewAuditLogger(sink, cfg.Audit, nil, appLog)
	p.service = service.NewAdvisoryService(
		store,
		service.NewMatcher(cfg.Matcher),
		service.NewFallbackClient(completer, cacheClient, cfg.LLM, nil, appLog),
		service.NewArbiter(cfg.Arbiter),
		service.NewNormalizer(cfg.Output),
		p.audit,
		nil,
		appLog,
	)
	return p, nil
}

// close flushes pending audit writes, then releases resources in reverse order.
func (p *pipeline) close(ctx context.Context) {
	if p.audit != nil {
		if err := p.audit.Close(ctx); err != nil {
			appLog.Warn("Audit writes not flushed", zap.Error(err))
		}
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func printOutcome(cmd *cobra.Command, out service.Outcome) {
	w := cmd.OutOrStdout()
	resp := out.Response

	fmt.Fprintf(w, "Status:   %s\n", out.Status)
	if out.Decision.State != "" {
		fmt.Fprintf(w, "Decision: %s (%s)\n", out.Decision.State, out.Decision.Reason)
	}
	if resp.Type != dto.TypeSolution {
		fmt.Fprintf(w, "\n%s\n", resp.Message)
		return
	}

	fmt.Fprintf(w, "\nModule:   %s\nFeatures: %s\n\n%s\n", resp.Module, resp.Feature, resp.Solution)
	if resp.Benefits != "" {
		fmt.Fprintf(w, "\nBenefits:\n%s\n", resp.Benefits)
	}
	if resp.ROI != "" {
		fmt.Fprintf(w, "\nROI: %s\n", resp.ROI)
	}
	if resp.Disclaimer != "" {
		fmt.Fprintf(w, "\n%s\n", resp.Disclaimer)
	}
}
