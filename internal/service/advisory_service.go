package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care-advisor/internal/dto"
	"care-advisor/internal/metrics"
	"care-advisor/internal/models"
	"care-advisor/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogSource exposes the loaded catalog records.
type CatalogSource interface {
	Records() []models.CatalogRecord
}

// Proposer produces a generative proposal for a query.
type Proposer interface {
	Propose(ctx context.Context, query string) (*AdvisorySolution, error)
}

// Outcome is the full result of one advisory evaluation.
type Outcome struct {
	Response dto.AdvisoryResponse
	Decision Decision
	Status   models.AdvisoryStatus
	Err      error
}

// AdvisoryService answers advisory queries.
type AdvisoryService struct {
	catalog    CatalogSource
	matcher    *Matcher
	proposer   Proposer
	arbiter    *Arbiter
	normalizer *Normalizer
	audit      *AuditLogger
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewAdvisoryService(
	catalog CatalogSource,
	matcher *Matcher,
	proposer Proposer,
	arbiter *Arbiter,
	normalizer *Normalizer,
	audit *AuditLogger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AdvisoryService {
	return &AdvisoryService{
		catalog:    catalog,
		matcher:    matcher,
		proposer:   proposer,
		arbiter:    arbiter,
		normalizer: normalizer,
		audit:      audit,
		metrics:    m,
		logger:     logger,
	}
}

// Advise always returns a schema-conformant response.
func (s *AdvisoryService) Advise(ctx context.Context, req dto.AdvisoryRequest) dto.AdvisoryResponse {
	return s.Evaluate(ctx, req).Response
}

// Evaluate runs the matcher and the generative fallback concurrently,
// arbitrates, normalizes and records the interaction.
func (s *AdvisoryService) Evaluate(ctx context.Context, req dto.AdvisoryRequest) (out Outcome) {
	start := time.Now()
	log := s.logger.With(zap.String("request_id", logger.RequestID(ctx)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Advisory evaluation panicked", zap.Any("panic", r), zap.Stack("stack"))
			out = Outcome{
				Response: dto.ErrorResponse(""),
				Status:   models.AdvisoryStatusError,
				Err:      fmt.Errorf("advisory evaluation panicked: %v", r),
			}
			s.finish(ctx, log, req, out, start)
		}
	}()

	var (
		match       MatchResult
		proposal    *AdvisorySolution
		fallbackErr error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("keyword matcher panicked: %v", r)
			}
		}()
		match = s.matcher.Match(req.Message, s.catalog.Records())
		return nil
	})
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				proposal = nil
				fallbackErr = &FallbackError{Kind: ProviderUnavailable, Err: fmt.Errorf("proposer panicked: %v", r)}
			}
		}()
		proposal, fallbackErr = s.proposer.Propose(gCtx, req.Message)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Keyword matching failed", zap.Error(err))
		out = Outcome{Response: dto.ErrorResponse(""), Status: models.AdvisoryStatusError, Err: err}
		s.finish(ctx, log, req, out, start)
		return out
	}

	decision := s.arbiter.Decide(match, proposal, fallbackErr)
	out = Outcome{Decision: decision, Status: decision.Status}

	resp, err := s.normalizer.Normalize(decision)
	if err != nil {
		log.Error("Advisory response rejected", zap.String("state", string(decision.State)), zap.Error(err))
		out.Response = dto.ErrorResponse("")
		out.Status = models.AdvisoryStatusError
		out.Err = err
	} else {
		out.Response = resp
	}

	s.finish(ctx, log, req, out, start)
	return out
}

func (s *AdvisoryService) finish(ctx context.Context, log *zap.Logger, req dto.AdvisoryRequest, out Outcome, start time.Time) {
	s.metrics.ObserveOutcome(string(out.Status), out.Decision.Degraded)
	s.metrics.ObserveMatchScore(out.Decision.Match.Score)

	fields := []zap.Field{
		zap.String("status", string(out.Status)),
		zap.String("state", string(out.Decision.State)),
		zap.Int("score", out.Decision.Match.Score),
		zap.Bool("degraded", out.Decision.Degraded),
		zap.String("reason", out.Decision.Reason),
		zap.Duration("duration", time.Since(start)),
	}
	if errors.Is(out.Err, ErrContractViolation) {
		fields = append(fields, zap.Bool("contract_violation", true))
	}
	log.Info("Advisory completed", fields...)

	if s.audit != nil {
		s.audit.Record(ctx, buildAuditEntry(req, out))
	}
}

func buildAuditEntry(req dto.AdvisoryRequest, out Outcome) *models.AdvisoryLog {
	entry := &models.AdvisoryLog{
		Query:            req.Message,
		PageURL:          req.PageURL,
		Product:          out.Response.Module,
		Features:         out.Response.Feature,
		Status:           out.Status,
		RenderedSolution: renderResponse(out.Response),
	}

	if match := out.Decision.Match; match.Matched() {
		entry.MatchedIssue = match.Record.Issue
		entry.MatchedSolution = match.Record.Solution
		entry.TriggeringKeyword = match.TriggeringKeyword
	}

	if p := out.Decision.Proposal; p != nil && !p.Cached {
		entry.PromptTokens = p.PromptTokens
		entry.CompletionTokens = p.CompletionTokens
	}
	return entry
}

func renderResponse(resp dto.AdvisoryResponse) string {
	if resp.Type != dto.TypeSolution {
		return resp.Message
	}

	parts := []string{resp.Solution}
	for _, extra := range []string{resp.Benefits, resp.ROI, resp.Disclaimer} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	return strings.Join(parts, "\n\n")
}
