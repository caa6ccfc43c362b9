package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"care-advisor/internal/metrics"
	"care-advisor/internal/models"
	"care-advisor/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditSink appends one row to the audit trail.
type AuditSink interface {
	Insert(ctx context.Context, entry *models.AdvisoryLog) error
}

// AuditLogger writes audit rows in the background. Record waits at most
// waitTimeout for the write and never reports failure to the caller.
type AuditLogger struct {
	sink         AuditSink
	waitTimeout  time.Duration
	writeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewAuditLogger accepts a nil sink, in which case Record only logs.
func NewAuditLogger(sink AuditSink, cfg config.AuditConfig, m *metrics.Metrics, logger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		sink:         sink,
		waitTimeout:  cfg.WaitTimeout,
		writeTimeout: cfg.WriteTimeout,
		metrics:      m,
		logger:       logger,
	}
}

func (a *AuditLogger) Record(ctx context.Context, entry *models.AdvisoryLog) {
	if entry == nil {
		return
	}
	prepareEntry(entry)

	if a.sink == nil {
		a.logger.Debug("Audit sink disabled, entry not persisted",
			zap.String("id", entry.ID.String()),
			zap.String("status", string(entry.Status)),
		)
		return
	}

	done := make(chan struct{})
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				a.metrics.ObserveAuditFailure()
				a.logger.Error("Audit sink panicked", zap.Any("panic", r))
			}
		}()

		// the write outlives the request, so it must not inherit its cancellation
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.writeTimeout)
		defer cancel()

		if err := a.sink.Insert(writeCtx, entry); err != nil {
			a.metrics.ObserveAuditFailure()
			a.logger.Error("Failed to write audit log",
				zap.String("id", entry.ID.String()),
				zap.String("status", string(entry.Status)),
				zap.Error(err),
			)
		}
	}()

	timer := time.NewTimer(a.waitTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		a.logger.Debug("Audit write still pending, continuing", zap.String("id", entry.ID.String()))
	case <-ctx.Done():
	}
}

// Close waits for pending writes until ctx expires.
func (a *AuditLogger) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit writes still pending: %w", ctx.Err())
	}
}

func prepareEntry(entry *models.AdvisoryLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.Query = sanitizeUTF8(entry.Query)
	entry.Product = sanitizeUTF8(entry.Product)
	entry.Features = sanitizeUTF8(entry.Features)
	entry.MatchedIssue = sanitizeUTF8(entry.MatchedIssue)
	entry.MatchedSolution = sanitizeUTF8(entry.MatchedSolution)
	entry.PageURL = sanitizeUTF8(entry.PageURL)
	entry.TriggeringKeyword = sanitizeUTF8(entry.TriggeringKeyword)
	entry.RenderedSolution = sanitizeUTF8(entry.RenderedSolution)
}
