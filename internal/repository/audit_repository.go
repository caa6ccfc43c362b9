package repository

import (
	"context"
	"fmt"

	"care-advisor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var auditColumns = []string{
	"id", "created_at", "query", "product", "features", "status",
	"matched_issue", "matched_solution", "page_url", "triggering_keyword",
	"rendered_solution", "prompt_tokens", "completion_tokens",
}

// AuditRepository appends advisory interactions to the audit table.
type AuditRepository struct {
	db     *pgxpool.Pool
	table  string
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, table string, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *models.AdvisoryLog) error {
	sql, args, err := insertAuditQuery(r.table, entry).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert audit row: %w", err)
	}
	return nil
}

// ListRecent returns the newest rows first, optionally filtered by status.
func (r *AuditRepository) ListRecent(ctx context.Context, status models.AdvisoryStatus, limit int) ([]*models.AdvisoryLog, error) {
	sql, args, err := recentAuditQuery(r.table, status, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit rows: %w", err)
	}
	defer rows.Close()

	var entries []*models.AdvisoryLog
	for rows.Next() {
		var (
			entry  models.AdvisoryLog
			status string
		)
		err := rows.Scan(
			&entry.ID, &entry.CreatedAt, &entry.Query, &entry.Product, &entry.Features, &status,
			&entry.MatchedIssue, &entry.MatchedSolution, &entry.PageURL, &entry.TriggeringKeyword,
			&entry.RenderedSolution, &entry.PromptTokens, &entry.CompletionTokens,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entry.Status = models.AdvisoryStatus(status)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func insertAuditQuery(table string, entry *models.AdvisoryLog) squirrel.InsertBuilder {
	return squirrel.Insert(table).
		Columns(auditColumns...).
		Values(
			entry.ID, entry.CreatedAt, entry.Query, entry.Product, entry.Features, string(entry.Status),
			entry.MatchedIssue, entry.MatchedSolution, entry.PageURL, entry.TriggeringKeyword,
			entry.RenderedSolution, entry.PromptTokens, entry.CompletionTokens,
		).
		PlaceholderFormat(squirrel.Dollar)
}

func recentAuditQuery(table string, status models.AdvisoryStatus, limit int) squirrel.SelectBuilder {
	if limit <= 0 {
		limit = 20
	}

	query := squirrel.Select(auditColumns...).
		From(table).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if status != "" {
		query = query.Where(squirrel.Eq{"status": string(status)})
	}
	return query
}
