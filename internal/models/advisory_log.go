package models

import (
	"time"

	"github.com/google/uuid"
)

// AdvisoryStatus tags how an advisory response was produced.
type AdvisoryStatus string

const (
	AdvisoryStatusMatrix      AdvisoryStatus = "matrix"
	AdvisoryStatusGPTFallback AdvisoryStatus = "gpt-fallback"
	AdvisoryStatusNoMatch     AdvisoryStatus = "no-match"
	AdvisoryStatusError       AdvisoryStatus = "error"
)

// AdvisoryLog is one row of the append-only audit trail.
type AdvisoryLog struct {
	ID                uuid.UUID      `db:"id"`
	CreatedAt         time.Time      `db:"created_at"`
	Query             string         `db:"query"`
	Product           string         `db:"product"`
	Features          string         `db:"features"`
	Status            AdvisoryStatus `db:"status"`
	MatchedIssue      string         `db:"matched_issue"`
	MatchedSolution   string         `db:"matched_solution"`
	PageURL           string         `db:"page_url"`
	TriggeringKeyword string         `db:"triggering_keyword"`
	RenderedSolution  string         `db:"rendered_solution"`
	PromptTokens      int            `db:"prompt_tokens"`
	CompletionTokens  int            `db:"completion_tokens"`
}
