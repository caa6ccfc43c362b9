package service

import (
	"strings"

	"care-advisor/internal/models"
	"care-advisor/pkg/config"
)

// MatchResult is the keyword matcher's verdict for one query. A zero Score
// means no deterministic match; Record and TriggeringKeyword are then empty.
type MatchResult struct {
	Score             int
	Record            *models.CatalogRecord
	TriggeringKeyword string
	FuzzyBonus        bool
}

// Matched reports whether any catalog record scored above zero.
func (m MatchResult) Matched() bool {
	return m.Score > 0 && m.Record != nil
}

// Matcher scores catalog records against free-text queries. It holds only
// configuration and is safe for concurrent use.
type Matcher struct {
	fuzzyThreshold int
	fuzzyBonus     int
	fuzzyMinLength int
}

func NewMatcher(cfg config.MatcherConfig) *Matcher {
	return &Matcher{
		fuzzyThreshold: cfg.FuzzyThreshold,
		fuzzyBonus:     cfg.FuzzyBonus,
		fuzzyMinLength: cfg.FuzzyMinLength,
	}
}

// Match returns the best scoring record. Each keyword contained in the query
// (case-insensitive) adds one point; a keyword that is not contained but is
// fuzzily similar to the query adds the configured bonus once per record.
// Ties go to the record that appears first in the catalog. The tie-break is
// stable, not meaningful.
func (m *Matcher) Match(query string, records []models.CatalogRecord) MatchResult {
	lowered := strings.ToLower(query)
	var tokens []string
	if m.fuzzyBonus > 0 {
		tokens = tokenize(query)
	}

	var best MatchResult
	for i := range records {
		result := m.score(lowered, tokens, &records[i])
		if result.Score > best.Score {
			best = result
		}
	}
	return best
}

func (m *Matcher) score(lowered string, tokens []string, rec *models.CatalogRecord) MatchResult {
	result := MatchResult{Record: rec}
	fuzzyKeyword := ""

	for _, kw := range rec.Keywords {
		lk := strings.ToLower(kw)
		if lk == "" {
			continue
		}
		if strings.Contains(lowered, lk) {
			result.Score++
			if result.TriggeringKeyword == "" {
				result.TriggeringKeyword = kw
			}
			continue
		}
		if fuzzyKeyword == "" && m.fuzzyEligible(lk) && keywordSimilarity(lk, tokens) >= m.fuzzyThreshold {
			fuzzyKeyword = kw
		}
	}

	if fuzzyKeyword != "" {
		result.Score += m.fuzzyBonus
		result.FuzzyBonus = true
		if result.TriggeringKeyword == "" {
			result.TriggeringKeyword = fuzzyKeyword
		}
	}

	if result.Score == 0 {
		return MatchResult{}
	}
	return result
}

func (m *Matcher) fuzzyEligible(keyword string) bool {
	return m.fuzzyBonus > 0 && len([]rune(keyword)) >= m.fuzzyMinLength
}
