package service

import (
	"strings"
	"testing"

	"care-advisor/internal/models"
	"care-advisor/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(testMatcherConfig())

	tests := []struct {
		name      string
		query     string
		wantScore int
		wantIssue string
		wantKW    string
		wantFuzzy bool
	}{
		{
			name:      "misspelled keyword matches fuzzily",
			query:     "our missed apointment rate",
			wantScore: 1,
			wantIssue: "Patients miss appointments or do not show up",
			wantKW:    "missed appointment",
			wantFuzzy: true,
		},
		{
			name:      "two literal keywords",
			query:     "We have too many no show patients and missed appointment problems",
			wantScore: 2,
			wantIssue: "Patients miss appointments or do not show up",
			wantKW:    "no show",
		},
		{
			name:      "typo matches fuzzily",
			query:     "noshow rates are high",
			wantScore: 1,
			wantIssue: "Patients miss appointments or do not show up",
			wantKW:    "no show",
			wantFuzzy: true,
		},
		{
			name:      "case insensitive literal",
			query:     "Families want a FAMILY PORTAL",
			wantScore: 1,
			wantIssue: "Families want updates but there is no portal",
			wantKW:    "family portal",
		},
		{
			name:      "related words below threshold add nothing",
			query:     "we need appointment reminder automation",
			wantScore: 1,
			wantIssue: "Staff spend hours on manual reminder calls",
			wantKW:    "appointment reminder",
		},
		{
			name:  "inflected phrase stays below threshold",
			query: "patients keep missing appointments",
		},
		{
			name:  "no keyword",
			query: "xyz",
		},
		{
			name: "empty query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.query, records)

			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantKW, got.TriggeringKeyword)
			assert.Equal(t, tt.wantFuzzy, got.FuzzyBonus)
			if tt.wantIssue == "" {
				assert.False(t, got.Matched())
				assert.Nil(t, got.Record)
				return
			}
			require.True(t, got.Matched())
			assert.Equal(t, tt.wantIssue, got.Record.Issue)
		})
	}
}

func TestMatcher_TieGoesToFirstRecord(t *testing.T) {
	records := []models.CatalogRecord{
		{Issue: "first", Keywords: []string{"reminder"}, Product: models.ProductMessaging},
		{Issue: "second", Keywords: []string{"reminder"}, Product: models.ProductMessaging},
	}
	m := NewMatcher(testMatcherConfig())

	for i := 0; i < 20; i++ {
		got := m.Match("send a reminder", records)
		require.Equal(t, 1, got.Score)
		assert.Equal(t, "first", got.Record.Issue)
	}
}

func TestMatcher_TieAcrossCatalog(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(testMatcherConfig())

	got := m.Match("Patients had a missed appointment and we rely on manual calls", records)

	assert.Equal(t, 1, got.Score)
	assert.Equal(t, "Patients miss appointments or do not show up", got.Record.Issue)
}

func TestMatcher_Deterministic(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(testMatcherConfig())
	query := "our waiting room is packed and patients arrive unprepared"

	first := m.Match(query, records)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Match(query, records))
	}
}

func TestMatcher_EmptyCatalog(t *testing.T) {
	m := NewMatcher(testMatcherConfig())

	got := m.Match("no show", nil)

	assert.Equal(t, MatchResult{}, got)
}

func TestMatcher_ReturnsReferenceIntoCatalog(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(testMatcherConfig())

	got := m.Match("no show", records)

	require.True(t, got.Matched())
	assert.Same(t, &records[0], got.Record)
}

func TestMatcher_FuzzyDisabled(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(config.MatcherConfig{FuzzyThreshold: 85, FuzzyBonus: 0, FuzzyMinLength: 4})

	got := m.Match("our missed apointment rate", records)

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, 1, NewMatcher(testMatcherConfig()).Match("our missed apointment rate", records).Score)
}

func TestMatcher_ShortKeywordsNeverFuzzy(t *testing.T) {
	records := []models.CatalogRecord{
		{Issue: "short", Keywords: []string{"sms"}, Product: models.ProductMessaging},
	}
	m := NewMatcher(testMatcherConfig())

	assert.Equal(t, 0, m.Match("we use sns topics", records).Score)
	assert.Equal(t, 1, m.Match("we use sms", records).Score)
}

func TestMatcher_KeywordInsideUnrelatedWord(t *testing.T) {
	records := []models.CatalogRecord{
		{Issue: "queue", Keywords: []string{"queue"}, Product: models.ProductMessaging},
	}
	m := NewMatcher(testMatcherConfig())

	// literal substring semantics: the arbiter's cross-check guards against these
	got := m.Match("the queueing theory lecture", records)
	assert.Equal(t, 1, got.Score)
}

func TestMatcher_LongInput(t *testing.T) {
	records := loadTestCatalog(t).Records()
	m := NewMatcher(testMatcherConfig())

	got := m.Match(strings.Repeat("lorem ipsum no show ", 200), records)

	assert.Equal(t, 1, got.Score)
	assert.Equal(t, "no show", got.TriggeringKeyword)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, ratio("", ""))
	assert.Equal(t, 100, ratio("no show", "no show"))
	assert.Equal(t, 0, ratio("abc", "xyz"))
	assert.Equal(t, 0, ratio("abc", ""))
	assert.Equal(t, 86, ratio("no show", "noshow"))
	assert.Equal(t, 75, ratio("feedback", "feedlock"))
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, partialRatio("show", "no show"))
	assert.Equal(t, 0, partialRatio("", "abc"))
	assert.Equal(t, 78, partialRatio("missed appointment", "missing appointments"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"no-shows", "patient's", "visits", "2x"},
		tokenize("No-shows, patient's visits (2x)!"),
	)
}
