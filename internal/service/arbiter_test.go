package service

import (
	"errors"
	"testing"

	"care-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *models.CatalogRecord {
	return &models.CatalogRecord{
		Issue:    "Patients miss appointments",
		Keywords: []string{"no show", "missed appointment"},
		Product:  models.ProductScheduling,
		Features: models.TextList{models.FeatureBooking, models.FeatureAlerts},
		Solution: "Patients confirm online and staff are alerted to gaps.",
		Benefits: models.TextList{"Fewer empty slots", "Less phone tag"},
		ROI:      &models.ROIInputs{HoursSavedPerWeek: 10, HourlyRate: 30, Currency: "USD"},
	}
}

func testProposal(product string, features ...string) *AdvisorySolution {
	return &AdvisorySolution{
		Product:    product,
		Features:   features,
		HowItWorks: "Generated explanation.",
		Benefits:   []string{"Generated benefit"},
		ROI:        "Generated ROI",
	}
}

func TestArbiter_Decide(t *testing.T) {
	arbiter := NewArbiter(testArbiterConfig())
	record := testRecord()
	providerDown := &FallbackError{Kind: ProviderUnavailable, Err: errors.New("connection refused")}

	tests := []struct {
		name         string
		match        MatchResult
		proposal     *AdvisorySolution
		fallbackErr  error
		wantState    DecisionState
		wantStatus   models.AdvisoryStatus
		wantDegraded bool
		wantModule   string
	}{
		{
			name:       "agreeing proposal confirms catalog",
			match:      MatchResult{Score: 1, Record: record, TriggeringKeyword: "no show"},
			proposal:   testProposal(models.ProductScheduling, models.FeatureBooking),
			wantState:  StateMatchedDeterministic,
			wantStatus: models.AdvisoryStatusMatrix,
			wantModule: models.ProductScheduling,
		},
		{
			name:       "combined proposal does not confirm single product record",
			match:      MatchResult{Score: 1, Record: record, TriggeringKeyword: "no show"},
			proposal:   testProposal(models.ProductMessaging+" + "+models.ProductScheduling, models.FeatureAlerts),
			wantState:  StateMatchedGenerative,
			wantStatus: models.AdvisoryStatusGPTFallback,
			wantModule: models.ProductMessaging + " + " + models.ProductScheduling,
		},
		{
			name:       "disagreeing proposal wins",
			match:      MatchResult{Score: 3, Record: record, TriggeringKeyword: "no show"},
			proposal:   testProposal(models.ProductMessaging, models.FeatureMessenger),
			wantState:  StateMatchedGenerative,
			wantStatus: models.AdvisoryStatusGPTFallback,
			wantModule: models.ProductMessaging,
		},
		{
			name:       "no catalog match uses proposal",
			proposal:   testProposal(models.ProductMessaging, models.FeatureConcierge),
			wantState:  StateMatchedGenerative,
			wantStatus: models.AdvisoryStatusGPTFallback,
			wantModule: models.ProductMessaging,
		},
		{
			name:         "fallback failed, strong match survives",
			match:        MatchResult{Score: 2, Record: record, TriggeringKeyword: "no show"},
			fallbackErr:  providerDown,
			wantState:    StateMatchedDeterministic,
			wantStatus:   models.AdvisoryStatusMatrix,
			wantDegraded: true,
			wantModule:   models.ProductScheduling,
		},
		{
			name:         "fallback failed, weak match dropped",
			match:        MatchResult{Score: 1, Record: record, TriggeringKeyword: "no show"},
			fallbackErr:  providerDown,
			wantState:    StateNoMatch,
			wantStatus:   models.AdvisoryStatusNoMatch,
			wantDegraded: true,
		},
		{
			name:         "nothing at all",
			fallbackErr:  &FallbackError{Kind: InvalidPayload, Err: ErrEmptyQuery},
			wantState:    StateNoMatch,
			wantStatus:   models.AdvisoryStatusNoMatch,
			wantDegraded: true,
		},
		{
			name:       "no proposal and no error",
			wantState:  StateNoMatch,
			wantStatus: models.AdvisoryStatusNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := arbiter.Decide(tt.match, tt.proposal, tt.fallbackErr)

			assert.Equal(t, tt.wantState, decision.State)
			assert.Equal(t, tt.wantStatus, decision.Status)
			assert.Equal(t, tt.wantDegraded, decision.Degraded)
			assert.Equal(t, tt.wantModule, decision.Draft.Module)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestArbiter_DecideDrafts(t *testing.T) {
	arbiter := NewArbiter(testArbiterConfig())
	record := testRecord()

	t.Run("catalog draft keeps authored text", func(t *testing.T) {
		decision := arbiter.Decide(
			MatchResult{Score: 1, Record: record, TriggeringKeyword: "no show"},
			testProposal(models.ProductScheduling, models.FeatureForms),
			nil,
		)

		require.Equal(t, StateMatchedDeterministic, decision.State)
		assert.Equal(t, []string{models.FeatureBooking, models.FeatureAlerts}, decision.Draft.Features)
		assert.Equal(t, record.Solution, decision.Draft.Solution)
		assert.Equal(t, []string{"Fewer empty slots", "Less phone tag"}, decision.Draft.Benefits)
		assert.Equal(t, "Saves about 10 staff hours per week, roughly $1,300 per month ($15,600 per year).", decision.Draft.ROI)
		assert.Empty(t, decision.Draft.Disclaimer)
	})

	t.Run("catalog draft borrows missing fields", func(t *testing.T) {
		sparse := &models.CatalogRecord{
			Issue:    "Waiting room crowding",
			Product:  models.ProductMessaging,
			Features: models.TextList{models.FeatureConcierge},
		}
		decision := arbiter.Decide(
			MatchResult{Score: 1, Record: sparse, TriggeringKeyword: "queue"},
			testProposal(models.ProductMessaging, models.FeatureConcierge),
			nil,
		)

		assert.Equal(t, "Generated explanation.", decision.Draft.Solution)
		assert.Equal(t, []string{"Generated benefit"}, decision.Draft.Benefits)
		assert.Equal(t, "Generated ROI", decision.Draft.ROI)
	})

	t.Run("catalog draft borrows features from proposal", func(t *testing.T) {
		bare := &models.CatalogRecord{
			Issue:   "Patients miss appointments",
			Product: models.ProductScheduling,
		}
		decision := arbiter.Decide(
			MatchResult{Score: 1, Record: bare, TriggeringKeyword: "missed appointment"},
			testProposal(models.ProductScheduling, models.FeatureBooking),
			nil,
		)

		require.Equal(t, StateMatchedDeterministic, decision.State)
		assert.Equal(t, []string{models.FeatureBooking}, decision.Draft.Features)
		assert.Equal(t, "Generated explanation.", decision.Draft.Solution)
	})

	t.Run("degraded draft falls back to default solution", func(t *testing.T) {
		sparse := &models.CatalogRecord{
			Issue:    "Waiting room crowding.",
			Product:  models.ProductMessaging,
			Features: models.TextList{models.FeatureConcierge},
		}
		decision := arbiter.Decide(MatchResult{Score: 2, Record: sparse, TriggeringKeyword: "queue"}, nil, nil)

		assert.True(t, decision.Degraded)
		assert.Equal(t, "ACM Concierge addresses this issue: Waiting room crowding.", decision.Draft.Solution)
	})

	t.Run("generative draft carries disclaimer", func(t *testing.T) {
		decision := arbiter.Decide(MatchResult{}, testProposal("", models.FeatureSurveys), nil)

		assert.Equal(t, StateMatchedGenerative, decision.State)
		assert.Equal(t, models.ProductScheduling, decision.Draft.Module)
		assert.Equal(t, GenerativeDisclaimer, decision.Draft.Disclaimer)
	})

	t.Run("draft does not alias record", func(t *testing.T) {
		decision := arbiter.Decide(MatchResult{Score: 2, Record: record, TriggeringKeyword: "no show"}, nil, nil)
		decision.Draft.Features[0] = "changed"
		assert.Equal(t, models.FeatureBooking, record.Features[0])
	})
}

func TestProductsConsistent(t *testing.T) {
	assert.True(t, ProductsConsistent(models.ProductMessaging, "automated care messaging"))
	assert.False(t, ProductsConsistent(models.ProductMessaging, models.ProductMessaging+" + "+models.ProductScheduling))
	assert.True(t, ProductsConsistent(models.ProductScheduling+" + "+models.ProductMessaging, models.ProductMessaging))
	assert.False(t, ProductsConsistent(models.ProductMessaging, models.ProductScheduling))
	assert.False(t, ProductsConsistent("", models.ProductScheduling))
	assert.False(t, ProductsConsistent(models.ProductScheduling, "  "))
}
