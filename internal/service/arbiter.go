package service

import (
	"errors"
	"fmt"
	"strings"

	"care-advisor/internal/models"
	"care-advisor/pkg/config"
)

// DecisionState is the terminal state of one arbitration.
type DecisionState string

const (
	StateMatchedDeterministic DecisionState = "MATCHED_DETERMINISTIC"
	StateMatchedGenerative    DecisionState = "MATCHED_GENERATIVE"
	StateNoMatch              DecisionState = "NO_MATCH"
)

// GenerativeDisclaimer accompanies every answer written by the provider.
const GenerativeDisclaimer = "This recommendation was generated automatically and has not been reviewed against our curated solution catalog. Please confirm the details with a product specialist."

// Draft is the response body chosen by the arbiter, before display
// formatting.
type Draft struct {
	Module     string
	Features   []string
	Solution   string
	Benefits   []string
	ROI        string
	Disclaimer string
}

// Decision is the outcome of Arbiter.Decide.
type Decision struct {
	State    DecisionState
	Status   models.AdvisoryStatus
	Match    MatchResult
	Proposal *AdvisorySolution
	// Degraded is set when the fallback failed, so the decision was made
	// without cross-validation.
	Degraded bool
	Reason   string
	Draft    Draft
}

// Arbiter chooses between the catalog match and the generative proposal.
type Arbiter struct {
	acceptanceThreshold int
	soloThreshold       int
}

func NewArbiter(cfg config.ArbiterConfig) *Arbiter {
	return &Arbiter{
		acceptanceThreshold: cfg.AcceptanceThreshold,
		soloThreshold:       cfg.SoloThreshold,
	}
}

// Decide applies, in order:
//  1. score >= acceptance threshold and the proposal's product agrees with
//     the record's product: catalog answer.
//  2. a proposal exists: generative answer.
//  3. no proposal and score >= solo threshold: catalog answer, degraded.
//  4. otherwise no match.
//
// Decide never fails; fallbackErr is only used for the reason string.
func (a *Arbiter) Decide(match MatchResult, proposal *AdvisorySolution, fallbackErr error) Decision {
	decision := Decision{Match: match, Proposal: proposal}

	switch {
	case match.Matched() && match.Score >= a.acceptanceThreshold &&
		proposal != nil && ProductsConsistent(match.Record.Product, proposal.Product):
		decision.State = StateMatchedDeterministic
		decision.Reason = fmt.Sprintf("keyword score %d on %q confirmed by generative product %q",
			match.Score, match.TriggeringKeyword, proposal.Product)
		decision.Draft = catalogDraft(match.Record, proposal)

	case proposal != nil:
		decision.State = StateMatchedGenerative
		decision.Reason = generativeReason(match, proposal, a.acceptanceThreshold)
		decision.Draft = generativeDraft(proposal)

	case match.Matched() && match.Score >= a.soloThreshold:
		decision.State = StateMatchedDeterministic
		decision.Degraded = true
		decision.Reason = fmt.Sprintf("fallback unavailable (%s), keyword score %d meets solo threshold %d",
			failureKind(fallbackErr), match.Score, a.soloThreshold)
		decision.Draft = catalogDraft(match.Record, nil)

	default:
		decision.State = StateNoMatch
		decision.Degraded = fallbackErr != nil
		decision.Reason = noMatchReason(match, fallbackErr, a.soloThreshold)
	}

	decision.Status = statusFor(decision.State)
	return decision
}

// ProductsConsistent reports whether the proposed product is contained in the
// record's product, ignoring case. Empty names are never consistent.
func ProductsConsistent(recordProduct, proposedProduct string) bool {
	record := strings.ToLower(strings.TrimSpace(recordProduct))
	proposed := strings.ToLower(strings.TrimSpace(proposedProduct))
	if record == "" || proposed == "" {
		return false
	}
	return strings.Contains(record, proposed)
}

func statusFor(state DecisionState) models.AdvisoryStatus {
	switch state {
	case StateMatchedDeterministic:
		return models.AdvisoryStatusMatrix
	case StateMatchedGenerative:
		return models.AdvisoryStatusGPTFallback
	default:
		return models.AdvisoryStatusNoMatch
	}
}

// catalogDraft uses the record's authored text, borrowing from the proposal
// only for fields the record leaves empty.
func catalogDraft(record *models.CatalogRecord, proposal *AdvisorySolution) Draft {
	draft := Draft{
		Module:   record.Product,
		Features: append([]string(nil), record.Features...),
		Solution: strings.TrimSpace(record.Solution),
		Benefits: append([]string(nil), record.Benefits...),
		ROI:      EstimateROI(record.ROI),
	}

	if len(draft.Features) == 0 && proposal != nil {
		draft.Features = append([]string(nil), proposal.Features...)
	}
	if draft.Solution == "" && proposal != nil {
		draft.Solution = proposal.HowItWorks
	}
	if draft.Solution == "" {
		draft.Solution = defaultSolution(record.Issue, draft.Features)
	}
	if len(draft.Benefits) == 0 && proposal != nil {
		draft.Benefits = append([]string(nil), proposal.Benefits...)
	}
	if draft.ROI == "" && proposal != nil {
		draft.ROI = proposal.ROI
	}
	return draft
}

func generativeDraft(proposal *AdvisorySolution) Draft {
	module := proposal.Product
	if module == "" {
		module = ProductForFeatures(proposal.Features)
	}

	return Draft{
		Module:     module,
		Features:   append([]string(nil), proposal.Features...),
		Solution:   proposal.HowItWorks,
		Benefits:   append([]string(nil), proposal.Benefits...),
		ROI:        proposal.ROI,
		Disclaimer: GenerativeDisclaimer,
	}
}

func defaultSolution(issue string, features []string) string {
	if len(features) == 0 {
		return ""
	}
	issue = strings.TrimSuffix(strings.TrimSpace(issue), ".")
	if issue == "" {
		return fmt.Sprintf("%s addresses this issue.", strings.Join(features, " and "))
	}
	return fmt.Sprintf("%s addresses this issue: %s.", strings.Join(features, " and "), issue)
}

func generativeReason(match MatchResult, proposal *AdvisorySolution, threshold int) string {
	switch {
	case !match.Matched():
		return "no catalog match, using generative proposal"
	case match.Score < threshold:
		return fmt.Sprintf("keyword score %d below acceptance threshold %d, using generative proposal",
			match.Score, threshold)
	default:
		return fmt.Sprintf("catalog product %q disagrees with generative product %q",
			match.Record.Product, proposal.Product)
	}
}

func noMatchReason(match MatchResult, fallbackErr error, solo int) string {
	if !match.Matched() {
		return fmt.Sprintf("no catalog match and fallback unavailable (%s)", failureKind(fallbackErr))
	}
	return fmt.Sprintf("keyword score %d below solo threshold %d and fallback unavailable (%s)",
		match.Score, solo, failureKind(fallbackErr))
}

func failureKind(err error) string {
	if err == nil {
		return "no proposal"
	}
	if kind := FallbackKind(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, ErrProviderDisabled) {
		return string(ProviderUnavailable)
	}
	return "error"
}
