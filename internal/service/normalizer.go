package service

import (
	"errors"
	"fmt"
	"strings"

	"care-advisor/internal/dto"
	"care-advisor/internal/models"
	"care-advisor/pkg/config"
)

const (
	PolicyOmit        = "omit"
	PolicyPlaceholder = "placeholder"
)

// ErrContractViolation marks a response that is missing a required field
// after all defaults have been applied.
var ErrContractViolation = errors.New("advisory response contract violation")

// Normalizer shapes arbiter decisions into wire responses.
type Normalizer struct {
	policy      string
	placeholder string
}

func NewNormalizer(cfg config.OutputConfig) *Normalizer {
	policy := cfg.OptionalFieldPolicy
	if policy != PolicyPlaceholder {
		policy = PolicyOmit
	}
	return &Normalizer{
		policy:      policy,
		placeholder: cfg.Placeholder,
	}
}

// Normalize renders decision and validates the result. A validation failure
// returns an error wrapping ErrContractViolation.
func (n *Normalizer) Normalize(decision Decision) (dto.AdvisoryResponse, error) {
	var resp dto.AdvisoryResponse

	switch decision.State {
	case StateMatchedDeterministic, StateMatchedGenerative:
		d := decision.Draft
		resp = dto.SolutionResponse(
			d.Module,
			strings.Join(d.Features, ", "),
			d.Solution,
			FormatBenefits(d.Benefits),
			d.ROI,
			d.Disclaimer,
		)
	case StateNoMatch:
		resp = dto.NoMatchResponse("")
	default:
		return dto.AdvisoryResponse{}, fmt.Errorf("%w: unknown decision state %q", ErrContractViolation, decision.State)
	}

	resp = n.NormalizeResponse(resp)
	if err := Validate(resp); err != nil {
		return dto.AdvisoryResponse{}, err
	}
	return resp, nil
}

// NormalizeResponse canonicalizes display fields and applies the optional
// field policy. Applying it twice gives the same result as applying it once.
func (n *Normalizer) NormalizeResponse(resp dto.AdvisoryResponse) dto.AdvisoryResponse {
	resp.Type = strings.TrimSpace(resp.Type)
	resp.Module = strings.TrimSpace(resp.Module)
	resp.Feature = joinFeatureList(resp.Feature)
	resp.Solution = strings.TrimSpace(resp.Solution)
	resp.Benefits = FormatBenefits(models.SplitLines(resp.Benefits))
	resp.ROI = strings.TrimSpace(resp.ROI)
	resp.Disclaimer = strings.TrimSpace(resp.Disclaimer)
	resp.Message = strings.TrimSpace(resp.Message)

	if resp.Type != dto.TypeSolution {
		return resp
	}

	switch n.policy {
	case PolicyPlaceholder:
		if resp.ROI == "" {
			resp.ROI = n.placeholder
		}
		if resp.Disclaimer == "" {
			resp.Disclaimer = n.placeholder
		}
	default:
		if resp.ROI == n.placeholder {
			resp.ROI = ""
		}
		if resp.Disclaimer == n.placeholder {
			resp.Disclaimer = ""
		}
	}
	return resp
}

// Validate checks the fields each response type requires.
func Validate(resp dto.AdvisoryResponse) error {
	switch resp.Type {
	case dto.TypeSolution:
		var missing []string
		if resp.Module == "" {
			missing = append(missing, "module")
		}
		if resp.Feature == "" {
			missing = append(missing, "feature")
		}
		if resp.Solution == "" {
			missing = append(missing, "solution")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: empty %s", ErrContractViolation, strings.Join(missing, ", "))
		}
	case dto.TypeNoMatch, dto.TypeError:
		if resp.Message == "" {
			return fmt.Errorf("%w: %s response without message", ErrContractViolation, resp.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrContractViolation, resp.Type)
	}
	return nil
}

// FormatBenefits renders one "- " bullet per line.
func FormatBenefits(benefits []string) string {
	lines := make([]string, 0, len(benefits))
	for _, b := range benefits {
		if b = models.StripBullet(b); b != "" {
			lines = append(lines, "- "+b)
		}
	}
	return strings.Join(lines, "\n")
}

func joinFeatureList(feature string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(feature, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
