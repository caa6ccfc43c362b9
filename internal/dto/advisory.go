package dto

// Response types.
const (
	TypeSolution = "solution"
	TypeNoMatch  = "no_match"
	TypeError    = "error"
)

const (
	NoMatchMessage = "Sorry, we couldn't find a recommendation for that issue. Could you describe it in a bit more detail?"
	ErrorMessage   = "Sorry, something went wrong while preparing a recommendation. Please try again."
)

type AdvisoryRequest struct {
	Message string `json:"message" example:"Patients keep missing appointments"`
	PageURL string `json:"page_url,omitempty" example:"https://example.com/solutions"`
}

// AdvisoryResponse is the single object returned per advisory request.
// Module, Feature and Solution are non-empty whenever Type is "solution".
type AdvisoryResponse struct {
	Type       string `json:"type" example:"solution"`
	Module     string `json:"module,omitempty" example:"Automated Care Messaging"`
	Feature    string `json:"feature,omitempty" example:"ACM Messenger, ACM Alerts"`
	Solution   string `json:"solution,omitempty"`
	Benefits   string `json:"benefits,omitempty"`
	ROI        string `json:"roi,omitempty"`
	Disclaimer string `json:"disclaimer,omitempty"`
	Message    string `json:"message,omitempty"`
}

func SolutionResponse(module, feature, solution, benefits, roi, disclaimer string) AdvisoryResponse {
	return AdvisoryResponse{
		Type:       TypeSolution,
		Module:     module,
		Feature:    feature,
		Solution:   solution,
		Benefits:   benefits,
		ROI:        roi,
		Disclaimer: disclaimer,
	}
}

func NoMatchResponse(message string) AdvisoryResponse {
	if message == "" {
		message = NoMatchMessage
	}
	return AdvisoryResponse{Type: TypeNoMatch, Message: message}
}

func ErrorResponse(message string) AdvisoryResponse {
	if message == "" {
		message = ErrorMessage
	}
	return AdvisoryResponse{Type: TypeError, Message: message}
}

type ErrorBody struct {
	Error string `json:"error" example:"message is required"`
}

type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	CatalogRecords int    `json:"catalog_records" example:"12"`
	Provider       string `json:"provider" example:"openai"`
	AuditEnabled   bool   `json:"audit_enabled"`
}
