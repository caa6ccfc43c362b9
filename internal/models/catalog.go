package models

// CatalogRecord is one hand-authored problem to solution mapping. Records are
// loaded once at startup and never modified afterwards.
type CatalogRecord struct {
	Issue    string     `json:"issue" yaml:"issue"`
	Keywords []string   `json:"keywords" yaml:"keywords"`
	Product  string     `json:"product" yaml:"product"`
	Features TextList   `json:"features" yaml:"features"`
	Solution string     `json:"solution" yaml:"solution"`
	Benefits TextList   `json:"benefits" yaml:"benefits"`
	ROI      *ROIInputs `json:"roi,omitempty" yaml:"roi,omitempty"`
}

// ROIInputs are the authored figures the ROI estimate is derived from.
type ROIInputs struct {
	HoursSavedPerWeek float64 `json:"hours_saved_per_week" yaml:"hours_saved_per_week"`
	HourlyRate        float64 `json:"hourly_rate" yaml:"hourly_rate"`
	Currency          string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Summary           string  `json:"summary,omitempty" yaml:"summary,omitempty"`
}
