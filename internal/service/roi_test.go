package service

import (
	"testing"

	"care-advisor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEstimateROI(t *testing.T) {
	tests := []struct {
		name string
		in   *models.ROIInputs
		want string
	}{
		{"nil", nil, ""},
		{
			name: "dollars",
			in:   &models.ROIInputs{HoursSavedPerWeek: 10, HourlyRate: 30, Currency: "USD"},
			want: "Saves about 10 staff hours per week, roughly $1,300 per month ($15,600 per year).",
		},
		{
			name: "hours only",
			in:   &models.ROIInputs{HoursSavedPerWeek: 7.5},
			want: "Saves about 7.5 staff hours per week.",
		},
		{
			name: "euros",
			in:   &models.ROIInputs{HoursSavedPerWeek: 40, HourlyRate: 50, Currency: "eur"},
			want: "Saves about 40 staff hours per week, roughly €8,667 per month (€104,000 per year).",
		},
		{
			name: "unknown currency",
			in:   &models.ROIInputs{HoursSavedPerWeek: 1, HourlyRate: 100, Currency: "CHF"},
			want: "Saves about 1 staff hours per week, roughly 433 CHF per month (5,200 CHF per year).",
		},
		{
			name: "summary only",
			in:   &models.ROIInputs{Summary: " Reminder calls are fully automated. "},
			want: "Reminder calls are fully automated.",
		},
		{
			name: "summary and estimate",
			in:   &models.ROIInputs{HoursSavedPerWeek: 15, HourlyRate: 28, Summary: "Reminder calls are fully automated."},
			want: "Reminder calls are fully automated. Saves about 15 staff hours per week, roughly $1,820 per month ($21,840 per year).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateROI(tt.in))
		})
	}
}

func TestGroupThousands(t *testing.T) {
	for in, want := range map[string]string{
		"0":       "0",
		"999":     "999",
		"1000":    "1,000",
		"15600":   "15,600",
		"104000":  "104,000",
		"1234567": "1,234,567",
		"-4500":   "-4,500",
	} {
		assert.Equal(t, want, groupThousands(in), in)
	}
}
