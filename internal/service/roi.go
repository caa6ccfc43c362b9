package service

import (
	"fmt"
	"strings"

	"care-advisor/internal/models"

	"github.com/shopspring/decimal"
)

var (
	weeksPerYear   = decimal.NewFromInt(52)
	monthsPerYear  = decimal.NewFromInt(12)
	currencySymbol = map[string]string{
		"":    "$",
		"$":   "$",
		"USD": "$",
		"CAD": "$",
		"EUR": "€",
		"GBP": "£",
	}
)

// EstimateROI renders the savings estimate for a catalog record. It returns
// "" when the record carries no ROI inputs.
func EstimateROI(in *models.ROIInputs) string {
	if in == nil {
		return ""
	}

	summary := strings.TrimSpace(in.Summary)
	if in.HoursSavedPerWeek <= 0 {
		return summary
	}

	hours := decimal.NewFromFloat(in.HoursSavedPerWeek)
	estimate := fmt.Sprintf("Saves about %s staff hours per week", hours.Round(1).String())

	if in.HourlyRate > 0 {
		yearly := hours.Mul(decimal.NewFromFloat(in.HourlyRate)).Mul(weeksPerYear)
		monthly := yearly.Div(monthsPerYear)
		estimate += fmt.Sprintf(", roughly %s per month (%s per year)",
			formatMoney(monthly, in.Currency), formatMoney(yearly, in.Currency))
	}
	estimate += "."

	if summary != "" {
		return summary + " " + estimate
	}
	return estimate
}

func formatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	digits := groupThousands(amount.Round(0).StringFixed(0))
	if symbol, ok := currencySymbol[currency]; ok {
		return symbol + digits
	}
	return digits + " " + currency
}

func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
