package models

import "strings"

// Product lines.
const (
	ProductMessaging  = "Automated Care Messaging"
	ProductScheduling = "Automated Care Scheduling"
	ProductPlatform   = "Automated Care Platform"
)

// Feature identifiers. The set is closed; catalog files and generative
// proposals are both reduced to these names.
const (
	FeatureMessenger = "ACM Messenger"
	FeatureVault     = "ACM Vault"
	FeatureAlerts    = "ACM Alerts"
	FeatureConcierge = "ACM Concierge"
	FeatureBooking   = "ACS Booking"
	FeatureForms     = "ACS Forms"
	FeatureSurveys   = "ACS Surveys"
)

// FeatureInfo describes one feature for prompt building and validation.
type FeatureInfo struct {
	Name        string
	Product     string
	Description string
}

// Features lists the feature vocabulary in display order.
var Features = []FeatureInfo{
	{FeatureMessenger, ProductMessaging, "Delivers personalized messages to patients, families, and staff using voice, SMS, or email. Commonly used for appointment reminders, procedure instructions, care plan updates, and general announcements. Messages can include dynamic content, embedded links, and conditional logic based on EMR data."},
	{FeatureVault, ProductMessaging, "Automatically stores every message sent or received in a secure, audit-ready repository. Enables full traceability of communication history for regulatory compliance, quality assurance, or care review. Vault entries are accessible by staff for follow-up, and optionally viewable by patients or families."},
	{FeatureAlerts, ProductMessaging, "Triggers staff notifications based on communication outcomes. Alerts can be used to flag unconfirmed appointments, failed message deliveries, or lack of patient response, so human follow-up is only initiated when truly needed."},
	{FeatureConcierge, ProductMessaging, "Pulls real-time queue and scheduling data from the EMR to inform patients and families about estimated wait times, delays, or provider availability. Reduces front desk call volume during high-traffic periods and supports mobile-first workflows such as \"wait in car until called\"."},
	{FeatureBooking, ProductScheduling, "Provides patients with a self-service interface to schedule, confirm, cancel, or reschedule their own appointments online. Integrates with the EMR to reflect real-time availability and automatically sends confirmations and reminders to reduce no-shows."},
	{FeatureForms, ProductScheduling, "Sends digital intake, consent, or follow-up forms to patients before their visit. Automatically collects and routes responses to the appropriate staff or EMR fields, reducing paperwork and front-desk bottlenecks. Supports automated reminders for incomplete forms."},
	{FeatureSurveys, ProductScheduling, "Sends brief post-care or post-visit surveys to patients or families to gather feedback on experience, satisfaction, or outcomes. Responses can be analyzed for trends and used for continuous improvement, patient engagement, or compliance reporting."},
}

// Products lists the product lines in display order.
var Products = []string{ProductMessaging, ProductScheduling, ProductPlatform}

// ProductDescriptions is the one-line summary of each product line.
var ProductDescriptions = map[string]string{
	ProductMessaging:  "Communication with patients, families, and staff, with audit-ready storage and outcome-driven alerts.",
	ProductScheduling: "Patient self-scheduling, digital forms, and post-visit feedback.",
	ProductPlatform:   "The complete system for communication, coordination, and care automation, composed of Automated Care Messaging and Automated Care Scheduling.",
}

// IsKnownFeature reports whether name is an exact vocabulary feature.
func IsKnownFeature(name string) bool {
	_, ok := FeatureByName(name)
	return ok
}

// FeatureByName looks a feature up by its exact identifier.
func FeatureByName(name string) (FeatureInfo, bool) {
	for _, f := range Features {
		if f.Name == name {
			return f, true
		}
	}
	return FeatureInfo{}, false
}

// IsKnownProduct reports whether name is a product line or a combination of
// product lines joined with "+", "&", "," or "and".
func IsKnownProduct(name string) bool {
	parts := SplitProducts(name)
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if !isProductLine(part) {
			return false
		}
	}
	return true
}

// SplitProducts breaks a combined product string into its trimmed parts.
func SplitProducts(name string) []string {
	replacer := strings.NewReplacer(" and ", "+", "&", "+", ",", "+", "/", "+")
	var parts []string
	for _, part := range strings.Split(replacer.Replace(name), "+") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// JoinProducts renders several product lines as one display string.
func JoinProducts(products []string) string {
	return strings.Join(products, " + ")
}

func isProductLine(name string) bool {
	for _, p := range Products {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
