package service

import (
	"strings"

	"care-advisor/internal/models"
)

// featureAliases maps lowercased variants seen in provider replies to the
// canonical feature identifier.
var featureAliases = map[string]string{
	"acm messenger":        models.FeatureMessenger,
	"acm messaging":        models.FeatureMessenger,
	"acm message":          models.FeatureMessenger,
	"acm messages":         models.FeatureMessenger,
	"messenger":            models.FeatureMessenger,
	"ai message assistant": models.FeatureMessenger,
	"acm vault":            models.FeatureVault,
	"acm vaults":           models.FeatureVault,
	"vault":                models.FeatureVault,
	"acm alerts":           models.FeatureAlerts,
	"acm alert":            models.FeatureAlerts,
	"acm alerting":         models.FeatureAlerts,
	"alerts":               models.FeatureAlerts,
	"acm concierge":        models.FeatureConcierge,
	"acm queue concierge":  models.FeatureConcierge,
	"concierge":            models.FeatureConcierge,
	"acs booking":          models.FeatureBooking,
	"acs bookings":         models.FeatureBooking,
	"acs self-booking":     models.FeatureBooking,
	"acs self booking":     models.FeatureBooking,
	"self-booking":         models.FeatureBooking,
	"online booking":       models.FeatureBooking,
	"booking":              models.FeatureBooking,
	"acs forms":            models.FeatureForms,
	"acs form":             models.FeatureForms,
	"acs intake forms":     models.FeatureForms,
	"intake forms":         models.FeatureForms,
	"forms":                models.FeatureForms,
	"acs surveys":          models.FeatureSurveys,
	"acs survey":           models.FeatureSurveys,
	"post-visit surveys":   models.FeatureSurveys,
	"surveys":              models.FeatureSurveys,
}

var productAliases = map[string]string{
	"automated care messaging":  models.ProductMessaging,
	"acm":                       models.ProductMessaging,
	"automated care scheduling": models.ProductScheduling,
	"acs":                       models.ProductScheduling,
	"automated care platform":   models.ProductPlatform,
	"acp":                       models.ProductPlatform,
}

// descriptionSeparators split "ACM Messenger – Sends messages" style entries.
var descriptionSeparators = []string{" – ", " — ", " - ", ": "}

// CanonicalFeature reduces a provider-supplied feature label to a vocabulary
// identifier.
func CanonicalFeature(raw string) (string, bool) {
	name := raw
	for _, sep := range descriptionSeparators {
		if i := strings.Index(name, sep); i > 0 {
			name = name[:i]
		}
	}
	name = cleanLabel(trimParenthetical(name))
	name = strings.TrimSuffix(strings.TrimSuffix(name, " feature"), " module")
	canonical, ok := featureAliases[name]
	return canonical, ok
}

// CanonicalProduct reduces a product label, possibly naming several product
// lines, to vocabulary names joined with " + ". It returns false when no part
// is recognised.
func CanonicalProduct(raw string) (string, bool) {
	var products []string
	seen := make(map[string]bool)
	for _, part := range models.SplitProducts(strings.ToLower(raw)) {
		canonical, ok := productAliases[cleanLabel(trimParenthetical(part))]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		products = append(products, canonical)
	}
	if len(products) == 0 {
		return "", false
	}
	return models.JoinProducts(products), true
}

// CanonicalFeatures splits provider feature entries ("A – desc | B – desc",
// "A, B", lists) and canonicalizes each. Unknown labels are returned
// separately. ACM Vault always travels with ACM Messenger.
func CanonicalFeatures(entries []string) (features []string, unknown []string) {
	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, part := range splitFeatureEntry(entry) {
			canonical, ok := CanonicalFeature(part)
			if !ok {
				unknown = append(unknown, part)
				continue
			}
			if !seen[canonical] {
				seen[canonical] = true
				features = append(features, canonical)
			}
		}
	}
	if seen[models.FeatureVault] && !seen[models.FeatureMessenger] {
		features = append([]string{models.FeatureMessenger}, features...)
	}
	return features, unknown
}

// ProductForFeatures infers the product line(s) from canonical features.
func ProductForFeatures(features []string) string {
	var products []string
	seen := make(map[string]bool)
	for _, name := range features {
		info, ok := models.FeatureByName(name)
		if !ok || seen[info.Product] {
			continue
		}
		seen[info.Product] = true
		products = append(products, info.Product)
	}
	return models.JoinProducts(products)
}

func splitFeatureEntry(entry string) []string {
	var parts []string
	for _, segment := range strings.Split(entry, "|") {
		segment = strings.TrimSpace(segment)
		// descriptions may contain commas, so cut them off before splitting
		for _, sep := range descriptionSeparators {
			if i := strings.Index(segment, sep); i > 0 {
				segment = segment[:i]
			}
		}
		for _, name := range strings.FieldsFunc(segment, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
			for _, piece := range strings.Split(name, " and ") {
				if piece = strings.TrimSpace(piece); piece != "" {
					parts = append(parts, piece)
				}
			}
		}
	}
	return parts
}

func cleanLabel(s string) string {
	const marks = "*\"'`. "
	s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), marks)
	s = strings.Trim(strings.TrimPrefix(s, "the "), marks)
	return strings.Join(strings.Fields(s), " ")
}

func trimParenthetical(s string) string {
	if i := strings.Index(s, "("); i > 0 {
		return s[:i]
	}
	return s
}
