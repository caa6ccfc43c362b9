package service

import (
	"fmt"
	"strings"

	"care-advisor/internal/models"
)

// Rules are the behavioural constraints embedded in every fallback prompt.
// They are applied by the provider; ACM Vault's dependency on ACM Messenger
// is additionally enforced after parsing.
var Rules = []string{
	"ACM Vault is not a standalone messaging engine. It is a secure extension of ACM Messenger, so any solution that uses ACM Vault must also include ACM Messenger.",
	"If the issue mentions no-shows, missed appointments or missed visits, recommend ACM Alerts for real-time confirmation and attendance follow-up. Recommend ACM Messenger only for routine reminders sent days in advance.",
	"If the issue asks for a family portal or a log-in system, state that a dedicated family portal is not offered. Explain that ACM Messenger and ACM Vault keep family members securely informed by voice, text or email without a portal login.",
	"For manual workload, communication overload or automation requests, prefer ACM Alerts for real-time automation. Recommend ACM Messenger for scheduled outreach only.",
	"If the issue is about writing or improving messages, recommend the AI Message Assistant within ACM Messenger. It helps staff craft clear messages but does not replace ACM Alerts or Messenger automation.",
	"If patients arrive unprepared or confused, recommend ACS Forms for pre-appointment information collection and ACM Alerts for last-minute instructions. Use ACM Messenger only for communication scheduled days ahead.",
	"All products integrate with the major EMR/EHR systems. Highlight zero-disruption implementation and real-time communication driven by clinical data, with no manual entry or portals.",
}

const replyFormat = `{
  "product": "Automated Care Messaging",
  "feature": "ACM Messenger – Sends personalized messages via voice, SMS, or email. | ACM Alerts – Notifies staff only when human follow-up is needed.",
  "how_it_works": "One paragraph that connects the solution to the problem and explains how the features fit into the broader platform.",
  "benefits": [
    "Reduces staff workload by eliminating manual communications.",
    "Improves patient satisfaction with timely and transparent updates."
  ],
  "roi": "Optional one-sentence estimate of time or cost saved."
}`

// BuildPrompt renders the single completion prompt for query.
func BuildPrompt(query string) string {
	var b strings.Builder

	b.WriteString("You are a healthcare communication solutions expert. Assess the operational issue below and recommend the most effective product and feature combination from this catalog only.\n\n")
	fmt.Fprintf(&b, "%s: %s\n\n", models.ProductPlatform, models.ProductDescriptions[models.ProductPlatform])

	for _, product := range []string{models.ProductMessaging, models.ProductScheduling} {
		fmt.Fprintf(&b, "%s: %s\n", product, models.ProductDescriptions[product])
		for _, f := range models.Features {
			if f.Product == product {
				fmt.Fprintf(&b, "- %s – %s\n", f.Name, f.Description)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	for i, r := range Rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}

	fmt.Fprintf(&b, "\nIssue described by a healthcare provider:\n\"%s\"\n\n", query)

	b.WriteString("Your task:\n")
	b.WriteString("1. Decide whether the issue aligns best with Automated Care Messaging, Automated Care Scheduling, or both.\n")
	b.WriteString("2. Select one or more features from the list above, using their exact names without a leading \"the\".\n")
	b.WriteString("3. Write one concise paragraph explaining how the selected features solve the issue.\n")
	b.WriteString("4. List 2-3 specific operational benefits.\n\n")
	b.WriteString("Respond ONLY with JSON in exactly this format:\n")
	b.WriteString(replyFormat)
	b.WriteString("\n\nDo not include anything outside the JSON object.")

	return b.String()
}
