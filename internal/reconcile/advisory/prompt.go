package advisory

import (
	"fmt"
	"strings"

	"indiamart-audit/internal/models"
)

const systemPreamble = `You review Indiamart buy leads and give an advisory opinion on whether each lead is Retail or Non-Retail.`

const bindingRule = `Binding rule:
- Every lead comes with a deterministic verdict produced by the quantity threshold rules. That verdict is primary and final.
- Your assessment is advisory only. It must never override, reverse or replace the deterministic verdict.
- When you disagree with the deterministic verdict, say so in conflict_notes and keep your own reasoning separate.`

const outputContract = `Respond with exactly one JSON object and no other text:
{
  "bl_type": "Retail" or "Non-Retail" or "Unknown",
  "threshold_value": "the threshold you relied on, or NA",
  "reasoning": "one or two sentences",
  "evaluation_signals": {
    "threshold": "how the quantity compares with the threshold",
    "order_value": "what the probable order value suggests",
    "buyer_intent": "personal use or business purchase",
    "product_type": "consumer or industrial product"
  },
  "conflict_notes": "disagreement with the deterministic verdict, empty if none"
}`

// SystemPrompt embeds the caller's audit instructions between the binding rule
// and the output contract.
func SystemPrompt(auditInstructions string) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nAudit instructions:\n")
	b.WriteString(strings.TrimSpace(auditInstructions))
	b.WriteString("\n\n")
	b.WriteString(bindingRule)
	b.WriteString("\n\n")
	b.WriteString(outputContract)
	return b.String()
}

// UserPrompt carries the lead's business fields, the resolved threshold and the
// deterministic outcome. Matching internals stay out of it.
func UserPrompt(item Item) string {
	rec := item.Record
	lines := []string{
		"Lead ID: " + rec.ID,
		fmt.Sprintf("Category: %s (%s)", strings.TrimSpace(rec.CategoryName), rec.CategoryID),
		fmt.Sprintf("Quantity: %s %s", rec.Quantity.Literal(), strings.TrimSpace(rec.QuantityUnit)),
		"Probable order value: " + orNA(rec.ProbableOrderValue),
		"Current segment: " + orNA(rec.SegmentLabel),
		"Details: " + orNA(rec.Details),
	}
	if item.Threshold != nil {
		lines = append(lines, "Category threshold: "+item.Threshold.Display())
	} else {
		lines = append(lines, "Category threshold: not available")
	}
	lines = append(lines,
		fmt.Sprintf("Deterministic verdict: %s (%s), MCAT type %s",
			item.Verdict.Outcome, item.Verdict.CategoryLabel, item.Verdict.MCATType),
	)
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return models.ThresholdDisplayNA
	}
	return s
}
