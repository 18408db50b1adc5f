package assess

import (
	"fmt"
	"strings"

	"github.com/ppiankov/polscope/internal/model"
)

// maxItems caps each list in the prompt context
const maxItems = 20

const systemPrompt = `You are a neutral political analyst. You assess a politician using only the structured data provided. You never invent facts, you describe outcomes rather than intentions, and you answer with a single JSON object.`

// BuildPrompt serializes the record into a compact, model-ready context and
// appends the response schema.
func BuildPrompt(rec *model.PoliticianRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assess the politician %q.\n\n", rec.Name)

	b.WriteString("IDENTITY\n")
	writeField(&b, "Party", rec.Party)
	writeField(&b, "Position", rec.Position)
	writeField(&b, "Term", rec.TermPeriod)
	if rec.Biography != "" {
		writeField(&b, "Biography", truncateText(rec.Biography, 600))
	}

	fmt.Fprintf(&b, "\nBILLS (%d)\n", len(rec.Bills))
	for i, bill := range rec.Bills {
		if i >= maxItems {
			fmt.Fprintf(&b, "... and %d more\n", len(rec.Bills)-maxItems)
			break
		}
		number := bill.BillNumber
		if number == "" {
			number = "N/A"
		}
		fmt.Fprintf(&b, "- %s [%s, %s] %s", bill.Title, number, bill.Year, bill.Status)
		if bill.Role != "" {
			fmt.Fprintf(&b, " role=%s", bill.Role)
		}
		if bill.ImpactArea != "" {
			fmt.Fprintf(&b, " area=%s", bill.ImpactArea)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nPROMISES (%d)\n", len(rec.Promises))
	for i, p := range rec.Promises {
		if i >= maxItems {
			fmt.Fprintf(&b, "... and %d more\n", len(rec.Promises)-maxItems)
			break
		}
		fmt.Fprintf(&b, "- %s: %s", p.Promise, p.Status)
		if p.FulfillmentPercentage != nil {
			fmt.Fprintf(&b, " (%d%%)", *p.FulfillmentPercentage)
		}
		if p.Evidence != "" {
			fmt.Fprintf(&b, " evidence: %s", truncateText(p.Evidence, 200))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nACTIVITIES (%d)\n", len(rec.Activities))
	for i, a := range rec.Activities {
		if i >= maxItems {
			fmt.Fprintf(&b, "... and %d more\n", len(rec.Activities)-maxItems)
			break
		}
		date := a.Date
		if date == "" {
			date = "undated"
		}
		fmt.Fprintf(&b, "- [%s] %s (%s, %s)\n", date, a.Activity, a.Category, a.Impact)
	}

	if rec.VotingRecord.Alignment != "" {
		fmt.Fprintf(&b, "\nALIGNMENT: %s\n", rec.VotingRecord.Alignment)
	}

	b.WriteString("\nReturn ONLY a JSON object matching this schema. Counts must match the PROMISES list.\n")
	b.WriteString(SchemaText())

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		value = "unknown"
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
