package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/polscope/internal/model"
)

// Renderer writes analyses as JSON, Markdown, or a short terminal summary
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// WriteJSON encodes the analysis as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, a *model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return nil
}

// RenderJSON writes the analysis to path, creating parent directories
func (r *Renderer) RenderJSON(a *model.Analysis, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, a) })
}

// RenderMarkdown writes a human-readable report to path
func (r *Renderer) RenderMarkdown(a *model.Analysis, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(a))
		return err
	})
}

// Markdown formats the analysis as a Markdown document
func (r *Renderer) Markdown(a *model.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.Name)
	if a.Party != "" {
		fmt.Fprintf(&b, "**Party:** %s  \n", a.Party)
	}
	if a.Position != "" {
		fmt.Fprintf(&b, "**Position:** %s  \n", a.Position)
	}
	if a.TermPeriod != "" {
		fmt.Fprintf(&b, "**Term:** %s  \n", a.TermPeriod)
	}
	fmt.Fprintf(&b, "**Live sources:** %s\n\n", joinKinds(a.DataSources))

	if a.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", a.Summary)
	}
	if a.Biography != "" {
		fmt.Fprintf(&b, "## Biography\n\n%s\n\n", a.Biography)
	}

	pa := a.PromiseAnalysis
	b.WriteString("## Promises\n\n")
	fmt.Fprintf(&b, "Tracked: %d | Fulfilled: %d | Partial: %d | In progress: %d | Not fulfilled: %d\n\n",
		pa.TotalPromisesTracked, pa.FulfilledCount, pa.PartiallyFulfilledCount, pa.InProgressCount, pa.NotFulfilledCount)
	fmt.Fprintf(&b, "Fulfillment rate: %.1f%%", pa.CalculatedFulfillmentRate)
	if pa.AverageFulfillmentPercentage != nil {
		fmt.Fprintf(&b, " (average per-promise %.1f%%)", *pa.AverageFulfillmentPercentage)
	}
	b.WriteString("\n\n")
	if pa.AnalysisSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", pa.AnalysisSummary)
	}
	if len(pa.StrongestAreas) > 0 {
		fmt.Fprintf(&b, "Strongest areas: %s\n\n", strings.Join(pa.StrongestAreas, ", "))
	}
	if len(pa.WeakestAreas) > 0 {
		fmt.Fprintf(&b, "Weakest areas: %s\n\n", strings.Join(pa.WeakestAreas, ", "))
	}
	for _, p := range a.Promises {
		fmt.Fprintf(&b, "- **%s** (%s)", p.Promise, p.Status)
		if p.FulfillmentPercentage != nil {
			fmt.Fprintf(&b, " %d%%", *p.FulfillmentPercentage)
		}
		if p.Evidence != "" {
			fmt.Fprintf(&b, ": %s", p.Evidence)
		}
		b.WriteByte('\n')
	}

	if len(a.Bills) > 0 {
		b.WriteString("\n## Bills\n\n")
		b.WriteString("| Number | Title | Year | Status |\n")
		b.WriteString("|--------|-------|------|--------|\n")
		for _, bill := range a.Bills {
			number := bill.BillNumber
			if number == "" {
				number = "N/A"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", number, escapeCell(bill.Title), bill.Year, bill.Status)
		}
	}

	if len(a.Activities) > 0 {
		b.WriteString("\n## Recent Activities\n\n")
		for _, act := range a.Activities {
			date := act.Date
			if date == "" {
				date = "undated"
			}
			fmt.Fprintf(&b, "- [%s] %s (%s, %s)\n", date, act.Activity, act.Category, act.Impact)
		}
	}

	if a.VotingRecord.Alignment != "" || len(a.VotingRecord.KeyVotes) > 0 {
		b.WriteString("\n## Voting Record\n\n")
		if a.VotingRecord.Alignment != "" {
			fmt.Fprintf(&b, "%s\n\n", a.VotingRecord.Alignment)
		}
		for _, v := range a.VotingRecord.KeyVotes {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", v.Issue, v.Position, v.Year)
		}
	}

	if len(a.Controversies) > 0 {
		b.WriteString("\n## Controversies\n\n")
		for _, c := range a.Controversies {
			fmt.Fprintf(&b, "- %s (%s)", c.Issue, c.Year)
			if c.Resolution != "" {
				fmt.Fprintf(&b, ": %s", c.Resolution)
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// RenderSummary prints a short overview to w
func (r *Renderer) RenderSummary(w io.Writer, a *model.Analysis) {
	pa := a.PromiseAnalysis
	fmt.Fprintf(w, "\n%s", a.Name)
	if a.Party != "" {
		fmt.Fprintf(w, " (%s)", a.Party)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Live sources:  %s\n", joinKinds(a.DataSources))
	fmt.Fprintf(w, "  Bills:         %d\n", len(a.Bills))
	fmt.Fprintf(w, "  Activities:    %d\n", len(a.Activities))
	fmt.Fprintf(w, "  Promises:      %d (%.1f%% fulfilled)\n", pa.TotalPromisesTracked, pa.CalculatedFulfillmentRate)
	if a.Summary == "" {
		fmt.Fprintln(w, "  Assessment:    unavailable (counts only)")
	}
}

func joinKinds(kinds []model.SourceKind) string {
	if len(kinds) == 0 {
		return "none (fallback data only)"
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
