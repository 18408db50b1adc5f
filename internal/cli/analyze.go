package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
	printSummary   bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <name>",
	Short: "Analyze a single politician",
	Long: `Analyze gathers data about one politician and prints the combined record:
- Legislation from Congress.gov (CONGRESS_API_KEY)
- Biography, position and term from Wikipedia
- Recent activities from NewsAPI (NEWSAPI_KEY)
- Promises and voting record from the curated catalog
- Optional LLM summary (GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or Ollama)

Missing credentials or failing sources fall back to catalog data.

Example:
  polscope analyze "Joe Biden"
  polscope analyze Kamala Harris --json harris.json --md harris.md
  polscope analyze "Bernie Sanders" --llm-provider none`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&printSummary, "summary", true, "print a short summary to stderr")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	_, p, err := newPipeline()
	if err != nil {
		return err
	}

	analysis, err := p.Analyze(ctx, name)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	renderer := p.Renderer()

	// Render JSON
	if outJSON == "" || outJSON == "-" {
		if err := renderer.WriteJSON(cmd.OutOrStdout(), analysis); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	} else {
		if err := renderer.RenderJSON(analysis, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}

	// Render Markdown
	if outMD != "" {
		if err := renderer.RenderMarkdown(analysis, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	if printSummary {
		renderer.RenderSummary(cmd.ErrOrStderr(), analysis)
	}

	return nil
}
