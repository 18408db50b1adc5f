// Package assess asks the reasoning collaborator for a structured assessment of
// an aggregated record and repairs whatever comes back. Numeric promise fields
// are always recomputed from the record.
package assess

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/polscope/internal/llm"
	"github.com/ppiankov/polscope/internal/model"
)

// Requester runs one assessment per record
type Requester struct {
	provider  llm.Provider
	maxTokens int
	logger    *zap.Logger
}

// NewRequester creates a requester. A nil provider yields degraded results
// carrying only recomputed counts.
func NewRequester(provider llm.Provider, maxTokens int, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{
		provider:  provider,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Assess never returns an error. Collaborator failure of any kind produces a
// degraded result with an empty narrative.
func (r *Requester) Assess(ctx context.Context, rec *model.PoliticianRecord) model.AssessmentResult {
	computed := ComputePromiseAnalysis(rec.Promises)

	if r.provider == nil {
		return r.degraded(rec, computed, "reasoning collaborator not configured")
	}

	text, err := r.complete(ctx, rec)
	if err != nil {
		return r.degraded(rec, computed, err.Error())
	}

	result, err := repair(text, computed)
	if err != nil {
		return r.degraded(rec, computed, err.Error())
	}

	if len(result.Warnings) > 0 {
		r.logger.Warn("assessment repaired",
			zap.String("politician", rec.Name),
			zap.String("provider", r.provider.Name()),
			zap.Strings("warnings", result.Warnings),
		)
	}
	return result
}

func (r *Requester) complete(ctx context.Context, rec *model.PoliticianRecord) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collaborator panic: %v", p)
		}
	}()

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		System:    systemPrompt,
		Prompt:    BuildPrompt(rec),
		MaxTokens: r.maxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return "", fmt.Errorf("collaborator error: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("collaborator returned empty response")
	}
	return resp.Text, nil
}

func (r *Requester) degraded(rec *model.PoliticianRecord, computed model.PromiseAnalysis, reason string) model.AssessmentResult {
	r.logger.Warn("assessment degraded",
		zap.String("politician", rec.Name),
		zap.String("reason", reason),
	)
	return model.AssessmentResult{
		PromiseAnalysis: computed,
		Degraded:        true,
		Warnings:        []string{reason},
	}
}

// countFields are the model-asserted numbers that are always overridden
var countFields = []string{
	"total_promises_tracked",
	"fulfilled_count",
	"partially_fulfilled_count",
	"in_progress_count",
	"not_fulfilled_count",
}

// repair keeps the well-typed narrative fields of a model payload and replaces
// every numeric field with the recomputed value. It fails only when the payload
// is not a JSON object.
func repair(text string, computed model.PromiseAnalysis) (model.AssessmentResult, error) {
	cleaned := llm.CleanJSONBlock(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.AssessmentResult{}, fmt.Errorf("non-JSON collaborator output: %w", err)
	}
	if raw == nil {
		return model.AssessmentResult{}, fmt.Errorf("collaborator output is not an object")
	}

	result := model.AssessmentResult{PromiseAnalysis: computed}

	if fieldErrs, err := validatePayload(cleaned); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		for _, fe := range fieldErrs {
			result.Warnings = append(result.Warnings, "schema: "+fe.String())
		}
	}

	if s, ok := raw["summary"].(string); ok {
		result.Summary = strings.TrimSpace(s)
	}

	pa, ok := raw["promise_analysis"].(map[string]any)
	if !ok {
		return result, nil
	}

	if s, ok := pa["analysis_summary"].(string); ok {
		result.PromiseAnalysis.AnalysisSummary = strings.TrimSpace(s)
	}
	result.PromiseAnalysis.StrongestAreas = stringList(pa["strongest_areas"])
	result.PromiseAnalysis.WeakestAreas = stringList(pa["weakest_areas"])

	want := map[string]int{
		"total_promises_tracked":    computed.TotalPromisesTracked,
		"fulfilled_count":           computed.FulfilledCount,
		"partially_fulfilled_count": computed.PartiallyFulfilledCount,
		"in_progress_count":         computed.InProgressCount,
		"not_fulfilled_count":       computed.NotFulfilledCount,
	}
	for _, field := range countFields {
		v, present := pa[field]
		if !present {
			continue
		}
		n, isNum := v.(float64)
		if !isNum || int(n) != want[field] || n != float64(int(n)) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("model %s=%v overridden by recomputed %d", field, v, want[field]))
		}
	}

	return result, nil
}

// stringList keeps the non-empty string elements of a JSON array
func stringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
