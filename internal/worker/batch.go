package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/polscope/internal/model"
)

// Analyzer defines the interface for analyzing one politician
type Analyzer interface {
	Analyze(ctx context.Context, name string) (*model.Analysis, error)
}

// AnalyzeResult is the outcome for one input name
type AnalyzeResult struct {
	Index    int
	Name     string
	Analysis *model.Analysis
	Error    error
}

// BatchProcessor analyzes multiple politicians concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessNames analyzes names on a worker pool. Results keep input order;
// names never reached because ctx ended carry ctx.Err().
func (b *BatchProcessor) ProcessNames(ctx context.Context, names []string) []*AnalyzeResult {
	out := make([]*AnalyzeResult, len(names))
	if len(names) == 0 {
		return out
	}

	pool := NewPool[*AnalyzeResult](ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, name := range names {
			if !pool.Submit(b.job(i, name)) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		out[r.Index] = r
	}

	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &AnalyzeResult{Index: i, Name: names[i], Error: err}
		}
	}

	return out
}

// job analyzes one name; a panicking analyzer fails only that name
func (b *BatchProcessor) job(index int, name string) Job[*AnalyzeResult] {
	return func(ctx context.Context) (res *AnalyzeResult) {
		res = &AnalyzeResult{Index: index, Name: name}
		defer func() {
			if p := recover(); p != nil {
				res.Analysis = nil
				res.Error = fmt.Errorf("analyze %q: panic: %v", name, p)
			}
		}()
		res.Analysis, res.Error = b.analyzer.Analyze(ctx, name)
		return res
	}
}

// ProcessFile reads names from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	names, err := ReadNamesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}

	return b.ProcessNames(ctx, names), nil
}

// ReadNamesFromFile reads politician names from a file (one per line).
// Blank lines and #-comments are skipped; names are normalized and deduplicated case-insensitively.
func ReadNamesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var names []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := model.NormalizeName(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			names = append(names, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return names, nil
}
