package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ppiankov/polscope/internal/aggregate"
	"github.com/ppiankov/polscope/internal/assess"
	"github.com/ppiankov/polscope/internal/fallback"
	"github.com/ppiankov/polscope/internal/llm"
	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/sources"
	"github.com/ppiankov/polscope/internal/worker"
)

// MaxNameLength bounds accepted politician names, in characters
const MaxNameLength = 200

// InputError is the only error Analyze returns
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// IsInputError reports whether err is an *InputError
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

type analyzeInput struct {
	Name string `validate:"required,max=200"`
}

// Pipeline orchestrates one analysis: validate, aggregate, assess
type Pipeline struct {
	aggregator *aggregate.Aggregator
	requester  *assess.Requester
	validate   *validator.Validate
	renderer   *Renderer
	logger     *zap.Logger
}

// NewPipeline wires every component from configuration. A collaborator that
// cannot be built is logged and the pipeline runs without it.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := fallback.Default()
	if err != nil {
		return nil, fmt.Errorf("load fallback catalog: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	for _, h := range cfg.RateLimiting.Hosts {
		limiter.SetHostRate(h.Host, h.RequestsPerSecond, h.BurstSize)
	}
	transport := sources.NewTransport(cfg.HTTP, limiter)

	clients := []sources.Client{
		sources.NewLegislativeClient(transport, cfg.Sources.Legislative),
		sources.NewEncyclopediaClient(transport, cfg.Sources.Encyclopedia),
		sources.NewNewsClient(transport, cfg.Sources.News),
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		logger.Warn("LLM provider unavailable, assessments will be degraded",
			zap.String("provider", cfg.LLM.Provider),
			zap.Error(err),
		)
		provider = nil
	}

	return &Pipeline{
		aggregator: aggregate.New(clients, catalog, cfg.Sources.Budget, logger),
		requester:  assess.NewRequester(provider, cfg.LLM.MaxTokens, logger),
		validate:   validator.New(),
		renderer:   NewRenderer(),
		logger:     logger,
	}, nil
}

// Analyze produces the combined record for one name. Upstream and collaborator
// failures degrade the result; only invalid input is an error, and it is
// returned before any outbound call.
func (p *Pipeline) Analyze(ctx context.Context, rawName string) (*model.Analysis, error) {
	q, err := p.parseQuery(rawName)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	rec := p.aggregator.Aggregate(ctx, q)
	res := p.requester.Assess(ctx, rec)

	p.logger.Info("analysis complete",
		zap.String("politician", q.Name),
		zap.Any("data_sources", rec.DataSources),
		zap.Bool("assessment_degraded", res.Degraded),
		zap.Int("promises", len(rec.Promises)),
		zap.Duration("duration", time.Since(start)),
	)

	return model.NewAnalysis(*rec, res), nil
}

func (p *Pipeline) parseQuery(rawName string) (model.PoliticianQuery, error) {
	input := analyzeInput{Name: model.NormalizeName(rawName)}
	if err := p.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			return model.PoliticianQuery{}, &InputError{
				Reason: fmt.Sprintf("politician name must be at most %d characters", MaxNameLength),
			}
		}
		return model.PoliticianQuery{}, &InputError{Reason: model.ErrEmptyName.Error()}
	}

	q, err := model.NewQuery(input.Name)
	if err != nil {
		return model.PoliticianQuery{}, &InputError{Reason: err.Error()}
	}
	return q, nil
}

// Renderer returns the pipeline's output renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Analyze is the worker.Analyzer contract
var _ worker.Analyzer = (*Pipeline)(nil)
