package model

// PromiseAnalysis aggregates promise outcomes. Counts and rates are always derived
// from the record's promises; only the narrative fields come from the model.
type PromiseAnalysis struct {
	TotalPromisesTracked         int      `json:"total_promises_tracked"`
	FulfilledCount               int      `json:"fulfilled_count"`
	PartiallyFulfilledCount      int      `json:"partially_fulfilled_count"`
	InProgressCount              int      `json:"in_progress_count"`
	NotFulfilledCount            int      `json:"not_fulfilled_count"` // includes broken
	CalculatedFulfillmentRate    float64  `json:"calculated_fulfillment_rate"`
	AverageFulfillmentPercentage *float64 `json:"average_fulfillment_percentage,omitempty"`
	AnalysisSummary              string   `json:"analysis_summary"`
	StrongestAreas               []string `json:"strongest_areas"`
	WeakestAreas                 []string `json:"weakest_areas"`
}

// AssessmentResult is the model-produced layer over a record
type AssessmentResult struct {
	Summary         string          `json:"summary"`
	PromiseAnalysis PromiseAnalysis `json:"promise_analysis"`

	// Degraded is set when the collaborator failed and only recomputed counts are present
	Degraded bool     `json:"-"`
	Warnings []string `json:"-"`
}

// Analysis is the combined record returned at the boundary
type Analysis struct {
	PoliticianRecord
	Summary         string          `json:"summary"`
	PromiseAnalysis PromiseAnalysis `json:"promise_analysis"`
}

// NewAnalysis joins a record with its assessment
func NewAnalysis(rec PoliticianRecord, res AssessmentResult) *Analysis {
	return &Analysis{
		PoliticianRecord: rec,
		Summary:          res.Summary,
		PromiseAnalysis:  res.PromiseAnalysis,
	}
}
