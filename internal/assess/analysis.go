package assess

import (
	"math"

	"github.com/ppiankov/polscope/internal/model"
)

// ComputePromiseAnalysis derives every numeric field from the promise list alone.
// Broken promises count as not fulfilled so the four counts sum to len(promises).
// Rate = (fulfilled + 0.5 * partially) / total * 100, rounded to one decimal.
func ComputePromiseAnalysis(promises []model.Promise) model.PromiseAnalysis {
	pa := model.PromiseAnalysis{
		TotalPromisesTracked: len(promises),
		StrongestAreas:       []string{},
		WeakestAreas:         []string{},
	}

	var pctSum, pctCount int
	for _, p := range promises {
		status := p.Status
		if !status.Valid() {
			status, _ = model.ParsePromiseStatus(string(status))
		}

		switch status {
		case model.PromiseFulfilled:
			pa.FulfilledCount++
		case model.PromisePartiallyFulfilled:
			pa.PartiallyFulfilledCount++
		case model.PromiseInProgress:
			pa.InProgressCount++
		case model.PromiseNotFulfilled, model.PromiseBroken:
			pa.NotFulfilledCount++
		}

		if p.FulfillmentPercentage != nil {
			pctSum += model.ClampPercentage(*p.FulfillmentPercentage)
			pctCount++
		}
	}

	if pa.TotalPromisesTracked > 0 {
		rate := (float64(pa.FulfilledCount) + 0.5*float64(pa.PartiallyFulfilledCount)) / float64(pa.TotalPromisesTracked) * 100
		pa.CalculatedFulfillmentRate = round1(rate)
	}

	if pctCount > 0 {
		avg := round1(float64(pctSum) / float64(pctCount))
		pa.AverageFulfillmentPercentage = &avg
	}

	return pa
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
