package analytics

import (
	"math"

	"VolPulse/internal/domain/models"
)

// Compute compares the two forecast models over the subset. RMSE for each
// model is pairwise-complete: a record contributes only when both the actual
// value and that model's forecast are present. Pure function, no side effects.
//
// HasData is false when the subset is empty or no record carries an actual
// value; numeric fields are zeroed in that case so the summary stays
// JSON-encodable (NaN never leaves this package).
func Compute(subset []models.ForecastRecord) models.MetricsSummary {
	anyActual := false
	for _, r := range subset {
		if r.HasActual() {
			anyActual = true
			break
		}
	}
	if !anyActual {
		return models.MetricsSummary{HasData: false}
	}

	garch, okGarch := rmse(subset, func(r models.ForecastRecord) (float64, bool) {
		return r.GARCH, r.HasGARCH()
	})
	hybrid, okHybrid := rmse(subset, func(r models.ForecastRecord) (float64, bool) {
		return r.Hybrid, r.HasHybrid()
	})

	// Improvement needs both measurements. Zero GARCH error means nothing to
	// improve on; report 0 rather than dividing by zero.
	improvement := 0.0
	if okGarch && okHybrid && garch != 0 {
		improvement = (garch - hybrid) / garch * 100
	}

	return models.MetricsSummary{
		HasData:        true,
		HasGarch:       okGarch,
		HasHybrid:      okHybrid,
		RMSEGarch:      garch,
		RMSEHybrid:     hybrid,
		ImprovementPct: improvement,
	}
}

// rmse returns (0, false) when no complete pair exists.
func rmse(subset []models.ForecastRecord, pred func(models.ForecastRecord) (float64, bool)) (float64, bool) {
	var sum float64
	var n int
	for _, r := range subset {
		p, ok := pred(r)
		if !ok || !r.HasActual() {
			continue
		}
		d := r.Actual - p
		sum += d * d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(n)), true
}
