package analytics

import (
	"math"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/util"
)

// Series names as rendered in the overlay legend.
const (
	SeriesActual = "Actual Volatility"
	SeriesGARCH  = "GARCH Forecast"
	SeriesHybrid = "LSTM+GARCH Forecast"
)

// ComposeOverlay builds the time-series overlay. The actual line is always
// present; the forecast lines follow the toggles. Points keep subset order.
func ComposeOverlay(subset []models.ForecastRecord, toggles models.DisplayToggles) models.OverlaySpec {
	spec := models.OverlaySpec{
		XLabel: "Date",
		YLabel: "7-Day Volatility",
	}

	spec.Series = append(spec.Series, series(SeriesActual, subset, func(r models.ForecastRecord) (float64, bool) {
		return r.Actual, r.HasActual()
	}))
	if toggles.ShowGARCH {
		spec.Series = append(spec.Series, series(SeriesGARCH, subset, func(r models.ForecastRecord) (float64, bool) {
			return r.GARCH, r.HasGARCH()
		}))
	}
	if toggles.ShowHybrid {
		spec.Series = append(spec.Series, series(SeriesHybrid, subset, func(r models.ForecastRecord) (float64, bool) {
			return r.Hybrid, r.HasHybrid()
		}))
	}
	return spec
}

func series(name string, subset []models.ForecastRecord, value func(models.ForecastRecord) (float64, bool)) models.Series {
	s := models.Series{Name: name, Points: make([]models.SeriesPoint, 0, len(subset))}
	for _, r := range subset {
		v, ok := value(r)
		if !ok {
			continue
		}
		s.Points = append(s.Points, models.SeriesPoint{
			Date:  util.FormatDate(r.Date),
			Value: v,
		})
	}
	return s
}

// ComposeHistograms builds both residual distributions (actual minus model
// forecast) regardless of the display toggles; showing or hiding them is the
// caller's decision. Empty subsets produce explicit no-data specs.
func ComposeHistograms(subset []models.ForecastRecord, bins int) []models.HistogramSpec {
	return []models.HistogramSpec{
		histogram(SeriesGARCH, residuals(subset, func(r models.ForecastRecord) (float64, bool) {
			return r.GARCH, r.HasGARCH()
		}), bins),
		histogram(SeriesHybrid, residuals(subset, func(r models.ForecastRecord) (float64, bool) {
			return r.Hybrid, r.HasHybrid()
		}), bins),
	}
}

func residuals(subset []models.ForecastRecord, pred func(models.ForecastRecord) (float64, bool)) []float64 {
	out := make([]float64, 0, len(subset))
	for _, r := range subset {
		p, ok := pred(r)
		if !ok || !r.HasActual() {
			continue
		}
		out = append(out, r.Actual-p)
	}
	return out
}

func histogram(model string, values []float64, bins int) models.HistogramSpec {
	if len(values) == 0 {
		return models.HistogramSpec{Model: model, HasData: false}
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// Degenerate single-value distribution still gets a non-zero bin width
	// so the edges stay strictly increasing.
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
		lo -= 0.5
		hi = lo + float64(bins)*width
	}

	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = lo + float64(i)*width
	}

	counts := make([]int, bins)
	for _, v := range values {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins { // hi lands in the last bin
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	return models.HistogramSpec{
		Model:    model,
		HasData:  true,
		BinEdges: edges,
		Counts:   counts,
	}
}
