package analytics

import (
	"math"
	"testing"

	"VolPulse/internal/domain/models"
)

func TestComposeOverlayTogglesOff(t *testing.T) {
	subset := []models.ForecastRecord{rec(1, 1, 2, 3), rec(2, 2, 3, 4)}

	spec := ComposeOverlay(subset, models.DisplayToggles{ShowGARCH: false, ShowHybrid: false})
	if len(spec.Series) != 1 {
		t.Fatalf("expected only the actual series, got %d", len(spec.Series))
	}
	if spec.Series[0].Name != SeriesActual {
		t.Fatalf("unexpected series %q", spec.Series[0].Name)
	}
	if len(spec.Series[0].Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(spec.Series[0].Points))
	}
}

func TestComposeOverlayAllSeries(t *testing.T) {
	subset := []models.ForecastRecord{rec(1, 1, 2, 3)}

	spec := ComposeOverlay(subset, models.DisplayToggles{ShowGARCH: true, ShowHybrid: true})
	if len(spec.Series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(spec.Series))
	}
	want := []string{SeriesActual, SeriesGARCH, SeriesHybrid}
	for i, name := range want {
		if spec.Series[i].Name != name {
			t.Fatalf("series %d: expected %q got %q", i, name, spec.Series[i].Name)
		}
	}
}

func TestComposeOverlayOrderPreserved(t *testing.T) {
	subset := []models.ForecastRecord{rec(3, 3, 0, 0), rec(1, 1, 0, 0), rec(2, 2, 0, 0)}

	spec := ComposeOverlay(subset, models.DisplayToggles{})
	dates := spec.Series[0].Points
	if dates[0].Date != "2024-01-03" || dates[1].Date != "2024-01-01" || dates[2].Date != "2024-01-02" {
		t.Fatalf("subset order not preserved: %+v", dates)
	}
}

func TestComposeHistogramsAlwaysBoth(t *testing.T) {
	subset := []models.ForecastRecord{rec(1, 1, 2, 3), rec(2, 2, 1, 4)}

	hists := ComposeHistograms(subset, 30)
	if len(hists) != 2 {
		t.Fatalf("expected 2 histograms, got %d", len(hists))
	}
	for _, h := range hists {
		if !h.HasData {
			t.Fatalf("%s: expected data", h.Model)
		}
		if len(h.Counts) != 30 {
			t.Fatalf("%s: expected 30 bins, got %d", h.Model, len(h.Counts))
		}
		if len(h.BinEdges) != 31 {
			t.Fatalf("%s: expected 31 edges, got %d", h.Model, len(h.BinEdges))
		}
		total := 0
		for _, c := range h.Counts {
			total += c
		}
		if total != 2 {
			t.Fatalf("%s: expected 2 counted residuals, got %d", h.Model, total)
		}
	}
}

func TestComposeHistogramsEmptySubset(t *testing.T) {
	hists := ComposeHistograms(nil, 30)
	if len(hists) != 2 {
		t.Fatalf("expected 2 histogram specs even when empty")
	}
	for _, h := range hists {
		if h.HasData {
			t.Fatalf("%s: expected explicit no-data marker", h.Model)
		}
		if len(h.Counts) != 0 || len(h.BinEdges) != 0 {
			t.Fatalf("%s: no-data spec must carry no bins", h.Model)
		}
	}
}

func TestHistogramSingleValue(t *testing.T) {
	// identical residuals still need increasing edges
	subset := []models.ForecastRecord{rec(1, 2, 1, 1), rec(2, 3, 2, 2)}

	hists := ComposeHistograms(subset, 30)
	h := hists[0]
	if !h.HasData {
		t.Fatalf("expected data")
	}
	for i := 1; i < len(h.BinEdges); i++ {
		if h.BinEdges[i] <= h.BinEdges[i-1] {
			t.Fatalf("edges not increasing at %d", i)
		}
	}
}

func TestHistogramNaNExcluded(t *testing.T) {
	nan := math.NaN()
	subset := []models.ForecastRecord{rec(1, 1, nan, 2), rec(2, 2, 1, nan)}

	hists := ComposeHistograms(subset, 10)
	for _, h := range hists {
		total := 0
		for _, c := range h.Counts {
			total += c
		}
		if total != 1 {
			t.Fatalf("%s: expected 1 residual after NaN exclusion, got %d", h.Model, total)
		}
	}
}
