package usecase

import (
	"context"
	"errors"
	"testing"

	"VolPulse/internal/dataset"
	"VolPulse/internal/domain/models"
	"VolPulse/pkg/logger"
)

type stubLoader struct {
	table *models.ForecastTable
	err   error
}

func (s *stubLoader) Load(context.Context) (*models.ForecastTable, error) { return s.table, s.err }
func (s *stubLoader) Invalidate(context.Context) error                    { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordDatasetLoad(string, string)    {}
func (nopMetrics) RecordDatasetRows(string, int, int)  {}
func (nopMetrics) RecordRenderPass(string)             {}
func (nopMetrics) RecordRenderDuration(float64)        {}
func (nopMetrics) RecordCacheResult(string, string)    {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func table(records ...models.ForecastRecord) *models.ForecastTable {
	tab := &models.ForecastTable{Records: records}
	tab.Meta.Rows = len(records)
	for _, r := range records {
		if tab.Meta.MinDate.IsZero() || r.Date.Before(tab.Meta.MinDate) {
			tab.Meta.MinDate = r.Date
		}
		if r.Date.After(tab.Meta.MaxDate) {
			tab.Meta.MaxDate = r.Date
		}
	}
	tab.Meta.Fingerprint = "test"
	return tab
}

func controller(t *testing.T, loader *stubLoader) *DashboardController {
	t.Helper()
	return NewDashboardController(loader, nopMetrics{}, testLogger(t), nil, 30, 4, 0)
}

func TestRenderLoadError(t *testing.T) {
	c := controller(t, &stubLoader{err: dataset.ErrDataNotFound})

	view, err := c.Render(context.Background(), &models.DashboardRequest{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if view.State != models.StateLoadError {
		t.Fatalf("expected load_error, got %s", view.State)
	}
	if view.Error == "" {
		t.Fatalf("expected error message on view")
	}
	// terminal for the pass: nothing downstream gets computed
	if view.Metrics != nil || view.Overlay != nil || view.Histograms != nil || view.Table != nil {
		t.Fatalf("load_error view must carry no charts or metrics")
	}
}

func TestRenderReady(t *testing.T) {
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(1), Actual: 1, GARCH: 1, Hybrid: 2},
		models.ForecastRecord{Date: day(2), Actual: 2, GARCH: 2, Hybrid: 3},
	)})

	view, err := c.Render(context.Background(), &models.DashboardRequest{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if view.State != models.StateReady {
		t.Fatalf("expected ready, got %s", view.State)
	}
	if view.Metrics == nil || !view.Metrics.HasData {
		t.Fatalf("expected metrics")
	}
	if len(view.Overlay.Series) != 3 {
		t.Fatalf("expected 3 overlay series with both toggles defaulted on, got %d", len(view.Overlay.Series))
	}
	if len(view.Table) != 2 {
		t.Fatalf("expected 2 table rows, got %d", len(view.Table))
	}
	if view.Table[0].Actual != "1.0000" {
		t.Fatalf("expected fixed 4-decimal formatting, got %q", view.Table[0].Actual)
	}
}

func TestRenderTogglesOff(t *testing.T) {
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(1), Actual: 1, GARCH: 1, Hybrid: 2},
	)})

	off := false
	req := &models.DashboardRequest{Garch: &off, LSTM: &off}
	view, err := c.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(view.Overlay.Series) != 1 {
		t.Fatalf("expected actual-only overlay, got %d series", len(view.Overlay.Series))
	}
	// histograms are composed regardless of toggles
	if len(view.Histograms) != 2 {
		t.Fatalf("expected both histograms, got %d", len(view.Histograms))
	}
}

func TestRenderEmptyRange(t *testing.T) {
	// gap between the two records; the requested window falls inside it
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(1), Actual: 1, GARCH: 1, Hybrid: 1},
		models.ForecastRecord{Date: day(10), Actual: 2, GARCH: 2, Hybrid: 2},
	)})

	req := &models.DashboardRequest{Start: "2024-01-03", End: "2024-01-05"}
	view, err := c.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if view.State != models.StateEmpty {
		t.Fatalf("expected empty, got %s", view.State)
	}
	if view.Metrics.HasData {
		t.Fatalf("expected no-data metrics")
	}
	for _, h := range view.Histograms {
		if h.HasData {
			t.Fatalf("expected no-data histogram for %s", h.Model)
		}
	}
	if len(view.Table) != 0 {
		t.Fatalf("expected empty table")
	}
}

func TestRenderInvalidRange(t *testing.T) {
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(1)},
		models.ForecastRecord{Date: day(10)},
	)})

	req := &models.DashboardRequest{Start: "2024-01-08", End: "2024-01-02"}
	_, err := c.Render(context.Background(), req)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRenderClampsToBounds(t *testing.T) {
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(5), Actual: 1, GARCH: 1, Hybrid: 1},
	)})

	req := &models.DashboardRequest{Start: "2023-12-01", End: "2024-02-01"}
	view, err := c.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if view.State != models.StateReady {
		t.Fatalf("expected ready after clamping, got %s", view.State)
	}
	if view.Meta.RangeStart != "2024-01-05" || view.Meta.RangeEnd != "2024-01-05" {
		t.Fatalf("expected clamped range, got %s..%s", view.Meta.RangeStart, view.Meta.RangeEnd)
	}
}

func TestMetaReportsBounds(t *testing.T) {
	c := controller(t, &stubLoader{table: table(
		models.ForecastRecord{Date: day(2)},
		models.ForecastRecord{Date: day(9)},
	)})

	info, err := c.Meta(context.Background())
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if info.MinDate != "2024-01-02" || info.MaxDate != "2024-01-09" {
		t.Fatalf("unexpected bounds %s..%s", info.MinDate, info.MaxDate)
	}
	if info.Rows != 2 {
		t.Fatalf("expected 2 rows, got %d", info.Rows)
	}
}
