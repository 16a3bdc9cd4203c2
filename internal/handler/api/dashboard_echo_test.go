package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"VolPulse/internal/dataset"
	"VolPulse/internal/domain/models"
	"VolPulse/internal/usecase"
	"VolPulse/pkg/logger"
)

type fixedLoader struct {
	table *models.ForecastTable
	err   error
}

func (f *fixedLoader) Load(context.Context) (*models.ForecastTable, error) { return f.table, f.err }
func (f *fixedLoader) Invalidate(context.Context) error                    { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordDatasetLoad(string, string)   {}
func (nopMetrics) RecordDatasetRows(string, int, int) {}
func (nopMetrics) RecordRenderPass(string)            {}
func (nopMetrics) RecordRenderDuration(float64)       {}
func (nopMetrics) RecordCacheResult(string, string)   {}

func sampleTable() *models.ForecastTable {
	day := func(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }
	t := &models.ForecastTable{
		Records: []models.ForecastRecord{
			{Date: day(1), Actual: 0.10, GARCH: 0.12, Hybrid: 0.11},
			{Date: day(2), Actual: 0.20, GARCH: 0.18, Hybrid: 0.19},
			{Date: day(3), Actual: math.NaN(), GARCH: 0.25, Hybrid: 0.24},
		},
	}
	t.Meta = models.DatasetMeta{
		Source:      "csv:test",
		Fingerprint: "fp-1",
		Rows:        3,
		MinDate:     day(1),
		MaxDate:     day(3),
	}
	return t
}

func newTestServer(t *testing.T, loader *fixedLoader) *echo.Echo {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	ctrl := usecase.NewDashboardController(loader, nopMetrics{}, log, nil, 30, 4, 0)
	e := echo.New()
	NewDashboardEchoHandler(log, ctrl, nil).RegisterRoutes(e)
	return e
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doGET(t *testing.T, e *echo.Echo, target string) envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected HTTP code %d", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("envelope decode: %v", err)
	}
	return env
}

func TestDashboardEndpointReady(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	env := doGET(t, e, "/api/dashboard")
	if env.Status != http.StatusOK {
		t.Fatalf("expected envelope status 200, got %d", env.Status)
	}

	var view models.DashboardView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("view decode: %v", err)
	}
	if view.State != models.StateReady {
		t.Fatalf("expected ready, got %s", view.State)
	}
	if view.Metrics == nil || !view.Metrics.HasData {
		t.Fatalf("expected metrics in view")
	}
	if len(view.Overlay.Series) != 3 {
		t.Fatalf("expected 3 series with default toggles, got %d", len(view.Overlay.Series))
	}
	if view.Table[2].Actual != "" {
		t.Fatalf("missing actual must render empty, got %q", view.Table[2].Actual)
	}
}

func TestDashboardEndpointToggleOff(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	env := doGET(t, e, "/api/dashboard?garch=false")
	var view models.DashboardView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("view decode: %v", err)
	}
	if len(view.Overlay.Series) != 2 {
		t.Fatalf("expected garch line off, got %d series", len(view.Overlay.Series))
	}
}

func TestDashboardEndpointMalformedDate(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	env := doGET(t, e, "/api/dashboard?start=01/02/2024")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected envelope status 400, got %d", env.Status)
	}

	var errs []struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(env.Data, &errs); err != nil {
		t.Fatalf("error decode: %v", err)
	}
	if len(errs) != 1 || errs[0].Code != "ERR_DATETIME" {
		t.Fatalf("expected ERR_DATETIME, got %+v", errs)
	}
}

func TestDashboardEndpointInvertedRange(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	env := doGET(t, e, "/api/dashboard?start=2024-01-03&end=2024-01-01")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected envelope status 400, got %d", env.Status)
	}
}

func TestDashboardEndpointLoadError(t *testing.T) {
	e := newTestServer(t, &fixedLoader{err: dataset.ErrDataNotFound})

	env := doGET(t, e, "/api/dashboard")
	if env.Status != http.StatusOK {
		t.Fatalf("load failure still renders a view, got envelope status %d", env.Status)
	}
	var view models.DashboardView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("view decode: %v", err)
	}
	if view.State != models.StateLoadError || view.Error == "" {
		t.Fatalf("expected load_error view with message, got %+v", view)
	}
}

func TestMetaEndpoint(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	env := doGET(t, e, "/api/meta")
	var info models.DatasetInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("meta decode: %v", err)
	}
	if info.MinDate != "2024-01-01" || info.MaxDate != "2024-01-03" {
		t.Fatalf("unexpected bounds %s..%s", info.MinDate, info.MaxDate)
	}
	if info.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", info.Rows)
	}
}

func TestMetaEndpointNotFound(t *testing.T) {
	e := newTestServer(t, &fixedLoader{err: dataset.ErrDataNotFound})

	env := doGET(t, e, "/api/meta")
	if env.Status != http.StatusNotFound {
		t.Fatalf("expected envelope status 404, got %d", env.Status)
	}
}

// The page scripts bind table rows to r, the metrics summary to m and each
// histogram to h. Every key they dereference must be one the view document
// actually serializes, or a column silently renders undefined.
func TestPageReadsOnlyEmittedKeys(t *testing.T) {
	emitted := func(v interface{}) map[string]bool {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(b, &obj); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		keys := make(map[string]bool, len(obj))
		for k := range obj {
			keys[k] = true
		}
		return keys
	}

	keys := map[string]map[string]bool{
		"r": emitted(models.TableRow{Date: "d", Actual: "a", GARCH: "g", Hybrid: "h"}),
		"m": emitted(models.MetricsSummary{HasData: true, HasGarch: true, HasHybrid: true, RMSEGarch: 1, RMSEHybrid: 1, ImprovementPct: 1}),
		"h": emitted(models.HistogramSpec{Model: "x", HasData: true, BinEdges: []float64{0, 1}, Counts: []int{1}}),
	}

	re := regexp.MustCompile(`\b([rmh])\.([a-z_][a-z0-9_]*)`)
	matches := re.FindAllStringSubmatch(string(indexPage), -1)
	if len(matches) < 4 {
		t.Fatalf("expected the page to dereference view keys, found %d accesses", len(matches))
	}
	for _, match := range matches {
		if !keys[match[1]][match[2]] {
			t.Fatalf("page reads %s.%s but the view document never emits that key", match[1], match[2])
		}
	}
}

func TestIndexServesPage(t *testing.T) {
	e := newTestServer(t, &fixedLoader{table: sampleTable()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderContentType) != echo.MIMETextHTMLCharsetUTF8 {
		t.Fatalf("expected html, got %s", rec.Header().Get(echo.HeaderContentType))
	}
}
