package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/repository"
	"VolPulse/internal/services/analytics"
	"VolPulse/pkg/cache"
	"VolPulse/pkg/logger"
	"VolPulse/pkg/util"
)

// ErrInvalidRange marks a request whose start date is after its end date.
var ErrInvalidRange = errors.New("dashboard: range start is after end")

const viewCacheName = "view"

// DashboardController runs one render pass per request: load the cached
// table, filter by the requested range, compute metrics, compose charts and
// format the table. The pass's resulting state travels on the view document:
//
//	loading    -> ready       successful load
//	loading    -> load_error  source missing/unreadable or schema mismatch;
//	                          terminal for the pass, nothing else is computed
//	ready      -> empty       zero records in range; placeholders instead of
//	                          metrics/charts, no division or plotting happens
//
// Every interaction is a fresh, independent pass over the full cached table.
type DashboardController struct {
	loader    repository.Loader
	metrics   repository.Metrics
	log       *logger.Logger
	viewCache cache.Service
	bins      int
	precision int
	cacheTTL  time.Duration
}

// NewDashboardController creates the render-pass orchestrator.
func NewDashboardController(
	loader repository.Loader,
	m repository.Metrics,
	log *logger.Logger,
	viewCache cache.Service,
	bins, precision int,
	cacheTTL time.Duration,
) *DashboardController {
	return &DashboardController{
		loader:    loader,
		metrics:   m,
		log:       log,
		viewCache: viewCache,
		bins:      bins,
		precision: precision,
		cacheTTL:  cacheTTL,
	}
}

// Render executes one pass. The only returned error is ErrInvalidRange;
// load failures are reported on the view itself so the page can render them.
func (c *DashboardController) Render(ctx context.Context, req *models.DashboardRequest) (*models.DashboardView, error) {
	start := time.Now()

	table, err := c.loader.Load(ctx)
	if err != nil {
		c.metrics.RecordRenderPass(string(models.StateLoadError))
		c.log.Error("dataset load failed", logger.Error(err))
		return &models.DashboardView{
			State: models.StateLoadError,
			Error: err.Error(),
		}, nil
	}

	rng, err := c.resolveRange(req, table)
	if err != nil {
		return nil, err
	}
	toggles := req.Toggles()

	if view := c.cachedView(ctx, table, rng, toggles); view != nil {
		return view, nil
	}

	subset := Filter(table.Records, rng)

	view := &models.DashboardView{
		State: models.StateReady,
		Meta:  datasetInfo(table, rng, len(subset)),
	}

	if len(subset) == 0 {
		view.State = models.StateEmpty
	}

	m := analytics.Compute(subset)
	view.Metrics = &m
	overlay := analytics.ComposeOverlay(subset, toggles)
	view.Overlay = &overlay
	view.Histograms = analytics.ComposeHistograms(subset, c.bins)
	view.Table = c.formatTable(subset)

	c.storeView(ctx, table, rng, toggles, view)

	c.metrics.RecordRenderPass(string(view.State))
	c.metrics.RecordRenderDuration(time.Since(start).Seconds())
	return view, nil
}

// Meta returns dataset bounds and counts without running a full pass.
func (c *DashboardController) Meta(ctx context.Context) (*models.DatasetInfo, error) {
	table, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	full := models.DateRange{Start: table.Meta.MinDate, End: table.Meta.MaxDate}
	return datasetInfo(table, full, table.Len()), nil
}

// resolveRange defaults missing bounds to the table's own, clamps to them
// and rejects inverted ranges.
func (c *DashboardController) resolveRange(req *models.DashboardRequest, table *models.ForecastTable) (models.DateRange, error) {
	lo, hi, ok := table.Bounds()
	if !ok {
		return models.DateRange{}, nil
	}

	rng := models.DateRange{
		Start: util.ParseDateDefault(req.Start, lo),
		End:   util.ParseDateDefault(req.End, hi),
	}
	rng = rng.Clamp(lo, hi)
	if rng.Start.After(rng.End) {
		return models.DateRange{}, ErrInvalidRange
	}
	return rng, nil
}

func (c *DashboardController) formatTable(subset []models.ForecastRecord) []models.TableRow {
	rows := make([]models.TableRow, 0, len(subset))
	for _, r := range subset {
		rows = append(rows, models.TableRow{
			Date:   util.FormatDate(r.Date),
			Actual: c.formatCell(r.Actual),
			GARCH:  c.formatCell(r.GARCH),
			Hybrid: c.formatCell(r.Hybrid),
		})
	}
	return rows
}

func (c *DashboardController) formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', c.precision, 64)
}

// viewKey ties the cached document to the dataset revision and the pass
// inputs, so a reload or any input change misses cleanly.
func viewKey(table *models.ForecastTable, rng models.DateRange, t models.DisplayToggles) string {
	raw := cache.GenerateKeyWithParams(table.Meta.Fingerprint,
		util.FormatDate(rng.Start), util.FormatDate(rng.End), t.ShowGARCH, t.ShowHybrid)
	return cache.GenerateKey(viewCacheName, cache.HashKey(raw))
}

func (c *DashboardController) cachedView(ctx context.Context, table *models.ForecastTable, rng models.DateRange, t models.DisplayToggles) *models.DashboardView {
	if c.viewCache == nil {
		return nil
	}
	var raw string
	if err := c.viewCache.Get(ctx, viewKey(table, rng, t), &raw); err != nil {
		c.metrics.RecordCacheResult(viewCacheName, "miss")
		return nil
	}
	var view models.DashboardView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil
	}
	c.metrics.RecordCacheResult(viewCacheName, "hit")
	c.metrics.RecordRenderPass(string(view.State))
	return &view
}

func (c *DashboardController) storeView(ctx context.Context, table *models.ForecastTable, rng models.DateRange, t models.DisplayToggles, view *models.DashboardView) {
	if c.viewCache == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.viewCache.Set(ctx, viewKey(table, rng, t), string(raw), c.cacheTTL); err != nil {
		c.log.Warn("view cache store failed", logger.Error(err))
	}
}

func datasetInfo(table *models.ForecastTable, rng models.DateRange, filtered int) *models.DatasetInfo {
	return &models.DatasetInfo{
		Source:      table.Meta.Source,
		Rows:        table.Meta.Rows,
		DroppedRows: table.Meta.DroppedRows,
		MinDate:     util.FormatDate(table.Meta.MinDate),
		MaxDate:     util.FormatDate(table.Meta.MaxDate),
		RangeStart:  util.FormatDate(rng.Start),
		RangeEnd:    util.FormatDate(rng.End),
		FilteredN:   filtered,
	}
}
