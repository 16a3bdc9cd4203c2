package models

// DashboardState is the outcome of one render pass.
type DashboardState string

const (
	StateLoading   DashboardState = "loading"
	StateReady     DashboardState = "ready"
	StateEmpty     DashboardState = "empty"
	StateLoadError DashboardState = "load_error"
)

// MetricsSummary compares the two forecast models over the selected range.
// RMSE is pairwise-complete per model, so each model carries its own has
// flag: HasGarch/HasHybrid are false when that model had no complete pair,
// and its RMSE field is then a placeholder zero, not a measurement. When
// HasData is false everything is zeroed and the page shows placeholders.
type MetricsSummary struct {
	HasData        bool    `json:"has_data"`
	HasGarch       bool    `json:"has_garch"`
	HasHybrid      bool    `json:"has_hybrid"`
	RMSEGarch      float64 `json:"rmse_garch"`
	RMSEHybrid     float64 `json:"rmse_hybrid"`
	ImprovementPct float64 `json:"improvement_pct"`
}

// SeriesPoint is one plotted value. Date is wire-formatted; NaN values never
// appear here, they are skipped at composition time.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is one named line of the overlay chart.
type Series struct {
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

// OverlaySpec is the time-series overlay chart document.
type OverlaySpec struct {
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
}

// HistogramSpec is one residual distribution. BinEdges has len(Counts)+1
// strictly increasing entries; a no-data spec carries neither.
type HistogramSpec struct {
	Model    string    `json:"model"`
	HasData  bool      `json:"has_data"`
	BinEdges []float64 `json:"bin_edges,omitempty"`
	Counts   []int     `json:"counts,omitempty"`
}

// TableRow is one pre-formatted row of the data table. Cells are fixed
// precision strings; missing values render empty.
type TableRow struct {
	Date   string `json:"date"`
	Actual string `json:"actual"`
	GARCH  string `json:"garch"`
	Hybrid string `json:"hybrid"`
}

// DatasetInfo reports dataset bounds and counts alongside the resolved range.
type DatasetInfo struct {
	Source      string `json:"source"`
	Rows        int    `json:"rows"`
	DroppedRows int    `json:"dropped_rows"`
	MinDate     string `json:"min_date"`
	MaxDate     string `json:"max_date"`
	RangeStart  string `json:"range_start,omitempty"`
	RangeEnd    string `json:"range_end,omitempty"`
	FilteredN   int    `json:"filtered_n"`
}

// DashboardView is the complete response of one render pass. On load_error
// only State and Error are set.
type DashboardView struct {
	State      DashboardState  `json:"state"`
	Error      string          `json:"error,omitempty"`
	Meta       *DatasetInfo    `json:"meta,omitempty"`
	Metrics    *MetricsSummary `json:"metrics,omitempty"`
	Overlay    *OverlaySpec    `json:"overlay,omitempty"`
	Histograms []HistogramSpec `json:"histograms,omitempty"`
	Table      []TableRow      `json:"table,omitempty"`
}
