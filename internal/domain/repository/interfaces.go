package repository

import (
	"context"

	"VolPulse/internal/domain/models"
)

// TableSource produces a ForecastTable from some backing store (CSV file,
// ClickHouse table). Identity names the source for cache keys and logs;
// Fingerprint changes whenever the underlying data is known to have changed.
type TableSource interface {
	Identity() string
	Fingerprint(ctx context.Context) (string, error)
	Read(ctx context.Context) (*models.ForecastTable, error)
}

// Loader hands out the cached ForecastTable for the configured source.
type Loader interface {
	Load(ctx context.Context) (*models.ForecastTable, error)
	Invalidate(ctx context.Context) error
}

// Metrics records operational counters for the dashboard.
type Metrics interface {
	RecordDatasetLoad(source, status string)
	RecordDatasetRows(source string, rows, dropped int)
	RecordRenderPass(state string)
	RecordRenderDuration(seconds float64)
	RecordCacheResult(cache, result string)
}
