package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"VolPulse/pkg/cache"
	"VolPulse/pkg/logger"
)

const sampleCSV = `Date,Actual_Volatility,GARCH_Volatility,Predicted_Volatility
2024-01-01,0.10,0.12,0.11
2024-01-02,0.20,0.18,0.19
not-a-date,0.30,0.30,0.30
2024-01-03,,0.25,abc
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forecast.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCSVReadDropsAndNaNs(t *testing.T) {
	src := NewCSVSource(writeCSV(t, sampleCSV), "")

	table, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Meta.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Meta.Rows)
	}
	if table.Meta.DroppedRows != 1 {
		t.Fatalf("expected 1 dropped row, got %d", table.Meta.DroppedRows)
	}

	last := table.Records[2]
	if !math.IsNaN(last.Actual) || !math.IsNaN(last.Hybrid) {
		t.Fatalf("expected NaN for empty and non-numeric cells, got %v %v", last.Actual, last.Hybrid)
	}
	if last.GARCH != 0.25 {
		t.Fatalf("expected 0.25, got %v", last.GARCH)
	}

	if table.Meta.MinDate.Format("2006-01-02") != "2024-01-01" ||
		table.Meta.MaxDate.Format("2006-01-02") != "2024-01-03" {
		t.Fatalf("unexpected bounds %v..%v", table.Meta.MinDate, table.Meta.MaxDate)
	}
}

func TestCSVReadMissingColumn(t *testing.T) {
	src := NewCSVSource(writeCSV(t, "Date,Actual_Volatility\n2024-01-01,0.1\n"), "")

	_, err := src.Read(context.Background())
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestCSVReadMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), "")

	_, err := src.Read(context.Background())
	if !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("expected ErrDataNotFound, got %v", err)
	}
	if _, err := src.Fingerprint(context.Background()); !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("expected ErrDataNotFound from fingerprint, got %v", err)
	}
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) RecordDatasetLoad(string, string)   {}
func (m *countingMetrics) RecordDatasetRows(string, int, int) {}
func (m *countingMetrics) RecordRenderPass(string)            {}
func (m *countingMetrics) RecordRenderDuration(float64)       {}
func (m *countingMetrics) RecordCacheResult(_, result string) {
	if result == "hit" {
		m.hits++
	} else {
		m.misses++
	}
}

func newTestLoader(t *testing.T, path string) (*CachedLoader, *countingMetrics) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	m := &countingMetrics{}
	c := cache.NewMemoryCache(cache.WithMemoryMaxSize(4))
	t.Cleanup(func() { c.Close() })
	return NewCachedLoader(NewCSVSource(path, ""), c, m, log, 0), m
}

func TestLoaderCachesByFingerprint(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	loader, m := newTestLoader(t, path)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached table object on reload")
	}
	if m.hits != 1 || m.misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", m.hits, m.misses)
	}
}

func TestLoaderReloadsOnChange(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	loader, _ := newTestLoader(t, path)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// appending changes the file size, so the fingerprint moves
	if err := os.WriteFile(path, []byte(sampleCSV+"2024-01-04,0.4,0.4,0.4\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	second, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if second.Meta.Rows != first.Meta.Rows+1 {
		t.Fatalf("expected re-read after rewrite, got %d rows", second.Meta.Rows)
	}
}

func TestLoaderInvalidate(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	loader, m := newTestLoader(t, path)
	ctx := context.Background()

	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := loader.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.hits != 0 || m.misses != 2 {
		t.Fatalf("expected 2 misses after invalidate, got %d/%d", m.hits, m.misses)
	}
}
