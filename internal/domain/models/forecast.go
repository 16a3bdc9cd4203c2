package models

import (
	"math"
	"time"
)

// ForecastRecord is one daily observation of realized volatility next to the
// two model forecasts for the same date. A missing or non-numeric value is
// NaN; the Has* accessors are the only sanctioned presence checks.
type ForecastRecord struct {
	Date   time.Time
	Actual float64
	GARCH  float64
	Hybrid float64
}

func (r ForecastRecord) HasActual() bool { return !math.IsNaN(r.Actual) }
func (r ForecastRecord) HasGARCH() bool  { return !math.IsNaN(r.GARCH) }
func (r ForecastRecord) HasHybrid() bool { return !math.IsNaN(r.Hybrid) }

// DatasetMeta describes one loaded revision of the forecast table.
type DatasetMeta struct {
	Source      string
	Fingerprint string
	Rows        int
	DroppedRows int
	MinDate     time.Time
	MaxDate     time.Time
	LoadedAt    time.Time
}

// ForecastTable is the fully parsed dataset plus its load metadata. Records
// keep source order.
type ForecastTable struct {
	Records []ForecastRecord
	Meta    DatasetMeta
}

func (t *ForecastTable) Len() int { return len(t.Records) }

// Bounds returns the min and max record dates. ok is false for an empty table.
func (t *ForecastTable) Bounds() (lo, hi time.Time, ok bool) {
	if len(t.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Meta.MinDate, t.Meta.MaxDate, true
}

// DateRange is an inclusive calendar date interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range, both ends inclusive.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Clamp narrows the range to [lo, hi] without reordering it.
func (r DateRange) Clamp(lo, hi time.Time) DateRange {
	out := r
	if out.Start.Before(lo) {
		out.Start = lo
	}
	if out.End.After(hi) {
		out.End = hi
	}
	return out
}

// DisplayToggles selects which forecast lines the overlay draws. The actual
// series is never toggled off.
type DisplayToggles struct {
	ShowGARCH  bool
	ShowHybrid bool
}
