package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/util"
)

// ClickHouseSource reads the same four forecast columns from a ClickHouse
// table. Dates are typed in the store, so nothing gets dropped here; NULL
// volatility cells become NaN like unparsable CSV cells.
type ClickHouseSource struct {
	db    *sql.DB
	table string
}

// NewClickHouseSource creates a ClickHouse-backed table source.
func NewClickHouseSource(db *sql.DB, table string) *ClickHouseSource {
	return &ClickHouseSource{db: db, table: table}
}

// Identity names the source for cache keys and logs.
func (s *ClickHouseSource) Identity() string {
	return "clickhouse:" + s.table
}

// Fingerprint is row count plus max date; good enough to detect appends and
// reloads of an upstream results table.
func (s *ClickHouseSource) Fingerprint(ctx context.Context) (string, error) {
	q := fmt.Sprintf("SELECT count(), max(%s) FROM %s", ColDate, s.table)
	var n uint64
	var maxDate time.Time
	if err := s.db.QueryRowContext(ctx, q).Scan(&n, &maxDate); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataNotFound, err)
	}
	return fmt.Sprintf("%d-%d", n, maxDate.Unix()), nil
}

// Read selects the full table in stored order.
func (s *ClickHouseSource) Read(ctx context.Context) (*models.ForecastTable, error) {
	fp, err := s.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join([]string{ColDate, ColActual, ColGARCH, ColHybrid}, ", "), s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if isUnknownColumn(err) {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDataNotFound, err)
	}
	defer rows.Close()

	table := &models.ForecastTable{
		Meta: models.DatasetMeta{
			Source:      s.Identity(),
			Fingerprint: fp,
			LoadedAt:    time.Now().UTC(),
		},
	}

	for rows.Next() {
		var date time.Time
		var actual, garch, hybrid sql.NullFloat64
		if err := rows.Scan(&date, &actual, &garch, &hybrid); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataNotFound, err)
		}

		d := util.CivilDate(date)
		table.Records = append(table.Records, models.ForecastRecord{
			Date:   d,
			Actual: nullToNaN(actual),
			GARCH:  nullToNaN(garch),
			Hybrid: nullToNaN(hybrid),
		})

		if table.Meta.MinDate.IsZero() || d.Before(table.Meta.MinDate) {
			table.Meta.MinDate = d
		}
		if d.After(table.Meta.MaxDate) {
			table.Meta.MaxDate = d
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataNotFound, err)
	}

	table.Meta.Rows = len(table.Records)
	return table, nil
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func isUnknownColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown identifier") ||
		strings.Contains(msg, "missing columns") ||
		strings.Contains(msg, "no such column")
}
