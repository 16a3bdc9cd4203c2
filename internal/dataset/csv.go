package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/util"
)

// Required columns of the forecast results file.
const (
	ColDate   = "Date"
	ColActual = "Actual_Volatility"
	ColGARCH  = "GARCH_Volatility"
	ColHybrid = "Predicted_Volatility"
)

// CSVSource reads the forecast results CSV produced by the upstream model
// run. Rows with unparsable dates are dropped and counted; non-numeric
// volatility cells become NaN and are excluded pairwise from metrics.
type CSVSource struct {
	path       string
	dateColumn string
}

// NewCSVSource creates a CSV-backed table source.
func NewCSVSource(path, dateColumn string) *CSVSource {
	if dateColumn == "" {
		dateColumn = ColDate
	}
	return &CSVSource{path: path, dateColumn: dateColumn}
}

// Identity names the source for cache keys and logs.
func (s *CSVSource) Identity() string {
	return "csv:" + s.path
}

// Fingerprint is mtime+size; it changes whenever the file is rewritten.
func (s *CSVSource) Fingerprint(_ context.Context) (string, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataNotFound, err)
	}
	return fmt.Sprintf("%d-%d", fi.ModTime().UnixNano(), fi.Size()), nil
}

// Read parses the whole file into a ForecastTable.
func (s *CSVSource) Read(ctx context.Context) (*models.ForecastTable, error) {
	fp, err := s.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataNotFound, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	idx := make(map[string]int, 4)
	for _, name := range []string{s.dateColumn, ColActual, ColGARCH, ColHybrid} {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSchema, name)
		}
		idx[name] = i
	}

	table := &models.ForecastTable{
		Meta: models.DatasetMeta{
			Source:      s.Identity(),
			Fingerprint: fp,
			LoadedAt:    time.Now().UTC(),
		},
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataNotFound, err)
		}

		date, ok := util.ParseDate(field(row, idx[s.dateColumn]))
		if !ok {
			table.Meta.DroppedRows++
			continue
		}

		rec := models.ForecastRecord{
			Date:   date,
			Actual: parseFloat(field(row, idx[ColActual])),
			GARCH:  parseFloat(field(row, idx[ColGARCH])),
			Hybrid: parseFloat(field(row, idx[ColHybrid])),
		}
		table.Records = append(table.Records, rec)

		if table.Meta.MinDate.IsZero() || date.Before(table.Meta.MinDate) {
			table.Meta.MinDate = date
		}
		if date.After(table.Meta.MaxDate) {
			table.Meta.MaxDate = date
		}
	}

	table.Meta.Rows = len(table.Records)
	return table, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
