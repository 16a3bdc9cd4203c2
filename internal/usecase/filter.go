package usecase

import "VolPulse/internal/domain/models"

// Filter selects the records whose date falls inside the range, both ends
// inclusive, preserving source order. An empty result is a valid, common
// state and never an error. Idempotent: filtering a filtered subset by the
// same range returns the same records.
func Filter(records []models.ForecastRecord, r models.DateRange) []models.ForecastRecord {
	out := make([]models.ForecastRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}
