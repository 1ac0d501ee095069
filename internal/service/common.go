package service

import (
	"fmt"
	"strconv"
	"time"

	apperrors "construction-scheduler-backend/internal/errors"
)

// dateLayout is the wire format for all schedule dates. Times of day never
// cross the API; the calendar resolves working hours.
const dateLayout = "2006-01-02"

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, fmt.Sprintf("must be a date in %s format", dateLayout))
	}
	t = t.UTC()
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatDateValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
