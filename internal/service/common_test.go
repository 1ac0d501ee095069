package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "construction-scheduler-backend/internal/errors"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		value := "2026-03-02"
		got, err := parseDate("planned_start", &value)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("nil and empty are nil dates", func(t *testing.T) {
		got, err := parseDate("planned_start", nil)
		require.NoError(t, err)
		assert.Nil(t, got)

		empty := ""
		got, err = parseDate("planned_start", &empty)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("bad format is a validation error", func(t *testing.T) {
		value := "02/03/2026"
		_, err := parseDate("planned_start", &value)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	got := formatDate(&d)
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-02", *got)

	assert.Nil(t, formatDate(nil))
	assert.Equal(t, "2026-03-02", formatDateValue(&d))
	assert.Equal(t, "", formatDateValue(nil))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "5", formatFloat(5))
	assert.Equal(t, "2.5", formatFloat(2.5))
	assert.Equal(t, "0", formatFloat(0))
}
