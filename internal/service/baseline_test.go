package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-scheduler-backend/internal/database/models"
)

func TestComputeEarnedValue(t *testing.T) {
	t.Run("mixed progress", func(t *testing.T) {
		tasks := []models.Task{
			{OriginalDuration: 5, PercentComplete: 100, BudgetedCost: 1000, ActualCost: 1200},
			{OriginalDuration: 10, PercentComplete: 50, BudgetedCost: 2000, ActualCost: 900},
			{OriginalDuration: 3, PercentComplete: 0, BudgetedCost: 500, ActualCost: 0},
		}

		evm := ComputeEarnedValue(tasks)
		assert.Equal(t, 3500.0, evm.BCWS)
		assert.Equal(t, 2000.0, evm.BCWP) // 1000 + 1000 + 0
		assert.Equal(t, 2100.0, evm.ACWP)
		assert.InDelta(t, 2000.0/3500.0, evm.SPI, 1e-9)
		assert.InDelta(t, 2000.0/2100.0, evm.CPI, 1e-9)
	})

	t.Run("no budget yields zero indices", func(t *testing.T) {
		evm := ComputeEarnedValue([]models.Task{{PercentComplete: 50}})
		assert.Zero(t, evm.SPI)
		assert.Zero(t, evm.CPI)
	})

	t.Run("empty task set", func(t *testing.T) {
		evm := ComputeEarnedValue(nil)
		assert.Zero(t, evm.BCWS)
		assert.Zero(t, evm.BCWP)
		assert.Zero(t, evm.ACWP)
	})
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 0.5, safeRatio(1, 2))
	assert.Equal(t, 0.0, safeRatio(1, 0))
	assert.Equal(t, 0.0, safeRatio(0, 0))
}

func TestFirstDate(t *testing.T) {
	early := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	planned := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("prefers the first non-nil date", func(t *testing.T) {
		got := firstDate(&early, &planned)
		require.NotNil(t, got)
		assert.Equal(t, early, *got)
	})

	t.Run("falls through nil entries", func(t *testing.T) {
		got := firstDate(nil, &planned)
		require.NotNil(t, got)
		assert.Equal(t, planned, *got)
	})

	t.Run("all nil", func(t *testing.T) {
		assert.Nil(t, firstDate(nil, nil))
	})
}

func TestCalendarDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, calendarDaysBetween(&base, &later))
	assert.Equal(t, -7, calendarDaysBetween(&later, &base))
	assert.Equal(t, 0, calendarDaysBetween(&base, &base))
	assert.Equal(t, 0, calendarDaysBetween(nil, &later))
	assert.Equal(t, 0, calendarDaysBetween(&base, nil))
}
