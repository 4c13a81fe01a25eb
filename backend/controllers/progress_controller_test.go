package controllers

import (
	"testing"

	"aicademy/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestStatsFromRecords(t *testing.T) {
	records := []models.ProgressRecord{
		{Score: 60, Completed: true, Attempts: 2},
		{Score: 80, Completed: true, Attempts: 1},
		{Score: 100, Completed: true, Attempts: 4},
	}

	stats := StatsFromRecords(records)
	assert.Equal(t, 3, stats["completed"])
	// Среднее по лучшим баллам, без веса по попыткам.
	assert.Equal(t, 80, stats["avgScore"])
	assert.Equal(t, 3, stats["totalAttempts"])
}

func TestStatsFromRecordsEmpty(t *testing.T) {
	stats := StatsFromRecords(nil)
	assert.Equal(t, 0, stats["completed"])
	assert.Equal(t, 0, stats["avgScore"])
	assert.Equal(t, 0, stats["totalAttempts"])
}

func TestStatsFromRecordsRoundsMean(t *testing.T) {
	records := []models.ProgressRecord{
		{Score: 50, Completed: true},
		{Score: 55, Completed: false},
	}

	stats := StatsFromRecords(records)
	assert.Equal(t, 1, stats["completed"])
	assert.Equal(t, 53, stats["avgScore"]) // round(52.5)
	assert.Equal(t, 2, stats["totalAttempts"])
}
