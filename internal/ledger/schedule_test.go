package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/models"
)

func mondayOnlySchedule(productID string, quantity int) models.WeekSchedule {
	return models.WeekSchedule{
		"monday": {{ProductID: productID, Quantity: quantity}},
	}
}

func TestScheduleAtEmptyHistoryUsesCurrentSchedule(t *testing.T) {
	client := models.Client{Schedule: mondayOnlySchedule("pao", 3)}

	schedule := ScheduleAt(client, "2024-05-10")

	require.Len(t, schedule["monday"], 1)
	assert.Equal(t, 3, schedule["monday"][0].Quantity)
}

func TestScheduleAtPicksLatestSnapshotNotAfterTarget(t *testing.T) {
	client := models.Client{
		Schedule: mondayOnlySchedule("pao", 9),
		ScheduleHistory: []models.ScheduleSnapshot{
			{Date: "2024-01-01", Schedule: mondayOnlySchedule("pao", 1)},
			{Date: "2024-03-01", Schedule: mondayOnlySchedule("pao", 2)},
			{Date: "2024-06-01", Schedule: mondayOnlySchedule("pao", 3)},
		},
	}

	assert.Equal(t, 2, ScheduleAt(client, "2024-04-15")["monday"][0].Quantity)
	assert.Equal(t, 2, ScheduleAt(client, "2024-03-01")["monday"][0].Quantity, "snapshot applies from its own date")
}

func TestScheduleAtBeforeAllSnapshotsReturnsOldest(t *testing.T) {
	client := models.Client{
		ScheduleHistory: []models.ScheduleSnapshot{
			{Date: "2024-03-01", Schedule: mondayOnlySchedule("pao", 2)},
			{Date: "2024-01-01", Schedule: mondayOnlySchedule("pao", 1)},
		},
	}

	assert.Equal(t, 1, ScheduleAt(client, "2023-11-20")["monday"][0].Quantity)
}

func TestScheduleAtAfterAllSnapshotsReturnsMostRecent(t *testing.T) {
	client := models.Client{
		ScheduleHistory: []models.ScheduleSnapshot{
			{Date: "2024-01-01", Schedule: mondayOnlySchedule("pao", 1)},
			{Date: "2024-03-01", Schedule: mondayOnlySchedule("pao", 2)},
		},
	}

	assert.Equal(t, 2, ScheduleAt(client, "2025-01-01")["monday"][0].Quantity)
}
