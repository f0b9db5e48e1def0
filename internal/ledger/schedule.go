package ledger

import (
	"sort"

	"padaria/internal/models"
)

// ScheduleAt returns the weekly plan that was in effect for the client on the
// given date (YYYY-MM-DD). With an empty history the current schedule
// applies. Otherwise the winner is the snapshot with the latest date not
// after the target; a target date before every snapshot resolves to the
// oldest snapshot, since that plan is the earliest state we know about.
func ScheduleAt(client models.Client, date string) models.WeekSchedule {
	if len(client.ScheduleHistory) == 0 {
		return client.Schedule
	}

	history := make([]models.ScheduleSnapshot, len(client.ScheduleHistory))
	copy(history, client.ScheduleHistory)
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})

	for _, snapshot := range history {
		if snapshot.Date <= date {
			return snapshot.Schedule
		}
	}
	return history[len(history)-1].Schedule
}
