package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// DebtResult is what a client owes over a period, with one human-readable
// detail line per billed day (or per delivery, for dynamic clients).
type DebtResult struct {
	Total     float64  `json:"total"`
	DaysCount int      `json:"days_count"`
	Details   []string `json:"details"`
}

// DebtForPeriod computes the client's debt between fromDate and toDate
// inclusive (YYYY-MM-DD).
//
// Dynamic clients are billed from realized deliveries: every delivery after
// the client's paid-through date that was not marked undelivered counts,
// regardless of the requested range. Scheduled clients are billed day by day
// from the plan in effect on each date, honoring skip dates and per-client
// price overrides. Missing or malformed inputs yield a zero result, never an
// error.
func DebtForPeriod(client models.Client, products map[string]models.Product, deliveries []models.DeliveryRecord, fromDate, toDate string) DebtResult {
	if client.IsDynamicChoice {
		return dynamicDebt(client, products, deliveries)
	}
	return scheduledDebt(client, products, fromDate, toDate)
}

// dynamicDebt sums delivered value since the client's last payment. The
// delivery log, not the plan, is the source of truth here.
func dynamicDebt(client models.Client, products map[string]models.Product, deliveries []models.DeliveryRecord) DebtResult {
	var result DebtResult

	billable := make([]models.DeliveryRecord, 0, len(deliveries))
	for _, d := range deliveries {
		if d.ClientID != client.ID {
			continue
		}
		if d.Status == constants.DELIVERY_NOT_DELIVERED {
			continue
		}
		if client.LastPaymentDate.Valid && d.Date <= client.LastPaymentDate.String {
			continue
		}
		billable = append(billable, d)
	}
	sort.Slice(billable, func(i, j int) bool { return billable[i].Date < billable[j].Date })

	for _, d := range billable {
		result.Total += d.TotalValue
		result.DaysCount++
		result.Details = append(result.Details, fmt.Sprintf("%s: €%.2f (%s)", d.Date, d.TotalValue, describeDeliveryItems(d.Items, products)))
	}
	return result
}

// scheduledDebt walks the calendar from fromDate to toDate, capped at
// MAX_DEBT_PERIOD_DAYS iterations to contain misconfigured ranges.
func scheduledDebt(client models.Client, products map[string]models.Product, fromDate, toDate string) DebtResult {
	var result DebtResult

	from, err := time.Parse(constants.DATE_LAYOUT, fromDate)
	if err != nil {
		return result
	}
	to, err := time.Parse(constants.DATE_LAYOUT, toDate)
	if err != nil {
		return result
	}

	for day, i := from, 0; !day.After(to) && i < constants.MAX_DEBT_PERIOD_DAYS; day, i = day.AddDate(0, 0, 1), i+1 {
		date := day.Format(constants.DATE_LAYOUT)
		if client.IsDateSkipped(date) {
			continue
		}

		schedule := ScheduleAt(client, date)
		items := schedule[constants.WeekdayKeys[day.Weekday()]]

		var dayValue float64
		for _, item := range items {
			product, ok := products[item.ProductID]
			if !ok {
				// The product was removed from the catalog after being
				// scheduled; it no longer bills anything.
				continue
			}
			dayValue += float64(item.Quantity) * client.EffectivePrice(product)
		}

		if dayValue > 0 {
			result.Total += dayValue
			result.DaysCount++
			result.Details = append(result.Details, fmt.Sprintf("%s (%s): €%.2f", date, constants.WeekdayDisplayMap[constants.WeekdayKeys[day.Weekday()]], dayValue))
		}
	}
	return result
}

func describeDeliveryItems(items []models.DeliveryItem, products map[string]models.Product) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		name := item.ProductID
		if product, ok := products[item.ProductID]; ok {
			name = product.Name
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, name))
	}
	return strings.Join(parts, ", ")
}
