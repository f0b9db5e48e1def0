package ledger

import (
	"sort"
	"time"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// SettlementCalculation is what a driver owes the business since the last
// confirmed close. Only cash is due in hand; MBWay, transfers and card
// payments land in the business account directly and are reported but not
// collected.
type SettlementCalculation struct {
	DriverID      string `json:"driver_id"`
	WeekStartDate string `json:"week_start_date"`
	WeekEndDate   string `json:"week_end_date"`

	// PreviousConfirmedAt is the close that opened this period; empty when
	// the period fell back to calendar bounds.
	PreviousConfirmedAt string `json:"previous_confirmed_at,omitempty"`

	TotalDelivered float64                `json:"total_delivered"`
	TotalReceived  float64                `json:"total_received"`
	CashTotal      float64                `json:"cash_total"`
	MBWayTotal     float64                `json:"mbway_total"`
	TransferTotal  float64                `json:"transfer_total"`
	OtherTotal     float64                `json:"other_total"`
	TotalToSettle  float64                `json:"total_to_settle"`
	RouteTotals    []models.RouteTotal    `json:"route_totals"`
	ClientPayments []models.ClientPayment `json:"client_payments"`

	PaymentsCount   int `json:"payments_count"`
	DeliveriesCount int `json:"deliveries_count"`
}

// RouteWithoutID groups payments of clients that have no route assigned.
const RouteWithoutID = "sem_rota"

// LatestConfirmedSettlement returns the driver's most recently confirmed
// settlement, ordering by ConfirmedAt. Timestamps are RFC3339 from a single
// server clock, so lexical order is chronological order.
func LatestConfirmedSettlement(settlements []models.SettlementRecord, driverID string) (models.SettlementRecord, bool) {
	var latest models.SettlementRecord
	found := false
	for _, s := range settlements {
		if s.DriverID != driverID || s.Status != constants.SETTLEMENT_CONFIRMED || !s.ConfirmedAt.Valid {
			continue
		}
		if !found || s.ConfirmedAt.String > latest.ConfirmedAt.String {
			latest = s
			found = true
		}
	}
	return latest, found
}

// CalculateSettlement computes the cash due from a driver. The period is
// delimited by confirmation time, not by calendar weeks: everything recorded
// after the driver's last confirmed close contributes. Only when no close
// exists yet does the calculation fall back to the calendar week starting at
// weekStart (YYYY-MM-DD). Re-running with unchanged inputs yields identical
// totals.
func CalculateSettlement(driverID, weekStart string, clients []models.Client, payments []models.PaymentRecord, deliveries []models.DeliveryRecord, settlements []models.SettlementRecord) SettlementCalculation {
	calc := SettlementCalculation{
		DriverID:       driverID,
		WeekStartDate:  weekStart,
		WeekEndDate:    weekStart,
		RouteTotals:    []models.RouteTotal{},
		ClientPayments: []models.ClientPayment{},
	}
	if start, err := time.Parse(constants.DATE_LAYOUT, weekStart); err == nil {
		calc.WeekEndDate = start.AddDate(0, 0, 6).Format(constants.DATE_LAYOUT)
	}

	previous, hasPrevious := LatestConfirmedSettlement(settlements, driverID)
	if hasPrevious {
		calc.PreviousConfirmedAt = previous.ConfirmedAt.String
	}

	inPeriodPayment := func(p models.PaymentRecord) bool {
		if p.DriverID != driverID {
			return false
		}
		if hasPrevious {
			return p.CreatedAt > previous.ConfirmedAt.String
		}
		return p.Date >= calc.WeekStartDate && p.Date <= calc.WeekEndDate
	}
	inPeriodDelivery := func(d models.DeliveryRecord) bool {
		if d.DriverID != driverID || d.Status != constants.DELIVERY_DELIVERED {
			return false
		}
		if hasPrevious {
			return d.SettlementCutoff() > previous.ConfirmedAt.String
		}
		return d.Date >= calc.WeekStartDate && d.Date <= calc.WeekEndDate
	}

	clientsByID := make(map[string]models.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	for _, d := range deliveries {
		if !inPeriodDelivery(d) {
			continue
		}
		calc.TotalDelivered += d.TotalValue
		calc.DeliveriesCount++
	}

	routeTotals := make(map[string]*models.RouteTotal)
	routeClients := make(map[string]map[string]bool)
	for _, p := range payments {
		if !inPeriodPayment(p) {
			continue
		}

		calc.TotalReceived += p.Amount
		calc.PaymentsCount++
		switch p.Method {
		case constants.METHOD_CASH:
			calc.CashTotal += p.Amount
		case constants.METHOD_MBWAY:
			calc.MBWayTotal += p.Amount
		case constants.METHOD_TRANSFER:
			calc.TransferTotal += p.Amount
		default:
			calc.OtherTotal += p.Amount
		}

		client := clientsByID[p.ClientID]
		routeID := RouteWithoutID
		if client.RouteID.Valid {
			routeID = client.RouteID.String
		}
		total, ok := routeTotals[routeID]
		if !ok {
			total = &models.RouteTotal{RouteID: routeID}
			routeTotals[routeID] = total
			routeClients[routeID] = make(map[string]bool)
		}
		total.Total += p.Amount
		routeClients[routeID][p.ClientID] = true

		clientName := p.ClientID
		if client.Name != "" {
			clientName = client.Name
		}
		calc.ClientPayments = append(calc.ClientPayments, models.ClientPayment{
			ClientID:   p.ClientID,
			ClientName: clientName,
			Date:       p.Date,
			Amount:     p.Amount,
			Method:     p.Method,
		})
	}

	for routeID, total := range routeTotals {
		total.ClientsPaid = len(routeClients[routeID])
		calc.RouteTotals = append(calc.RouteTotals, *total)
	}
	sort.Slice(calc.RouteTotals, func(i, j int) bool { return calc.RouteTotals[i].RouteID < calc.RouteTotals[j].RouteID })
	sort.Slice(calc.ClientPayments, func(i, j int) bool {
		if calc.ClientPayments[i].Date != calc.ClientPayments[j].Date {
			return calc.ClientPayments[i].Date < calc.ClientPayments[j].Date
		}
		return calc.ClientPayments[i].ClientID < calc.ClientPayments[j].ClientID
	})

	calc.TotalToSettle = calc.CashTotal
	return calc
}
