package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/constants"
	"padaria/internal/models"
)

func confirmedSettlement(driverID, confirmedAt string) models.SettlementRecord {
	return models.SettlementRecord{
		ID:          "s-" + confirmedAt,
		DriverID:    driverID,
		Status:      constants.SETTLEMENT_CONFIRMED,
		ConfirmedAt: models.NewNullString(confirmedAt),
	}
}

func TestCalculateSettlementCashOnlyDue(t *testing.T) {
	payments := []models.PaymentRecord{
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Amount: 10, Method: constants.METHOD_CASH, CreatedAt: "2024-04-02T10:00:00Z"},
		{ID: "p2", DriverID: "d1", ClientID: "c2", Date: "2024-04-03", Amount: 5, Method: constants.METHOD_MBWAY, CreatedAt: "2024-04-03T10:00:00Z"},
	}

	calc := CalculateSettlement("d1", "2024-04-01", nil, payments, nil, nil)
	assert.Equal(t, 10.0, calc.CashTotal)
	assert.Equal(t, 5.0, calc.MBWayTotal)
	assert.Equal(t, 15.0, calc.TotalReceived)
	assert.Equal(t, 10.0, calc.TotalToSettle, "only cash is due in hand")
	assert.Equal(t, "2024-04-07", calc.WeekEndDate)
	assert.Len(t, calc.ClientPayments, 2)
}

func TestCalculateSettlementPeriodSinceLastConfirmedClose(t *testing.T) {
	settlements := []models.SettlementRecord{
		confirmedSettlement("d1", "2024-04-03T18:00:00Z"),
		confirmedSettlement("d1", "2024-04-01T18:00:00Z"),
		confirmedSettlement("d2", "2024-04-05T18:00:00Z"), // other driver is irrelevant
	}
	payments := []models.PaymentRecord{
		// Before the latest close: already settled, must never reappear.
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Amount: 40, Method: constants.METHOD_CASH, CreatedAt: "2024-04-02T09:00:00Z"},
		{ID: "p2", DriverID: "d1", ClientID: "c1", Date: "2024-04-03", Amount: 30, Method: constants.METHOD_CASH, CreatedAt: "2024-04-03T18:00:00Z"},
		// After the close; no calendar bound applies.
		{ID: "p3", DriverID: "d1", ClientID: "c1", Date: "2024-04-20", Amount: 25, Method: constants.METHOD_CASH, CreatedAt: "2024-04-20T09:00:00Z"},
	}

	calc := CalculateSettlement("d1", "2024-04-01", nil, payments, nil, settlements)
	assert.Equal(t, "2024-04-03T18:00:00Z", calc.PreviousConfirmedAt)
	assert.Equal(t, 25.0, calc.CashTotal)
	assert.Equal(t, 1, calc.PaymentsCount)
}

func TestCalculateSettlementIgnoresPendingSettlements(t *testing.T) {
	settlements := []models.SettlementRecord{
		{ID: "s1", DriverID: "d1", Status: constants.SETTLEMENT_PENDING},
	}
	payments := []models.PaymentRecord{
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Amount: 12, Method: constants.METHOD_CASH, CreatedAt: "2024-04-02T09:00:00Z"},
	}

	calc := CalculateSettlement("d1", "2024-04-01", nil, payments, nil, settlements)
	assert.Empty(t, calc.PreviousConfirmedAt)
	assert.Equal(t, 12.0, calc.CashTotal)
}

func TestCalculateSettlementIdempotent(t *testing.T) {
	payments := []models.PaymentRecord{
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Amount: 10, Method: constants.METHOD_CASH, CreatedAt: "2024-04-02T10:00:00Z"},
	}
	deliveries := []models.DeliveryRecord{
		{ID: "e1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Status: constants.DELIVERY_DELIVERED, TotalValue: 14, CreatedAt: "2024-04-02T08:00:00Z"},
	}

	first := CalculateSettlement("d1", "2024-04-01", nil, payments, deliveries, nil)
	second := CalculateSettlement("d1", "2024-04-01", nil, payments, deliveries, nil)
	assert.Equal(t, first, second)
}

func TestCalculateSettlementAggregatesDeliveriesAndRoutes(t *testing.T) {
	clients := []models.Client{
		{ID: "c1", Name: "Café Central", RouteID: models.NewNullString("norte")},
		{ID: "c2", Name: "Mercearia Sul", RouteID: models.NewNullString("sul")},
		{ID: "c3", Name: "Quiosque"}, // no route
	}
	payments := []models.PaymentRecord{
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Amount: 10, Method: constants.METHOD_CASH, CreatedAt: "2024-04-02T10:00:00Z"},
		{ID: "p2", DriverID: "d1", ClientID: "c1", Date: "2024-04-03", Amount: 5, Method: constants.METHOD_CASH, CreatedAt: "2024-04-03T10:00:00Z"},
		{ID: "p3", DriverID: "d1", ClientID: "c2", Date: "2024-04-03", Amount: 7, Method: constants.METHOD_TRANSFER, CreatedAt: "2024-04-03T11:00:00Z"},
		{ID: "p4", DriverID: "d1", ClientID: "c3", Date: "2024-04-04", Amount: 3, Method: constants.METHOD_CARD, CreatedAt: "2024-04-04T11:00:00Z"},
	}
	deliveries := []models.DeliveryRecord{
		{ID: "e1", DriverID: "d1", ClientID: "c1", Date: "2024-04-02", Status: constants.DELIVERY_DELIVERED, TotalValue: 20, CreatedAt: "2024-04-02T08:00:00Z"},
		{ID: "e2", DriverID: "d1", ClientID: "c2", Date: "2024-04-03", Status: constants.DELIVERY_NOT_DELIVERED, TotalValue: 99, CreatedAt: "2024-04-03T08:00:00Z"},
	}

	calc := CalculateSettlement("d1", "2024-04-01", clients, payments, deliveries, nil)
	assert.Equal(t, 20.0, calc.TotalDelivered)
	assert.Equal(t, 1, calc.DeliveriesCount)
	assert.Equal(t, 25.0, calc.TotalReceived)
	assert.Equal(t, 15.0, calc.CashTotal)
	assert.Equal(t, 7.0, calc.TransferTotal)
	assert.Equal(t, 3.0, calc.OtherTotal, "card counts as other")

	require.Len(t, calc.RouteTotals, 3)
	byRoute := map[string]models.RouteTotal{}
	for _, rt := range calc.RouteTotals {
		byRoute[rt.RouteID] = rt
	}
	assert.Equal(t, 15.0, byRoute["norte"].Total)
	assert.Equal(t, 1, byRoute["norte"].ClientsPaid, "two payments, one distinct client")
	assert.Equal(t, 7.0, byRoute["sul"].Total)
	assert.Equal(t, 3.0, byRoute[RouteWithoutID].Total)

	require.Len(t, calc.ClientPayments, 4)
	assert.Equal(t, "Café Central", calc.ClientPayments[0].ClientName)
}

// Cancelling the most recent close reopens its period: the next calculation
// reaches back to the close before it.
func TestCalculateSettlementAfterCancellingLatestClose(t *testing.T) {
	older := confirmedSettlement("d1", "2024-04-01T18:00:00Z")
	latest := confirmedSettlement("d1", "2024-04-10T18:00:00Z")
	payments := []models.PaymentRecord{
		{ID: "p1", DriverID: "d1", ClientID: "c1", Date: "2024-04-05", Amount: 30, Method: constants.METHOD_CASH, CreatedAt: "2024-04-05T09:00:00Z"},
		{ID: "p2", DriverID: "d1", ClientID: "c1", Date: "2024-04-12", Amount: 20, Method: constants.METHOD_CASH, CreatedAt: "2024-04-12T09:00:00Z"},
	}

	withBoth := CalculateSettlement("d1", "2024-04-08", nil, payments, nil, []models.SettlementRecord{older, latest})
	assert.Equal(t, 20.0, withBoth.TotalToSettle)

	cancelled := CalculateSettlement("d1", "2024-04-08", nil, payments, nil, []models.SettlementRecord{older})
	assert.Equal(t, 50.0, cancelled.TotalToSettle)
}
