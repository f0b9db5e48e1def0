package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/constants"
	"padaria/internal/models"
	"padaria/internal/utils"
)

func testProducts() map[string]models.Product {
	return map[string]models.Product{
		"pao":  {ID: "pao", Name: "Pão", Price: 1.00, Unit: "un"},
		"bola": {ID: "bola", Name: "Bola de Berlim", Price: 1.50, Unit: "un"},
	}
}

// Two Mondays in the range (01-01 and 01-08); skipping the second one must
// remove exactly its value.
func TestScheduledDebtTwoWeekPeriod(t *testing.T) {
	client := models.Client{
		ID:       "c1",
		Schedule: mondayOnlySchedule("pao", 2), // 2 units @ €1
	}

	result := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-14")
	assert.Equal(t, 4.0, result.Total)
	assert.Equal(t, 2, result.DaysCount)

	client.SkippedDates = []string{"2024-01-08"}
	result = DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-14")
	assert.Equal(t, 2.0, result.Total)
	assert.Equal(t, 1, result.DaysCount)
	require.Len(t, result.Details, 1)
	assert.Contains(t, result.Details[0], "2024-01-01")
}

// Alternate date forms are normalized at the API boundary; after
// normalization they must bill exactly like the canonical form.
func TestScheduledDebtAfterDateNormalization(t *testing.T) {
	client := models.Client{ID: "c1", Schedule: mondayOnlySchedule("pao", 2)}

	from, err := utils.NormalizeDate("01/01/2024")
	require.NoError(t, err)
	to, err := utils.NormalizeDate("01-01-2024")
	require.NoError(t, err)

	canonical := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-01")
	normalized := DebtForPeriod(client, testProducts(), nil, from, to)
	assert.Equal(t, 2.0, canonical.Total)
	assert.Equal(t, canonical, normalized)
}

func TestScheduledDebtNoItemsOnWeekdayContributesZero(t *testing.T) {
	client := models.Client{ID: "c1", Schedule: mondayOnlySchedule("pao", 2)}

	// 2024-01-03 is a Wednesday with nothing planned.
	result := DebtForPeriod(client, testProducts(), nil, "2024-01-03", "2024-01-03")
	assert.Zero(t, result.Total)
	assert.Zero(t, result.DaysCount)
	assert.Empty(t, result.Details)
}

func TestScheduledDebtUsesCustomPrices(t *testing.T) {
	client := models.Client{
		ID:           "c1",
		Schedule:     mondayOnlySchedule("pao", 2),
		CustomPrices: map[string]float64{"pao": 0.80},
	}

	result := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-01")
	assert.InDelta(t, 1.60, result.Total, 1e-9)
}

func TestScheduledDebtDanglingProductBillsNothing(t *testing.T) {
	client := models.Client{
		ID: "c1",
		Schedule: models.WeekSchedule{
			"monday": {
				{ProductID: "descontinuado", Quantity: 5},
				{ProductID: "pao", Quantity: 1},
			},
		},
	}

	result := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-01")
	assert.Equal(t, 1.0, result.Total)
}

func TestScheduledDebtHonorsScheduleHistory(t *testing.T) {
	client := models.Client{
		ID: "c1",
		ScheduleHistory: []models.ScheduleSnapshot{
			{Date: "2023-01-01", Schedule: mondayOnlySchedule("pao", 1)},
			{Date: "2024-01-05", Schedule: mondayOnlySchedule("pao", 4)},
		},
	}

	// First Monday bills under the old plan, second under the new one.
	result := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2024-01-14")
	assert.Equal(t, 5.0, result.Total)
	assert.Equal(t, 2, result.DaysCount)
}

func TestScheduledDebtCapsIterationAtOneYear(t *testing.T) {
	client := models.Client{ID: "c1", Schedule: mondayOnlySchedule("pao", 1)}

	// A ten-year range must be contained by the safety cap: at most 365
	// calendar days are walked, so at most 53 Mondays can bill.
	result := DebtForPeriod(client, testProducts(), nil, "2024-01-01", "2034-01-01")
	assert.LessOrEqual(t, result.DaysCount, 53)
	assert.Greater(t, result.DaysCount, 0)
}

func TestScheduledDebtInvertedRangeIsZero(t *testing.T) {
	client := models.Client{ID: "c1", Schedule: mondayOnlySchedule("pao", 1)}

	result := DebtForPeriod(client, testProducts(), nil, "2024-02-01", "2024-01-01")
	assert.Zero(t, result.Total)
	assert.Zero(t, result.DaysCount)
}

func TestDynamicDebtSumsDeliveredSinceLastPayment(t *testing.T) {
	client := models.Client{
		ID:              "c9",
		IsDynamicChoice: true,
		LastPaymentDate: models.NewNullString("2024-02-10"),
	}
	deliveries := []models.DeliveryRecord{
		{ClientID: "c9", Date: "2024-02-10", Status: constants.DELIVERY_DELIVERED, TotalValue: 7.00}, // paid through
		{ClientID: "c9", Date: "2024-02-12", Status: constants.DELIVERY_DELIVERED, TotalValue: 3.50,
			Items: []models.DeliveryItem{{ProductID: "bola", Quantity: 2}}},
		{ClientID: "c9", Date: "2024-02-13", Status: constants.DELIVERY_NOT_DELIVERED, TotalValue: 9.99},
		{ClientID: "c9", Date: "2024-02-14", Status: constants.DELIVERY_PENDING, TotalValue: 1.00},
		{ClientID: "outro", Date: "2024-02-14", Status: constants.DELIVERY_DELIVERED, TotalValue: 50.0},
	}

	result := DebtForPeriod(client, testProducts(), deliveries, "2024-02-01", "2024-02-29")
	assert.InDelta(t, 4.50, result.Total, 1e-9)
	assert.Equal(t, 2, result.DaysCount)
	require.Len(t, result.Details, 2)
	assert.Contains(t, result.Details[0], "Bola de Berlim")
}
