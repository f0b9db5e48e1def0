package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// historyOf builds one consumption record per quantity, on consecutive days
// starting at 2024-01-01 (a Monday).
func historyOf(clientID, productID string, quantities ...int) []models.ConsumptionRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.ConsumptionRecord, 0, len(quantities))
	for i, q := range quantities {
		day := start.AddDate(0, 0, i)
		records = append(records, models.ConsumptionRecord{
			ID:        fmt.Sprintf("r%d", i),
			ClientID:  clientID,
			Date:      day.Format(constants.DATE_LAYOUT),
			DayOfWeek: constants.WeekdayKeys[day.Weekday()],
			Items:     []models.ConsumptionItem{{ProductID: productID, Quantity: q, Price: 1.0}},
		})
	}
	return records
}

func TestBuildProductStatsBasics(t *testing.T) {
	records := historyOf("c1", "pao", 4, 6, 4, 6, 4, 6, 4, 6, 4, 6)

	stats := BuildProductStats(records)
	s, ok := stats["pao"]
	require.True(t, ok)
	assert.Equal(t, 10, s.TotalOrders)
	assert.Equal(t, 50, s.TotalQuantity)
	assert.Equal(t, 5.0, s.AverageQuantity)
	assert.Equal(t, 4, s.MinQuantity)
	assert.Equal(t, 6, s.MaxQuantity)
	assert.InDelta(t, 1.0, s.StdDeviation, 1e-9)
}

func TestBuildProductStatsTrend(t *testing.T) {
	// Last five average 10 against an earlier baseline of 2.
	increasing := historyOf("c1", "pao", 2, 2, 2, 2, 2, 10, 10, 10, 10, 10)
	assert.Equal(t, constants.TREND_INCREASING, BuildProductStats(increasing)["pao"].Trend)

	decreasing := historyOf("c1", "pao", 10, 10, 10, 10, 10, 2, 2, 2, 2, 2)
	assert.Equal(t, constants.TREND_DECREASING, BuildProductStats(decreasing)["pao"].Trend)

	stable := historyOf("c1", "pao", 5, 5, 5, 5, 5, 5, 5, 5)
	assert.Equal(t, constants.TREND_STABLE, BuildProductStats(stable)["pao"].Trend)

	// Within the ±10% band: recent mean 10.4 vs baseline 10.
	inBand := historyOf("c1", "pao", 10, 10, 10, 10, 10, 10, 11, 10, 11, 10)
	assert.Equal(t, constants.TREND_STABLE, BuildProductStats(inBand)["pao"].Trend)

	// Exactly five orders leave no baseline to compare against.
	five := historyOf("c1", "pao", 1, 2, 3, 4, 5)
	assert.Equal(t, constants.TREND_STABLE, BuildProductStats(five)["pao"].Trend)
}

func TestBuildProductStatsWeekdayBreakdown(t *testing.T) {
	records := historyOf("c1", "pao", 2, 4, 2, 4, 2, 4, 2)  // mon..sun
	records = append(records, historyOf("c1", "pao", 6)...) // second monday record

	stats := BuildProductStats(records)
	byWeekday := stats["pao"].ByWeekday
	require.Contains(t, byWeekday, "monday")
	assert.Equal(t, 2, byWeekday["monday"].Orders)
	assert.Equal(t, 4.0, byWeekday["monday"].AverageQuantity) // (2+6)/2
	assert.Equal(t, 1, byWeekday["tuesday"].Orders)
}

func TestPredictWithoutEnoughHistory(t *testing.T) {
	client := models.Client{ID: "c1", IsDynamicChoice: true}
	records := historyOf("c1", "pao", 3, 3)

	prediction := Predict(client, records, testProducts(), "2024-02-05")
	assert.False(t, prediction.HasHistory)
	assert.Empty(t, prediction.PredictedItems)
	assert.Equal(t, constants.CONFIDENCE_LOW, prediction.Confidence)
	assert.Zero(t, prediction.PredictedTotalValue)
}

func TestPredictQuantitiesAndValue(t *testing.T) {
	client := models.Client{ID: "c1", IsDynamicChoice: true}
	// Ten orders, mean 5, population std dev 1, alternating so the trend is flat.
	records := historyOf("c1", "pao", 4, 6, 4, 6, 4, 6, 4, 6, 4, 6)

	prediction := Predict(client, records, testProducts(), "2024-02-05")
	require.True(t, prediction.HasHistory)
	assert.Equal(t, constants.CONFIDENCE_HIGH, prediction.Confidence)
	require.Len(t, prediction.PredictedItems, 1)

	item := prediction.PredictedItems[0]
	assert.Equal(t, "pao", item.ProductID)
	assert.Equal(t, 6, item.RecommendedQuantity)                 // ceil(5 × 1.2)
	assert.Equal(t, 4, item.MinQuantity)                         // max(1, floor(5 − 1))
	assert.Equal(t, 6, item.MaxQuantity)                         // ceil(5 + 1)
	assert.InDelta(t, 6.0, prediction.PredictedTotalValue, 1e-9) // 6 × €1.00
}

func TestPredictPrefersWeekdayAverage(t *testing.T) {
	client := models.Client{ID: "c1", IsDynamicChoice: true}
	// Mondays take 10, every other weekday takes 2.
	records := historyOf("c1", "pao", 10, 2, 2, 2, 2, 2, 2, 10, 2, 2)

	monday := Predict(client, records, testProducts(), "2024-02-05") // a Monday
	require.Len(t, monday.PredictedItems, 1)
	assert.Equal(t, 10.0, monday.PredictedItems[0].AvgQuantity)

	// A weekday average of 2 applies on Tuesdays.
	tuesday := Predict(client, records, testProducts(), "2024-02-06")
	require.Len(t, tuesday.PredictedItems, 1)
	assert.Equal(t, 2.0, tuesday.PredictedItems[0].AvgQuantity)
}

func TestPredictMinQuantityNeverBelowOne(t *testing.T) {
	client := models.Client{ID: "c1", IsDynamicChoice: true}
	// High spread pushes avg − σ below zero.
	records := historyOf("c1", "pao", 1, 1, 8)

	prediction := Predict(client, records, testProducts(), "2024-02-08")
	require.Len(t, prediction.PredictedItems, 1)
	assert.GreaterOrEqual(t, prediction.PredictedItems[0].MinQuantity, 1)
}

func TestPredictMediumConfidence(t *testing.T) {
	client := models.Client{ID: "c1", IsDynamicChoice: true}
	records := historyOf("c1", "pao", 5, 5, 5, 5, 5)

	prediction := Predict(client, records, testProducts(), "2024-02-05")
	assert.Equal(t, constants.CONFIDENCE_MEDIUM, prediction.Confidence)
}

func TestPredictValueUsesCustomPrice(t *testing.T) {
	client := models.Client{
		ID:              "c1",
		IsDynamicChoice: true,
		CustomPrices:    map[string]float64{"pao": 0.50},
	}
	records := historyOf("c1", "pao", 5, 5, 5, 5, 5)

	prediction := Predict(client, records, testProducts(), "2024-02-05")
	require.Len(t, prediction.PredictedItems, 1)
	rec := prediction.PredictedItems[0].RecommendedQuantity
	assert.InDelta(t, float64(rec)*0.50, prediction.PredictedTotalValue, 1e-9)
}

func TestDriverExtraLoadAggregatesDynamicClients(t *testing.T) {
	clients := []models.Client{
		{ID: "c1", IsDynamicChoice: true},
		{ID: "c2", IsDynamicChoice: true},
		{ID: "c3", IsDynamicChoice: false}, // scheduled, never contributes
		{ID: "c4", IsDynamicChoice: true},  // learning, no history
	}
	records := append(historyOf("c1", "pao", 5, 5, 5, 5, 5), historyOf("c2", "pao", 2, 2, 2)...)
	records = append(records, historyOf("c3", "pao", 9, 9, 9, 9)...)

	summary := DriverExtraLoad(clients, records, testProducts(), "2024-02-05")
	require.Len(t, summary, 1)
	assert.Equal(t, "pao", summary[0].ProductID)
	assert.Equal(t, 2, summary[0].Clients)
	// ceil(5×1.2) + ceil(2×1.2) = 6 + 3
	assert.Equal(t, 9, summary[0].RecommendedQuantity)
}
