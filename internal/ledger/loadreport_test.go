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

func TestLoadTotals(t *testing.T) {
	load := models.LoadRecord{
		LoadItems: map[string]int{"pao": 100, "bola": 50},
		ReturnItems: map[string]models.ReturnItem{
			"pao":  {Sold: 90, Returned: 10},
			"bola": {Sold: 30, Returned: 20},
		},
	}

	loaded, sold, returned, rate := LoadTotals(load)
	assert.Equal(t, 150, loaded)
	assert.Equal(t, 120, sold)
	assert.Equal(t, 30, returned)
	assert.Equal(t, 80, rate)
}

func TestLoadTotalsEmptyLoad(t *testing.T) {
	_, _, _, rate := LoadTotals(models.LoadRecord{})
	assert.Zero(t, rate)
}

func TestBuildLoadReportHighReturnAlert(t *testing.T) {
	loads := []models.LoadRecord{
		{
			DriverID:  "d1",
			Date:      "2024-03-01",
			Status:    constants.LOAD_COMPLETED,
			LoadItems: map[string]int{"pao": 100, "bola": 100},
			ReturnItems: map[string]models.ReturnItem{
				"pao":  {Sold: 79, Returned: 21}, // 21% returned
				"bola": {Sold: 80, Returned: 20}, // exactly 20%, no alert
			},
		},
	}

	report := BuildLoadReport(loads, "2024-03-01")
	require.Len(t, report.Products, 2)
	byID := map[string]ProductLoadBreakdown{}
	for _, p := range report.Products {
		byID[p.ProductID] = p
	}
	assert.True(t, byID["pao"].AlertHighReturn)
	assert.False(t, byID["bola"].AlertHighReturn)
}

func TestBuildLoadReportAggregatesAcrossDrivers(t *testing.T) {
	loads := []models.LoadRecord{
		{
			DriverID:    "d1",
			Date:        "2024-03-01",
			Status:      constants.LOAD_COMPLETED,
			LoadItems:   map[string]int{"pao": 60},
			ReturnItems: map[string]models.ReturnItem{"pao": {Sold: 55, Returned: 5}},
		},
		{
			DriverID:    "d2",
			Date:        "2024-03-01",
			Status:      constants.LOAD_COMPLETED,
			LoadItems:   map[string]int{"pao": 40},
			ReturnItems: map[string]models.ReturnItem{"pao": {Sold: 25, Returned: 15}},
		},
		{
			DriverID:  "d3",
			Date:      "2024-03-02", // other date, ignored
			LoadItems: map[string]int{"pao": 999},
		},
	}

	report := BuildLoadReport(loads, "2024-03-01")
	assert.Equal(t, 2, report.Drivers)
	assert.Equal(t, 2, report.CompletedLoads)
	assert.Equal(t, 100, report.TotalLoaded)
	assert.Equal(t, 80, report.TotalSold)
	assert.Equal(t, 20, report.TotalReturned)
	assert.Equal(t, 80, report.UtilizationRate)
	require.Len(t, report.Products, 1)
	assert.Equal(t, 80, report.Products[0].UtilizationRate)
}

func TestBuildLoadReportNoLoads(t *testing.T) {
	report := BuildLoadReport(nil, "2024-03-01")
	assert.Zero(t, report.UtilizationRate)
	assert.Empty(t, report.Products)
}

// completedLoads builds one completed load per daily sold quantity, on
// consecutive dates ending at "today".
func completedLoads(productID, today string, dailySold ...int) []models.LoadRecord {
	end, _ := time.Parse(constants.DATE_LAYOUT, today)
	loads := make([]models.LoadRecord, 0, len(dailySold))
	for i, sold := range dailySold {
		date := end.AddDate(0, 0, -(len(dailySold) - 1 - i)).Format(constants.DATE_LAYOUT)
		loads = append(loads, models.LoadRecord{
			ID:          fmt.Sprintf("l%d", i),
			DriverID:    "d1",
			Date:        date,
			Status:      constants.LOAD_COMPLETED,
			LoadItems:   map[string]int{productID: sold + 2},
			ReturnItems: map[string]models.ReturnItem{productID: {Sold: sold, Returned: 2}},
		})
	}
	return loads
}

func TestProductionSuggestionsAverageAndMargin(t *testing.T) {
	products := []models.Product{{ID: "pao", Name: "Pão", TargetQuantity: 40}}
	loads := completedLoads("pao", "2024-03-07", 10, 10, 10, 10, 10, 10, 10)

	suggestions := ProductionSuggestions(loads, products, 7, "2024-03-07")
	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, 7, s.DataPoints)
	assert.Equal(t, 10.0, s.AvgDailySold)
	assert.Equal(t, 2.0, s.AvgDailyReturned)
	assert.Equal(t, 11, s.SuggestedQuantity) // ceil(10 × 1.1)
	assert.Equal(t, constants.CONFIDENCE_HIGH, s.Confidence)
	assert.Equal(t, constants.TREND_STABLE, s.Trend)
}

func TestProductionSuggestionsTrend(t *testing.T) {
	products := []models.Product{{ID: "pao", Name: "Pão"}}

	up := completedLoads("pao", "2024-03-07", 5, 5, 5, 5, 10, 10, 10)
	assert.Equal(t, constants.TREND_INCREASING, ProductionSuggestions(up, products, 7, "2024-03-07")[0].Trend)

	down := completedLoads("pao", "2024-03-07", 10, 10, 10, 10, 5, 5, 5)
	assert.Equal(t, constants.TREND_DECREASING, ProductionSuggestions(down, products, 7, "2024-03-07")[0].Trend)

	// Below five data points the trend stays stable regardless of movement.
	few := completedLoads("pao", "2024-03-07", 1, 20, 40)
	assert.Equal(t, constants.TREND_STABLE, ProductionSuggestions(few, products, 7, "2024-03-07")[0].Trend)
}

func TestProductionSuggestionsFallbackToTarget(t *testing.T) {
	products := []models.Product{{ID: "pao", Name: "Pão", TargetQuantity: 40}}

	suggestions := ProductionSuggestions(nil, products, 7, "2024-03-07")
	require.Len(t, suggestions, 1)
	assert.Equal(t, 40, suggestions[0].SuggestedQuantity)
	assert.Equal(t, constants.CONFIDENCE_LOW, suggestions[0].Confidence)
	assert.Zero(t, suggestions[0].DataPoints)
}

func TestProductionSuggestionsIgnoresLoadsOutsideWindow(t *testing.T) {
	products := []models.Product{{ID: "pao", Name: "Pão", TargetQuantity: 40}}
	old := completedLoads("pao", "2024-02-01", 50, 50, 50)
	recent := completedLoads("pao", "2024-03-07", 10, 10, 10)

	suggestions := ProductionSuggestions(append(old, recent...), products, 7, "2024-03-07")
	require.Len(t, suggestions, 1)
	assert.Equal(t, 3, suggestions[0].DataPoints)
	assert.Equal(t, 10.0, suggestions[0].AvgDailySold)
	assert.Equal(t, constants.CONFIDENCE_MEDIUM, suggestions[0].Confidence)
}

func TestProductionSuggestionsIgnoresOpenLoads(t *testing.T) {
	products := []models.Product{{ID: "pao", Name: "Pão", TargetQuantity: 40}}
	loads := []models.LoadRecord{{
		DriverID:  "d1",
		Date:      "2024-03-07",
		Status:    constants.LOAD_IN_ROUTE,
		LoadItems: map[string]int{"pao": 100},
	}}

	suggestions := ProductionSuggestions(loads, products, 7, "2024-03-07")
	require.Len(t, suggestions, 1)
	assert.Zero(t, suggestions[0].DataPoints)
	assert.Equal(t, 40, suggestions[0].SuggestedQuantity)
}
