package ledger

import (
	"math"
	"sort"
	"time"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// ProductLoadBreakdown aggregates one product across every driver's load on
// one date.
type ProductLoadBreakdown struct {
	ProductID       string `json:"product_id"`
	Loaded          int    `json:"loaded"`
	Sold            int    `json:"sold"`
	Returned        int    `json:"returned"`
	UtilizationRate int    `json:"utilization_rate"`
	AlertHighReturn bool   `json:"alert_high_return"`
}

// LoadReport is the day-level view of how the loaded stock moved.
type LoadReport struct {
	Date            string                 `json:"date"`
	Drivers         int                    `json:"drivers"`
	CompletedLoads  int                    `json:"completed_loads"`
	TotalLoaded     int                    `json:"total_loaded"`
	TotalSold       int                    `json:"total_sold"`
	TotalReturned   int                    `json:"total_returned"`
	UtilizationRate int                    `json:"utilization_rate"`
	Products        []ProductLoadBreakdown `json:"products"`
}

// ProductionSuggestion is the rolling-window production hint for one product.
type ProductionSuggestion struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	AvgDailySold      float64 `json:"avg_daily_sold"`
	AvgDailyReturned  float64 `json:"avg_daily_returned"`
	SuggestedQuantity int     `json:"suggested_quantity"`
	Trend             string  `json:"trend"`
	Confidence        string  `json:"confidence"`
	DataPoints        int     `json:"data_points"`
}

// LoadTotals derives the aggregate fields of a load from its items: total
// loaded, sold and returned quantities plus the utilization percentage.
// Sold/returned figures only exist once the driver closed the load.
func LoadTotals(load models.LoadRecord) (totalLoaded, totalSold, totalReturned, utilizationRate int) {
	for _, quantity := range load.LoadItems {
		totalLoaded += quantity
	}
	for _, ret := range load.ReturnItems {
		totalSold += ret.Sold
		totalReturned += ret.Returned
	}
	utilizationRate = roundPercent(totalSold, totalLoaded)
	return
}

// BuildLoadReport aggregates every driver's load on one date into totals and
// a per-product breakdown. A product alerts on high returns when more than
// HIGH_RETURN_ALERT_THRESHOLD of its loaded quantity came back.
func BuildLoadReport(loads []models.LoadRecord, date string) LoadReport {
	report := LoadReport{Date: date, Products: []ProductLoadBreakdown{}}

	byProduct := make(map[string]*ProductLoadBreakdown)
	for _, load := range loads {
		if load.Date != date {
			continue
		}
		report.Drivers++
		if load.Status == constants.LOAD_COMPLETED {
			report.CompletedLoads++
		}

		for productID, quantity := range load.LoadItems {
			breakdown, ok := byProduct[productID]
			if !ok {
				breakdown = &ProductLoadBreakdown{ProductID: productID}
				byProduct[productID] = breakdown
			}
			breakdown.Loaded += quantity
			report.TotalLoaded += quantity
		}
		for productID, ret := range load.ReturnItems {
			breakdown, ok := byProduct[productID]
			if !ok {
				breakdown = &ProductLoadBreakdown{ProductID: productID}
				byProduct[productID] = breakdown
			}
			breakdown.Sold += ret.Sold
			breakdown.Returned += ret.Returned
			report.TotalSold += ret.Sold
			report.TotalReturned += ret.Returned
		}
	}

	report.UtilizationRate = roundPercent(report.TotalSold, report.TotalLoaded)

	for _, breakdown := range byProduct {
		breakdown.UtilizationRate = roundPercent(breakdown.Sold, breakdown.Loaded)
		breakdown.AlertHighReturn = breakdown.Loaded > 0 &&
			float64(breakdown.Returned)/float64(breakdown.Loaded) > constants.HIGH_RETURN_ALERT_THRESHOLD
		report.Products = append(report.Products, *breakdown)
	}
	sort.Slice(report.Products, func(i, j int) bool { return report.Products[i].ProductID < report.Products[j].ProductID })
	return report
}

// ProductionSuggestions turns the completed loads of the trailing window
// (windowDays days ending at today, YYYY-MM-DD) into next-day production
// hints, one per product. A product with no data in the window falls back to
// its configured target quantity at low confidence.
func ProductionSuggestions(loads []models.LoadRecord, products []models.Product, windowDays int, today string) []ProductionSuggestion {
	if windowDays <= 0 {
		windowDays = constants.DEFAULT_PRODUCTION_WINDOW_DAYS
	}

	windowStart := ""
	if end, err := time.Parse(constants.DATE_LAYOUT, today); err == nil {
		windowStart = end.AddDate(0, 0, -(windowDays - 1)).Format(constants.DATE_LAYOUT)
	}

	// Per product, per date: sold and returned across all drivers.
	type dailyPoint struct {
		sold     int
		returned int
	}
	byProduct := make(map[string]map[string]*dailyPoint)
	for _, load := range loads {
		if load.Status != constants.LOAD_COMPLETED {
			continue
		}
		if load.Date < windowStart || load.Date > today {
			continue
		}
		for productID, ret := range load.ReturnItems {
			if byProduct[productID] == nil {
				byProduct[productID] = make(map[string]*dailyPoint)
			}
			point, ok := byProduct[productID][load.Date]
			if !ok {
				point = &dailyPoint{}
				byProduct[productID][load.Date] = point
			}
			point.sold += ret.Sold
			point.returned += ret.Returned
		}
	}

	suggestions := make([]ProductionSuggestion, 0, len(products))
	for _, product := range products {
		suggestion := ProductionSuggestion{
			ProductID:   product.ID,
			ProductName: product.Name,
			Trend:       constants.TREND_STABLE,
			Confidence:  constants.CONFIDENCE_LOW,
		}

		days := byProduct[product.ID]
		if len(days) == 0 {
			// Nothing sold in the window; suggest the configured target.
			suggestion.SuggestedQuantity = product.TargetQuantity
			suggestions = append(suggestions, suggestion)
			continue
		}

		dates := make([]string, 0, len(days))
		for date := range days {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		soldSeries := make([]float64, 0, len(dates))
		returnedSeries := make([]float64, 0, len(dates))
		for _, date := range dates {
			soldSeries = append(soldSeries, float64(days[date].sold))
			returnedSeries = append(returnedSeries, float64(days[date].returned))
		}

		suggestion.DataPoints = len(soldSeries)
		suggestion.AvgDailySold = mean(soldSeries)
		suggestion.AvgDailyReturned = mean(returnedSeries)
		suggestion.SuggestedQuantity = int(math.Ceil(suggestion.AvgDailySold * constants.PRODUCTION_SAFETY_MARGIN))

		if len(soldSeries) >= constants.MIN_SAMPLES_FOR_TREND {
			recent := soldSeries[len(soldSeries)-3:]
			earlier := soldSeries[:len(soldSeries)-3]
			suggestion.Trend = trendLabel(mean(recent), mean(earlier))
		}
		switch {
		case suggestion.DataPoints >= constants.PRODUCTION_HIGH_CONFIDENCE_DAYS:
			suggestion.Confidence = constants.CONFIDENCE_HIGH
		case suggestion.DataPoints >= constants.PRODUCTION_MEDIUM_CONFIDENCE_DAYS:
			suggestion.Confidence = constants.CONFIDENCE_MEDIUM
		}

		suggestions = append(suggestions, suggestion)
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].ProductName < suggestions[j].ProductName })
	return suggestions
}
