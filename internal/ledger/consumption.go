package ledger

import (
	"math"
	"sort"
	"time"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// WeekdayStats is the consumption of one product on one weekday.
type WeekdayStats struct {
	AverageQuantity float64 `json:"average_quantity"`
	Orders          int     `json:"orders"`
}

// ProductStats are the descriptive statistics of one product across a
// client's consumption history.
type ProductStats struct {
	ProductID       string                  `json:"product_id"`
	TotalOrders     int                     `json:"total_orders"`
	TotalQuantity   int                     `json:"total_quantity"`
	AverageQuantity float64                 `json:"average_quantity"`
	MinQuantity     int                     `json:"min_quantity"`
	MaxQuantity     int                     `json:"max_quantity"`
	StdDeviation    float64                 `json:"std_deviation"`
	Trend           string                  `json:"trend"`
	ByWeekday       map[string]WeekdayStats `json:"by_weekday"`
}

// PredictedItem is one product line of a dynamic-client prediction.
type PredictedItem struct {
	ProductID           string  `json:"product_id"`
	MinQuantity         int     `json:"min_quantity"`
	AvgQuantity         float64 `json:"avg_quantity"`
	MaxQuantity         int     `json:"max_quantity"`
	RecommendedQuantity int     `json:"recommended_quantity"`
}

// Prediction is the recommended order for a dynamic client on a target date.
// HasHistory=false means the client is still being learned: the UI shows
// "learning", not a guess.
type Prediction struct {
	ClientID            string          `json:"client_id"`
	Date                string          `json:"date"`
	DayOfWeek           string          `json:"day_of_week"`
	HasHistory          bool            `json:"has_history"`
	Confidence          string          `json:"confidence"`
	PredictedItems      []PredictedItem `json:"predicted_items"`
	PredictedTotalValue float64         `json:"predicted_total_value"`
}

// ExtraLoadItem is one product line of a driver-wide extra-load summary.
type ExtraLoadItem struct {
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	MinQuantity         int    `json:"min_quantity"`
	MaxQuantity         int    `json:"max_quantity"`
	RecommendedQuantity int    `json:"recommended_quantity"`
	Clients             int    `json:"clients"` // dynamic clients contributing
}

// BuildProductStats computes per-product statistics from a client's
// consumption records. One record containing a product counts as one order
// of that product. The trend needs at least MIN_SAMPLES_FOR_TREND orders and
// compares the mean of the 5 most recent orders against the mean of all
// earlier orders.
func BuildProductStats(records []models.ConsumptionRecord) map[string]ProductStats {
	ordered := make([]models.ConsumptionRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	quantities := make(map[string][]float64)
	weekdays := make(map[string]map[string][]float64)
	for _, record := range ordered {
		for _, item := range record.Items {
			quantities[item.ProductID] = append(quantities[item.ProductID], float64(item.Quantity))
			if weekdays[item.ProductID] == nil {
				weekdays[item.ProductID] = make(map[string][]float64)
			}
			weekdays[item.ProductID][record.DayOfWeek] = append(weekdays[item.ProductID][record.DayOfWeek], float64(item.Quantity))
		}
	}

	stats := make(map[string]ProductStats, len(quantities))
	for productID, qs := range quantities {
		s := ProductStats{
			ProductID:       productID,
			TotalOrders:     len(qs),
			AverageQuantity: mean(qs),
			StdDeviation:    populationStdDev(qs),
			Trend:           productTrend(qs),
			ByWeekday:       make(map[string]WeekdayStats),
		}
		s.MinQuantity = int(qs[0])
		s.MaxQuantity = int(qs[0])
		for _, q := range qs {
			s.TotalQuantity += int(q)
			if int(q) < s.MinQuantity {
				s.MinQuantity = int(q)
			}
			if int(q) > s.MaxQuantity {
				s.MaxQuantity = int(q)
			}
		}
		for weekday, wqs := range weekdays[productID] {
			s.ByWeekday[weekday] = WeekdayStats{AverageQuantity: mean(wqs), Orders: len(wqs)}
		}
		stats[productID] = s
	}
	return stats
}

func productTrend(orderedQuantities []float64) string {
	if len(orderedQuantities) < constants.MIN_SAMPLES_FOR_TREND {
		return constants.TREND_STABLE
	}
	earlier := orderedQuantities[:len(orderedQuantities)-5]
	if len(earlier) == 0 {
		// Exactly 5 orders: there is no baseline to compare against yet.
		return constants.TREND_STABLE
	}
	recent := orderedQuantities[len(orderedQuantities)-5:]
	return trendLabel(mean(recent), mean(earlier))
}

// Predict produces the recommended order for a dynamic client on a target
// date (YYYY-MM-DD). Clients with fewer than MIN_HISTORY_FOR_PREDICTION
// records get an empty prediction with HasHistory=false. For each product
// the client has ever ordered, the weekday-specific average drives the
// forecast, falling back to the overall average when that weekday has no
// data; a 20% safety margin is applied to the recommended quantity.
func Predict(client models.Client, records []models.ConsumptionRecord, products map[string]models.Product, date string) Prediction {
	prediction := Prediction{
		ClientID:   client.ID,
		Date:       date,
		Confidence: constants.CONFIDENCE_LOW,
	}

	if day, err := time.Parse(constants.DATE_LAYOUT, date); err == nil {
		prediction.DayOfWeek = constants.WeekdayKeys[day.Weekday()]
	}

	own := make([]models.ConsumptionRecord, 0, len(records))
	for _, record := range records {
		if record.ClientID == client.ID {
			own = append(own, record)
		}
	}

	if len(own) < constants.MIN_HISTORY_FOR_PREDICTION {
		prediction.PredictedItems = []PredictedItem{}
		return prediction
	}
	prediction.HasHistory = true

	switch {
	case len(own) >= constants.PREDICTION_HIGH_CONFIDENCE_ORDERS:
		prediction.Confidence = constants.CONFIDENCE_HIGH
	case len(own) >= constants.PREDICTION_MEDIUM_CONFIDENCE_ORDERS:
		prediction.Confidence = constants.CONFIDENCE_MEDIUM
	}

	stats := BuildProductStats(own)
	productIDs := make([]string, 0, len(stats))
	for productID := range stats {
		productIDs = append(productIDs, productID)
	}
	sort.Strings(productIDs)

	for _, productID := range productIDs {
		s := stats[productID]

		avg := s.AverageQuantity
		if weekday, ok := s.ByWeekday[prediction.DayOfWeek]; ok && weekday.Orders > 0 {
			avg = weekday.AverageQuantity
		}

		item := PredictedItem{
			ProductID:           productID,
			AvgQuantity:         avg,
			MinQuantity:         int(math.Max(1, math.Floor(avg-s.StdDeviation))),
			MaxQuantity:         int(math.Ceil(avg + s.StdDeviation)),
			RecommendedQuantity: int(math.Ceil(avg * constants.PREDICTION_SAFETY_MARGIN)),
		}
		prediction.PredictedItems = append(prediction.PredictedItems, item)

		if product, ok := products[productID]; ok {
			prediction.PredictedTotalValue += float64(item.RecommendedQuantity) * client.EffectivePrice(product)
		}
	}
	return prediction
}

// DriverExtraLoad sums predictions across a driver's dynamic clients into the
// extra stock the driver should carry on the target date, per product.
// Clients still in the learning phase contribute nothing.
func DriverExtraLoad(clients []models.Client, records []models.ConsumptionRecord, products map[string]models.Product, date string) []ExtraLoadItem {
	totals := make(map[string]*ExtraLoadItem)

	for _, client := range clients {
		if !client.IsDynamicChoice {
			continue
		}
		prediction := Predict(client, records, products, date)
		if !prediction.HasHistory {
			continue
		}
		for _, item := range prediction.PredictedItems {
			total, ok := totals[item.ProductID]
			if !ok {
				total = &ExtraLoadItem{ProductID: item.ProductID}
				if product, found := products[item.ProductID]; found {
					total.ProductName = product.Name
				}
				totals[item.ProductID] = total
			}
			total.MinQuantity += item.MinQuantity
			total.MaxQuantity += item.MaxQuantity
			total.RecommendedQuantity += item.RecommendedQuantity
			total.Clients++
		}
	}

	summary := make([]ExtraLoadItem, 0, len(totals))
	for _, total := range totals {
		summary = append(summary, *total)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].ProductID < summary[j].ProductID })
	return summary
}
