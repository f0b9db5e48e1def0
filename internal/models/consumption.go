package models

// ConsumptionItem is one product line of a realized dynamic delivery.
type ConsumptionItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// ConsumptionRecord captures what a dynamic client actually took on one date.
// Written once per realized dynamic delivery and treated as immutable
// history; the prediction engine learns from these.
type ConsumptionRecord struct {
	ID         string            `json:"id"`
	ClientID   string            `json:"client_id"`
	DriverID   string            `json:"driver_id"`
	Date       string            `json:"date"`        // YYYY-MM-DD
	DayOfWeek  string            `json:"day_of_week"` // lowercase weekday key
	Items      []ConsumptionItem `json:"items"`
	TotalValue float64           `json:"total_value"`
	CreatedAt  string            `json:"created_at"` // RFC3339
}
