package models

// ReturnItem is what came back (and what sold) for one product of a load.
// The caller closing the load guarantees Sold + Returned equals the loaded
// quantity; the calculators do not re-derive it.
type ReturnItem struct {
	Returned int `json:"returned"`
	Sold     int `json:"sold"`
}

// LoadRecord is one driver's daily load: what was taken in the morning and,
// once completed, what came back.
type LoadRecord struct {
	ID              string                `json:"id"`
	DriverID        string                `json:"driver_id"`
	Date            string                `json:"date"`         // YYYY-MM-DD
	LoadItems       map[string]int        `json:"load_items"`   // product id -> quantity taken
	ReturnItems     map[string]ReturnItem `json:"return_items"` // filled on completion
	Status          string                `json:"status"`       // constants.LOAD_*
	TotalLoaded     int                   `json:"total_loaded"`
	TotalSold       int                   `json:"total_sold"`
	TotalReturned   int                   `json:"total_returned"`
	UtilizationRate int                   `json:"utilization_rate"` // percent, derived
	CreatedAt       string                `json:"created_at"`       // RFC3339
	UpdatedAt       string                `json:"updated_at"`
}
