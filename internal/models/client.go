package models

// ScheduleItem is one product line of a weekday plan.
type ScheduleItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// WeekSchedule maps a lowercase weekday key ("monday".."sunday") to the items
// planned for that weekday. Weekdays with no delivery are simply absent.
type WeekSchedule map[string][]ScheduleItem

// ScheduleSnapshot is one entry of a client's schedule history. Snapshots are
// append-only: once written they are never edited, so the schedule that was
// in effect on any past date can always be reconstructed.
type ScheduleSnapshot struct {
	Date     string       `json:"date"` // YYYY-MM-DD, first day the schedule applies
	Schedule WeekSchedule `json:"schedule"`
}

// Client is a delivery customer. A client is either scheduled (billed from
// the weekday plan) or dynamic (IsDynamicChoice, billed from realized
// delivery records).
type Client struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	DriverID         string             `json:"driver_id"`
	RouteID          NullString         `json:"route_id"`
	Address          NullString         `json:"address"`
	Phone            NullString         `json:"phone"`
	PaymentFrequency string             `json:"payment_frequency"`
	CustomPrices     map[string]float64 `json:"custom_prices"`     // product id -> price override
	SkippedDates     []string           `json:"skipped_dates"`     // YYYY-MM-DD dates excluded from billing
	LastPaymentDate  NullString         `json:"last_payment_date"` // date paid through
	CurrentBalance   float64            `json:"current_balance"`
	Schedule         WeekSchedule       `json:"schedule"` // current plan
	ScheduleHistory  []ScheduleSnapshot `json:"schedule_history"`
	IsDynamicChoice  bool               `json:"is_dynamic_choice"`
	IsActive         bool               `json:"is_active"`
	CreatedAt        string             `json:"created_at"`
	UpdatedAt        string             `json:"updated_at"`
}

// EffectivePrice returns the client's price for a product, preferring the
// per-client override over the product default.
func (c Client) EffectivePrice(p Product) float64 {
	if custom, ok := c.CustomPrices[p.ID]; ok {
		return custom
	}
	return p.Price
}

// IsDateSkipped reports whether date (YYYY-MM-DD) is excluded from billing.
func (c Client) IsDateSkipped(date string) bool {
	for _, d := range c.SkippedDates {
		if d == date {
			return true
		}
	}
	return false
}
