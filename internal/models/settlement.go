package models

// RouteTotal aggregates the payments of one route inside a settlement.
type RouteTotal struct {
	RouteID     string  `json:"route_id"`
	Total       float64 `json:"total"`
	ClientsPaid int     `json:"clients_paid"` // distinct clients that paid
}

// ClientPayment is one audit line of a settlement: a single payment by a
// single client.
type ClientPayment struct {
	ClientID   string  `json:"client_id"`
	ClientName string  `json:"client_name"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

// SettlementRecord is one reconciliation of a driver's cash with the
// business. Confirmed settlements form a chronological non-overlapping
// sequence per driver, delimited by ConfirmedAt rather than by calendar
// weeks: each new calculation covers everything since the previous confirmed
// close.
type SettlementRecord struct {
	ID            string `json:"id"`
	DriverID      string `json:"driver_id"`
	WeekStartDate string `json:"week_start_date"` // YYYY-MM-DD
	WeekEndDate   string `json:"week_end_date"`

	TotalDelivered float64         `json:"total_delivered"`
	TotalReceived  float64         `json:"total_received"`
	CashTotal      float64         `json:"cash_total"`
	MBWayTotal     float64         `json:"mbway_total"`
	TransferTotal  float64         `json:"transfer_total"`
	OtherTotal     float64         `json:"other_total"`
	TotalToSettle  float64         `json:"total_to_settle"` // cash only
	RouteTotals    []RouteTotal    `json:"route_totals"`
	ClientPayments []ClientPayment `json:"client_payments"`

	Status      string     `json:"status"`       // constants.SETTLEMENT_*
	ConfirmedAt NullString `json:"confirmed_at"` // RFC3339, lexically ordered
	ConfirmedBy NullString `json:"confirmed_by"` // admin user id

	// Driver-reported cash count, optional.
	AmountDelivered NullFloat64    `json:"amount_delivered"`
	Variance        NullFloat64    `json:"variance"`                // AmountDelivered - TotalToSettle
	Denominations   map[string]int `json:"denominations,omitempty"` // "50" -> 2, "0.50" -> 10, ...

	CreatedAt string `json:"created_at"` // RFC3339
	UpdatedAt string `json:"updated_at"`
}
