package models

// DeliveryItem is one product line of a delivery.
type DeliveryItem struct {
	ProductID    string  `json:"product_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
	IsExtra      bool    `json:"is_extra,omitempty"`      // on top of the plan
	IsSubstitute bool    `json:"is_substitute,omitempty"` // replaces a planned item
}

// DeliveryRecord is one pending or realized delivery for one client on one
// date. For dynamic clients the delivered records are the billing source of
// truth; scheduled clients are billed from their plan instead.
type DeliveryRecord struct {
	ID          string         `json:"id"`
	ClientID    string         `json:"client_id"`
	DriverID    string         `json:"driver_id"`
	RouteID     NullString     `json:"route_id"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Items       []DeliveryItem `json:"items"`
	Status      string         `json:"status"` // constants.DELIVERY_*
	TotalValue  float64        `json:"total_value"`
	Notes       NullString     `json:"notes"`
	DeliveredAt NullString     `json:"delivered_at"` // RFC3339, set when status becomes delivered
	CreatedAt   string         `json:"created_at"`   // RFC3339
	UpdatedAt   string         `json:"updated_at"`
}

// SettlementCutoff returns the timestamp used to decide whether this delivery
// falls after a settlement close: DeliveredAt when present, CreatedAt
// otherwise.
func (d DeliveryRecord) SettlementCutoff() string {
	if d.DeliveredAt.Valid {
		return d.DeliveredAt.String
	}
	return d.CreatedAt
}
