package models

// PaymentRecord is one collection event: a client paying a driver (or the
// business directly) by any method. CreatedAt is the precise RFC3339
// timestamp used to order payments against settlement closes.
type PaymentRecord struct {
	ID        string     `json:"id"`
	DriverID  string     `json:"driver_id"`
	ClientID  string     `json:"client_id"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`     // constants.METHOD_*
	PaidUntil NullString `json:"paid_until"` // date the client is paid through
	Notes     NullString `json:"notes"`
	CreatedAt string     `json:"created_at"` // RFC3339
}
