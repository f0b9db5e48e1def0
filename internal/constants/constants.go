package constants

import "time"

// User roles
const (
	ROLE_DRIVER = "driver"
	ROLE_ADMIN  = "admin"
	ROLE_OWNER  = "owner"
)

// Payment methods
const (
	METHOD_CASH     = "dinheiro"
	METHOD_MBWAY    = "mbway"
	METHOD_TRANSFER = "transferencia"
	METHOD_CARD     = "cartao"
	METHOD_OTHER    = "outro"
)

// KnownPaymentMethods lists every method accepted by the register-payment endpoint.
var KnownPaymentMethods = []string{
	METHOD_CASH,
	METHOD_MBWAY,
	METHOD_TRANSFER,
	METHOD_CARD,
	METHOD_OTHER,
}

// Delivery statuses
const (
	DELIVERY_PENDING       = "pending"
	DELIVERY_DELIVERED     = "delivered"
	DELIVERY_NOT_DELIVERED = "not_delivered"
)

// Load statuses
const (
	LOAD_IN_ROUTE  = "in_route"
	LOAD_COMPLETED = "completed"
)

// Settlement statuses
const (
	SETTLEMENT_PENDING   = "pending"
	SETTLEMENT_CONFIRMED = "confirmed"
)

// Payment frequencies for clients
const (
	FREQUENCY_DAILY   = "daily"
	FREQUENCY_WEEKLY  = "weekly"
	FREQUENCY_MONTHLY = "monthly"
)

// Confidence tiers for forecasts
const (
	CONFIDENCE_LOW    = "low"
	CONFIDENCE_MEDIUM = "medium"
	CONFIDENCE_HIGH   = "high"
)

// Trend labels
const (
	TREND_INCREASING = "increasing"
	TREND_STABLE     = "stable"
	TREND_DECREASING = "decreasing"
)

// Date and timestamp layouts. Timestamps are RFC3339 UTC so that they stay
// lexically comparable.
const (
	DATE_LAYOUT      = "2006-01-02"
	TIMESTAMP_LAYOUT = time.RFC3339
)

// Calculation parameters
const (
	// Safety cap on calendar iteration in the debt calculator.
	MAX_DEBT_PERIOD_DAYS = 365

	// Minimum consumption records before a dynamic client gets a prediction.
	MIN_HISTORY_FOR_PREDICTION = 3

	// Order counts delimiting the confidence tiers of a client prediction.
	PREDICTION_MEDIUM_CONFIDENCE_ORDERS = 5
	PREDICTION_HIGH_CONFIDENCE_ORDERS   = 10

	// Safety margin applied to the recommended order quantity (20%).
	PREDICTION_SAFETY_MARGIN = 1.2

	// Margin applied to the suggested production quantity (10%).
	PRODUCTION_SAFETY_MARGIN = 1.1

	// Data points delimiting the confidence tiers of a production suggestion.
	PRODUCTION_MEDIUM_CONFIDENCE_DAYS = 3
	PRODUCTION_HIGH_CONFIDENCE_DAYS   = 7

	// Minimum samples before a trend is computed; below this it is "stable".
	MIN_SAMPLES_FOR_TREND = 5

	// Relative band around the historical mean inside which a trend counts
	// as stable (±10%).
	TREND_STABLE_BAND = 0.10

	// Default look-back window for production suggestions, in days.
	DEFAULT_PRODUCTION_WINDOW_DAYS = 7

	// A product alerts on high returns when returned/loaded exceeds this.
	HIGH_RETURN_ALERT_THRESHOLD = 0.20
)

// WeekdayKeys maps time.Weekday to the lowercase keys used in schedule maps
// and consumption records.
var WeekdayKeys = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// WeekdayDisplayMap maps weekday keys to Portuguese display names.
var WeekdayDisplayMap = map[string]string{
	"monday":    "Segunda-feira",
	"tuesday":   "Terça-feira",
	"wednesday": "Quarta-feira",
	"thursday":  "Quinta-feira",
	"friday":    "Sexta-feira",
	"saturday":  "Sábado",
	"sunday":    "Domingo",
}

// MethodDisplayMap maps payment methods to display names.
var MethodDisplayMap = map[string]string{
	METHOD_CASH:     "Dinheiro",
	METHOD_MBWAY:    "MBWay",
	METHOD_TRANSFER: "Transferência",
	METHOD_CARD:     "Cartão",
	METHOD_OTHER:    "Outro",
}
