package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"padaria/internal/constants"
)

// NowTimestamp returns the current instant as RFC3339 UTC. Every timestamp
// in the system comes from this single server clock so that lexical order
// equals chronological order.
func NowTimestamp() string {
	return time.Now().UTC().Format(constants.TIMESTAMP_LAYOUT)
}

// Today returns the current date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(constants.DATE_LAYOUT)
}

// WeekdayKey returns the lowercase weekday key of a date string, or "" when
// the date does not parse.
func WeekdayKey(dateStr string) string {
	parsed, err := time.Parse(constants.DATE_LAYOUT, dateStr)
	if err != nil {
		return ""
	}
	return constants.WeekdayKeys[parsed.Weekday()]
}

// GenerateRecordID returns a fresh uuid for ordinary records.
func GenerateRecordID() string {
	return uuid.New().String()
}

// GenerateSettlementID builds a settlement id with a timestamp prefix, so
// two admins confirming near-simultaneously can never collide on the same id.
func GenerateSettlementID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.New().String()[:8])
}

// FormatEuro renders a monetary amount for display.
func FormatEuro(amount float64) string {
	return fmt.Sprintf("€%.2f", amount)
}

// FormatDateForDisplay renders YYYY-MM-DD as DD/MM/YYYY; unparseable input
// is returned as-is.
func FormatDateForDisplay(dateStr string) string {
	parsed, err := time.Parse(constants.DATE_LAYOUT, dateStr)
	if err != nil {
		return dateStr
	}
	return parsed.Format("02/01/2006")
}

// BuildMBWayURI encodes a payment request for QR display. The scheme is the
// informal one the companion app understands.
func BuildMBWayURI(phone string, amount float64, clientName string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	return fmt.Sprintf("mbway://pay?phone=%s&amount=%.2f&description=%s", phone, amount, strings.ReplaceAll(clientName, " ", "%20"))
}
