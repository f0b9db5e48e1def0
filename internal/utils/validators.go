package utils

import (
	"fmt"
	"strings"
	"time"

	"padaria/internal/constants"
	"padaria/internal/models"
)

// ValidateDate checks and parses a date string. The canonical format is
// YYYY-MM-DD; a couple of common alternatives are accepted and normalized.
func ValidateDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("data vazia")
	}

	formats := []string{
		constants.DATE_LAYOUT, // YYYY-MM-DD, the wire format
		"02-01-2006",
		"02/01/2006",
		time.RFC3339, // a full timestamp also identifies a day
	}
	for _, format := range formats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de data inválido: '%s' (esperado AAAA-MM-DD)", dateStr)
}

// NormalizeDate validates a date string and returns it in the canonical
// YYYY-MM-DD form. The calculators and the store compare dates as strings,
// so every accepted alternative format must be rewritten to this form
// before it is forwarded or persisted.
func NormalizeDate(dateStr string) (string, error) {
	parsed, err := ValidateDate(dateStr)
	if err != nil {
		return "", err
	}
	return parsed.Format(constants.DATE_LAYOUT), nil
}

// ValidateAmount rejects non-positive or absurd monetary amounts. Write
// operations must refuse these before any record is created.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("o valor tem de ser positivo, recebido: %.2f", amount)
	}
	if amount > 100000 {
		return fmt.Errorf("valor demasiado elevado: %.2f", amount)
	}
	return nil
}

// ValidatePaymentMethod checks the method against the known set.
func ValidatePaymentMethod(method string) error {
	for _, known := range constants.KnownPaymentMethods {
		if method == known {
			return nil
		}
	}
	return fmt.Errorf("método de pagamento desconhecido: '%s'", method)
}

// ValidateReturnItems checks the load-completion invariant: for every loaded
// product, sold + returned must equal the loaded quantity. The calculators
// trust this and never re-derive it.
func ValidateReturnItems(loadItems map[string]int, returnItems map[string]models.ReturnItem) error {
	for productID, loaded := range loadItems {
		ret, ok := returnItems[productID]
		if !ok {
			return fmt.Errorf("falta o retorno do produto '%s'", productID)
		}
		if ret.Sold < 0 || ret.Returned < 0 {
			return fmt.Errorf("quantidades negativas no retorno do produto '%s'", productID)
		}
		if ret.Sold+ret.Returned != loaded {
			return fmt.Errorf("produto '%s': vendido (%d) + devolvido (%d) difere do carregado (%d)",
				productID, ret.Sold, ret.Returned, loaded)
		}
	}
	for productID := range returnItems {
		if _, ok := loadItems[productID]; !ok {
			return fmt.Errorf("retorno de produto não carregado: '%s'", productID)
		}
	}
	return nil
}

// IsRoleOrHigher checks the user's role against the minimum required one.
// Hierarchy: driver < admin < owner.
func IsRoleOrHigher(userRole, requiredRole string) bool {
	roleHierarchy := map[string]int{
		constants.ROLE_DRIVER: 0,
		constants.ROLE_ADMIN:  1,
		constants.ROLE_OWNER:  2,
	}

	userLevel, okUser := roleHierarchy[userRole]
	requiredLevel, okRequired := roleHierarchy[requiredRole]
	if !okUser || !okRequired {
		return false
	}
	return userLevel >= requiredLevel
}
