package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"padaria/internal/models"
)

const settlementColumns = `id, driver_id, week_start_date, week_end_date,
    total_delivered, total_received, cash_total, mbway_total, transfer_total, other_total,
    total_to_settle, route_totals, client_payments, status, confirmed_at, confirmed_by,
    amount_delivered, variance, denominations, created_at, updated_at`

func scanSettlement(row interface{ Scan(...interface{}) error }) (models.SettlementRecord, error) {
	var s models.SettlementRecord
	var routeTotals, clientPayments, denominations []byte

	err := row.Scan(&s.ID, &s.DriverID, &s.WeekStartDate, &s.WeekEndDate,
		&s.TotalDelivered, &s.TotalReceived, &s.CashTotal, &s.MBWayTotal, &s.TransferTotal, &s.OtherTotal,
		&s.TotalToSettle, &routeTotals, &clientPayments, &s.Status, &s.ConfirmedAt, &s.ConfirmedBy,
		&s.AmountDelivered, &s.Variance, &denominations, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if len(routeTotals) > 0 {
		if errJSON := json.Unmarshal(routeTotals, &s.RouteTotals); errJSON != nil {
			log.Printf("scanSettlement: erro ao descodificar route_totals de %s: %v", s.ID, errJSON)
		}
	}
	if len(clientPayments) > 0 {
		if errJSON := json.Unmarshal(clientPayments, &s.ClientPayments); errJSON != nil {
			log.Printf("scanSettlement: erro ao descodificar client_payments de %s: %v", s.ID, errJSON)
		}
	}
	if len(denominations) > 0 {
		if errJSON := json.Unmarshal(denominations, &s.Denominations); errJSON != nil {
			log.Printf("scanSettlement: erro ao descodificar denominations de %s: %v", s.ID, errJSON)
		}
	}
	return s, nil
}

// GetSettlementByID returns one settlement.
func GetSettlementByID(settlementID string) (models.SettlementRecord, error) {
	row := DB.QueryRow(`SELECT `+settlementColumns+` FROM settlement_records WHERE id = $1`, settlementID)
	s, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return s, fmt.Errorf("fecho de contas '%s' não encontrado", settlementID)
	}
	return s, err
}

// GetSettlementsByDriver returns a driver's settlements, most recent first.
func GetSettlementsByDriver(driverID string) ([]models.SettlementRecord, error) {
	rows, err := DB.Query(`
        SELECT `+settlementColumns+` FROM settlement_records
        WHERE driver_id = $1 ORDER BY confirmed_at DESC NULLS LAST, created_at DESC`, driverID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar fechos do condutor %s: %w", driverID, err)
	}
	defer rows.Close()

	var settlements []models.SettlementRecord
	for rows.Next() {
		s, errScan := scanSettlement(rows)
		if errScan != nil {
			log.Printf("GetSettlementsByDriver: erro ao ler fecho: %v", errScan)
			continue
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// AddSettlement writes a settlement record. Confirming a week that already
// has a confirmed settlement creates an additional record on purpose:
// multiple partial closes per calendar week are valid, and the period math
// keys off confirmation timestamps rather than week bounds.
func AddSettlement(s models.SettlementRecord) error {
	routeTotals, errMarshal := json.Marshal(s.RouteTotals)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar route_totals: %w", errMarshal)
	}
	clientPayments, errMarshal := json.Marshal(s.ClientPayments)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar client_payments: %w", errMarshal)
	}
	var denominations []byte
	if len(s.Denominations) > 0 {
		denominations, errMarshal = json.Marshal(s.Denominations)
		if errMarshal != nil {
			return fmt.Errorf("erro ao codificar denominations: %w", errMarshal)
		}
	}

	_, err := DB.Exec(`
        INSERT INTO settlement_records (`+settlementColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		s.ID, s.DriverID, s.WeekStartDate, s.WeekEndDate,
		s.TotalDelivered, s.TotalReceived, s.CashTotal, s.MBWayTotal, s.TransferTotal, s.OtherTotal,
		s.TotalToSettle, routeTotals, clientPayments, s.Status, s.ConfirmedAt, s.ConfirmedBy,
		s.AmountDelivered, s.Variance, denominations, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir fecho de contas '%s': %w", s.ID, err)
	}
	log.Printf("Fecho de contas %s registado para o condutor %s (%.2f em dinheiro).", s.ID, s.DriverID, s.TotalToSettle)
	return nil
}

// DeleteSettlement cancels a settlement by removing it. Removing the most
// recent confirmed close transparently reopens its period: the next
// calculation simply reaches back to the close before it. Removing an older
// close changes nothing in current totals; callers surface that warning.
func DeleteSettlement(settlementID string) error {
	result, err := DB.Exec(`DELETE FROM settlement_records WHERE id = $1`, settlementID)
	if err != nil {
		return fmt.Errorf("erro ao cancelar fecho de contas '%s': %w", settlementID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("fecho de contas '%s' não encontrado", settlementID)
	}
	log.Printf("Fecho de contas %s cancelado.", settlementID)
	return nil
}
