package db

import (
	"encoding/json"
	"fmt"
	"log"

	"padaria/internal/models"
)

// GetConsumptionByClient returns a dynamic client's full consumption history,
// oldest first.
func GetConsumptionByClient(clientID string) ([]models.ConsumptionRecord, error) {
	rows, err := DB.Query(`
        SELECT id, client_id, driver_id, date, day_of_week, items, total_value, created_at
        FROM consumption_records WHERE client_id = $1 ORDER BY date, created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar consumos do cliente %s: %w", clientID, err)
	}
	defer rows.Close()
	return scanConsumptionRows(rows)
}

// GetConsumptionByDriver returns the consumption history of every client of
// one driver; the extra-load summary feeds from this.
func GetConsumptionByDriver(driverID string) ([]models.ConsumptionRecord, error) {
	rows, err := DB.Query(`
        SELECT id, client_id, driver_id, date, day_of_week, items, total_value, created_at
        FROM consumption_records WHERE driver_id = $1 ORDER BY date, created_at`, driverID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar consumos do condutor %s: %w", driverID, err)
	}
	defer rows.Close()
	return scanConsumptionRows(rows)
}

func scanConsumptionRows(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]models.ConsumptionRecord, error) {
	var records []models.ConsumptionRecord
	for rows.Next() {
		var r models.ConsumptionRecord
		var items []byte
		if err := rows.Scan(&r.ID, &r.ClientID, &r.DriverID, &r.Date, &r.DayOfWeek, &items, &r.TotalValue, &r.CreatedAt); err != nil {
			log.Printf("scanConsumptionRows: erro ao ler registo: %v", err)
			continue
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &r.Items); err != nil {
				log.Printf("scanConsumptionRows: erro ao descodificar items do registo %s: %v", r.ID, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AddConsumptionRecord writes one immutable consumption record. There is no
// update operation: history records are never edited.
func AddConsumptionRecord(r models.ConsumptionRecord) error {
	items, errMarshal := json.Marshal(r.Items)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar items do consumo: %w", errMarshal)
	}
	_, err := DB.Exec(`
        INSERT INTO consumption_records (id, client_id, driver_id, date, day_of_week, items, total_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.ClientID, r.DriverID, r.Date, r.DayOfWeek, items, r.TotalValue, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir consumo '%s': %w", r.ID, err)
	}
	return nil
}
