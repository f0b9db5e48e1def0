package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"padaria/internal/constants"
	"padaria/internal/ledger"
	"padaria/internal/models"
	"padaria/internal/utils"
)

const loadColumns = `id, driver_id, date, load_items, return_items, status,
    total_loaded, total_sold, total_returned, utilization_rate, created_at, updated_at`

func scanLoad(row interface{ Scan(...interface{}) error }) (models.LoadRecord, error) {
	var l models.LoadRecord
	var loadItems, returnItems []byte
	err := row.Scan(&l.ID, &l.DriverID, &l.Date, &loadItems, &returnItems, &l.Status,
		&l.TotalLoaded, &l.TotalSold, &l.TotalReturned, &l.UtilizationRate, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return l, err
	}
	if len(loadItems) > 0 {
		if errJSON := json.Unmarshal(loadItems, &l.LoadItems); errJSON != nil {
			log.Printf("scanLoad: erro ao descodificar load_items da carga %s: %v", l.ID, errJSON)
		}
	}
	if len(returnItems) > 0 {
		if errJSON := json.Unmarshal(returnItems, &l.ReturnItems); errJSON != nil {
			log.Printf("scanLoad: erro ao descodificar return_items da carga %s: %v", l.ID, errJSON)
		}
	}
	return l, nil
}

// GetLoadByID returns one load.
func GetLoadByID(loadID string) (models.LoadRecord, error) {
	row := DB.QueryRow(`SELECT `+loadColumns+` FROM load_records WHERE id = $1`, loadID)
	l, err := scanLoad(row)
	if err == sql.ErrNoRows {
		return l, fmt.Errorf("carga '%s' não encontrada", loadID)
	}
	return l, err
}

// GetLoadsByDate returns every driver's load for one date.
func GetLoadsByDate(date string) ([]models.LoadRecord, error) {
	rows, err := DB.Query(`SELECT `+loadColumns+` FROM load_records WHERE date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar cargas de %s: %w", date, err)
	}
	defer rows.Close()

	var loads []models.LoadRecord
	for rows.Next() {
		l, errScan := scanLoad(rows)
		if errScan != nil {
			log.Printf("GetLoadsByDate: erro ao ler carga: %v", errScan)
			continue
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

// GetLoadsSince returns loads from fromDate (inclusive) onwards; the
// production-suggestion window feeds from this.
func GetLoadsSince(fromDate string) ([]models.LoadRecord, error) {
	rows, err := DB.Query(`SELECT `+loadColumns+` FROM load_records WHERE date >= $1 ORDER BY date`, fromDate)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar cargas desde %s: %w", fromDate, err)
	}
	defer rows.Close()

	var loads []models.LoadRecord
	for rows.Next() {
		l, errScan := scanLoad(rows)
		if errScan != nil {
			log.Printf("GetLoadsSince: erro ao ler carga: %v", errScan)
			continue
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

// AddLoad registers a driver's morning load. One load per driver per date.
func AddLoad(l models.LoadRecord) error {
	l.TotalLoaded, l.TotalSold, l.TotalReturned, l.UtilizationRate = ledger.LoadTotals(l)

	loadItems, errMarshal := json.Marshal(l.LoadItems)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar load_items: %w", errMarshal)
	}
	returnItems, errMarshal := json.Marshal(l.ReturnItems)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar return_items: %w", errMarshal)
	}

	_, err := DB.Exec(`
        INSERT INTO load_records (`+loadColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		l.ID, l.DriverID, l.Date, loadItems, returnItems, l.Status,
		l.TotalLoaded, l.TotalSold, l.TotalReturned, l.UtilizationRate, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir carga '%s': %w", l.ID, err)
	}
	return nil
}

// CompleteLoad closes a load with the driver's reported returns. The caller
// must have validated the sold+returned==loaded invariant already
// (utils.ValidateReturnItems); here the derived totals are recomputed and
// the status flips to completed.
func CompleteLoad(loadID string, returnItems map[string]models.ReturnItem) error {
	load, err := GetLoadByID(loadID)
	if err != nil {
		return err
	}
	if load.Status == constants.LOAD_COMPLETED {
		return fmt.Errorf("carga '%s' já está concluída", loadID)
	}

	load.ReturnItems = returnItems
	load.Status = constants.LOAD_COMPLETED
	load.TotalLoaded, load.TotalSold, load.TotalReturned, load.UtilizationRate = ledger.LoadTotals(load)

	returnJSON, errMarshal := json.Marshal(load.ReturnItems)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar return_items: %w", errMarshal)
	}
	_, err = DB.Exec(`
        UPDATE load_records
        SET return_items = $1, status = $2, total_loaded = $3, total_sold = $4,
            total_returned = $5, utilization_rate = $6, updated_at = $7
        WHERE id = $8`,
		returnJSON, load.Status, load.TotalLoaded, load.TotalSold,
		load.TotalReturned, load.UtilizationRate, utils.NowTimestamp(), loadID)
	if err != nil {
		return fmt.Errorf("erro ao concluir carga '%s': %w", loadID, err)
	}
	log.Printf("Carga %s concluída: %d carregados, %d vendidos (%d%%).", loadID, load.TotalLoaded, load.TotalSold, load.UtilizationRate)
	return nil
}
