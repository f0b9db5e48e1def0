package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lib/pq"

	"padaria/internal/models"
	"padaria/internal/utils"
)

const clientColumns = `id, name, driver_id, route_id, address, phone, payment_frequency,
    custom_prices, skipped_dates, last_payment_date, current_balance,
    schedule, schedule_history, is_dynamic_choice, is_active, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (models.Client, error) {
	var c models.Client
	var customPrices, schedule, scheduleHistory []byte
	var createdAt, updatedAt sql.NullString

	err := row.Scan(
		&c.ID, &c.Name, &c.DriverID, &c.RouteID, &c.Address, &c.Phone, &c.PaymentFrequency,
		&customPrices, pq.Array(&c.SkippedDates), &c.LastPaymentDate, &c.CurrentBalance,
		&schedule, &scheduleHistory, &c.IsDynamicChoice, &c.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return c, err
	}
	c.CreatedAt = createdAt.String
	c.UpdatedAt = updatedAt.String

	if len(customPrices) > 0 {
		if errJSON := json.Unmarshal(customPrices, &c.CustomPrices); errJSON != nil {
			log.Printf("scanClient: erro ao descodificar custom_prices do cliente %s: %v", c.ID, errJSON)
		}
	}
	if len(schedule) > 0 {
		if errJSON := json.Unmarshal(schedule, &c.Schedule); errJSON != nil {
			log.Printf("scanClient: erro ao descodificar schedule do cliente %s: %v", c.ID, errJSON)
		}
	}
	if len(scheduleHistory) > 0 {
		if errJSON := json.Unmarshal(scheduleHistory, &c.ScheduleHistory); errJSON != nil {
			log.Printf("scanClient: erro ao descodificar schedule_history do cliente %s: %v", c.ID, errJSON)
		}
	}
	return c, nil
}

// GetAllClients returns every active client.
func GetAllClients() ([]models.Client, error) {
	rows, err := DB.Query(`SELECT ` + clientColumns + ` FROM clients WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar clientes: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, errScan := scanClient(rows)
		if errScan != nil {
			log.Printf("GetAllClients: erro ao ler cliente: %v", errScan)
			continue
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClientByID returns one client.
func GetClientByID(clientID string) (models.Client, error) {
	row := DB.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id = $1`, clientID)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return c, fmt.Errorf("cliente '%s' não encontrado", clientID)
	}
	return c, err
}

// GetClientsByDriver returns the active clients of one driver.
func GetClientsByDriver(driverID string) ([]models.Client, error) {
	rows, err := DB.Query(`SELECT `+clientColumns+` FROM clients WHERE driver_id = $1 AND is_active = TRUE ORDER BY name`, driverID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar clientes do condutor %s: %w", driverID, err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, errScan := scanClient(rows)
		if errScan != nil {
			log.Printf("GetClientsByDriver: erro ao ler cliente: %v", errScan)
			continue
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// AddClient inserts a new client.
func AddClient(c models.Client) error {
	customPrices, _ := json.Marshal(c.CustomPrices)
	schedule, _ := json.Marshal(c.Schedule)
	scheduleHistory, _ := json.Marshal(c.ScheduleHistory)

	_, err := DB.Exec(`
        INSERT INTO clients (`+clientColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.ID, c.Name, c.DriverID, c.RouteID, c.Address, c.Phone, c.PaymentFrequency,
		customPrices, pq.Array(c.SkippedDates), c.LastPaymentDate, c.CurrentBalance,
		schedule, scheduleHistory, c.IsDynamicChoice, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir cliente '%s': %w", c.ID, err)
	}
	return nil
}

// UpdateClientPaymentInfo advances the client's paid-through date and
// balance after a payment. This is deliberately a separate write from the
// payment insert: if it fails the payment still exists and later debt
// calculations remain correct, because debt is derived from the event log.
func UpdateClientPaymentInfo(clientID, paidUntil string, newBalance float64) error {
	result, err := DB.Exec(`
        UPDATE clients SET last_payment_date = $1, current_balance = $2, updated_at = $3
        WHERE id = $4`,
		paidUntil, newBalance, utils.NowTimestamp(), clientID)
	if err != nil {
		return fmt.Errorf("erro ao atualizar dados de pagamento do cliente '%s': %w", clientID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("cliente '%s' não encontrado", clientID)
	}
	return nil
}

// AddSkippedDate marks one date as not billable for a client.
func AddSkippedDate(clientID, date string) error {
	_, err := DB.Exec(`
        UPDATE clients
        SET skipped_dates = array_append(skipped_dates, $1), updated_at = $2
        WHERE id = $3 AND NOT ($1 = ANY(skipped_dates))`,
		date, utils.NowTimestamp(), clientID)
	if err != nil {
		return fmt.Errorf("erro ao marcar data saltada para o cliente '%s': %w", clientID, err)
	}
	return nil
}

// AppendScheduleSnapshot records a schedule change: the new plan becomes the
// current schedule and a dated snapshot is appended to the history, which is
// append-only so past periods always bill under the plan of their time.
func AppendScheduleSnapshot(clientID string, snapshot models.ScheduleSnapshot) error {
	client, err := GetClientByID(clientID)
	if err != nil {
		return err
	}
	history := append(client.ScheduleHistory, snapshot)

	scheduleJSON, errMarshal := json.Marshal(snapshot.Schedule)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar schedule: %w", errMarshal)
	}
	historyJSON, errMarshal := json.Marshal(history)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar schedule_history: %w", errMarshal)
	}

	_, err = DB.Exec(`
        UPDATE clients SET schedule = $1, schedule_history = $2, updated_at = $3
        WHERE id = $4`,
		scheduleJSON, historyJSON, utils.NowTimestamp(), clientID)
	if err != nil {
		return fmt.Errorf("erro ao guardar alteração de plano do cliente '%s': %w", clientID, err)
	}
	log.Printf("Plano do cliente %s alterado a partir de %s (%d snapshots).", clientID, snapshot.Date, len(history))
	return nil
}
