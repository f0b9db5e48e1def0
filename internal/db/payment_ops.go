package db

import (
	"database/sql"
	"fmt"
	"log"

	"padaria/internal/models"
)

const paymentColumns = `id, driver_id, client_id, date, amount, method, paid_until, notes, created_at`

func scanPaymentRows(rows *sql.Rows) ([]models.PaymentRecord, error) {
	var payments []models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.DriverID, &p.ClientID, &p.Date, &p.Amount, &p.Method,
			&p.PaidUntil, &p.Notes, &p.CreatedAt); err != nil {
			log.Printf("scanPaymentRows: erro ao ler pagamento: %v", err)
			continue
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPaymentsByDriver returns a driver's payments in creation order.
func GetPaymentsByDriver(driverID string) ([]models.PaymentRecord, error) {
	rows, err := DB.Query(`SELECT `+paymentColumns+` FROM payment_records WHERE driver_id = $1 ORDER BY created_at`, driverID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pagamentos do condutor %s: %w", driverID, err)
	}
	defer rows.Close()
	return scanPaymentRows(rows)
}

// GetPaymentsByClient returns a client's payments in creation order.
func GetPaymentsByClient(clientID string) ([]models.PaymentRecord, error) {
	rows, err := DB.Query(`SELECT `+paymentColumns+` FROM payment_records WHERE client_id = $1 ORDER BY created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pagamentos do cliente %s: %w", clientID, err)
	}
	defer rows.Close()
	return scanPaymentRows(rows)
}

// AddPayment writes one collection event. Payments are append-only: they are
// the source of truth settlements derive from, so there is no update or
// delete operation.
func AddPayment(p models.PaymentRecord) error {
	_, err := DB.Exec(`
        INSERT INTO payment_records (`+paymentColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.DriverID, p.ClientID, p.Date, p.Amount, p.Method, p.PaidUntil, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao registar pagamento '%s': %w", p.ID, err)
	}
	log.Printf("Pagamento %s registado: cliente %s, %.2f (%s).", p.ID, p.ClientID, p.Amount, p.Method)
	return nil
}
