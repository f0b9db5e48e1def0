package db

import (
	"encoding/json"
	"fmt"
	"log"

	"padaria/internal/constants"
	"padaria/internal/ledger"
	"padaria/internal/models"
	"padaria/internal/utils"
)

const deliveryColumns = `id, client_id, driver_id, route_id, date, items, status, total_value,
    notes, delivered_at, created_at, updated_at`

func scanDeliveryRows(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]models.DeliveryRecord, error) {
	var records []models.DeliveryRecord
	for rows.Next() {
		var d models.DeliveryRecord
		var items []byte
		if err := rows.Scan(&d.ID, &d.ClientID, &d.DriverID, &d.RouteID, &d.Date, &items, &d.Status,
			&d.TotalValue, &d.Notes, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			log.Printf("scanDeliveryRows: erro ao ler entrega: %v", err)
			continue
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &d.Items); err != nil {
				log.Printf("scanDeliveryRows: erro ao descodificar items da entrega %s: %v", d.ID, err)
			}
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

// GetDeliveriesByClient returns a client's deliveries, oldest first.
func GetDeliveriesByClient(clientID string) ([]models.DeliveryRecord, error) {
	rows, err := DB.Query(`SELECT `+deliveryColumns+` FROM delivery_records WHERE client_id = $1 ORDER BY date, created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar entregas do cliente %s: %w", clientID, err)
	}
	defer rows.Close()
	return scanDeliveryRows(rows)
}

// GetDeliveriesByDriver returns a driver's deliveries, oldest first.
func GetDeliveriesByDriver(driverID string) ([]models.DeliveryRecord, error) {
	rows, err := DB.Query(`SELECT `+deliveryColumns+` FROM delivery_records WHERE driver_id = $1 ORDER BY date, created_at`, driverID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar entregas do condutor %s: %w", driverID, err)
	}
	defer rows.Close()
	return scanDeliveryRows(rows)
}

// AddDeliveryRecord inserts a delivery (pending or already realized).
func AddDeliveryRecord(d models.DeliveryRecord) error {
	items, errMarshal := json.Marshal(d.Items)
	if errMarshal != nil {
		return fmt.Errorf("erro ao codificar items da entrega: %w", errMarshal)
	}
	_, err := DB.Exec(`
        INSERT INTO delivery_records (`+deliveryColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.ClientID, d.DriverID, d.RouteID, d.Date, items, d.Status, d.TotalValue,
		d.Notes, d.DeliveredAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir entrega '%s': %w", d.ID, err)
	}
	return nil
}

// MarkDeliveryStatus transitions a delivery and stamps delivered_at when it
// becomes delivered.
func MarkDeliveryStatus(deliveryID, status string) error {
	now := utils.NowTimestamp()
	var err error
	if status == constants.DELIVERY_DELIVERED {
		_, err = DB.Exec(`UPDATE delivery_records SET status = $1, delivered_at = $2, updated_at = $2 WHERE id = $3`,
			status, now, deliveryID)
	} else {
		_, err = DB.Exec(`UPDATE delivery_records SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, deliveryID)
	}
	if err != nil {
		return fmt.Errorf("erro ao atualizar estado da entrega '%s': %w", deliveryID, err)
	}
	return nil
}

// ReconcilePendingDeliveries regenerates a client's pending deliveries for a
// date after a schedule change. This is the explicit follow-up step to
// AppendScheduleSnapshot: the plan edit itself never touches delivery rows,
// so the billing engines stay free of hidden write coupling.
func ReconcilePendingDeliveries(clientID, date string) error {
	client, err := GetClientByID(clientID)
	if err != nil {
		return err
	}
	products, err := GetProductIndex()
	if err != nil {
		return err
	}

	schedule := ledger.ScheduleAt(client, date)
	items := schedule[utils.WeekdayKey(date)]

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação de reconciliação: %w", err)
	}
	var opErr error
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if opErr != nil {
			tx.Rollback()
			log.Printf("ReconcilePendingDeliveries: rollback devido a erro: %v", opErr)
		} else {
			opErr = tx.Commit()
			if opErr != nil {
				log.Printf("ReconcilePendingDeliveries: erro ao confirmar transação: %v", opErr)
			}
		}
	}()

	_, opErr = tx.Exec(`DELETE FROM delivery_records WHERE client_id = $1 AND date = $2 AND status = $3`,
		clientID, date, constants.DELIVERY_PENDING)
	if opErr != nil {
		return fmt.Errorf("erro ao remover entregas pendentes: %w", opErr)
	}

	if len(items) == 0 {
		log.Printf("ReconcilePendingDeliveries: cliente %s sem plano para %s, nada a gerar.", clientID, date)
		return nil
	}

	delivery := models.DeliveryRecord{
		ID:        utils.GenerateRecordID(),
		ClientID:  client.ID,
		DriverID:  client.DriverID,
		RouteID:   client.RouteID,
		Date:      date,
		Status:    constants.DELIVERY_PENDING,
		CreatedAt: utils.NowTimestamp(),
		UpdatedAt: utils.NowTimestamp(),
	}
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		price := client.EffectivePrice(product)
		delivery.Items = append(delivery.Items, models.DeliveryItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			TotalPrice: float64(item.Quantity) * price,
		})
		delivery.TotalValue += float64(item.Quantity) * price
	}

	itemsJSON, errMarshal := json.Marshal(delivery.Items)
	if errMarshal != nil {
		opErr = fmt.Errorf("erro ao codificar items da entrega: %w", errMarshal)
		return opErr
	}
	_, opErr = tx.Exec(`
        INSERT INTO delivery_records (`+deliveryColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		delivery.ID, delivery.ClientID, delivery.DriverID, delivery.RouteID, delivery.Date, itemsJSON,
		delivery.Status, delivery.TotalValue, delivery.Notes, delivery.DeliveredAt,
		delivery.CreatedAt, delivery.UpdatedAt)
	if opErr != nil {
		return fmt.Errorf("erro ao regenerar entrega pendente: %w", opErr)
	}
	log.Printf("Entrega pendente do cliente %s em %s regenerada após alteração de plano.", clientID, date)
	return nil
}
