package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"padaria/internal/constants"
	"padaria/internal/db"
	"padaria/internal/models"
	"padaria/internal/utils"
)

// CreateLoadRequest is the body of POST /api/loads.
type CreateLoadRequest struct {
	DriverID  string         `json:"driver_id"`
	Date      string         `json:"date"`
	LoadItems map[string]int `json:"load_items"`
}

// RegisterDeliveryRequest is the body of POST /api/deliveries.
type RegisterDeliveryRequest struct {
	ClientID  string                `json:"client_id"`
	Date      string                `json:"date"`
	Items     []models.DeliveryItem `json:"items"`
	Delivered bool                  `json:"delivered"` // false registers a pending delivery
	Notes     string                `json:"notes,omitempty"`
}

// DeliveryStatusRequest is the body of POST /api/deliveries/{id}/status.
type DeliveryStatusRequest struct {
	Status string `json:"status"`
}

// RegisterConsumptionRequest is the body of POST /api/consumption.
type RegisterConsumptionRequest struct {
	ClientID string                   `json:"client_id"`
	Date     string                   `json:"date"`
	Items    []models.ConsumptionItem `json:"items"`
}

// CreateClientRequest is the body of POST /api/admin/clients.
type CreateClientRequest struct {
	Name             string              `json:"name"`
	DriverID         string              `json:"driver_id"`
	RouteID          string              `json:"route_id,omitempty"`
	Address          string              `json:"address,omitempty"`
	Phone            string              `json:"phone,omitempty"`
	PaymentFrequency string              `json:"payment_frequency"`
	CustomPrices     map[string]float64  `json:"custom_prices,omitempty"`
	Schedule         models.WeekSchedule `json:"schedule,omitempty"`
	IsDynamicChoice  bool                `json:"is_dynamic_choice"`
}

// ProductRequest is the body of the product create/update endpoints.
type ProductRequest struct {
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Unit           string  `json:"unit"`
	TargetQuantity int     `json:"target_quantity"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// CreateLoadHandler registers a driver's morning load.
func CreateLoadHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if req.DriverID == "" || len(req.LoadItems) == 0 {
		writeJSONError(w, http.StatusBadRequest, "driver_id e load_items são obrigatórios.")
		return
	}
	for productID, quantity := range req.LoadItems {
		if quantity <= 0 {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Quantidade inválida para o produto '%s'.", productID))
			return
		}
	}
	if req.Date == "" {
		req.Date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(req.Date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.Date = normalized
	}

	now := utils.NowTimestamp()
	load := models.LoadRecord{
		ID:        utils.GenerateRecordID(),
		DriverID:  req.DriverID,
		Date:      req.Date,
		LoadItems: req.LoadItems,
		Status:    constants.LOAD_IN_ROUTE,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.AddLoad(load); err != nil {
		log.Printf("CreateLoadHandler: erro ao registar carga de %s em %s: %v", req.DriverID, req.Date, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao registar carga. O condutor já tem carga nesta data?")
		return
	}
	writeJSONSuccess(w, "Carga registada", load)
}

// RegisterDelivery records one delivery for a client. Delivered records feed
// dynamic billing and settlements; pending records are the day's plan.
func RegisterDelivery(w http.ResponseWriter, r *http.Request) {
	var req RegisterDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if len(req.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "A entrega precisa de pelo menos um item.")
		return
	}
	if req.Date == "" {
		req.Date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(req.Date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.Date = normalized
	}

	client, err := db.GetClientByID(req.ClientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	now := utils.NowTimestamp()
	delivery := models.DeliveryRecord{
		ID:        utils.GenerateRecordID(),
		ClientID:  client.ID,
		DriverID:  client.DriverID,
		RouteID:   client.RouteID,
		Date:      req.Date,
		Items:     req.Items,
		Status:    constants.DELIVERY_PENDING,
		Notes:     models.NewNullString(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, item := range req.Items {
		total := float64(item.Quantity) * item.UnitPrice
		delivery.Items[i].TotalPrice = total
		delivery.TotalValue += total
	}
	if req.Delivered {
		delivery.Status = constants.DELIVERY_DELIVERED
		delivery.DeliveredAt = models.NewNullString(now)
	}

	if err := db.AddDeliveryRecord(delivery); err != nil {
		log.Printf("RegisterDelivery: erro ao registar entrega para %s: %v", req.ClientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao registar entrega.")
		return
	}

	// Realized dynamic deliveries also become consumption history, which is
	// what the prediction engine learns from.
	if req.Delivered && client.IsDynamicChoice {
		if err := db.AddConsumptionRecord(consumptionFromDelivery(client, delivery)); err != nil {
			log.Printf("RegisterDelivery: entrega %s registada mas o histórico de consumo falhou: %v", delivery.ID, err)
		}
	}
	writeJSONSuccess(w, "Entrega registada", delivery)
}

func consumptionFromDelivery(client models.Client, d models.DeliveryRecord) models.ConsumptionRecord {
	record := models.ConsumptionRecord{
		ID:         utils.GenerateRecordID(),
		ClientID:   client.ID,
		DriverID:   client.DriverID,
		Date:       d.Date,
		DayOfWeek:  utils.WeekdayKey(d.Date),
		TotalValue: d.TotalValue,
		CreatedAt:  utils.NowTimestamp(),
	}
	for _, item := range d.Items {
		record.Items = append(record.Items, models.ConsumptionItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}
	return record
}

// UpdateDeliveryStatus transitions a delivery between pending, delivered and
// not_delivered.
func UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	deliveryID := chi.URLParam(r, "id")

	var req DeliveryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	switch req.Status {
	case constants.DELIVERY_PENDING, constants.DELIVERY_DELIVERED, constants.DELIVERY_NOT_DELIVERED:
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Estado de entrega desconhecido: '%s'.", req.Status))
		return
	}

	if err := db.MarkDeliveryStatus(deliveryID, req.Status); err != nil {
		log.Printf("UpdateDeliveryStatus: erro ao atualizar entrega %s: %v", deliveryID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao atualizar entrega.")
		return
	}
	writeJSONSuccess(w, "Estado da entrega atualizado", nil)
}

// RegisterConsumption writes a consumption record directly, for dynamic
// deliveries recorded after the fact.
func RegisterConsumption(w http.ResponseWriter, r *http.Request) {
	var req RegisterConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if len(req.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "O consumo precisa de pelo menos um item.")
		return
	}
	if req.Date == "" {
		req.Date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(req.Date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.Date = normalized
	}

	client, err := db.GetClientByID(req.ClientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	record := models.ConsumptionRecord{
		ID:        utils.GenerateRecordID(),
		ClientID:  client.ID,
		DriverID:  client.DriverID,
		Date:      req.Date,
		DayOfWeek: utils.WeekdayKey(req.Date),
		Items:     req.Items,
		CreatedAt: utils.NowTimestamp(),
	}
	for _, item := range record.Items {
		record.TotalValue += float64(item.Quantity) * item.Price
	}

	if err := db.AddConsumptionRecord(record); err != nil {
		log.Printf("RegisterConsumption: erro ao registar consumo de %s: %v", req.ClientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao registar consumo.")
		return
	}
	writeJSONSuccess(w, "Consumo registado", record)
}

// CreateClient registers a new client.
func CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if req.Name == "" || req.DriverID == "" {
		writeJSONError(w, http.StatusBadRequest, "name e driver_id são obrigatórios.")
		return
	}
	switch req.PaymentFrequency {
	case constants.FREQUENCY_DAILY, constants.FREQUENCY_WEEKLY, constants.FREQUENCY_MONTHLY:
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Frequência de pagamento desconhecida: '%s'.", req.PaymentFrequency))
		return
	}

	now := utils.NowTimestamp()
	client := models.Client{
		ID:               utils.GenerateRecordID(),
		Name:             req.Name,
		DriverID:         req.DriverID,
		RouteID:          models.NewNullString(req.RouteID),
		Address:          models.NewNullString(req.Address),
		Phone:            models.NewNullString(req.Phone),
		PaymentFrequency: req.PaymentFrequency,
		CustomPrices:     req.CustomPrices,
		Schedule:         req.Schedule,
		IsDynamicChoice:  req.IsDynamicChoice,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(req.Schedule) > 0 {
		client.ScheduleHistory = []models.ScheduleSnapshot{{Date: utils.Today(), Schedule: req.Schedule}}
	}

	if err := db.AddClient(client); err != nil {
		log.Printf("CreateClient: erro ao registar cliente '%s': %v", req.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao registar cliente.")
		return
	}
	writeJSONSuccess(w, "Cliente registado", client)
}

// CreateProduct adds a catalog product.
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "name é obrigatório.")
		return
	}
	if err := utils.ValidateAmount(req.Price); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := utils.NowTimestamp()
	product := models.Product{
		ID:             utils.GenerateRecordID(),
		Name:           req.Name,
		Price:          req.Price,
		Unit:           req.Unit,
		TargetQuantity: req.TargetQuantity,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if product.Unit == "" {
		product.Unit = "un"
	}

	if err := db.AddProduct(product); err != nil {
		log.Printf("CreateProduct: erro ao registar produto '%s': %v", req.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao registar produto.")
		return
	}
	writeJSONSuccess(w, "Produto registado", product)
}

// UpdateProductHandler updates a product's price, unit, production target
// and active flag.
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if err := utils.ValidateAmount(req.Price); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := db.GetProductIndex()
	if err != nil {
		log.Printf("UpdateProductHandler: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}
	existing, ok := products[productID]
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Produto não encontrado.")
		return
	}

	existing.Name = req.Name
	existing.Price = req.Price
	if req.Unit != "" {
		existing.Unit = req.Unit
	}
	existing.TargetQuantity = req.TargetQuantity
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := db.UpdateProduct(existing); err != nil {
		log.Printf("UpdateProductHandler: erro ao atualizar produto '%s': %v", productID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao atualizar produto.")
		return
	}
	writeJSONSuccess(w, "Produto atualizado", existing)
}
