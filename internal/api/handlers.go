package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"padaria/internal/constants"
	"padaria/internal/db"
	"padaria/internal/ledger"
	"padaria/internal/models"
	"padaria/internal/utils"
)

// jsonResponse is the standard API envelope.
type jsonResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ClientDetailsResponse bundles a client with its recent activity.
type ClientDetailsResponse struct {
	Client       models.Client                  `json:"client"`
	Payments     []models.PaymentRecord         `json:"payments"`
	Deliveries   []models.DeliveryRecord        `json:"deliveries"`
	CurrentDebt  ledger.DebtResult              `json:"current_debt"`
	ProductStats map[string]ledger.ProductStats `json:"product_stats,omitempty"`
}

// RegisterPaymentRequest is the body of POST /api/payments.
type RegisterPaymentRequest struct {
	DriverID  string  `json:"driver_id"`
	ClientID  string  `json:"client_id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	PaidUntil string  `json:"paid_until,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// CompleteLoadRequest is the body of POST /api/loads/{id}/complete.
type CompleteLoadRequest struct {
	ReturnItems map[string]models.ReturnItem `json:"return_items"`
}

// UpdateScheduleRequest is the body of POST /api/admin/client/{id}/schedule.
type UpdateScheduleRequest struct {
	Date     string              `json:"date"` // first day the new plan applies
	Schedule models.WeekSchedule `json:"schedule"`
}

// SkipDateRequest is the body of POST /api/admin/client/{id}/skip-date.
type SkipDateRequest struct {
	Date string `json:"date"`
}

// ConfirmSettlementRequest is the body of the settlement confirmation.
type ConfirmSettlementRequest struct {
	WeekStartDate   string         `json:"week_start_date,omitempty"`
	AmountDelivered *float64       `json:"amount_delivered,omitempty"` // counted cash
	Denominations   map[string]int `json:"denominations,omitempty"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

func sqlNullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

// currentWeekStart returns the Monday of the week containing today.
func currentWeekStart() string {
	now := time.Now().UTC()
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format(constants.DATE_LAYOUT)
}

// GetClientConfig exposes the static configuration the companion app needs
// before login. No secrets here: the route is public.
func GetClientConfig(w http.ResponseWriter, r *http.Request) {
	deps := requestDeps(r)
	cfg := map[string]interface{}{
		"payment_methods": constants.KnownPaymentMethods,
		"method_labels":   constants.MethodDisplayMap,
		"weekday_labels":  constants.WeekdayDisplayMap,
	}
	if deps.Config != nil {
		cfg["mbway_phone"] = deps.Config.MBWayPhone
		cfg["production_window_days"] = deps.Config.ProductionWindowDays
	}
	writeJSONSuccess(w, "Configuração carregada", cfg)
}

// GetClients lists clients, optionally filtered by ?driver_id=.
func GetClients(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driver_id")

	var clients []models.Client
	var err error
	if driverID != "" {
		clients, err = db.GetClientsByDriver(driverID)
	} else {
		clients, err = db.GetAllClients()
	}
	if err != nil {
		log.Printf("GetClients: erro ao carregar clientes: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar clientes.")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("%d clientes encontrados", len(clients)), clients)
}

// GetClientDetails returns one client with payments, deliveries, the debt as
// of today and per-product consumption statistics.
func GetClientDetails(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	client, err := db.GetClientByID(clientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	payments, err := db.GetPaymentsByClient(clientID)
	if err != nil {
		log.Printf("GetClientDetails: erro ao carregar pagamentos de %s: %v", clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar pagamentos.")
		return
	}
	deliveries, err := db.GetDeliveriesByClient(clientID)
	if err != nil {
		log.Printf("GetClientDetails: erro ao carregar entregas de %s: %v", clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar entregas.")
		return
	}
	products, err := db.GetProductIndex()
	if err != nil {
		log.Printf("GetClientDetails: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}

	resp := ClientDetailsResponse{
		Client:      client,
		Payments:    payments,
		Deliveries:  deliveries,
		CurrentDebt: ledger.DebtForPeriod(client, products, deliveries, debtStartDate(client), utils.Today()),
	}
	if client.IsDynamicChoice {
		records, err := db.GetConsumptionByClient(clientID)
		if err != nil {
			log.Printf("GetClientDetails: erro ao carregar consumo de %s: %v", clientID, err)
		} else {
			resp.ProductStats = ledger.BuildProductStats(records)
		}
	}
	writeJSONSuccess(w, "Detalhes do cliente", resp)
}

// debtStartDate is the default start of a debt query: the day after the
// client was last paid through, or the client's creation date. LastPaymentDate
// marks a day already settled, so billing resumes the following day rather
// than on the date itself.
func debtStartDate(client models.Client) string {
	if client.LastPaymentDate.Valid && client.LastPaymentDate.String != "" {
		if paid, err := time.Parse(constants.DATE_LAYOUT, client.LastPaymentDate.String); err == nil {
			return paid.AddDate(0, 0, 1).Format(constants.DATE_LAYOUT)
		}
	}
	if created, err := time.Parse(constants.TIMESTAMP_LAYOUT, client.CreatedAt); err == nil {
		return created.Format(constants.DATE_LAYOUT)
	}
	return utils.Today()
}

// GetClientDebt computes a client's debt for ?from=&to= (both YYYY-MM-DD,
// both optional).
func GetClientDebt(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	client, err := db.GetClientByID(clientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = debtStartDate(client)
	} else if normalized, err := utils.NormalizeDate(from); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		from = normalized
	}
	if to == "" {
		to = utils.Today()
	} else if normalized, err := utils.NormalizeDate(to); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		to = normalized
	}

	products, err := db.GetProductIndex()
	if err != nil {
		log.Printf("GetClientDebt: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}

	var deliveries []models.DeliveryRecord
	if client.IsDynamicChoice {
		deliveries, err = db.GetDeliveriesByClient(clientID)
		if err != nil {
			log.Printf("GetClientDebt: erro ao carregar entregas de %s: %v", clientID, err)
			writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar entregas.")
			return
		}
	}

	result := ledger.DebtForPeriod(client, products, deliveries, from, to)
	writeJSONSuccess(w, fmt.Sprintf("Dívida de %s a %s", from, to), map[string]interface{}{
		"client_id": clientID,
		"from":      from,
		"to":        to,
		"debt":      result,
	})
}

// GetClientPrediction returns the recommended order for a dynamic client on
// ?date= (default today).
func GetClientPrediction(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	client, err := db.GetClientByID(clientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		date = normalized
	}

	records, err := db.GetConsumptionByClient(clientID)
	if err != nil {
		log.Printf("GetClientPrediction: erro ao carregar consumo de %s: %v", clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar histórico de consumo.")
		return
	}
	products, err := db.GetProductIndex()
	if err != nil {
		log.Printf("GetClientPrediction: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}

	prediction := ledger.Predict(client, records, products, date)
	writeJSONSuccess(w, "Previsão calculada", prediction)
}

// GetProducts lists the product catalog.
func GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := db.GetAllProducts()
	if err != nil {
		log.Printf("GetProducts: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("%d produtos", len(products)), products)
}

// GetLoadReport builds the utilization report for ?date= (default today).
func GetLoadReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		date = normalized
	}

	loads, err := db.GetLoadsByDate(date)
	if err != nil {
		log.Printf("GetLoadReport: erro ao carregar cargas de %s: %v", date, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar cargas.")
		return
	}
	writeJSONSuccess(w, "Relatório de cargas", ledger.BuildLoadReport(loads, date))
}

// GetProductionSuggestions computes rolling-window production hints. The
// window length comes from ?days= or the configured default.
func GetProductionSuggestions(w http.ResponseWriter, r *http.Request) {
	deps := requestDeps(r)

	windowDays := constants.DEFAULT_PRODUCTION_WINDOW_DAYS
	if deps.Config != nil {
		windowDays = deps.Config.ProductionWindowDays
	}
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days < 1 || days > 60 {
			writeJSONError(w, http.StatusBadRequest, "Parâmetro 'days' inválido (1-60).")
			return
		}
		windowDays = days
	}

	today := utils.Today()
	windowStart := today
	if t, err := time.Parse(constants.DATE_LAYOUT, today); err == nil {
		windowStart = t.AddDate(0, 0, -(windowDays - 1)).Format(constants.DATE_LAYOUT)
	}

	loads, err := db.GetLoadsSince(windowStart)
	if err != nil {
		log.Printf("GetProductionSuggestions: erro ao carregar cargas desde %s: %v", windowStart, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar cargas.")
		return
	}
	products, err := db.GetAllProducts()
	if err != nil {
		log.Printf("GetProductionSuggestions: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}

	suggestions := ledger.ProductionSuggestions(loads, products, windowDays, today)
	writeJSONSuccess(w, fmt.Sprintf("Sugestões para %d dias", windowDays), suggestions)
}

// GetDriverExtraLoad aggregates the predictions of a driver's dynamic
// clients into one extra-load list for ?date= (default today).
func GetDriverExtraLoad(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	} else if normalized, err := utils.NormalizeDate(date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		date = normalized
	}

	clients, err := db.GetClientsByDriver(driverID)
	if err != nil {
		log.Printf("GetDriverExtraLoad: erro ao carregar clientes de %s: %v", driverID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar clientes.")
		return
	}
	records, err := db.GetConsumptionByDriver(driverID)
	if err != nil {
		log.Printf("GetDriverExtraLoad: erro ao carregar consumo de %s: %v", driverID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar histórico de consumo.")
		return
	}
	products, err := db.GetProductIndex()
	if err != nil {
		log.Printf("GetDriverExtraLoad: erro ao carregar produtos: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
		return
	}

	items := ledger.DriverExtraLoad(clients, records, products, date)
	writeJSONSuccess(w, "Carga extra calculada", map[string]interface{}{
		"driver_id": driverID,
		"date":      date,
		"items":     items,
	})
}

// settlementSnapshot loads everything CalculateSettlement needs for one
// driver.
func settlementSnapshot(driverID string) ([]models.Client, []models.PaymentRecord, []models.DeliveryRecord, []models.SettlementRecord, error) {
	clients, err := db.GetClientsByDriver(driverID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("clientes: %w", err)
	}
	payments, err := db.GetPaymentsByDriver(driverID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("pagamentos: %w", err)
	}
	deliveries, err := db.GetDeliveriesByDriver(driverID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("entregas: %w", err)
	}
	settlements, err := db.GetSettlementsByDriver(driverID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("acertos: %w", err)
	}
	return clients, payments, deliveries, settlements, nil
}

// CalculateDriverSettlement previews the cash due from a driver. The period
// starts at the driver's last confirmed close, or at ?week_start= (default:
// this week's Monday) when no close exists.
func CalculateDriverSettlement(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	weekStart := r.URL.Query().Get("week_start")
	if weekStart == "" {
		weekStart = currentWeekStart()
	} else if normalized, err := utils.NormalizeDate(weekStart); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		weekStart = normalized
	}

	clients, payments, deliveries, settlements, err := settlementSnapshot(driverID)
	if err != nil {
		log.Printf("CalculateDriverSettlement: erro ao carregar dados de %s: %v", driverID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar dados do acerto.")
		return
	}

	calc := ledger.CalculateSettlement(driverID, weekStart, clients, payments, deliveries, settlements)
	writeJSONSuccess(w, "Acerto calculado", calc)
}

// RegisterPayment records a payment and updates the client's paid-through
// date and balance. The payment insert and the client update are two
// independent writes: a payment is never lost because the balance update
// failed.
func RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}

	if err := utils.ValidateAmount(req.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePaymentMethod(req.Method); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
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
	if req.PaidUntil != "" {
		if normalized, err := utils.NormalizeDate(req.PaidUntil); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		} else {
			req.PaidUntil = normalized
		}
	}

	client, err := db.GetClientByID(req.ClientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}
	if req.DriverID == "" {
		req.DriverID = client.DriverID
	}

	payment := models.PaymentRecord{
		ID:        utils.GenerateRecordID(),
		DriverID:  req.DriverID,
		ClientID:  req.ClientID,
		Date:      req.Date,
		Amount:    req.Amount,
		Method:    req.Method,
		PaidUntil: models.NewNullString(req.PaidUntil),
		Notes:     models.NewNullString(req.Notes),
		CreatedAt: utils.NowTimestamp(),
	}
	if err := db.AddPayment(payment); err != nil {
		log.Printf("RegisterPayment: erro ao gravar pagamento de %s: %v", req.ClientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao gravar pagamento.")
		return
	}

	message := "Pagamento registado"
	if req.PaidUntil != "" {
		newBalance := client.CurrentBalance - req.Amount
		if err := db.UpdateClientPaymentInfo(req.ClientID, req.PaidUntil, newBalance); err != nil {
			// The payment itself is already safe.
			log.Printf("RegisterPayment: pagamento %s gravado mas o cliente %s não foi atualizado: %v", payment.ID, req.ClientID, err)
			message = "Pagamento registado, mas a atualização do cliente falhou"
		}
	}
	writeJSONSuccess(w, message, payment)
}

// CompleteLoadHandler closes a driver's load with the returned quantities.
func CompleteLoadHandler(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "id")

	var req CompleteLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}

	load, err := db.GetLoadByID(loadID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Carga não encontrada.")
		return
	}
	if load.Status == constants.LOAD_COMPLETED {
		writeJSONError(w, http.StatusConflict, "Carga já está fechada.")
		return
	}
	if err := utils.ValidateReturnItems(load.LoadItems, req.ReturnItems); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := db.CompleteLoad(loadID, req.ReturnItems); err != nil {
		log.Printf("CompleteLoadHandler: erro ao fechar carga %s: %v", loadID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao fechar carga.")
		return
	}

	updated, err := db.GetLoadByID(loadID)
	if err != nil {
		writeJSONSuccess(w, "Carga fechada", nil)
		return
	}

	if deps := requestDeps(r); deps.Notifier != nil {
		if loads, err := db.GetLoadsByDate(updated.Date); err == nil {
			report := ledger.BuildLoadReport(loads, updated.Date)
			for _, p := range report.Products {
				if p.AlertHighReturn {
					deps.Notifier.HighReturnAlert(updated.Date, p)
				}
			}
		}
	}
	writeJSONSuccess(w, "Carga fechada", updated)
}

// UpdateClientSchedule appends a schedule snapshot and regenerates the
// client's pending deliveries for the effective date. Past snapshots are
// never rewritten.
func UpdateClientSchedule(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
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
	if len(req.Schedule) == 0 {
		writeJSONError(w, http.StatusBadRequest, "O plano semanal não pode estar vazio.")
		return
	}
	for weekday := range req.Schedule {
		if _, ok := constants.WeekdayDisplayMap[weekday]; !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Dia da semana inválido: %s", weekday))
			return
		}
	}

	if _, err := db.GetClientByID(clientID); err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	snapshot := models.ScheduleSnapshot{Date: req.Date, Schedule: req.Schedule}
	if err := db.AppendScheduleSnapshot(clientID, snapshot); err != nil {
		log.Printf("UpdateClientSchedule: erro ao gravar plano de %s: %v", clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao gravar plano.")
		return
	}

	if err := db.ReconcilePendingDeliveries(clientID, req.Date); err != nil {
		log.Printf("UpdateClientSchedule: plano de %s gravado mas as entregas pendentes não foram regeneradas: %v", clientID, err)
		writeJSONSuccess(w, "Plano gravado, mas as entregas pendentes não foram regeneradas", snapshot)
		return
	}
	writeJSONSuccess(w, "Plano atualizado", snapshot)
}

// AddClientSkipDate marks one date as not billable for a client.
func AddClientSkipDate(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req SkipDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if normalized, err := utils.NormalizeDate(req.Date); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.Date = normalized
	}
	if _, err := db.GetClientByID(clientID); err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	if err := db.AddSkippedDate(clientID, req.Date); err != nil {
		log.Printf("AddClientSkipDate: erro ao marcar %s para %s: %v", req.Date, clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao marcar data.")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("Data %s marcada como sem entrega", req.Date), nil)
}

// ConfirmDriverSettlement recomputes the settlement from fresh data and
// records it as a confirmed close. The recorded totals come from the server
// calculation, never from the request body.
func ConfirmDriverSettlement(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	deps := requestDeps(r)

	var req ConfirmSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Corpo do pedido inválido.")
		return
	}
	if req.WeekStartDate == "" {
		req.WeekStartDate = currentWeekStart()
	} else if normalized, err := utils.NormalizeDate(req.WeekStartDate); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.WeekStartDate = normalized
	}
	if req.AmountDelivered != nil && *req.AmountDelivered < 0 {
		writeJSONError(w, http.StatusBadRequest, "O valor entregue não pode ser negativo.")
		return
	}

	clients, payments, deliveries, settlements, err := settlementSnapshot(driverID)
	if err != nil {
		log.Printf("ConfirmDriverSettlement: erro ao carregar dados de %s: %v", driverID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar dados do acerto.")
		return
	}

	calc := ledger.CalculateSettlement(driverID, req.WeekStartDate, clients, payments, deliveries, settlements)

	now := utils.NowTimestamp()
	record := models.SettlementRecord{
		ID:             utils.GenerateSettlementID(),
		DriverID:       driverID,
		WeekStartDate:  calc.WeekStartDate,
		WeekEndDate:    calc.WeekEndDate,
		TotalDelivered: calc.TotalDelivered,
		TotalReceived:  calc.TotalReceived,
		CashTotal:      calc.CashTotal,
		MBWayTotal:     calc.MBWayTotal,
		TransferTotal:  calc.TransferTotal,
		OtherTotal:     calc.OtherTotal,
		TotalToSettle:  calc.TotalToSettle,
		RouteTotals:    calc.RouteTotals,
		ClientPayments: calc.ClientPayments,
		Status:         constants.SETTLEMENT_CONFIRMED,
		ConfirmedAt:    models.NewNullString(now),
		Denominations:  req.Denominations,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if user, ok := r.Context().Value(UserContextKey).(AuthUser); ok {
		record.ConfirmedBy = models.NewNullString(user.UserID)
	}
	if req.AmountDelivered != nil {
		record.AmountDelivered = models.NullFloat64{NullFloat64: sqlNullFloat(*req.AmountDelivered)}
		record.Variance = models.NullFloat64{NullFloat64: sqlNullFloat(*req.AmountDelivered - calc.TotalToSettle)}
	}

	if err := db.AddSettlement(record); err != nil {
		log.Printf("ConfirmDriverSettlement: erro ao gravar acerto de %s: %v", driverID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao gravar acerto.")
		return
	}

	if deps.Notifier != nil {
		deps.Notifier.SettlementConfirmed(record)
	}
	writeJSONSuccess(w, "Acerto confirmado", record)
}

// CancelSettlement deletes a settlement record. Cancelling the most recent
// confirmed close reopens its period: the next calculation falls back to the
// close before it. Cancelling an older close is allowed but flagged, because
// the periods after it were computed against it.
func CancelSettlement(w http.ResponseWriter, r *http.Request) {
	settlementID := chi.URLParam(r, "id")

	settlement, err := db.GetSettlementByID(settlementID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Acerto não encontrado.")
		return
	}

	warning := false
	if settlement.Status == constants.SETTLEMENT_CONFIRMED {
		all, err := db.GetSettlementsByDriver(settlement.DriverID)
		if err != nil {
			log.Printf("CancelSettlement: erro ao carregar acertos de %s: %v", settlement.DriverID, err)
			writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar acertos.")
			return
		}
		if latest, ok := ledger.LatestConfirmedSettlement(all, settlement.DriverID); ok && latest.ID != settlement.ID {
			warning = true
		}
	}

	if err := db.DeleteSettlement(settlementID); err != nil {
		log.Printf("CancelSettlement: erro ao anular acerto %s: %v", settlementID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao anular acerto.")
		return
	}

	message := "Acerto anulado"
	if warning {
		message = "Acerto anulado. Atenção: não era o fecho mais recente; os períodos seguintes foram calculados sobre ele."
	}
	writeJSONSuccess(w, message, map[string]interface{}{
		"settlement_id":    settlementID,
		"driver_id":        settlement.DriverID,
		"not_latest_close": warning,
	})
}
