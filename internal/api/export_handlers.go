package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"padaria/internal/constants"
	"padaria/internal/db"
	"padaria/internal/ledger"
	"padaria/internal/utils"
)

// GetClientPaymentQR renders an MBWay payment QR for a client's current
// debt, or for ?amount= when given.
func GetClientPaymentQR(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	deps := requestDeps(r)

	if deps.Config == nil || deps.Config.MBWayPhone == "" {
		writeJSONError(w, http.StatusServiceUnavailable, "MBWay não está configurado.")
		return
	}

	client, err := db.GetClientByID(clientID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Cliente não encontrado.")
		return
	}

	var amount float64
	if amountParam := r.URL.Query().Get("amount"); amountParam != "" {
		amount, err = strconv.ParseFloat(amountParam, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Parâmetro 'amount' inválido.")
			return
		}
	} else {
		products, err := db.GetProductIndex()
		if err != nil {
			log.Printf("GetClientPaymentQR: erro ao carregar produtos: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar produtos.")
			return
		}
		deliveries, err := db.GetDeliveriesByClient(clientID)
		if err != nil {
			log.Printf("GetClientPaymentQR: erro ao carregar entregas de %s: %v", clientID, err)
			writeJSONError(w, http.StatusInternalServerError, "Erro ao carregar entregas.")
			return
		}
		debt := ledger.DebtForPeriod(client, products, deliveries, debtStartDate(client), utils.Today())
		amount = debt.Total
	}
	if err := utils.ValidateAmount(amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	uri := utils.BuildMBWayURI(deps.Config.MBWayPhone, amount, client.Name)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GetClientPaymentQR: erro ao gerar QR para %s: %v", clientID, err)
		writeJSONError(w, http.StatusInternalServerError, "Erro ao gerar código QR.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ExportSettlementExcel streams a confirmed settlement as an .xlsx file with
// a summary block, the per-route totals and the audit line per payment.
func ExportSettlementExcel(w http.ResponseWriter, r *http.Request) {
	settlementID := chi.URLParam(r, "id")

	settlement, err := db.GetSettlementByID(settlementID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Acerto não encontrado.")
		return
	}

	sheetName := "Acerto"
	f := excelize.NewFile()
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	summary := [][2]interface{}{
		{"Acerto", settlement.ID},
		{"Distribuidor", settlement.DriverID},
		{"Período", fmt.Sprintf("%s a %s", utils.FormatDateForDisplay(settlement.WeekStartDate), utils.FormatDateForDisplay(settlement.WeekEndDate))},
		{"Total entregue", settlement.TotalDelivered},
		{"Total recebido", settlement.TotalReceived},
		{"Dinheiro", settlement.CashTotal},
		{"MBWay", settlement.MBWayTotal},
		{"Transferência", settlement.TransferTotal},
		{"Outros", settlement.OtherTotal},
		{"A entregar", settlement.TotalToSettle},
	}
	if settlement.AmountDelivered.Valid {
		summary = append(summary,
			[2]interface{}{"Valor contado", settlement.AmountDelivered.Float64},
			[2]interface{}{"Diferença", settlement.Variance.Float64})
	}
	for i, row := range summary {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+1), row[1])
	}

	rowIndex := len(summary) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), "Rota")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), "Total")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), "Clientes pagos")
	rowIndex++
	for _, route := range settlement.RouteTotals {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), route.RouteID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), route.Total)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), route.ClientsPaid)
		rowIndex++
	}

	rowIndex++
	paymentHeaders := []string{"Cliente", "Data", "Valor", "Método"}
	for i, header := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowIndex)
		f.SetCellValue(sheetName, cell, header)
	}
	rowIndex++
	for _, payment := range settlement.ClientPayments {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), payment.ClientName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), utils.FormatDateForDisplay(payment.Date))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), payment.Amount)
		method := payment.Method
		if label, ok := constants.MethodDisplayMap[method]; ok {
			method = label
		}
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), method)
		rowIndex++
	}

	filename := fmt.Sprintf("acerto_%s.xlsx", settlement.ID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("ExportSettlementExcel: erro ao enviar ficheiro do acerto %s: %v", settlementID, err)
	}
}
