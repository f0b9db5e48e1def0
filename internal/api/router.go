package api

import (
	"github.com/go-chi/chi/v5"

	"padaria/internal/config"
	"padaria/internal/constants"
	"padaria/internal/notify"
)

// ApiDependencies holds what the API handlers need.
type ApiDependencies struct {
	Config   *config.Config
	Notifier *notify.Notifier
}

// SetupRoutes wires every API route.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Use(DepsMiddleware(deps))

	r.Group(func(r chi.Router) {
		r.Get("/api/client-config", GetClientConfig)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.APISecret))

		// Read model: master data and reports.
		r.Get("/api/clients", GetClients)
		r.Get("/api/client/{id}", GetClientDetails)
		r.Get("/api/client/{id}/debt", GetClientDebt)
		r.Get("/api/client/{id}/prediction", GetClientPrediction)
		r.Get("/api/client/{id}/payment-qr", GetClientPaymentQR)
		r.Get("/api/products", GetProducts)
		r.Get("/api/loads/report", GetLoadReport)
		r.Get("/api/production/suggestions", GetProductionSuggestions)

		// Driver operations.
		r.Route("/api/driver/{id}", func(r chi.Router) {
			r.Get("/extra-load", GetDriverExtraLoad)
			r.Get("/settlement", CalculateDriverSettlement)
		})
		r.Post("/api/payments", RegisterPayment)
		r.Post("/api/loads", CreateLoadHandler)
		r.Post("/api/loads/{id}/complete", CompleteLoadHandler)
		r.Post("/api/deliveries", RegisterDelivery)
		r.Post("/api/deliveries/{id}/status", UpdateDeliveryStatus)
		r.Post("/api/consumption", RegisterConsumption)

		// Admin operations.
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))
			r.Post("/clients", CreateClient)
			r.Post("/products", CreateProduct)
			r.Put("/product/{id}", UpdateProductHandler)
			r.Post("/client/{id}/schedule", UpdateClientSchedule)
			r.Post("/client/{id}/skip-date", AddClientSkipDate)
			r.Post("/driver/{id}/settlement/confirm", ConfirmDriverSettlement)
			r.Delete("/settlement/{id}", CancelSettlement)
			r.Get("/settlement/{id}/export", ExportSettlementExcel)
		})
	})
}
