package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"padaria/internal/api"
	"padaria/internal/config"
	"padaria/internal/db"
	"padaria/internal/ledger"
	"padaria/internal/notify"
	"padaria/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: não foi possível carregar o ficheiro .env. As variáveis de ambiente devem estar definidas de outra forma.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Erro crítico: não foi possível carregar a configuração: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Erro crítico: não foi possível inicializar a base de dados: %v", err)
	}
	defer db.CloseDB()

	notifier, err := notify.InitNotifier(cfg.TelegramToken, cfg.AdminChatID)
	if err != nil {
		log.Fatalf("Erro crítico: não foi possível inicializar o notificador Telegram: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := api.ApiDependencies{
		Config:   cfg,
		Notifier: notifier,
	}
	api.SetupRoutes(r, apiDeps)

	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if notifier != nil {
		go productionDigestLoop(cfg, notifier)
	}

	log.Printf("A iniciar o servidor HTTP na porta %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Erro crítico: não foi possível iniciar o servidor HTTP: %v", err)
	}
}

// productionDigestLoop sends the production suggestions to the admin chat
// once a day.
func productionDigestLoop(cfg *config.Config, notifier *notify.Notifier) {
	for {
		sendProductionDigest(cfg, notifier)
		time.Sleep(24 * time.Hour)
	}
}

func sendProductionDigest(cfg *config.Config, notifier *notify.Notifier) {
	today := utils.Today()
	windowStart := today
	if t, err := time.Parse("2006-01-02", today); err == nil {
		windowStart = t.AddDate(0, 0, -(cfg.ProductionWindowDays - 1)).Format("2006-01-02")
	}

	loads, err := db.GetLoadsSince(windowStart)
	if err != nil {
		log.Printf("Resumo de produção: erro ao carregar cargas: %v", err)
		return
	}
	products, err := db.GetAllProducts()
	if err != nil {
		log.Printf("Resumo de produção: erro ao carregar produtos: %v", err)
		return
	}
	notifier.ProductionDigest(ledger.ProductionSuggestions(loads, products, cfg.ProductionWindowDays, today))
}
