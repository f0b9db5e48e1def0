package config

import (
	"log"
	"os"
	"strconv"

	"padaria/internal/constants"
)

// Config holds every configuration parameter of the application.
type Config struct {
	DatabaseURL string
	AppEnv      string
	Port        string

	// APISecret signs the auth tokens of the companion app.
	APISecret string

	// Telegram notifications, optional.
	TelegramToken string
	AdminChatID   int64

	// Look-back window for production suggestions, in days.
	ProductionWindowDays int

	// MBWay phone the payment-request QR codes point at.
	MBWayPhone string
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AppEnv:        os.Getenv("ENV"),
		Port:          os.Getenv("PORT"),
		APISecret:     os.Getenv("API_SECRET"),
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		MBWayPhone:    os.Getenv("MBWAY_PHONE"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.AdminChatID, err = strconv.ParseInt(os.Getenv("ADMIN_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Aviso: ADMIN_CHAT_ID não definido ou inválido: %v. Notificações Telegram desativadas.", err)
		cfg.AdminChatID = 0
	}

	windowStr := os.Getenv("PRODUCTION_WINDOW_DAYS")
	if windowStr == "" {
		cfg.ProductionWindowDays = constants.DEFAULT_PRODUCTION_WINDOW_DAYS
	} else {
		window, errParse := strconv.Atoi(windowStr)
		if errParse != nil || window <= 0 || window > 60 {
			log.Printf("Aviso: valor inválido para PRODUCTION_WINDOW_DAYS ('%s'). A usar %d dias.", windowStr, constants.DEFAULT_PRODUCTION_WINDOW_DAYS)
			cfg.ProductionWindowDays = constants.DEFAULT_PRODUCTION_WINDOW_DAYS
		} else {
			cfg.ProductionWindowDays = window
		}
	}

	if cfg.DatabaseURL == "" {
		log.Println("Erro crítico: DATABASE_URL não definida.")
	}
	if cfg.APISecret == "" {
		log.Println("Aviso: API_SECRET não definido. A API recusará todos os pedidos autenticados.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Aviso: TELEGRAM_APITOKEN não definido. Notificações Telegram desativadas.")
	}

	log.Println("Configuração carregada.")
	return cfg, nil
}
