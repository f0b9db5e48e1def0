package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Shared connection pool

// InitDB opens the database connection and runs schema setup. All DDL is
// idempotent so restarts are safe.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL não definida")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("erro ao abrir ligação à base de dados: %w", err)
	}

	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("erro ao verificar ligação à base de dados: %w", err)
	}
	log.Println("Ligação à base de dados estabelecida.")

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação de criação de tabelas: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Rollback da transação de criação de tabelas: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS clients (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            driver_id TEXT NOT NULL,
            route_id TEXT,
            address TEXT,
            phone TEXT,
            payment_frequency TEXT DEFAULT 'weekly',
            custom_prices JSONB DEFAULT '{}',
            skipped_dates TEXT[] DEFAULT '{}',
            last_payment_date TEXT,
            current_balance FLOAT DEFAULT 0,
            schedule JSONB DEFAULT '{}',
            schedule_history JSONB DEFAULT '[]',
            is_dynamic_choice BOOLEAN DEFAULT FALSE,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TEXT,
            updated_at TEXT
        );
        CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            price FLOAT NOT NULL,
            unit TEXT DEFAULT 'un',
            target_quantity INTEGER DEFAULT 0,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TEXT,
            updated_at TEXT
        );
        CREATE TABLE IF NOT EXISTS consumption_records (
            id TEXT PRIMARY KEY,
            client_id TEXT NOT NULL,
            driver_id TEXT NOT NULL,
            date TEXT NOT NULL,
            day_of_week TEXT NOT NULL,
            items JSONB DEFAULT '[]',
            total_value FLOAT NOT NULL,
            created_at TEXT
        );
        CREATE TABLE IF NOT EXISTS delivery_records (
            id TEXT PRIMARY KEY,
            client_id TEXT NOT NULL,
            driver_id TEXT NOT NULL,
            route_id TEXT,
            date TEXT NOT NULL,
            items JSONB DEFAULT '[]',
            status TEXT DEFAULT 'pending',
            total_value FLOAT DEFAULT 0,
            notes TEXT,
            delivered_at TEXT,
            created_at TEXT,
            updated_at TEXT
        );
        CREATE TABLE IF NOT EXISTS load_records (
            id TEXT PRIMARY KEY,
            driver_id TEXT NOT NULL,
            date TEXT NOT NULL,
            load_items JSONB DEFAULT '{}',
            return_items JSONB DEFAULT '{}',
            status TEXT DEFAULT 'in_route',
            total_loaded INTEGER DEFAULT 0,
            total_sold INTEGER DEFAULT 0,
            total_returned INTEGER DEFAULT 0,
            utilization_rate INTEGER DEFAULT 0,
            created_at TEXT,
            updated_at TEXT,
            UNIQUE (driver_id, date)
        );
        CREATE TABLE IF NOT EXISTS payment_records (
            id TEXT PRIMARY KEY,
            driver_id TEXT NOT NULL,
            client_id TEXT NOT NULL,
            date TEXT NOT NULL,
            amount FLOAT NOT NULL,
            method TEXT NOT NULL,
            paid_until TEXT,
            notes TEXT,
            created_at TEXT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS settlement_records (
            id TEXT PRIMARY KEY,
            driver_id TEXT NOT NULL,
            week_start_date TEXT NOT NULL,
            week_end_date TEXT NOT NULL,
            total_delivered FLOAT DEFAULT 0,
            total_received FLOAT DEFAULT 0,
            cash_total FLOAT DEFAULT 0,
            mbway_total FLOAT DEFAULT 0,
            transfer_total FLOAT DEFAULT 0,
            other_total FLOAT DEFAULT 0,
            total_to_settle FLOAT DEFAULT 0,
            route_totals JSONB DEFAULT '[]',
            client_payments JSONB DEFAULT '[]',
            status TEXT DEFAULT 'pending',
            confirmed_at TEXT,
            confirmed_by TEXT,
            amount_delivered FLOAT,
            variance FLOAT,
            denominations JSONB,
            created_at TEXT,
            updated_at TEXT
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("erro ao criar tabelas: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("erro ao confirmar transação de criação de tabelas: %w", err)
	}
	log.Println("Criação de tabelas (se não existiam) concluída.")

	if err = migrateDBSchema(); err != nil {
		return fmt.Errorf("erro na migração do esquema: %w", err)
	}

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_clients_driver_id ON clients(driver_id);
        CREATE INDEX IF NOT EXISTS idx_consumption_client_date ON consumption_records(client_id, date);
        CREATE INDEX IF NOT EXISTS idx_deliveries_client_date ON delivery_records(client_id, date);
        CREATE INDEX IF NOT EXISTS idx_deliveries_driver_status ON delivery_records(driver_id, status);
        CREATE INDEX IF NOT EXISTS idx_loads_date ON load_records(date);
        CREATE INDEX IF NOT EXISTS idx_loads_driver_date ON load_records(driver_id, date);
        CREATE INDEX IF NOT EXISTS idx_payments_driver_created ON payment_records(driver_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_payments_client_date ON payment_records(client_id, date);
        CREATE INDEX IF NOT EXISTS idx_settlements_driver_status ON settlement_records(driver_id, status);
        CREATE INDEX IF NOT EXISTS idx_settlements_confirmed_at ON settlement_records(confirmed_at);
    `
	for _, stmt := range strings.Split(strings.TrimSpace(createIndexesSQL), ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, errIdx := DB.Exec(trimmed); errIdx != nil {
			log.Printf("Aviso: erro ao criar índice ('%s'): %v", trimmed, errIdx)
		}
	}
	log.Println("Criação de índices (se não existiam) concluída.")

	log.Println("Inicialização da base de dados concluída.")
	return nil
}

// migrateDBSchema applies additive schema changes. Idempotent.
func migrateDBSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "products.target_quantity",
			sql:  `ALTER TABLE products ADD COLUMN IF NOT EXISTS target_quantity INTEGER DEFAULT 0;`,
		},
		{
			name: "settlement_records.denominations",
			sql:  `ALTER TABLE settlement_records ADD COLUMN IF NOT EXISTS denominations JSONB;`,
		},
		{
			name: "delivery_records.route_id",
			sql:  `ALTER TABLE delivery_records ADD COLUMN IF NOT EXISTS route_id TEXT;`,
		},
		{
			name: "clients.is_active",
			sql:  `ALTER TABLE clients ADD COLUMN IF NOT EXISTS is_active BOOLEAN DEFAULT TRUE;`,
		},
	}

	for _, migration := range migrations {
		if _, err := DB.Exec(migration.sql); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: migração '%s' ignorada (objeto já existe): %v", migration.name, err)
				continue
			}
			return fmt.Errorf("erro na migração ('%s'): %w", migration.name, err)
		}
	}
	log.Println("Migração do esquema concluída.")
	return nil
}

// CloseDB closes the database connection.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Ligação à base de dados fechada.")
	}
}
