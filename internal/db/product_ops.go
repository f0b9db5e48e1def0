package db

import (
	"database/sql"
	"fmt"
	"log"

	"padaria/internal/models"
	"padaria/internal/utils"
)

// GetAllProducts returns every active catalog product.
func GetAllProducts() ([]models.Product, error) {
	rows, err := DB.Query(`
        SELECT id, name, price, unit, target_quantity, is_active, created_at, updated_at
        FROM products WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var createdAt, updatedAt sql.NullString
		if errScan := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Unit, &p.TargetQuantity, &p.IsActive, &createdAt, &updatedAt); errScan != nil {
			log.Printf("GetAllProducts: erro ao ler produto: %v", errScan)
			continue
		}
		p.CreatedAt = createdAt.String
		p.UpdatedAt = updatedAt.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductIndex returns the active products keyed by id.
func GetProductIndex() (map[string]models.Product, error) {
	products, err := GetAllProducts()
	if err != nil {
		return nil, err
	}
	return models.ProductIndex(products), nil
}

// AddProduct inserts a catalog product.
func AddProduct(p models.Product) error {
	_, err := DB.Exec(`
        INSERT INTO products (id, name, price, unit, target_quantity, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Price, p.Unit, p.TargetQuantity, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir produto '%s': %w", p.ID, err)
	}
	return nil
}

// UpdateProduct updates price, unit and production target.
func UpdateProduct(p models.Product) error {
	result, err := DB.Exec(`
        UPDATE products SET name = $1, price = $2, unit = $3, target_quantity = $4, is_active = $5, updated_at = $6
        WHERE id = $7`,
		p.Name, p.Price, p.Unit, p.TargetQuantity, p.IsActive, utils.NowTimestamp(), p.ID)
	if err != nil {
		return fmt.Errorf("erro ao atualizar produto '%s': %w", p.ID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("produto '%s' não encontrado", p.ID)
	}
	return nil
}
