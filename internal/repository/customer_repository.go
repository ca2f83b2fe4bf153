package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"declaration-service/internal/models"
	"declaration-service/shared/utils"

	"github.com/jmoiron/sqlx"
)

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, type, compliance_score, country, contact_email, created_at`

// SearchCustomers matches search against name and country.
func (r *CustomerRepository) SearchCustomers(ctx context.Context, search string, limit int) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := r.db.SelectContext(ctx, &customers, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE name ILIKE $1 OR COALESCE(country, '') ILIKE $1
		ORDER BY name
		LIMIT $2`, utils.ContainsPattern(search), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.GetContext(ctx, &customer, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}
