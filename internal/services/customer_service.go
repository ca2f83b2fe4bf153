package services

import (
	"context"

	"declaration-service/internal/models"
)

const customerSearchLimit = 25

type CustomerStore interface {
	SearchCustomers(ctx context.Context, search string, limit int) ([]models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
}

// CustomerService exposes the customer directory to the wizard and handlers.
type CustomerService struct {
	repo CustomerStore
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo CustomerStore) *CustomerService {
	return &CustomerService{repo: repo}
}

// Search returns customers whose name or country matches search, capped at customerSearchLimit.
func (s *CustomerService) Search(ctx context.Context, search string) ([]models.Customer, error) {
	return s.repo.SearchCustomers(ctx, search, customerSearchLimit)
}

// GetCustomer returns the customer with id or an error wrapping repository.ErrNotFound.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}
