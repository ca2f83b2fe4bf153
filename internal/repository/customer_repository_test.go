package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declaration-service/internal/models"
)

func TestSearchCustomers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM customers").
		WithArgs("%acme%", 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "compliance_score", "country", "contact_email", "created_at"}).
			AddRow(1, "Acme Foods GmbH", "distributor", 92, "DE", nil, now).
			AddRow(2, "Acme Retail", "retailer", 71, nil, "ops@acme.example", now))

	customers, err := repo.SearchCustomers(context.Background(), " acme ", 25)

	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, models.CustomerDistributor, customers[0].Type)
	assert.Equal(t, 92, customers[0].ComplianceScore)
	assert.Nil(t, customers[1].Country)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE id").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetCustomerByID(context.Background(), 8)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
