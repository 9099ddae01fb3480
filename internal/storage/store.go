// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/safeforge/safeforge/internal/models"
)

// ErrNotFound is returned when an update or fetch targets a row that does
// not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for SAFE data storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Find* methods return (nil, nil) when no row matches — "not found" is an
// expected outcome of the find-or-create flows, not an error.
type Store interface {
	// CreateUser persists a new user. ID and CreatedAt are populated by
	// the store when unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves the first user with the given email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByAuthID retrieves the user linked to an external auth subject.
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)

	// UpdateUser overwrites the user's signatory details.
	UpdateUser(ctx context.Context, user *models.User) error

	// CreateFund persists a new fund. ID and CreatedAt are populated by
	// the store when unset.
	CreateFund(ctx context.Context, fund *models.Fund) error

	// FindFund retrieves a fund by its (name, investor) natural key.
	FindFund(ctx context.Context, name, investorID string) (*models.Fund, error)

	// ListFundsByInvestor retrieves all funds owned by the investor.
	ListFundsByInvestor(ctx context.Context, investorID string) ([]models.Fund, error)

	// UpdateFund overwrites the fund's details.
	UpdateFund(ctx context.Context, fund *models.Fund) error

	// CreateCompany persists a new company. ID and CreatedAt are populated
	// by the store when unset.
	CreateCompany(ctx context.Context, company *models.Company) error

	// FindCompany retrieves a company by its (name, founder) natural key.
	FindCompany(ctx context.Context, name, founderID string) (*models.Company, error)

	// ListCompaniesByFounder retrieves all companies owned by the founder.
	ListCompaniesByFounder(ctx context.Context, founderID string) ([]models.Company, error)

	// UpdateCompany overwrites the company's details.
	UpdateCompany(ctx context.Context, company *models.Company) error

	// CreateInvestment persists a new investment row with whatever fields
	// are known. ID and timestamps are populated by the store when unset.
	CreateInvestment(ctx context.Context, inv *models.Investment) error

	// UpdateInvestment merges the patch into an existing row: only fields
	// present in the patch are written. Returns ErrNotFound if the row
	// does not exist.
	UpdateInvestment(ctx context.Context, id string, patch models.InvestmentPatch) error

	// GetInvestment retrieves an investment with its party relations
	// joined in. Returns ErrNotFound if the row does not exist.
	GetInvestment(ctx context.Context, id string) (*models.InvestmentWithRelations, error)

	// ListInvestmentsByCreator retrieves the investments started by the
	// given auth subject, newest first, with relations joined in.
	ListInvestmentsByCreator(ctx context.Context, createdBy string) ([]models.InvestmentWithRelations, error)

	// Close releases any resources held by the store.
	Close() error
}
