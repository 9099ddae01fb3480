package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safeforge/safeforge/internal/models"
)

// CreateCompany inserts a new company into the database.
func (s *SQLiteStore) CreateCompany(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	if company.CreatedAt == 0 {
		company.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO companies (id, name, street, city_state_zip, state_of_incorporation, founder_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Street,
		company.CityStateZip,
		company.StateOfIncorporation,
		company.FounderID,
		company.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

// FindCompany retrieves a company by its (name, founder) natural key.
func (s *SQLiteStore) FindCompany(ctx context.Context, name, founderID string) (*models.Company, error) {
	query := `
		SELECT id, name, street, city_state_zip, state_of_incorporation, founder_id, created_at
		FROM companies
		WHERE name = ? AND founder_id = ?
		LIMIT 1
	`

	company := &models.Company{}
	err := s.db.QueryRowContext(ctx, query, name, founderID).Scan(
		&company.ID,
		&company.Name,
		&company.Street,
		&company.CityStateZip,
		&company.StateOfIncorporation,
		&company.FounderID,
		&company.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Company not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	return company, nil
}

// ListCompaniesByFounder retrieves all companies owned by the founder, oldest first.
func (s *SQLiteStore) ListCompaniesByFounder(ctx context.Context, founderID string) ([]models.Company, error) {
	query := `
		SELECT id, name, street, city_state_zip, state_of_incorporation, founder_id, created_at
		FROM companies
		WHERE founder_id = ?
		ORDER BY created_at, name
	`

	rows, err := s.db.QueryContext(ctx, query, founderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Street,
			&company.CityStateZip,
			&company.StateOfIncorporation,
			&company.FounderID,
			&company.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, nil
}

// UpdateCompany overwrites the company's details.
func (s *SQLiteStore) UpdateCompany(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = ?, street = ?, city_state_zip = ?, state_of_incorporation = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		company.Name,
		company.Street,
		company.CityStateZip,
		company.StateOfIncorporation,
		company.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update company %s: no such row", company.ID)
	}

	return nil
}
