package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safeforge/safeforge/internal/models"
)

// CreateFund inserts a new fund into the database.
func (s *SQLiteStore) CreateFund(ctx context.Context, fund *models.Fund) error {
	if fund.ID == "" {
		fund.ID = uuid.New().String()
	}
	if fund.CreatedAt == 0 {
		fund.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO funds (id, name, byline, street, city_state_zip, investor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		fund.ID,
		fund.Name,
		fund.Byline,
		fund.Street,
		fund.CityStateZip,
		fund.InvestorID,
		fund.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// FindFund retrieves a fund by its (name, investor) natural key.
func (s *SQLiteStore) FindFund(ctx context.Context, name, investorID string) (*models.Fund, error) {
	query := `
		SELECT id, name, byline, street, city_state_zip, investor_id, created_at
		FROM funds
		WHERE name = ? AND investor_id = ?
		LIMIT 1
	`

	fund := &models.Fund{}
	err := s.db.QueryRowContext(ctx, query, name, investorID).Scan(
		&fund.ID,
		&fund.Name,
		&fund.Byline,
		&fund.Street,
		&fund.CityStateZip,
		&fund.InvestorID,
		&fund.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Fund not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fund: %w", err)
	}

	return fund, nil
}

// ListFundsByInvestor retrieves all funds owned by the investor, oldest first.
func (s *SQLiteStore) ListFundsByInvestor(ctx context.Context, investorID string) ([]models.Fund, error) {
	query := `
		SELECT id, name, byline, street, city_state_zip, investor_id, created_at
		FROM funds
		WHERE investor_id = ?
		ORDER BY created_at, name
	`

	rows, err := s.db.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		var fund models.Fund
		if err := rows.Scan(
			&fund.ID,
			&fund.Name,
			&fund.Byline,
			&fund.Street,
			&fund.CityStateZip,
			&fund.InvestorID,
			&fund.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}

	return funds, nil
}

// UpdateFund overwrites the fund's details.
func (s *SQLiteStore) UpdateFund(ctx context.Context, fund *models.Fund) error {
	query := `
		UPDATE funds
		SET name = ?, byline = ?, street = ?, city_state_zip = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		fund.Name,
		fund.Byline,
		fund.Street,
		fund.CityStateZip,
		fund.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fund: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update fund %s: no such row", fund.ID)
	}

	return nil
}
