package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/storage"
)

// dateFormat is how agreement dates are stored in the date TEXT column.
// Empty string means "not set yet".
const dateFormat = time.RFC3339

// investmentColumns is the joined projection shared by GetInvestment and
// ListInvestmentsByCreator. Party relations are LEFT JOINed because the
// wizard fills foreign keys step by step.
const investmentColumns = `
	i.id, i.investor_id, i.fund_id, i.founder_id, i.company_id,
	i.purchase_amount, i.investment_type, i.valuation_cap, i.discount,
	i.date, i.created_by, i.created_at, i.updated_at,
	inv.id, inv.name, inv.title, inv.email,
	f.id, f.name, f.byline, f.street, f.city_state_zip,
	fo.id, fo.name, fo.title, fo.email,
	c.id, c.name, c.street, c.city_state_zip, c.state_of_incorporation
`

const investmentJoins = `
	FROM investments i
	LEFT JOIN users inv ON inv.id = i.investor_id
	LEFT JOIN funds f ON f.id = i.fund_id
	LEFT JOIN users fo ON fo.id = i.founder_id
	LEFT JOIN companies c ON c.id = i.company_id
`

// CreateInvestment persists a new investment row with whatever fields are
// known at this point of the wizard.
func (s *SQLiteStore) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if inv.CreatedAt == 0 {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	date := ""
	if !inv.Date.IsZero() {
		date = inv.Date.UTC().Format(dateFormat)
	}

	query := `
		INSERT INTO investments (
			id, investor_id, fund_id, founder_id, company_id,
			purchase_amount, investment_type, valuation_cap, discount,
			date, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID,
		inv.InvestorID,
		inv.FundID,
		inv.FounderID,
		inv.CompanyID,
		inv.PurchaseAmount,
		inv.InvestmentType,
		inv.ValuationCap,
		inv.Discount,
		date,
		inv.CreatedBy,
		inv.CreatedAt,
		inv.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

// UpdateInvestment merges the patch into an existing row. Only fields
// present in the patch are written; everything else keeps its stored
// value, which is what lets the three wizard steps write disjoint field
// subsets without clobbering each other.
func (s *SQLiteStore) UpdateInvestment(ctx context.Context, id string, patch models.InvestmentPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().Unix()}

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.InvestorID != nil {
		set("investor_id", *patch.InvestorID)
	}
	if patch.FundID != nil {
		set("fund_id", *patch.FundID)
	}
	if patch.FounderID != nil {
		set("founder_id", *patch.FounderID)
	}
	if patch.CompanyID != nil {
		set("company_id", *patch.CompanyID)
	}
	if patch.PurchaseAmount != nil {
		set("purchase_amount", *patch.PurchaseAmount)
	}
	if patch.InvestmentType != nil {
		set("investment_type", *patch.InvestmentType)
	}
	if patch.ValuationCap != nil {
		set("valuation_cap", *patch.ValuationCap)
	}
	if patch.Discount != nil {
		set("discount", *patch.Discount)
	}
	if patch.Date != nil {
		set("date", patch.Date.UTC().Format(dateFormat))
	}
	if patch.CreatedBy != nil {
		set("created_by", *patch.CreatedBy)
	}

	args = append(args, id)
	query := "UPDATE investments SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("investment %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// GetInvestment retrieves an investment with its party relations joined in.
func (s *SQLiteStore) GetInvestment(ctx context.Context, id string) (*models.InvestmentWithRelations, error) {
	query := "SELECT " + investmentColumns + investmentJoins + " WHERE i.id = ?"

	row := s.db.QueryRowContext(ctx, query, id)
	iwr, err := scanInvestment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("investment %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	return iwr, nil
}

// ListInvestmentsByCreator retrieves the investments started by the given
// auth subject, newest first.
func (s *SQLiteStore) ListInvestmentsByCreator(ctx context.Context, createdBy string) ([]models.InvestmentWithRelations, error) {
	query := "SELECT " + investmentColumns + investmentJoins +
		" WHERE i.created_by = ? ORDER BY i.created_at DESC, i.id"

	rows, err := s.db.QueryContext(ctx, query, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []models.InvestmentWithRelations
	for rows.Next() {
		iwr, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, *iwr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvestment(row rowScanner) (*models.InvestmentWithRelations, error) {
	var (
		iwr models.InvestmentWithRelations

		investorID, fundID, founderID, companyID sql.NullString

		date string

		invID, invName, invTitle, invEmail            sql.NullString
		fID, fName, fByline, fStreet, fCityStateZip   sql.NullString
		foID, foName, foTitle, foEmail                sql.NullString
		cID, cName, cStreet, cCityStateZip, cStateInc sql.NullString
	)

	err := row.Scan(
		&iwr.ID, &investorID, &fundID, &founderID, &companyID,
		&iwr.PurchaseAmount, &iwr.InvestmentType, &iwr.ValuationCap, &iwr.Discount,
		&date, &iwr.CreatedBy, &iwr.CreatedAt, &iwr.UpdatedAt,
		&invID, &invName, &invTitle, &invEmail,
		&fID, &fName, &fByline, &fStreet, &fCityStateZip,
		&foID, &foName, &foTitle, &foEmail,
		&cID, &cName, &cStreet, &cCityStateZip, &cStateInc,
	)
	if err != nil {
		return nil, err
	}

	iwr.InvestorID = nullablePtr(investorID)
	iwr.FundID = nullablePtr(fundID)
	iwr.FounderID = nullablePtr(founderID)
	iwr.CompanyID = nullablePtr(companyID)

	if date != "" {
		t, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("malformed date %q: %w", date, err)
		}
		iwr.Date = t
	}

	if invID.Valid {
		iwr.Investor = &models.User{
			ID:    invID.String,
			Name:  invName.String,
			Title: invTitle.String,
			Email: invEmail.String,
		}
	}
	if fID.Valid {
		iwr.Fund = &models.Fund{
			ID:           fID.String,
			Name:         fName.String,
			Byline:       fByline.String,
			Street:       fStreet.String,
			CityStateZip: fCityStateZip.String,
		}
	}
	if foID.Valid {
		iwr.Founder = &models.User{
			ID:    foID.String,
			Name:  foName.String,
			Title: foTitle.String,
			Email: foEmail.String,
		}
	}
	if cID.Valid {
		iwr.Company = &models.Company{
			ID:                   cID.String,
			Name:                 cName.String,
			Street:               cStreet.String,
			CityStateZip:         cCityStateZip.String,
			StateOfIncorporation: cStateInc.String,
		}
	}

	return &iwr, nil
}

func nullablePtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
