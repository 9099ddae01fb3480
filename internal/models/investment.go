package models

import "time"

// Investment types select which SAFE template variant is rendered and
// which deal term is meaningful: a valuation-cap SAFE carries a cap, a
// discount SAFE carries a discount, an MFN SAFE carries neither.
const (
	TypeValuationCap = "valuation-cap"
	TypeDiscount     = "discount"
	TypeMFN          = "mfn"
)

// Investment is the central SAFE transaction record. Party foreign keys
// are populated incrementally as the wizard progresses, so any of them
// may still be nil between steps.
type Investment struct {
	// ID is the unique identifier for the investment (UUID format).
	// It doubles as the external handle in resumable/shareable URLs.
	ID string

	InvestorID *string
	FundID     *string
	FounderID  *string
	CompanyID  *string

	// PurchaseAmount is the dollar amount invested, kept as the string the
	// form collected (digit grouping is applied at render time).
	PurchaseAmount string

	// InvestmentType is one of TypeValuationCap, TypeDiscount, TypeMFN.
	InvestmentType string

	// ValuationCap is set only for valuation-cap investments.
	ValuationCap string

	// Discount is the discount percentage the form collected, set only for
	// discount investments.
	Discount string

	// Date is the agreement date. Zero until the deal-terms step is saved.
	Date time.Time

	// CreatedBy is the auth subject of the user who started the flow.
	CreatedBy string

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64
	UpdatedAt int64
}

// InvestmentPatch is a field-level partial update. Nil fields are left
// untouched by an update; only fields explicitly present overwrite the
// stored row. This is what lets three wizard steps write disjoint field
// subsets to one row without clobbering each other.
type InvestmentPatch struct {
	InvestorID     *string
	FundID         *string
	FounderID      *string
	CompanyID      *string
	PurchaseAmount *string
	InvestmentType *string
	ValuationCap   *string
	Discount       *string
	Date           *time.Time
	CreatedBy      *string
}

// InvestmentWithRelations is an Investment with its party rows joined in.
// Relations are optional because the wizard persists them step by step: a
// shared investment may have its investor side filled and its founder side
// still empty.
type InvestmentWithRelations struct {
	Investment

	Investor *User
	Fund     *Fund
	Founder  *User
	Company  *Company
}
