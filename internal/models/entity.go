package models

// EntityKind tags an Entity as a fund or a company.
type EntityKind string

const (
	EntityFund    EntityKind = "fund"
	EntityCompany EntityKind = "company"
)

// Entity is a reusable party record (a Fund or a Company) offered in the
// form's reuse picker. It flattens both kinds into one shape; fields that
// do not apply to the kind are empty.
type Entity struct {
	Kind EntityKind

	// ID is the underlying Fund or Company row id.
	ID string

	Name         string
	Street       string
	CityStateZip string

	// Byline applies to funds only.
	Byline string

	// StateOfIncorporation applies to companies only.
	StateOfIncorporation string

	// OwnerID is the investor (fund) or founder (company) User id. The
	// owner row holds the signatory details and is fetched separately when
	// the entity is selected.
	OwnerID string
}
