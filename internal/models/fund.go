package models

// Fund is the investing entity named on a SAFE. Owned by exactly one
// investor User and reused across that investor's investments by
// (name, investor_id) match.
type Fund struct {
	// ID is the unique identifier for the fund (UUID format).
	ID string

	// Name is the legal entity name printed on the agreement.
	Name string

	// Byline is optional descriptive text shown under the entity name.
	Byline string

	// Street is the entity's street address.
	Street string

	// CityStateZip is the "City, State, Zip" address line.
	CityStateZip string

	// InvestorID references the owning investor User.
	InvestorID string

	// CreatedAt is the Unix timestamp when the row was created.
	CreatedAt int64
}
