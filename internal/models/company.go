package models

// Company is the startup raising on a SAFE. Owned by exactly one founder
// User and reused across that founder's investments by (name, founder_id)
// match.
type Company struct {
	// ID is the unique identifier for the company (UUID format).
	ID string

	// Name is the legal company name printed on the agreement.
	Name string

	// Street is the company's street address.
	Street string

	// CityStateZip is the "City, State, Zip" address line.
	CityStateZip string

	// StateOfIncorporation is the US state the company is incorporated in.
	StateOfIncorporation string

	// FounderID references the owning founder User.
	FounderID string

	// CreatedAt is the Unix timestamp when the row was created.
	CreatedAt int64
}
