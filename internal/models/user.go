package models

// User represents a natural person signing a SAFE on either side of the
// deal. The same row can act as investor on one investment and founder on
// another.
//
// Users are looked up by email when a step is saved, so a repeat investor
// or founder is reused rather than duplicated.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the signatory's full legal name.
	Name string

	// Title is the signatory's title (e.g., "General Partner", "CEO").
	Title string

	// Email is the user's email address. Soft natural key: lookups always
	// filter by email, but no uniqueness constraint enforces it.
	Email string

	// AuthID links this row to the external identity provider's subject.
	// Empty for users created on someone's behalf via a shared link.
	AuthID string

	// CreatedAt is the Unix timestamp when the row was created.
	CreatedAt int64
}
