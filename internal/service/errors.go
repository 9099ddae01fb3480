package service

import (
	"errors"
	"fmt"
)

// PartyKind names the record a persistence operation was acting on, for
// error reporting and the party upsert dispatch.
type PartyKind string

const (
	PartyInvestorUser PartyKind = "investor-user"
	PartyFounderUser  PartyKind = "founder-user"
	PartyFund         PartyKind = "fund"
	PartyCompany      PartyKind = "company"
	partyInvestment   PartyKind = "investment"
)

// ErrEntityNotFound means a selection referenced an entity id that is not
// in the list the caller was given. The UI should never let this happen.
var ErrEntityNotFound = errors.New("entity not found")

// PersistenceError wraps a failed store operation with what was being
// attempted and on which kind of record. The wizard must not advance past
// a step whose save produced one.
type PersistenceError struct {
	Op   string
	Kind PartyKind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, kind PartyKind, err error) error {
	return &PersistenceError{Op: op, Kind: kind, Err: err}
}
