// Package wizard drives the three-step SAFE form: which step is active,
// whether the flow is locked to a shared collaborator, and how that state
// round-trips through the URL so a reopened link resumes where it left
// off.
package wizard

import (
	"net/url"
	"strconv"
)

// Step identifies one of the three form stages.
type Step int

const (
	// StepInvestor collects the investing entity and investor signatory.
	StepInvestor Step = 1
	// StepFounder collects the company and founder signatory.
	StepFounder Step = 2
	// StepTerms collects deal terms and triggers document generation.
	StepTerms Step = 3
)

// URL query keys carrying the resumable session state.
const (
	keyID      = "id"
	keyStep    = "step"
	keySharing = "sharing"
)

// Session is the explicit, serializable form state: which investment is
// being edited, which step is showing, and whether this view came from a
// shared collaborator link.
//
// A shared session is locked: the collaborator fills only their own
// section and the flow terminates after that section saves.
type Session struct {
	InvestmentID string
	Step         Step
	Shared       bool
}

// Parse rebuilds a Session from raw URL query values. Anything malformed
// or out of range falls back to a fresh step-1 session.
func Parse(id, step, sharing string) Session {
	s := Session{
		InvestmentID: id,
		Step:         StepInvestor,
		Shared:       sharing == "true",
	}
	if n, err := strconv.Atoi(step); err == nil && n >= int(StepInvestor) && n <= int(StepTerms) {
		s.Step = Step(n)
	}
	return s
}

// Encode serializes the session back into URL query form, the external
// handle for "continue this SAFE later".
func (s Session) Encode() string {
	q := url.Values{}
	if s.InvestmentID != "" {
		q.Set(keyID, s.InvestmentID)
	}
	q.Set(keyStep, strconv.Itoa(int(s.Step)))
	if s.Shared {
		q.Set(keySharing, "true")
	}
	return q.Encode()
}

// Advance moves the session forward after a successful save and reports
// whether the flow is finished. A shared session terminates at the
// founder step: the collaborator never reaches deal terms. The terms step
// is always terminal.
func (s Session) Advance() (Session, bool) {
	switch s.Step {
	case StepInvestor:
		s.Step = StepFounder
		return s, false
	case StepFounder:
		if s.Shared {
			return s, true
		}
		s.Step = StepTerms
		return s, false
	default:
		return s, true
	}
}

// Back moves one step toward the start. Pure navigation: nothing is
// persisted and nothing is discarded.
func (s Session) Back() Session {
	if s.Step > StepInvestor {
		s.Step--
	}
	return s
}

// RequiredFields lists the form fields a step cannot be submitted
// without, by their request names.
func RequiredFields(step Step) []string {
	switch step {
	case StepInvestor:
		return []string{"fundName", "investorName", "investorEmail"}
	case StepFounder:
		return []string{"companyName", "founderName", "founderEmail"}
	case StepTerms:
		return []string{"purchaseAmount", "type", "date"}
	default:
		return nil
	}
}
