// Package service implements the SAFE workflow: saving wizard steps into
// relational records, reusing parties across agreements, generating the
// final document, and notifying the founder when a draft is shared.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/safeforge/safeforge/internal/docgen"
	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/notify"
	"github.com/safeforge/safeforge/internal/storage"
)

// InvestmentService owns the investment lifecycle from first wizard step
// to generated document.
type InvestmentService struct {
	store    storage.Store
	renderer *docgen.Renderer
	mailer   notify.Mailer
}

// NewInvestmentService creates a new InvestmentService.
func NewInvestmentService(store storage.Store, renderer *docgen.Renderer, mailer notify.Mailer) *InvestmentService {
	return &InvestmentService{store: store, renderer: renderer, mailer: mailer}
}

// PartyValues carries the fields a party upsert can set. Which fields are
// meaningful depends on the kind: users take Name/Title/Email (plus an
// optional AuthID link), funds and companies take their detail fields and
// an OwnerID.
type PartyValues struct {
	Name  string
	Title string
	Email string

	// AuthID optionally links a user to an external auth subject. Only
	// applied on create or when the existing row has no link yet.
	AuthID string

	Byline               string
	Street               string
	CityStateZip         string
	StateOfIncorporation string

	// OwnerID is the owning user's row id, part of the natural key for
	// funds and companies.
	OwnerID string
}

// UpsertParty finds a party by its natural key and updates it in place,
// or creates it when absent. Users match on email; funds and companies
// match on (name, owner). Either way the row id comes back so the
// investment can reference it.
//
// Match and write are separate statements, so concurrent saves of the
// same new party can race into duplicates. Accepted: single-writer flows
// in practice, and the document only ever reads one row.
func (s *InvestmentService) UpsertParty(ctx context.Context, kind PartyKind, v PartyValues) (string, error) {
	switch kind {
	case PartyInvestorUser, PartyFounderUser:
		return s.upsertUser(ctx, kind, v)
	case PartyFund:
		return s.upsertFund(ctx, v)
	case PartyCompany:
		return s.upsertCompany(ctx, v)
	default:
		return "", fmt.Errorf("unknown party kind %q", kind)
	}
}

func (s *InvestmentService) upsertUser(ctx context.Context, kind PartyKind, v PartyValues) (string, error) {
	existing, err := s.store.GetUserByEmail(ctx, v.Email)
	if err != nil {
		return "", persistErr("select", kind, err)
	}
	if existing == nil {
		user := &models.User{
			Name:   v.Name,
			Title:  v.Title,
			Email:  v.Email,
			AuthID: v.AuthID,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return "", persistErr("insert", kind, err)
		}
		return user.ID, nil
	}

	existing.Name = v.Name
	existing.Title = v.Title
	if existing.AuthID == "" {
		existing.AuthID = v.AuthID
	}
	if err := s.store.UpdateUser(ctx, existing); err != nil {
		return "", persistErr("update", kind, err)
	}
	return existing.ID, nil
}

func (s *InvestmentService) upsertFund(ctx context.Context, v PartyValues) (string, error) {
	existing, err := s.store.FindFund(ctx, v.Name, v.OwnerID)
	if err != nil {
		return "", persistErr("select", PartyFund, err)
	}
	if existing == nil {
		fund := &models.Fund{
			Name:         v.Name,
			Byline:       v.Byline,
			Street:       v.Street,
			CityStateZip: v.CityStateZip,
			InvestorID:   v.OwnerID,
		}
		if err := s.store.CreateFund(ctx, fund); err != nil {
			return "", persistErr("insert", PartyFund, err)
		}
		return fund.ID, nil
	}

	existing.Byline = v.Byline
	existing.Street = v.Street
	existing.CityStateZip = v.CityStateZip
	if err := s.store.UpdateFund(ctx, existing); err != nil {
		return "", persistErr("update", PartyFund, err)
	}
	return existing.ID, nil
}

func (s *InvestmentService) upsertCompany(ctx context.Context, v PartyValues) (string, error) {
	existing, err := s.store.FindCompany(ctx, v.Name, v.OwnerID)
	if err != nil {
		return "", persistErr("select", PartyCompany, err)
	}
	if existing == nil {
		company := &models.Company{
			Name:                 v.Name,
			Street:               v.Street,
			CityStateZip:         v.CityStateZip,
			StateOfIncorporation: v.StateOfIncorporation,
			FounderID:            v.OwnerID,
		}
		if err := s.store.CreateCompany(ctx, company); err != nil {
			return "", persistErr("insert", PartyCompany, err)
		}
		return company.ID, nil
	}

	existing.Street = v.Street
	existing.CityStateZip = v.CityStateZip
	existing.StateOfIncorporation = v.StateOfIncorporation
	if err := s.store.UpdateCompany(ctx, existing); err != nil {
		return "", persistErr("update", PartyCompany, err)
	}
	return existing.ID, nil
}

// UpsertInvestment merges a patch into the investment row, creating the
// row first when id is empty. Each wizard step writes only its own field
// subset; fields absent from the patch keep their stored values.
func (s *InvestmentService) UpsertInvestment(ctx context.Context, id string, patch models.InvestmentPatch) (string, error) {
	if id == "" {
		inv := &models.Investment{}
		applyPatch(inv, patch)
		if err := s.store.CreateInvestment(ctx, inv); err != nil {
			return "", persistErr("insert", partyInvestment, err)
		}
		return inv.ID, nil
	}

	if err := s.store.UpdateInvestment(ctx, id, patch); err != nil {
		return "", persistErr("update", partyInvestment, err)
	}
	return id, nil
}

func applyPatch(inv *models.Investment, patch models.InvestmentPatch) {
	inv.InvestorID = patch.InvestorID
	inv.FundID = patch.FundID
	inv.FounderID = patch.FounderID
	inv.CompanyID = patch.CompanyID
	if patch.PurchaseAmount != nil {
		inv.PurchaseAmount = *patch.PurchaseAmount
	}
	if patch.InvestmentType != nil {
		inv.InvestmentType = *patch.InvestmentType
	}
	if patch.ValuationCap != nil {
		inv.ValuationCap = *patch.ValuationCap
	}
	if patch.Discount != nil {
		inv.Discount = *patch.Discount
	}
	if patch.Date != nil {
		inv.Date = *patch.Date
	}
	if patch.CreatedBy != nil {
		inv.CreatedBy = *patch.CreatedBy
	}
}

// SaveInvestorStep persists the investor side of the form: the investor
// signatory, their fund, and the links from the investment row to both.
// authID may be empty for an anonymous session. Returns the investment id
// (created on first save).
func (s *InvestmentService) SaveInvestorStep(ctx context.Context, id, authID string, form docgen.FormValues) (string, error) {
	investorID, err := s.UpsertParty(ctx, PartyInvestorUser, PartyValues{
		Name:   form.InvestorName,
		Title:  form.InvestorTitle,
		Email:  form.InvestorEmail,
		AuthID: authID,
	})
	if err != nil {
		return "", err
	}

	fundID, err := s.UpsertParty(ctx, PartyFund, PartyValues{
		Name:         form.FundName,
		Byline:       form.FundByline,
		Street:       form.FundStreet,
		CityStateZip: form.FundCityStateZip,
		OwnerID:      investorID,
	})
	if err != nil {
		return "", err
	}

	patch := models.InvestmentPatch{
		InvestorID: &investorID,
		FundID:     &fundID,
	}
	if authID != "" {
		patch.CreatedBy = &authID
	}
	return s.UpsertInvestment(ctx, id, patch)
}

// SaveFounderStep persists the founder side of the form: the founder
// signatory, their company, and the links from the investment row to
// both. Returns the investment id (created on first save, e.g. when a
// shared collaborator is the first to submit).
func (s *InvestmentService) SaveFounderStep(ctx context.Context, id string, form docgen.FormValues) (string, error) {
	founderID, err := s.UpsertParty(ctx, PartyFounderUser, PartyValues{
		Name:  form.FounderName,
		Title: form.FounderTitle,
		Email: form.FounderEmail,
	})
	if err != nil {
		return "", err
	}

	companyID, err := s.UpsertParty(ctx, PartyCompany, PartyValues{
		Name:                 form.CompanyName,
		Street:               form.CompanyStreet,
		CityStateZip:         form.CompanyCityStateZip,
		StateOfIncorporation: form.StateOfIncorporation,
		OwnerID:              founderID,
	})
	if err != nil {
		return "", err
	}

	return s.UpsertInvestment(ctx, id, models.InvestmentPatch{
		FounderID: &founderID,
		CompanyID: &companyID,
	})
}

// Submit completes the flow: it renders the agreement from the full form
// snapshot and, only if rendering succeeded, persists the deal terms.
// Returns the artifact bytes, the download filename, and the investment
// id.
//
// Render-before-persist keeps a failed generation from leaving the row
// half-finalized: the user retries from the same step with the same
// stored state.
func (s *InvestmentService) Submit(ctx context.Context, id, authID string, form docgen.FormValues) ([]byte, string, string, error) {
	fields, err := docgen.MapTemplateFields(form)
	if err != nil {
		return nil, "", "", err
	}

	doc, filename, err := s.renderer.Render(ctx, form.Type, fields)
	if err != nil {
		return nil, "", "", err
	}

	// Only the term matching the type is stored; the other is cleared in
	// case the user switched types on a resumed session.
	empty := ""
	patch := models.InvestmentPatch{
		PurchaseAmount: &form.PurchaseAmount,
		InvestmentType: &form.Type,
		ValuationCap:   &empty,
		Discount:       &empty,
		Date:           &form.Date,
	}
	switch form.Type {
	case models.TypeValuationCap:
		patch.ValuationCap = &form.ValuationCap
	case models.TypeDiscount:
		patch.Discount = &form.Discount
	}
	if authID != "" {
		patch.CreatedBy = &authID
	}

	id, err = s.UpsertInvestment(ctx, id, patch)
	if err != nil {
		return nil, "", "", err
	}

	slog.Info("agreement generated",
		"investment_id", id,
		"type", form.Type,
		"bytes", len(doc),
	)
	return doc, filename, id, nil
}

// Share emails the founder a rendered copy of the stored agreement. The
// investment must already carry founder details and deal terms.
func (s *InvestmentService) Share(ctx context.Context, id string) error {
	inv, err := s.GetInvestment(ctx, id)
	if err != nil {
		return err
	}
	if inv.Founder == nil || inv.Founder.Email == "" {
		return &docgen.ValidationError{Field: "founderEmail"}
	}
	if inv.Fund == nil {
		return &docgen.ValidationError{Field: "fundName"}
	}

	form := FormSnapshot(inv)
	fields, err := docgen.MapTemplateFields(form)
	if err != nil {
		return err
	}
	doc, filename, err := s.renderer.Render(ctx, inv.InvestmentType, fields)
	if err != nil {
		return err
	}

	body := notify.Greeting(inv.Founder.Name, inv.Fund.Name)
	subject := fmt.Sprintf("%s has shared a SAFE agreement with you", inv.Fund.Name)
	att := &notify.Attachment{Filename: filename, Content: doc}
	if err := s.mailer.Send(ctx, inv.Founder.Email, subject, body, att); err != nil {
		return fmt.Errorf("failed to send share notification: %w", err)
	}

	slog.Info("agreement shared", "investment_id", id, "to", inv.Founder.Email)
	return nil
}

// GetInvestment retrieves an investment with its party relations.
func (s *InvestmentService) GetInvestment(ctx context.Context, id string) (*models.InvestmentWithRelations, error) {
	inv, err := s.store.GetInvestment(ctx, id)
	if err != nil {
		return nil, persistErr("select", partyInvestment, err)
	}
	return inv, nil
}

// ListInvestments retrieves the investments started by an auth subject,
// newest first.
func (s *InvestmentService) ListInvestments(ctx context.Context, authID string) ([]models.InvestmentWithRelations, error) {
	invs, err := s.store.ListInvestmentsByCreator(ctx, authID)
	if err != nil {
		return nil, persistErr("select", partyInvestment, err)
	}
	return invs, nil
}

// FormSnapshot reassembles a form snapshot from a stored investment and
// its joined relations: what a resumed session hydrates its fields from,
// and what Share re-renders without the client's state.
func FormSnapshot(inv *models.InvestmentWithRelations) docgen.FormValues {
	v := docgen.FormValues{
		PurchaseAmount: inv.PurchaseAmount,
		Type:           inv.InvestmentType,
		ValuationCap:   inv.ValuationCap,
		Discount:       inv.Discount,
		Date:           inv.Date,
	}
	if inv.Fund != nil {
		v.FundName = inv.Fund.Name
		v.FundByline = inv.Fund.Byline
		v.FundStreet = inv.Fund.Street
		v.FundCityStateZip = inv.Fund.CityStateZip
	}
	if inv.Investor != nil {
		v.InvestorName = inv.Investor.Name
		v.InvestorTitle = inv.Investor.Title
		v.InvestorEmail = inv.Investor.Email
	}
	if inv.Company != nil {
		v.CompanyName = inv.Company.Name
		v.CompanyStreet = inv.Company.Street
		v.CompanyCityStateZip = inv.Company.CityStateZip
		v.StateOfIncorporation = inv.Company.StateOfIncorporation
	}
	if inv.Founder != nil {
		v.FounderName = inv.Founder.Name
		v.FounderTitle = inv.Founder.Title
		v.FounderEmail = inv.Founder.Email
	}
	return v
}
