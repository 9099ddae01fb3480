package service

import (
	"context"
	"log/slog"

	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/storage"
)

// EntityService lists a user's reusable parties (funds and companies) and
// hydrates form fields when one is selected.
type EntityService struct {
	store storage.Store
}

// NewEntityService creates a new EntityService with the given storage backend.
func NewEntityService(store storage.Store) *EntityService {
	return &EntityService{store: store}
}

// FieldPatch is the set of form fields a selected entity hydrates. Only
// the side matching the entity's kind is populated; signatory fields come
// from the owning user row.
type FieldPatch struct {
	FundName         string `json:"fundName,omitempty"`
	FundByline       string `json:"fundByline,omitempty"`
	FundStreet       string `json:"fundStreet,omitempty"`
	FundCityStateZip string `json:"fundCityStateZip,omitempty"`

	CompanyName          string `json:"companyName,omitempty"`
	CompanyStreet        string `json:"companyStreet,omitempty"`
	CompanyCityStateZip  string `json:"companyCityStateZip,omitempty"`
	StateOfIncorporation string `json:"stateOfIncorporation,omitempty"`

	InvestorName  string `json:"investorName,omitempty"`
	InvestorTitle string `json:"investorTitle,omitempty"`
	InvestorEmail string `json:"investorEmail,omitempty"`

	FounderName  string `json:"founderName,omitempty"`
	FounderTitle string `json:"founderTitle,omitempty"`
	FounderEmail string `json:"founderEmail,omitempty"`
}

// ListEntities returns the user's funds followed by their companies, each
// tagged with its kind. The list is what selection later resolves
// against.
func (s *EntityService) ListEntities(ctx context.Context, userID string) ([]models.Entity, error) {
	funds, err := s.store.ListFundsByInvestor(ctx, userID)
	if err != nil {
		return nil, persistErr("select", PartyFund, err)
	}
	companies, err := s.store.ListCompaniesByFounder(ctx, userID)
	if err != nil {
		return nil, persistErr("select", PartyCompany, err)
	}

	entities := make([]models.Entity, 0, len(funds)+len(companies))
	for _, f := range funds {
		entities = append(entities, models.Entity{
			Kind:         models.EntityFund,
			ID:           f.ID,
			Name:         f.Name,
			Byline:       f.Byline,
			Street:       f.Street,
			CityStateZip: f.CityStateZip,
			OwnerID:      f.InvestorID,
		})
	}
	for _, c := range companies {
		entities = append(entities, models.Entity{
			Kind:                 models.EntityCompany,
			ID:                   c.ID,
			Name:                 c.Name,
			Street:               c.Street,
			CityStateZip:         c.CityStateZip,
			StateOfIncorporation: c.StateOfIncorporation,
			OwnerID:              c.FounderID,
		})
	}
	return entities, nil
}

// ListEntitiesForAuth resolves the app user behind an auth subject and
// lists their entities. A subject with no user row yet simply has no
// reusable entities.
func (s *EntityService) ListEntitiesForAuth(ctx context.Context, authID string) ([]models.Entity, error) {
	user, err := s.store.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, persistErr("select", PartyInvestorUser, err)
	}
	if user == nil {
		return []models.Entity{}, nil
	}
	return s.ListEntities(ctx, user.ID)
}

// ResolveSelection finds the selected entity in the already-fetched list,
// then fetches the owning user to hydrate signatory fields. Two dependent
// lookups: the entity row only stores the owner's foreign key.
//
// An id not present in the list is a caller contract violation and fails
// with ErrEntityNotFound.
func (s *EntityService) ResolveSelection(ctx context.Context, entityID string, entities []models.Entity) (*FieldPatch, error) {
	var selected *models.Entity
	for i := range entities {
		if entities[i].ID == entityID {
			selected = &entities[i]
			break
		}
	}
	if selected == nil {
		slog.Warn("entity selection not in list", "entity_id", entityID, "list_size", len(entities))
		return nil, ErrEntityNotFound
	}

	owner, err := s.store.GetUserByID(ctx, selected.OwnerID)
	if err != nil {
		return nil, persistErr("select", ownerKind(selected.Kind), err)
	}
	if owner == nil {
		// The entity row points at a user that no longer resolves.
		return nil, persistErr("select", ownerKind(selected.Kind), storage.ErrNotFound)
	}

	patch := &FieldPatch{}
	switch selected.Kind {
	case models.EntityFund:
		patch.FundName = selected.Name
		patch.FundByline = selected.Byline
		patch.FundStreet = selected.Street
		patch.FundCityStateZip = selected.CityStateZip
		patch.InvestorName = owner.Name
		patch.InvestorTitle = owner.Title
		patch.InvestorEmail = owner.Email
	case models.EntityCompany:
		patch.CompanyName = selected.Name
		patch.CompanyStreet = selected.Street
		patch.CompanyCityStateZip = selected.CityStateZip
		patch.StateOfIncorporation = selected.StateOfIncorporation
		patch.FounderName = owner.Name
		patch.FounderTitle = owner.Title
		patch.FounderEmail = owner.Email
	}
	return patch, nil
}

func ownerKind(kind models.EntityKind) PartyKind {
	if kind == models.EntityCompany {
		return PartyFounderUser
	}
	return PartyInvestorUser
}
