package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		user := &models.User{Name: "Ivy Investor", Title: "Partner", Email: "ivy@foo.vc"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail finds the user", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "ivy@foo.vc")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected user, got nil")
		}
		if got.Name != "Ivy Investor" || got.Title != "Partner" {
			t.Errorf("Got %+v", got)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@nowhere.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil, got %+v", got)
		}
	})

	t.Run("GetUserByAuthID finds linked user", func(t *testing.T) {
		user := &models.User{Name: "Frank", Email: "frank@acme.com", AuthID: "auth-frank"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByAuthID(ctx, "auth-frank")
		if err != nil {
			t.Fatalf("GetUserByAuthID failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Errorf("Got %+v, want id %s", got, user.ID)
		}
	})

	t.Run("UpdateUser overwrites signatory details", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "ivy@foo.vc")
		if err != nil || user == nil {
			t.Fatalf("Setup failed: %v", err)
		}

		user.Name = "Ivy I. Investor"
		user.Title = "Managing Partner"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Name != "Ivy I. Investor" || got.Title != "Managing Partner" {
			t.Errorf("Got %+v", got)
		}
	})
}

func TestFundsAndCompanies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := &models.User{Name: "Ivy", Email: "ivy@foo.vc"}
	if err := store.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	founder := &models.User{Name: "Frank", Email: "frank@acme.com"}
	if err := store.CreateUser(ctx, founder); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("FindFund matches on name and owner", func(t *testing.T) {
		fund := &models.Fund{Name: "Foo Ventures", Byline: "by its GP", InvestorID: owner.ID}
		if err := store.CreateFund(ctx, fund); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		got, err := store.FindFund(ctx, "Foo Ventures", owner.ID)
		if err != nil {
			t.Fatalf("FindFund failed: %v", err)
		}
		if got == nil || got.ID != fund.ID {
			t.Errorf("Got %+v, want id %s", got, fund.ID)
		}

		// Same name under a different owner is a different fund.
		got, err = store.FindFund(ctx, "Foo Ventures", founder.ID)
		if err != nil {
			t.Fatalf("FindFund failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for other owner, got %+v", got)
		}
	})

	t.Run("ListFundsByInvestor returns only the owner's funds", func(t *testing.T) {
		second := &models.Fund{Name: "Bar Capital", InvestorID: owner.ID}
		if err := store.CreateFund(ctx, second); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		funds, err := store.ListFundsByInvestor(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListFundsByInvestor failed: %v", err)
		}
		if len(funds) != 2 {
			t.Errorf("Expected 2 funds, got %d", len(funds))
		}
	})

	t.Run("Company round trip", func(t *testing.T) {
		company := &models.Company{
			Name:                 "Acme Inc",
			StateOfIncorporation: "Delaware",
			FounderID:            founder.ID,
		}
		if err := store.CreateCompany(ctx, company); err != nil {
			t.Fatalf("CreateCompany failed: %v", err)
		}

		got, err := store.FindCompany(ctx, "Acme Inc", founder.ID)
		if err != nil {
			t.Fatalf("FindCompany failed: %v", err)
		}
		if got == nil || got.StateOfIncorporation != "Delaware" {
			t.Errorf("Got %+v", got)
		}

		got.Street = "200 Startup Ave"
		if err := store.UpdateCompany(ctx, got); err != nil {
			t.Fatalf("UpdateCompany failed: %v", err)
		}

		companies, err := store.ListCompaniesByFounder(ctx, founder.ID)
		if err != nil {
			t.Fatalf("ListCompaniesByFounder failed: %v", err)
		}
		if len(companies) != 1 || companies[0].Street != "200 Startup Ave" {
			t.Errorf("Got %+v", companies)
		}
	})
}

func TestInvestments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	investor := &models.User{Name: "Ivy", Title: "Partner", Email: "ivy@foo.vc"}
	if err := store.CreateUser(ctx, investor); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	fund := &models.Fund{Name: "Foo Ventures", InvestorID: investor.ID}
	if err := store.CreateFund(ctx, fund); err != nil {
		t.Fatalf("CreateFund failed: %v", err)
	}
	founder := &models.User{Name: "Frank", Email: "frank@acme.com"}
	if err := store.CreateUser(ctx, founder); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	company := &models.Company{Name: "Acme Inc", FounderID: founder.ID}
	if err := store.CreateCompany(ctx, company); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	var invID string

	t.Run("CreateInvestment with partial fields", func(t *testing.T) {
		inv := &models.Investment{
			InvestorID: &investor.ID,
			FundID:     &fund.ID,
			CreatedBy:  "auth-ivy",
		}
		if err := store.CreateInvestment(ctx, inv); err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		if inv.ID == "" {
			t.Fatal("Expected investment ID to be generated")
		}
		invID = inv.ID
	})

	t.Run("UpdateInvestment merges disjoint patches", func(t *testing.T) {
		err := store.UpdateInvestment(ctx, invID, models.InvestmentPatch{
			FounderID: &founder.ID,
			CompanyID: &company.ID,
		})
		if err != nil {
			t.Fatalf("UpdateInvestment (founder step) failed: %v", err)
		}

		date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		err = store.UpdateInvestment(ctx, invID, models.InvestmentPatch{
			PurchaseAmount: strPtr("500000"),
			InvestmentType: strPtr(models.TypeValuationCap),
			ValuationCap:   strPtr("5000000"),
			Date:           &date,
		})
		if err != nil {
			t.Fatalf("UpdateInvestment (terms step) failed: %v", err)
		}

		got, err := store.GetInvestment(ctx, invID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}

		// Earlier steps' fields survive later patches.
		if got.InvestorID == nil || *got.InvestorID != investor.ID {
			t.Error("Investor link lost after later patches")
		}
		if got.FounderID == nil || *got.FounderID != founder.ID {
			t.Error("Founder link lost after terms patch")
		}
		if got.PurchaseAmount != "500000" || got.InvestmentType != models.TypeValuationCap {
			t.Errorf("Terms not applied: %+v", got.Investment)
		}
		if !got.Date.Equal(date) {
			t.Errorf("Date = %v, want %v", got.Date, date)
		}
	})

	t.Run("GetInvestment joins relations", func(t *testing.T) {
		got, err := store.GetInvestment(ctx, invID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if got.Investor == nil || got.Investor.Email != "ivy@foo.vc" {
			t.Errorf("Investor relation = %+v", got.Investor)
		}
		if got.Fund == nil || got.Fund.Name != "Foo Ventures" {
			t.Errorf("Fund relation = %+v", got.Fund)
		}
		if got.Founder == nil || got.Founder.Name != "Frank" {
			t.Errorf("Founder relation = %+v", got.Founder)
		}
		if got.Company == nil || got.Company.Name != "Acme Inc" {
			t.Errorf("Company relation = %+v", got.Company)
		}
	})

	t.Run("GetInvestment unknown id", func(t *testing.T) {
		_, err := store.GetInvestment(ctx, "no-such-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateInvestment unknown id", func(t *testing.T) {
		err := store.UpdateInvestment(ctx, "no-such-id", models.InvestmentPatch{
			PurchaseAmount: strPtr("1"),
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListInvestmentsByCreator filters and orders", func(t *testing.T) {
		other := &models.Investment{CreatedBy: "auth-other"}
		if err := store.CreateInvestment(ctx, other); err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}

		invs, err := store.ListInvestmentsByCreator(ctx, "auth-ivy")
		if err != nil {
			t.Fatalf("ListInvestmentsByCreator failed: %v", err)
		}
		if len(invs) != 1 || invs[0].ID != invID {
			t.Errorf("Got %d investments, want the one created by auth-ivy", len(invs))
		}

		// Relations come back on list rows too; partially filled rows have
		// nil relations rather than zero structs.
		if invs[0].Fund == nil {
			t.Error("Expected fund relation on listed investment")
		}
		if invs[0].Date.IsZero() {
			t.Error("Expected date on listed investment")
		}
	})
}
