package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/safeforge/safeforge/internal/docgen"
	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/notify"
	"github.com/safeforge/safeforge/internal/storage"
	"github.com/safeforge/safeforge/internal/storage/sqlite"
)

// captureMailer records the last notification instead of sending it.
type captureMailer struct {
	to      string
	subject string
	body    string
	att     *notify.Attachment
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string, att *notify.Attachment) error {
	m.to, m.subject, m.body, m.att = to, subject, body, att
	return nil
}

// writeTestTemplates puts a minimal placeholder-bearing template in a
// temp dir under every template name the renderer can ask for.
func writeTestTemplates(t *testing.T) *docgen.DirSource {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to build template: %v", err)
	}
	_, err = w.Write([]byte(`<w:t>{investing_entity_name} invests {purchase_amount} in {company_name} on {date}, cap {valuation_cap}, discount {discount}</w:t>`))
	if err != nil {
		t.Fatalf("Failed to build template: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to build template: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"SAFE-Valuation-Cap.docx", "SAFE-Discount.docx", "SAFE-MFN.docx"} {
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			t.Fatalf("Failed to write template %s: %v", name, err)
		}
	}
	return docgen.NewDirSource(dir)
}

func setupService(t *testing.T) (*InvestmentService, storage.Store, *captureMailer) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mailer := &captureMailer{}
	svc := NewInvestmentService(store, docgen.NewRenderer(writeTestTemplates(t)), mailer)
	return svc, store, mailer
}

func documentBody(t *testing.T, doc []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		t.Fatalf("Generated document is not a zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open document part: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("Failed to read document part: %v", err)
		}
		return string(data)
	}
	t.Fatal("Generated document has no word/document.xml")
	return ""
}

func testForm() docgen.FormValues {
	return docgen.FormValues{
		FundName:             "Foo Ventures LP",
		FundByline:           "by its General Partner",
		FundStreet:           "100 Fund St",
		FundCityStateZip:     "San Francisco, CA 94105",
		InvestorName:         "Ivy Investor",
		InvestorTitle:        "Managing Partner",
		InvestorEmail:        "ivy@foo.vc",
		CompanyName:          "Acme Inc",
		CompanyStreet:        "200 Startup Ave",
		CompanyCityStateZip:  "Palo Alto, CA 94301",
		StateOfIncorporation: "Delaware",
		FounderName:          "Frank Founder",
		FounderTitle:         "CEO",
		FounderEmail:         "frank@acme.com",
		PurchaseAmount:       "500000",
		Type:                 models.TypeValuationCap,
		ValuationCap:         "5000000",
		Date:                 time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsertParty(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	t.Run("user is created once and reused by email", func(t *testing.T) {
		first, err := svc.UpsertParty(ctx, PartyInvestorUser, PartyValues{
			Name: "Ivy", Title: "Partner", Email: "ivy@foo.vc",
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}

		second, err := svc.UpsertParty(ctx, PartyInvestorUser, PartyValues{
			Name: "Ivy I. Investor", Title: "Managing Partner", Email: "ivy@foo.vc",
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}
		if first != second {
			t.Errorf("Same email produced two users: %s and %s", first, second)
		}

		// The second save updated the row in place.
		user, err := store.GetUserByEmail(ctx, "ivy@foo.vc")
		if err != nil || user == nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user.Name != "Ivy I. Investor" || user.Title != "Managing Partner" {
			t.Errorf("User not updated in place: %+v", user)
		}
	})

	t.Run("auth link is kept once set", func(t *testing.T) {
		_, err := svc.UpsertParty(ctx, PartyInvestorUser, PartyValues{
			Name: "Ivy", Email: "ivy@foo.vc", AuthID: "auth-ivy",
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}

		_, err = svc.UpsertParty(ctx, PartyInvestorUser, PartyValues{
			Name: "Ivy", Email: "ivy@foo.vc", AuthID: "auth-imposter",
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}

		user, _ := store.GetUserByEmail(ctx, "ivy@foo.vc")
		if user.AuthID != "auth-ivy" {
			t.Errorf("AuthID = %q, want the original auth-ivy", user.AuthID)
		}
	})

	t.Run("fund matches on name and owner", func(t *testing.T) {
		ownerID, err := svc.UpsertParty(ctx, PartyInvestorUser, PartyValues{
			Name: "Ivy", Email: "ivy@foo.vc",
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}

		first, err := svc.UpsertParty(ctx, PartyFund, PartyValues{
			Name: "Foo Ventures", Byline: "old byline", OwnerID: ownerID,
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}
		second, err := svc.UpsertParty(ctx, PartyFund, PartyValues{
			Name: "Foo Ventures", Byline: "new byline", OwnerID: ownerID,
		})
		if err != nil {
			t.Fatalf("UpsertParty failed: %v", err)
		}
		if first != second {
			t.Errorf("Same (name, owner) produced two funds: %s and %s", first, second)
		}

		fund, err := store.FindFund(ctx, "Foo Ventures", ownerID)
		if err != nil || fund == nil {
			t.Fatalf("FindFund failed: %v", err)
		}
		if fund.Byline != "new byline" {
			t.Errorf("Fund not updated in place: %+v", fund)
		}
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		if _, err := svc.UpsertParty(ctx, PartyKind("widget"), PartyValues{}); err == nil {
			t.Error("Expected error for unknown party kind")
		}
	})
}

func TestSaveSteps(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	t.Run("investor step creates investment and links", func(t *testing.T) {
		id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", testForm())
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}
		if id == "" {
			t.Fatal("Expected an investment id")
		}

		inv, err := store.GetInvestment(ctx, id)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if inv.Investor == nil || inv.Investor.Email != "ivy@foo.vc" {
			t.Errorf("Investor not linked: %+v", inv.Investor)
		}
		if inv.Fund == nil || inv.Fund.Name != "Foo Ventures LP" {
			t.Errorf("Fund not linked: %+v", inv.Fund)
		}
		if inv.CreatedBy != "auth-ivy" {
			t.Errorf("CreatedBy = %q, want auth-ivy", inv.CreatedBy)
		}

		t.Run("founder step fills the other side of the same row", func(t *testing.T) {
			got, err := svc.SaveFounderStep(ctx, id, testForm())
			if err != nil {
				t.Fatalf("SaveFounderStep failed: %v", err)
			}
			if got != id {
				t.Errorf("Founder step returned %s, want %s", got, id)
			}

			inv, err := store.GetInvestment(ctx, id)
			if err != nil {
				t.Fatalf("GetInvestment failed: %v", err)
			}
			if inv.Founder == nil || inv.Founder.Email != "frank@acme.com" {
				t.Errorf("Founder not linked: %+v", inv.Founder)
			}
			if inv.Company == nil || inv.Company.StateOfIncorporation != "Delaware" {
				t.Errorf("Company not linked: %+v", inv.Company)
			}
			// The investor side set earlier survives.
			if inv.Investor == nil || inv.Fund == nil {
				t.Error("Investor side lost after founder step")
			}
		})
	})

	t.Run("founder step alone creates the investment", func(t *testing.T) {
		id, err := svc.SaveFounderStep(ctx, "", testForm())
		if err != nil {
			t.Fatalf("SaveFounderStep failed: %v", err)
		}
		if id == "" {
			t.Fatal("Expected an investment id")
		}
	})

	t.Run("saving against a deleted id fails", func(t *testing.T) {
		_, err := svc.SaveFounderStep(ctx, "no-such-id", testForm())
		var pErr *PersistenceError
		if !errors.As(err, &pErr) {
			t.Fatalf("Expected PersistenceError, got %v", err)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected wrapped ErrNotFound, got %v", err)
		}
	})
}

func TestSubmit(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	t.Run("renders the document and persists terms", func(t *testing.T) {
		id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", testForm())
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}
		if _, err := svc.SaveFounderStep(ctx, id, testForm()); err != nil {
			t.Fatalf("SaveFounderStep failed: %v", err)
		}

		doc, filename, gotID, err := svc.Submit(ctx, id, "auth-ivy", testForm())
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if gotID != id {
			t.Errorf("Submit returned id %s, want %s", gotID, id)
		}
		if filename != "YC-SAFE-Valuation-Cap.docx" {
			t.Errorf("filename = %q, want YC-SAFE-Valuation-Cap.docx", filename)
		}

		body := documentBody(t, doc)
		for _, want := range []string{"Foo Ventures LP", "500,000", "Acme Inc", "March 1st, 2024", "5,000,000"} {
			if !strings.Contains(body, want) {
				t.Errorf("Document missing %q: %s", want, body)
			}
		}

		inv, err := store.GetInvestment(ctx, id)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if inv.InvestmentType != models.TypeValuationCap || inv.ValuationCap != "5000000" {
			t.Errorf("Terms not persisted: %+v", inv.Investment)
		}
		if inv.Discount != "" {
			t.Errorf("Discount = %q, want empty for valuation-cap", inv.Discount)
		}
	})

	t.Run("switching type clears the other term", func(t *testing.T) {
		form := testForm()
		id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", form)
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}
		if _, _, _, err := svc.Submit(ctx, id, "auth-ivy", form); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		form.Type = models.TypeDiscount
		form.ValuationCap = ""
		form.Discount = "20"
		doc, filename, _, err := svc.Submit(ctx, id, "auth-ivy", form)
		if err != nil {
			t.Fatalf("Second submit failed: %v", err)
		}
		if filename != "YC-SAFE-Discount.docx" {
			t.Errorf("filename = %q, want YC-SAFE-Discount.docx", filename)
		}
		if body := documentBody(t, doc); !strings.Contains(body, "discount 80") {
			t.Errorf("Document missing inverted discount: %s", body)
		}

		inv, err := store.GetInvestment(ctx, id)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if inv.ValuationCap != "" || inv.Discount != "20" {
			t.Errorf("Terms after type switch: cap=%q discount=%q", inv.ValuationCap, inv.Discount)
		}
	})

	t.Run("invalid form leaves the row untouched", func(t *testing.T) {
		form := testForm()
		id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", form)
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}

		form.PurchaseAmount = "a handshake"
		_, _, _, err = svc.Submit(ctx, id, "auth-ivy", form)
		var vErr *docgen.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}

		inv, err := store.GetInvestment(ctx, id)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if inv.PurchaseAmount != "" {
			t.Errorf("Failed submit persisted terms: %+v", inv.Investment)
		}
	})

	t.Run("unknown type renders nothing and persists nothing", func(t *testing.T) {
		form := testForm()
		id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", form)
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}

		form.Type = "iou"
		_, _, _, err = svc.Submit(ctx, id, "auth-ivy", form)
		if !errors.Is(err, docgen.ErrUnknownTemplateType) {
			t.Fatalf("Expected ErrUnknownTemplateType, got %v", err)
		}

		inv, _ := store.GetInvestment(ctx, id)
		if inv.InvestmentType != "" {
			t.Errorf("Failed submit persisted type %q", inv.InvestmentType)
		}
	})
}

func TestShare(t *testing.T) {
	svc, _, mailer := setupService(t)
	ctx := context.Background()

	form := testForm()
	id, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", form)
	if err != nil {
		t.Fatalf("SaveInvestorStep failed: %v", err)
	}
	if _, err := svc.SaveFounderStep(ctx, id, form); err != nil {
		t.Fatalf("SaveFounderStep failed: %v", err)
	}
	if _, _, _, err := svc.Submit(ctx, id, "auth-ivy", form); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := svc.Share(ctx, id); err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	if mailer.to != "frank@acme.com" {
		t.Errorf("Share sent to %q, want frank@acme.com", mailer.to)
	}
	want := "Hi Frank,\n\nFoo Ventures LP has shared a SAFE agreement with you. Please find the document attached to this email."
	if mailer.body != want {
		t.Errorf("Share body = %q, want %q", mailer.body, want)
	}
	if mailer.att == nil || mailer.att.Filename != "YC-SAFE-Valuation-Cap.docx" {
		t.Errorf("Share attachment = %+v", mailer.att)
	}
	if mailer.att != nil && len(mailer.att.Content) == 0 {
		t.Error("Share attachment is empty")
	}

	t.Run("share of unknown investment fails", func(t *testing.T) {
		if err := svc.Share(ctx, "no-such-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("share without a founder fails", func(t *testing.T) {
		bare, err := svc.SaveInvestorStep(ctx, "", "auth-ivy", form)
		if err != nil {
			t.Fatalf("SaveInvestorStep failed: %v", err)
		}
		var vErr *docgen.ValidationError
		if err := svc.Share(ctx, bare); !errors.As(err, &vErr) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})
}
