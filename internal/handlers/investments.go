package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/safeforge/safeforge/internal/docgen"
	"github.com/safeforge/safeforge/internal/middleware"
	"github.com/safeforge/safeforge/internal/models"
	"github.com/safeforge/safeforge/internal/service"
	"github.com/safeforge/safeforge/internal/wizard"
)

// docxContentType is the MIME type for generated .docx artifacts.
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// dateLayout is the wire format for the agreement date.
const dateLayout = "2006-01-02"

// formRequest is the form snapshot the client sends with every step save.
// The client keeps the whole form in its own state, so each request
// carries all fields; the server persists only the slice the step owns.
type formRequest struct {
	FundName         string `json:"fundName"`
	FundByline       string `json:"fundByline"`
	FundStreet       string `json:"fundStreet"`
	FundCityStateZip string `json:"fundCityStateZip"`
	InvestorName     string `json:"investorName"`
	InvestorTitle    string `json:"investorTitle"`
	InvestorEmail    string `json:"investorEmail"`

	CompanyName          string `json:"companyName"`
	CompanyStreet        string `json:"companyStreet"`
	CompanyCityStateZip  string `json:"companyCityStateZip"`
	StateOfIncorporation string `json:"stateOfIncorporation"`
	FounderName          string `json:"founderName"`
	FounderTitle         string `json:"founderTitle"`
	FounderEmail         string `json:"founderEmail"`

	PurchaseAmount string `json:"purchaseAmount"`
	Type           string `json:"type"`
	ValuationCap   string `json:"valuationCap"`
	Discount       string `json:"discount"`
	Date           string `json:"date"`
}

// values converts the request into typed form values. An unparseable date
// is a validation error; an absent one stays zero and is only rejected
// when generation needs it.
func (r formRequest) values() (docgen.FormValues, error) {
	v := docgen.FormValues{
		FundName:             r.FundName,
		FundByline:           r.FundByline,
		FundStreet:           r.FundStreet,
		FundCityStateZip:     r.FundCityStateZip,
		InvestorName:         r.InvestorName,
		InvestorTitle:        r.InvestorTitle,
		InvestorEmail:        r.InvestorEmail,
		CompanyName:          r.CompanyName,
		CompanyStreet:        r.CompanyStreet,
		CompanyCityStateZip:  r.CompanyCityStateZip,
		StateOfIncorporation: r.StateOfIncorporation,
		FounderName:          r.FounderName,
		FounderTitle:         r.FounderTitle,
		FounderEmail:         r.FounderEmail,
		PurchaseAmount:       r.PurchaseAmount,
		Type:                 r.Type,
		ValuationCap:         r.ValuationCap,
		Discount:             r.Discount,
	}
	if r.Date != "" {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return docgen.FormValues{}, &docgen.ValidationError{Field: "date"}
		}
		v.Date = date
	}
	return v, nil
}

// field returns the request value for a step field name, for required
// checks.
func (r formRequest) field(name string) string {
	switch name {
	case "fundName":
		return r.FundName
	case "investorName":
		return r.InvestorName
	case "investorEmail":
		return r.InvestorEmail
	case "companyName":
		return r.CompanyName
	case "founderName":
		return r.FounderName
	case "founderEmail":
		return r.FounderEmail
	case "purchaseAmount":
		return r.PurchaseAmount
	case "type":
		return r.Type
	case "date":
		return r.Date
	default:
		return ""
	}
}

func formFromValues(v docgen.FormValues) formRequest {
	r := formRequest{
		FundName:             v.FundName,
		FundByline:           v.FundByline,
		FundStreet:           v.FundStreet,
		FundCityStateZip:     v.FundCityStateZip,
		InvestorName:         v.InvestorName,
		InvestorTitle:        v.InvestorTitle,
		InvestorEmail:        v.InvestorEmail,
		CompanyName:          v.CompanyName,
		CompanyStreet:        v.CompanyStreet,
		CompanyCityStateZip:  v.CompanyCityStateZip,
		StateOfIncorporation: v.StateOfIncorporation,
		FounderName:          v.FounderName,
		FounderTitle:         v.FounderTitle,
		FounderEmail:         v.FounderEmail,
		PurchaseAmount:       v.PurchaseAmount,
		Type:                 v.Type,
		ValuationCap:         v.ValuationCap,
		Discount:             v.Discount,
	}
	if !v.Date.IsZero() {
		r.Date = v.Date.Format(dateLayout)
	}
	return r
}

// stepResponse tells the client where the wizard stands after a save: the
// investment id to carry forward, the next step, and the query string
// that resumes this session from a fresh page load.
type stepResponse struct {
	ID      string `json:"id"`
	Step    int    `json:"step"`
	Sharing bool   `json:"sharing"`
	Done    bool   `json:"done"`
	Resume  string `json:"resume"`
}

// investmentResponse is the stored investment plus the form snapshot a
// resumed session hydrates from.
type investmentResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	CreatedAt int64       `json:"createdAt"`
	UpdatedAt int64       `json:"updatedAt"`
	Form      formRequest `json:"form"`
}

func toInvestmentResponse(inv *models.InvestmentWithRelations) investmentResponse {
	return investmentResponse{
		ID:        inv.ID,
		Type:      inv.InvestmentType,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		Form:      formFromValues(service.FormSnapshot(inv)),
	}
}

func sessionFrom(c *fiber.Ctx) wizard.Session {
	return wizard.Parse(c.Query("id"), c.Query("step"), c.Query("sharing"))
}

func parseForm(c *fiber.Ctx, step wizard.Step) (formRequest, docgen.FormValues, error) {
	var req formRequest
	if err := c.BodyParser(&req); err != nil {
		return req, docgen.FormValues{}, &docgen.ValidationError{Field: "body"}
	}
	for _, name := range wizard.RequiredFields(step) {
		if req.field(name) == "" {
			return req, docgen.FormValues{}, &docgen.ValidationError{Field: name}
		}
	}
	vals, err := req.values()
	return req, vals, err
}

func (h *Handler) saveInvestorStep(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	sess.Step = wizard.StepInvestor

	_, vals, err := parseForm(c, sess.Step)
	if err != nil {
		return writeError(c, err)
	}

	id, err := h.investments.SaveInvestorStep(c.Context(), sess.InvestmentID, middleware.AuthID(c), vals)
	if err != nil {
		return writeError(c, err)
	}

	sess.InvestmentID = id
	next, done := sess.Advance()
	return c.JSON(stepResponse{
		ID:      id,
		Step:    int(next.Step),
		Sharing: next.Shared,
		Done:    done,
		Resume:  next.Encode(),
	})
}

func (h *Handler) saveFounderStep(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	sess.Step = wizard.StepFounder

	_, vals, err := parseForm(c, sess.Step)
	if err != nil {
		return writeError(c, err)
	}

	id, err := h.investments.SaveFounderStep(c.Context(), sess.InvestmentID, vals)
	if err != nil {
		return writeError(c, err)
	}

	sess.InvestmentID = id
	next, done := sess.Advance()
	return c.JSON(stepResponse{
		ID:      id,
		Step:    int(next.Step),
		Sharing: next.Shared,
		Done:    done,
		Resume:  next.Encode(),
	})
}

// generate saves the deal terms and streams back the populated agreement.
func (h *Handler) generate(c *fiber.Ctx) error {
	sess := sessionFrom(c)

	_, vals, err := parseForm(c, wizard.StepTerms)
	if err != nil {
		return writeError(c, err)
	}

	doc, filename, id, err := h.investments.Submit(c.Context(), sess.InvestmentID, middleware.AuthID(c), vals)
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, docxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set("X-Investment-Id", id)
	return c.Send(doc)
}

func (h *Handler) getInvestment(c *fiber.Ctx) error {
	inv, err := h.investments.GetInvestment(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInvestmentResponse(inv))
}

func (h *Handler) listInvestments(c *fiber.Ctx) error {
	invs, err := h.investments.ListInvestments(c.Context(), middleware.AuthID(c))
	if err != nil {
		return writeError(c, err)
	}

	out := make([]investmentResponse, 0, len(invs))
	for i := range invs {
		out = append(out, toInvestmentResponse(&invs[i]))
	}
	return c.JSON(fiber.Map{"investments": out})
}

func (h *Handler) share(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.investments.Share(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"shared": true, "id": id})
}
