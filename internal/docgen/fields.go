package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormValues is the typed snapshot of everything the three-step form
// collects. String fields left empty by the user stay empty; the mapper
// turns them into explicit "" template fields rather than dropping them.
type FormValues struct {
	CompanyName          string
	FundName             string
	FundByline           string
	PurchaseAmount       string
	Type                 string
	ValuationCap         string
	Discount             string
	StateOfIncorporation string
	Date                 time.Time
	InvestorName         string
	InvestorTitle        string
	InvestorEmail        string
	FundStreet           string
	FundCityStateZip     string
	FounderName          string
	FounderTitle         string
	FounderEmail         string
	CompanyStreet        string
	CompanyCityStateZip  string
}

// ValidationError reports a form field whose value cannot be turned into
// a template field. Rendering must not proceed when one is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q", e.Field)
}

// MapTemplateFields converts form values into the exact placeholder map
// the SAFE templates expect. Every template key is always present in the
// result; optional fields that were left blank map to "".
//
// The discount is inverted on the way out: the form collects the discount
// percentage, but the template prints the percentage of the next-round
// price the investor pays, i.e. 100 - discount.
func MapTemplateFields(v FormValues) (map[string]string, error) {
	if v.Date.IsZero() {
		return nil, &ValidationError{Field: "date"}
	}

	purchaseAmount, err := formatAmount(v.PurchaseAmount)
	if err != nil {
		return nil, &ValidationError{Field: "purchaseAmount"}
	}

	valuationCap := ""
	if v.ValuationCap != "" {
		valuationCap, err = formatAmount(v.ValuationCap)
		if err != nil {
			return nil, &ValidationError{Field: "valuationCap"}
		}
	}

	discount := ""
	if v.Discount != "" {
		d, err := strconv.Atoi(strings.TrimSpace(v.Discount))
		if err != nil || d < 0 || d > 100 {
			return nil, &ValidationError{Field: "discount"}
		}
		discount = strconv.Itoa(100 - d)
	}

	return map[string]string{
		"company_name":           v.CompanyName,
		"investing_entity_name":  v.FundName,
		"byline":                 v.FundByline,
		"purchase_amount":        purchaseAmount,
		"valuation_cap":          valuationCap,
		"discount":               discount,
		"state_of_incorporation": v.StateOfIncorporation,
		"date":                   formatDate(v.Date),
		"investor_name":          v.InvestorName,
		"investor_title":         v.InvestorTitle,
		"investor_email":         v.InvestorEmail,
		"investor_address_1":     v.FundStreet,
		"investor_address_2":     v.FundCityStateZip,
		"founder_name":           v.FounderName,
		"founder_title":          v.FounderTitle,
		"founder_email":          v.FounderEmail,
		"company_address_1":      v.CompanyStreet,
		"company_address_2":      v.CompanyCityStateZip,
	}, nil
}

// formatDate renders a date the way the agreement prints it,
// e.g. "March 1st, 2024".
func formatDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%s %d%s, %d", t.Month().String(), day, ordinalSuffix(day), t.Year())
}

// ordinalSuffix returns the English ordinal suffix for a day of month:
// 11-13 take "th", otherwise the last digit decides.
func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// formatAmount renders a dollar amount with thousands separators. The
// input may already carry separators (the form round-trips rendered
// values on resume), so they are stripped before parsing.
func formatAmount(s string) (string, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("not a number: %q", s)
	}

	out := strconv.FormatUint(n, 10)
	for i := len(out) - 3; i > 0; i -= 3 {
		out = out[:i] + "," + out[i:]
	}
	return out, nil
}
