// Package docgen maps form values onto the fixed YC Post-Money SAFE
// templates and renders populated .docx artifacts.
//
// A .docx file is a zip archive of XML parts. The templates carry
// {placeholder} tags in their document body; rendering substitutes every
// tag with its mapped value and rebuilds the archive otherwise unchanged.
package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrUnknownTemplateType means the investment type selects no template.
	ErrUnknownTemplateType = errors.New("unknown investment type: no template selected")

	// ErrTemplateUnavailable means the template bytes could not be fetched.
	ErrTemplateUnavailable = errors.New("template unavailable")

	// ErrTemplateCorrupt means the fetched bytes are not a usable template.
	ErrTemplateCorrupt = errors.New("template corrupt")
)

// documentPart is the archive entry holding the agreement body. A
// template without it is not a .docx file at all.
const documentPart = "word/document.xml"

// TemplateName returns the stored template artifact for an investment
// type.
func TemplateName(investmentType string) (string, error) {
	switch investmentType {
	case "valuation-cap":
		return "SAFE-Valuation-Cap.docx", nil
	case "discount":
		return "SAFE-Discount.docx", nil
	case "mfn":
		return "SAFE-MFN.docx", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplateType, investmentType)
	}
}

// Filename returns the download filename offered for a generated
// agreement of the given investment type.
func Filename(investmentType string) (string, error) {
	switch investmentType {
	case "valuation-cap":
		return "YC-SAFE-Valuation-Cap.docx", nil
	case "discount":
		return "YC-SAFE-Discount.docx", nil
	case "mfn":
		return "YC-SAFE-MFN.docx", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplateType, investmentType)
	}
}

// Renderer produces populated SAFE documents from stored templates.
type Renderer struct {
	source TemplateSource
}

// NewRenderer creates a Renderer reading templates from the given source.
func NewRenderer(source TemplateSource) *Renderer {
	return &Renderer{source: source}
}

// Render fetches the template for the investment type, substitutes the
// field map into it, and returns the artifact bytes plus the suggested
// download filename. On any error no partial artifact is returned.
//
// Placeholders missing from fields are left untouched: MapTemplateFields
// guarantees completeness, so an unresolved tag is a caller bug, not a
// rendering failure.
func (r *Renderer) Render(ctx context.Context, investmentType string, fields map[string]string) ([]byte, string, error) {
	name, err := TemplateName(investmentType)
	if err != nil {
		return nil, "", err
	}
	filename, err := Filename(investmentType)
	if err != nil {
		return nil, "", err
	}

	raw, err := r.source.Fetch(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrTemplateUnavailable, name, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
	}

	hasDocument := false
	for _, f := range zr.File {
		if f.Name == documentPart {
			hasDocument = true
			break
		}
	}
	if !hasDocument {
		return nil, "", fmt.Errorf("%w: %s: missing %s", ErrTemplateCorrupt, name, documentPart)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
		}

		if substitutable(f.Name) {
			data = substitute(data, fields)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize document: %w", err)
	}

	return buf.Bytes(), filename, nil
}

// substitutable reports whether an archive part carries placeholder tags:
// the document body plus any headers and footers.
func substitutable(name string) bool {
	if name == documentPart {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func substitute(data []byte, fields map[string]string) []byte {
	s := string(data)
	for key, value := range fields {
		s = strings.ReplaceAll(s, "{"+key+"}", xmlEscaper.Replace(value))
	}
	return []byte(s)
}
