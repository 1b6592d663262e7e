package present

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

// Template names defined under web/templates.
const (
	PageTemplate   = "index.html"
	LedgerTemplate = "ledger"
)

// HTML renders views with the embedded templates.
type HTML struct {
	templates *template.Template
}

// NewHTML parses templates/*.html from fsys.
func NewHTML(fsys fs.FS) (*HTML, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"currency": FormatAmount,
	}).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTML{templates: t}, nil
}

// Page renders the full page.
func (h *HTML) Page(w io.Writer, v View) error {
	if err := h.templates.ExecuteTemplate(w, PageTemplate, v); err != nil {
		return fmt.Errorf("render %s: %w", PageTemplate, err)
	}
	return nil
}

// Ledger renders only the table and summaries, the fragment swapped in after
// every action.
func (h *HTML) Ledger(w io.Writer, v View) error {
	if err := h.templates.ExecuteTemplate(w, LedgerTemplate, v); err != nil {
		return fmt.Errorf("render %s: %w", LedgerTemplate, err)
	}
	return nil
}
