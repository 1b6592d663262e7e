// Package present turns the ledger and its totals into something a user can
// look at: an HTML page for the web surface, a markdown table for the
// terminal. Views are always rebuilt from the full sequence, so the positions
// carried by delete controls match the ledger being shown.
package present

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"registros/internal/core"
)

// Direction glyphs shown next to each row.
const (
	IncomeGlyph  = "▲"
	ExpenseGlyph = "▼"
)

type (
	// Form is the state of the entry inputs.
	Form struct {
		Description string
		Amount      string
		Kind        core.Kind
	}

	// Row is one rendered entry. Position is the value the delete control
	// sends back; ID lets the server detect that the position went stale.
	Row struct {
		Position    int
		ID          string
		Description string
		Amount      string // with currency marker, e.g. "R$ 3.50"
		Kind        core.Kind
		KindLabel   string
		KindClass   string
		Glyph       string
	}

	View struct {
		Rows     []Row
		Totals   core.Totals
		Currency string // marker, e.g. "R$"
		Form     Form
		Kinds    []KindOption
	}

	KindOption struct {
		Value    core.Kind
		Label    string
		Selected bool
	}
)

// CurrencyMarker returns the display symbol for an ISO 4217 code.
func CurrencyMarker(code string) (string, error) {
	c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	return c.Grapheme, nil
}

// NewView builds the view for entries in ledger order.
func NewView(entries []core.Entry, totals core.Totals, marker string, form Form) View {
	v := View{
		Rows:     make([]Row, 0, len(entries)),
		Totals:   totals,
		Currency: marker,
		Form:     form,
	}
	for i, e := range entries {
		v.Rows = append(v.Rows, newRow(i, e, marker))
	}
	for _, k := range []core.Kind{core.Income, core.Expense} {
		v.Kinds = append(v.Kinds, KindOption{Value: k, Label: k.Label(), Selected: form.Kind == k})
	}
	return v
}

func newRow(position int, e core.Entry, marker string) Row {
	r := Row{
		Position:    position,
		ID:          e.ID,
		Description: e.Description,
		Amount:      FormatAmount(marker, e.Amount),
		Kind:        e.Kind,
		KindLabel:   e.Kind.Label(),
	}
	if e.Kind == core.Income {
		r.KindClass, r.Glyph = "kind-income", IncomeGlyph
	} else {
		r.KindClass, r.Glyph = "kind-expense", ExpenseGlyph
	}
	return r
}

// FormatAmount prefixes an amount with the currency marker.
func FormatAmount(marker, amount string) string {
	if marker == "" {
		return amount
	}
	return marker + " " + amount
}

// Empty reports whether the view has no rows.
func (v View) Empty() bool { return len(v.Rows) == 0 }
