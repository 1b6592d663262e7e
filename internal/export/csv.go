// Package export serializes the ledger into CSV for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"registros/internal/core"
)

const (
	Filename = "registros.csv"
	MIMEType = "text/csv"
)

// Dialect decides the header line and how the kind column is written.
type Dialect struct {
	Name   string
	Header string
	Kind   func(core.Kind) string
}

var (
	// Original is the historical file format: Spanish header, persisted kind values.
	Original = Dialect{
		Name:   "original",
		Header: "Descripción,Cantidad,Tipo",
		Kind:   core.Kind.String,
	}

	// English uses English column names and kind labels.
	English = Dialect{
		Name:   "english",
		Header: "Description, Amount, Kind",
		Kind:   core.Kind.Label,
	}
)

// DialectByName resolves a dialect from configuration.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Original.Name:
		return Original, nil
	case English.Name:
		return English, nil
	default:
		return Dialect{}, fmt.Errorf("unknown export dialect %q", name)
	}
}

// Exporter turns entries into CSV text.
//
// By default fields are joined with a bare comma and never quoted, so a
// description containing a comma or newline shifts the columns of its row.
// Quote switches row fields to RFC 4180 quoting.
type Exporter struct {
	Dialect Dialect
	Quote   bool
}

func New(d Dialect, quote bool) *Exporter {
	return &Exporter{Dialect: d, Quote: quote}
}

// Export returns the header followed by one row per entry in ledger order,
// rows separated by "\n" with no trailing newline.
func (x *Exporter) Export(entries []core.Entry) ([]byte, error) {
	d := x.Dialect
	if d.Kind == nil {
		d = Original
	}
	var buf bytes.Buffer
	buf.WriteString(d.Header)
	if x.Quote {
		if err := x.writeQuoted(&buf, d, entries); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	for _, e := range entries {
		buf.WriteByte('\n')
		buf.WriteString(strings.Join(row(d, e), ","))
	}
	return buf.Bytes(), nil
}

func (x *Exporter) writeQuoted(buf *bytes.Buffer, d Dialect, entries []core.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	var rows bytes.Buffer
	w := csv.NewWriter(&rows)
	for _, e := range entries {
		if err := w.Write(row(d, e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	buf.WriteByte('\n')
	buf.Write(bytes.TrimSuffix(rows.Bytes(), []byte("\n")))
	return nil
}

func row(d Dialect, e core.Entry) []string {
	return []string{e.Description, e.Amount, d.Kind(e.Kind)}
}
