package present

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
)

// Markdown renders views as a markdown document for the terminal.
type Markdown struct {
	Out   io.Writer
	Plain bool   // write raw markdown instead of styled output
	Style string // glamour style name; empty picks one from the terminal
	Width int
}

// Document builds the markdown text of v.
func (m *Markdown) Document(v View) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Registros")
	if v.Empty() {
		doc.PlainText("No entries yet.")
	} else {
		rows := make([][]string, 0, len(v.Rows))
		for _, r := range v.Rows {
			rows = append(rows, []string{
				strconv.Itoa(r.Position),
				escapeCell(r.Description),
				escapeCell(r.Amount),
				r.Glyph + " " + r.KindLabel,
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"#", "Description", "Amount", "Kind"},
			Rows:   rows,
		})
	}

	doc.H2("Summary")
	doc.Table(md.TableSet{
		Header: []string{"Income", "Expense", "Total"},
		Rows: [][]string{{
			FormatAmount(v.Currency, v.Totals.Income),
			FormatAmount(v.Currency, v.Totals.Expense),
			FormatAmount(v.Currency, v.Totals.Net),
		}},
	})
	return doc.String()
}

// Render writes v to Out.
func (m *Markdown) Render(v View) error {
	doc := m.Document(v)
	if m.Plain {
		_, err := io.WriteString(m.Out, doc)
		return err
	}
	out, err := m.style(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(m.Out, out)
	return err
}

func (m *Markdown) style(doc string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(m.width())}
	if m.Style != "" {
		opts = append(opts, glamour.WithStandardStyle(m.Style))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func (m *Markdown) width() int {
	if m.Width > 0 {
		return m.Width
	}
	return 100
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

func escapeCell(s string) string { return cellEscaper.Replace(s) }
