package http

import (
	"bytes"

	"registros/internal/core"
	"registros/internal/present"
)

// htmlSurface collects what the controller asks of the page during one
// request; the handler then turns it into a single htmx response.
type htmlSurface struct {
	html      *present.HTML
	marker    string
	confirmed bool

	body     bytes.Buffer
	rendered bool
	alerts   []string
	reset    bool
	resetAll bool
	download *download
}

type download struct {
	data     []byte
	filename string
	mimeType string
}

func newHTMLSurface(html *present.HTML, marker string) *htmlSurface {
	return &htmlSurface{html: html, marker: marker}
}

// Render replaces the buffered ledger fragment.
func (s *htmlSurface) Render(entries []core.Entry, totals core.Totals) error {
	s.body.Reset()
	v := present.NewView(entries, totals, s.marker, present.Form{})
	if err := s.html.Ledger(&s.body, v); err != nil {
		return err
	}
	s.rendered = true
	return nil
}

func (s *htmlSurface) Alert(message string) {
	s.alerts = append(s.alerts, message)
}

// Confirm answers with what the page already asked through hx-confirm.
func (s *htmlSurface) Confirm(string) bool {
	return s.confirmed
}

func (s *htmlSurface) Download(data []byte, filename, mimeType string) error {
	s.download = &download{data: data, filename: filename, mimeType: mimeType}
	return nil
}

func (s *htmlSurface) ResetInputs(all bool) {
	s.reset = true
	s.resetAll = s.resetAll || all
}
