// Package terminal is the command-line surface of the ledger: markdown tables
// on stdout, alerts on stderr, y/N confirmations on stdin and downloads
// written to files.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"registros/internal/core"
	"registros/internal/present"
)

// Surface implements app.UI for one command invocation.
type Surface struct {
	presenter *present.Markdown
	marker    string
	in        *bufio.Reader
	out       io.Writer
	errOut    io.Writer

	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
	// OutputPath is where downloads go. Empty means the suggested file name
	// in the working directory, "-" means out.
	OutputPath string

	written string
}

func New(in io.Reader, out, errOut io.Writer, presenter *present.Markdown, marker string) *Surface {
	return &Surface{
		presenter: presenter,
		marker:    marker,
		in:        bufio.NewReader(in),
		out:       out,
		errOut:    errOut,
	}
}

func (s *Surface) Render(entries []core.Entry, totals core.Totals) error {
	return s.presenter.Render(present.NewView(entries, totals, s.marker, present.Form{}))
}

func (s *Surface) Alert(message string) {
	fmt.Fprintln(s.errOut, message)
}

// Confirm prints prompt and reads one line. Anything but an explicit yes,
// including end of input, declines.
func (s *Surface) Confirm(prompt string) bool {
	if s.AssumeYes {
		return true
	}
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(s.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí", "sim":
		return true
	default:
		return false
	}
}

func (s *Surface) Download(data []byte, filename, mimeType string) error {
	if s.OutputPath == "-" {
		_, err := s.out.Write(data)
		return err
	}
	path := s.OutputPath
	if path == "" {
		path = filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.written = path
	fmt.Fprintf(s.out, "Wrote %s (%s, %d bytes)\n", path, mimeType, len(data))
	return nil
}

// ResetInputs is a no-op: command-line input does not outlive the command.
func (s *Surface) ResetInputs(bool) {}

// Written returns the path of the last file written by Download.
func (s *Surface) Written() string { return s.written }
