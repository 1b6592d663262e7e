// Package app wires user interactions to the ledger: validation, persistence,
// re-rendering and the side effects a surface has to perform.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"registros/internal/core"
	"registros/internal/export"
	"registros/internal/ledger"
	"registros/internal/log"
)

// User-facing strings. The page has always mixed Portuguese and Spanish.
const (
	MissingFieldsMessage = "Preencha todos os campos!"
	ClearPrompt          = "¿Estás seguro de que deseas eliminar todos los registros?"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrStalePosition = errors.New("entry at position changed")
)

type (
	// Renderer redraws the table and the summaries from the full ledger.
	Renderer interface {
		Render(entries []core.Entry, totals core.Totals) error
	}

	Alerter interface {
		Alert(message string)
	}

	// Confirmer asks a yes/no question and blocks until answered.
	Confirmer interface {
		Confirm(prompt string) bool
	}

	Downloader interface {
		Download(data []byte, filename, mimeType string) error
	}

	// InputResetter clears the entry form. With all set the kind selector
	// returns to its placeholder too.
	InputResetter interface {
		ResetInputs(all bool)
	}

	// UI is everything a surface provides for one interaction.
	UI interface {
		Renderer
		Alerter
		Confirmer
		Downloader
		InputResetter
	}

	// Input is the raw content of the entry form.
	Input struct {
		Description string
		Amount      string
		Kind        string
	}
)

// Controller serializes user actions against a single ledger.
type Controller struct {
	mu       sync.Mutex
	store    *ledger.Store
	exporter *export.Exporter
	logger   *log.Logger
	events   *log.StructuredLogger
}

// NewController loads the ledger once and returns a controller owning it.
func NewController(ctx context.Context, store *ledger.Store, exporter *export.Exporter, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentController)
	entries := store.Load(ctx)
	logger.InfoContext(ctx, "Ledger loaded", log.FieldEntries, len(entries))
	return &Controller{
		store:    store,
		exporter: exporter,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

// Snapshot returns the current entries and their totals.
func (c *Controller) Snapshot() ([]core.Entry, core.Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.store.Entries()
	return entries, core.ComputeTotals(entries)
}

// Show renders the current state without changing it.
func (c *Controller) Show(ctx context.Context, ui Renderer) error {
	entries, totals := c.Snapshot()
	return ui.Render(entries, totals)
}

// Add validates the form, appends a new entry and refreshes the surface.
// Incomplete input is reported through an alert and leaves the ledger as is.
func (c *Controller) Add(ctx context.Context, ui UI, in Input) error {
	entry, err := parseInput(in)
	if err != nil {
		c.logger.DebugContext(ctx, "Rejected entry input",
			log.NewFields().WithEntry(in.Description, in.Amount, in.Kind).WithError(err).
				WithErrorType(log.ErrorTypeValidation).ToSlice()...)
		ui.Alert(MissingFieldsMessage)
		return fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Append(ctx, entry); err != nil {
		c.events.LogError(ctx, "Append failed", err, log.ComponentController, log.OpAdd,
			log.NewFields().WithEntry(entry.Description, entry.Amount, entry.Kind.String()).WithErrorType(log.ErrorTypeStorage))
		return err
	}
	c.events.LogEntryAdded(ctx, entry.Description, entry.Amount, entry.Kind.String(), c.store.Len())

	if err := c.render(ui); err != nil {
		return err
	}
	ui.ResetInputs(false)
	return nil
}

func parseInput(in Input) (core.Entry, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return core.Entry{}, core.ErrEmptyDescription
	}
	if strings.TrimSpace(in.Kind) == "" {
		return core.Entry{}, core.ErrInvalidKind
	}
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Entry{}, err
	}
	return core.NewEntry(desc, in.Amount, kind)
}

// Delete removes the entry at the 0-based position. A non-empty id must match
// the entry currently there; otherwise the surface is out of date and only
// gets re-rendered.
func (c *Controller) Delete(ctx context.Context, ui UI, position int, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.store.At(position)
	if !ok {
		c.logger.WarnContext(ctx, "Delete ignored",
			log.NewFields().WithPosition(position, id).WithEntries(c.store.Len()).
				WithErrorType(log.ErrorTypeStale).ToSlice()...)
		if err := c.render(ui); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d", ledger.ErrPositionOutOfRange, position)
	}
	if id != "" && current.ID != id {
		c.logger.WarnContext(ctx, "Delete ignored",
			log.NewFields().WithPosition(position, id).WithErrorType(log.ErrorTypeStale).ToSlice()...)
		if err := c.render(ui); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d", ErrStalePosition, position)
	}

	if _, err := c.store.RemoveAt(ctx, position); err != nil {
		c.events.LogError(ctx, "Remove failed", err, log.ComponentController, log.OpDelete,
			log.NewFields().WithPosition(position, id).WithErrorType(log.ErrorTypeStorage))
		return err
	}
	c.events.LogEntryRemoved(ctx, position, current.ID, c.store.Len())
	return c.render(ui)
}

// ClearAll asks for confirmation and then drops every entry. It reports
// whether the ledger was cleared.
func (c *Controller) ClearAll(ctx context.Context, ui UI) (bool, error) {
	if !ui.Confirm(ClearPrompt) {
		c.logger.DebugContext(ctx, "Clear declined")
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.store.Len()
	if err := c.store.Clear(ctx); err != nil {
		c.events.LogError(ctx, "Clear failed", err, log.ComponentController, log.OpClear,
			log.NewFields().WithEntries(before).WithErrorType(log.ErrorTypeStorage))
		return false, err
	}
	c.logger.InfoContext(ctx, "Ledger cleared", "removed", before)

	if err := ui.Render([]core.Entry{}, core.ZeroTotals); err != nil {
		return true, err
	}
	ui.ResetInputs(true)
	return true, nil
}

// Export hands the ledger as CSV to the surface.
func (c *Controller) Export(ctx context.Context, ui UI) error {
	c.mu.Lock()
	entries := c.store.Entries()
	c.mu.Unlock()

	data, err := c.exporter.Export(entries)
	if err != nil {
		c.events.LogError(ctx, "Export failed", err, log.ComponentExport, log.OpExport, log.NewFields())
		return err
	}
	c.logger.InfoContext(ctx, "Ledger exported",
		log.FieldEntries, len(entries), log.FieldBytes, len(data), "dialect", c.exporter.Dialect.Name)
	return ui.Download(data, export.Filename, export.MIMEType)
}

func (c *Controller) render(ui Renderer) error {
	entries := c.store.Entries()
	if err := ui.Render(entries, core.ComputeTotals(entries)); err != nil {
		return fmt.Errorf("render ledger: %w", err)
	}
	return nil
}
