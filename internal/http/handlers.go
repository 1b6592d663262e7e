package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"registros/internal/app"
	"registros/internal/ledger"
	"registros/internal/log"
	"registros/internal/present"
)

// Messages shown through the notification area.
const (
	msgSaveFailed   = "No se pudo guardar. Intenta de nuevo."
	msgStaleLedger  = "La lista cambió. Intenta de nuevo."
	msgBadRequest   = "Formato de solicitud no válido"
	msgEntryAdded   = "Registro incluido"
	msgLedgerClear  = "Registros eliminados"
	msgExportFailed = "No se pudo exportar"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, totals := s.controller.Snapshot()
	v := present.NewView(entries, totals, s.marker, present.Form{})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.html.Page(w, v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, log.FieldOperation, log.OpRender)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, err := ParseEntryInput(r)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Parse entry form error", log.FieldError, err)
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	ui := newHTMLSurface(s.html, s.marker)
	err = s.controller.Add(ctx, ui, in)
	switch {
	case errors.Is(err, app.ErrMissingFields):
		UnprocessableEntityError(app.MissingFieldsMessage).
			TriggerErrorNotification(firstOr(ui.alerts, app.MissingFieldsMessage)).
			Write(w)
		return
	case err != nil:
		s.writeFailure(ctx, w, "Create entry failed", err, log.OpAdd)
		return
	}

	atomic.AddInt64(&s.appMetrics.entriesAdded, 1)
	entries, _ := s.controller.Snapshot()
	NewHTMXResponse().
		TriggerEntryCreated(len(entries)).
		TriggerFormReset(ui.resetAll).
		TriggerSuccessNotification(msgEntryAdded).
		BodyHTML(ui.body.String()).
		Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	position, err := ParsePosition(r)
	if err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	ui := newHTMLSurface(s.html, s.marker)
	err = s.controller.Delete(ctx, ui, position, p.Get(fieldID))
	switch {
	case errors.Is(err, app.ErrStalePosition), errors.Is(err, ledger.ErrPositionOutOfRange):
		// The page showed an older ledger; send the current one instead.
		atomic.AddInt64(&s.appMetrics.staleDeletes, 1)
		NewHTMXResponse().
			TriggerWarningNotification(msgStaleLedger).
			BodyHTML(ui.body.String()).
			Write(w)
		return
	case err != nil:
		s.writeFailure(ctx, w, "Delete entry failed", err, log.OpDelete)
		return
	}

	atomic.AddInt64(&s.appMetrics.entriesRemoved, 1)
	NewHTMXResponse().
		TriggerEntryDeleted(position).
		BodyHTML(ui.body.String()).
		Write(w)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	ui := newHTMLSurface(s.html, s.marker)
	ui.confirmed = p.Get(fieldConfirmed) == "true"

	cleared, err := s.controller.ClearAll(ctx, ui)
	if err != nil {
		s.writeFailure(ctx, w, "Clear ledger failed", err, log.OpClear)
		return
	}
	if !cleared {
		if err := s.controller.Show(ctx, ui); err != nil {
			s.writeFailure(ctx, w, "Render ledger failed", err, log.OpRender)
			return
		}
		NewHTMXResponse().BodyHTML(ui.body.String()).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.clears, 1)
	NewHTMXResponse().
		TriggerLedgerCleared().
		TriggerFormReset(ui.resetAll).
		TriggerSuccessNotification(msgLedgerClear).
		BodyHTML(ui.body.String()).
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ui := newHTMLSurface(s.html, s.marker)
	if err := s.controller.Export(ctx, ui); err != nil || ui.download == nil {
		if err == nil {
			err = errors.New("no download produced")
		}
		log.FromContext(ctx).ErrorContext(ctx, "Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		InternalServerError(msgExportFailed).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.exports, 1)
	NewHTMXResponse().
		Attachment(ui.download.filename, ui.download.mimeType).
		Header("Cache-Control", "no-store").
		Body(ui.download.data).
		Write(w)
}

// writeFailure logs a storage or rendering error and answers 500.
func (s *Server) writeFailure(ctx context.Context, w http.ResponseWriter, msg string, err error, op string) {
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, msg, err, log.ComponentHTTP, op, log.NewFields().WithErrorType(log.ErrorTypeStorage))
	InternalServerError(msgSaveFailed).
		TriggerErrorNotification(msgSaveFailed).
		Write(w)
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.html == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.backend != nil {
		if err := s.backend.Ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	} else {
		checks["backend"] = "not_configured"
	}

	entries, _ := s.controller.Snapshot()
	checks["ledger"] = map[string]any{
		"entries": len(entries),
		"status":  "ok",
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	entries, _ := s.controller.Snapshot()
	counters := []struct {
		name, help string
		value      int64
	}{
		{"ledger_entries", "Entries currently in the ledger", int64(len(entries))},
		{"entries_added_total", "Entries added over HTTP", atomic.LoadInt64(&s.appMetrics.entriesAdded)},
		{"entries_removed_total", "Entries removed over HTTP", atomic.LoadInt64(&s.appMetrics.entriesRemoved)},
		{"stale_deletes_total", "Delete requests that referred to an outdated ledger", atomic.LoadInt64(&s.appMetrics.staleDeletes)},
		{"ledger_clears_total", "Confirmed clear-all requests", atomic.LoadInt64(&s.appMetrics.clears)},
		{"exports_total", "CSV exports served", atomic.LoadInt64(&s.appMetrics.exports)},
		{"suspicious_requests_total", "Requests matching suspicious patterns", atomic.LoadInt64(&s.security.suspiciousRequests)},
		{"rate_limiter_active_clients", "Client IPs tracked by the rate limiter", int64(s.rateLimiter.ActiveClients())},
	}

	w.WriteHeader(http.StatusOK)
	for _, c := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
		fmt.Fprintf(w, "%s %d\n\n", c.name, c.value)
	}
	writeLabeled(w, "rate_limit_hits_total", "Mutations rejected by the rate limiter", "route", s.rateLimiter.Hits())
	writeLabeled(w, "suspicious_requests_by_reason", "Suspicious requests by detection reason", "reason", s.security.reasons())
	fmt.Fprintf(w, "# HELP uptime_seconds Time since the server started\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.appMetrics.uptime).Seconds())
}

// writeLabeled writes one line per label value, sorted by label.
func writeLabeled(w io.Writer, name, help, label string, values map[string]int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", name, label, key, values[key])
	}
	fmt.Fprintln(w)
}
