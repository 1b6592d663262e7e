// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Entry forms arrive either form-encoded (htmx) or as JSON.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"registros/internal/app"
)

// maxBodyBytes bounds request bodies; an entry form is a few hundred bytes.
const maxBodyBytes = 64 << 10

// Form field names used by the page.
const (
	fieldDescription = "desc"
	fieldAmount      = "amount"
	fieldKind        = "type"
	fieldID          = "id"
	fieldConfirmed   = "confirmed"
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseEntryInput reads the entry form.
func ParseEntryInput(r *http.Request) (app.Input, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return app.Input{}, err
	}
	return app.Input{
		Description: p.Get(fieldDescription),
		Amount:      p.Get(fieldAmount),
		Kind:        p.Get(fieldKind),
	}, nil
}

// ParsePosition reads the {position} path value.
func ParsePosition(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("position"))
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("invalid position %q", raw)
	}
	return pos, nil
}
