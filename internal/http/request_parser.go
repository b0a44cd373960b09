// Package http exposes ledger sessions as a JSON API.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON objects or form-encoded, so simple clients can post a
// transaction with curl -d.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"moneyflow/internal/core"
	"moneyflow/internal/services"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(p.err, &tooLarge) {
		p.err = ErrBodyTooLarge
	}
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

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		// numbers stay json.Number so amounts keep their exact digits
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a trimmed, sanitized value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return strings.TrimSpace(p.GetUntrimmed(key))
}

// GetUntrimmed returns the value with control characters removed but
// surrounding whitespace kept.
func (p *RequestBodyParser) GetUntrimmed(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stripControl(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return stripControl(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return ok && v != nil
	}
	return p.formData != nil && p.formData.Has(key)
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseAddRequest reads description, amount and an optional category. An
// absent or empty category leaves the choice to the session view.
func ParseAddRequest(p *RequestBodyParser) (services.AddRequest, error) {
	if err := p.Parse(); err != nil {
		return services.AddRequest{}, err
	}

	req := services.AddRequest{
		Description: p.GetUntrimmed("description"),
		Amount:      p.Get("amount"),
	}
	if raw := p.Get("category"); raw != "" {
		category, err := core.ParseCategory(raw)
		if err != nil {
			return services.AddRequest{}, err
		}
		req.Category = &category
	}
	return req, nil
}

// ParseViewRequest reads the "filter" field of a view change.
func ParseViewRequest(p *RequestBodyParser) (core.Filter, error) {
	if err := p.Parse(); err != nil {
		return core.All, err
	}
	if !p.Has("filter") {
		return core.All, core.ErrUnknownFilter
	}
	return core.ParseFilter(p.Get("filter"))
}

// ParseFilterQuery reads ?filter=; absent means All.
func ParseFilterQuery(query url.Values) (core.Filter, error) {
	return core.ParseFilter(query.Get("filter"))
}
