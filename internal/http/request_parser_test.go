package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"moneyflow/internal/core"
)

func newParser(contentType, body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
	}{
		{"form value", formType, "amount=12.5&description=lunch", "description", "lunch", false},
		{"json string", jsonType, `{"description":"lunch"}`, "description", "lunch", true},
		{"json number", jsonType, `{"amount":12.5}`, "amount", "12.5", true},
		{"json number keeps digits", jsonType, `{"amount":12.50}`, "amount", "12.50", true},
		{"json without content type", "", `{"amount":"3"}`, "amount", "3", true},
		{"missing key", formType, "a=1", "description", "", false},
		{"control characters stripped", formType, "description=a%00b", "description", "ab", false},
		{"surrounding space trimmed", formType, "amount=+7+", "amount", "7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.contentType, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParserTooLarge(t *testing.T) {
	p := newParser(formType, "description="+strings.Repeat("a", maxBodyBytes+1))
	if err := p.Parse(); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("Parse() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestParseAddRequest(t *testing.T) {
	req, err := ParseAddRequest(newParser(jsonType, `{"description":"  rent ","amount":" 900 ","category":"Expense"}`))
	if err != nil {
		t.Fatalf("ParseAddRequest() error = %v", err)
	}
	if req.Description != "  rent " {
		t.Errorf("Description = %q, want it kept as given", req.Description)
	}
	if req.Amount != "900" {
		t.Errorf("Amount = %q", req.Amount)
	}
	if req.Category == nil || *req.Category != core.Expense {
		t.Errorf("Category = %v", req.Category)
	}

	req, err = ParseAddRequest(newParser(formType, "description=x&amount=1"))
	if err != nil || req.Category != nil {
		t.Errorf("no category: req=%+v err=%v", req, err)
	}

	_, err = ParseAddRequest(newParser(formType, "description=x&amount=1&category=gift"))
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("unknown category error = %v", err)
	}
}

func TestParseFilterQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    core.Filter
		wantErr bool
	}{
		{"", core.All, false},
		{"filter=income", core.IncomeOnly, false},
		{"filter=EXPENSE", core.ExpenseOnly, false},
		{"filter=all", core.All, false},
		{"filter=other", core.All, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseFilterQuery(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("filter = %v, want %v", got, tt.want)
			}
		})
	}
}
