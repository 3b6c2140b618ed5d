package scan

import (
	"net/url"
	"strings"

	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/frontier"
)

// Request is one scan invocation.
type Request struct {
	URL         string `json:"url"`
	ScanID      string `json:"scan_id"`
	CustomerID  string `json:"customer_id"`
	Plan        string `json:"plan"`
	PageBudget  int    `json:"page_budget,omitempty"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// Metadata is the part of the request echoed back unmodified.
type Metadata struct {
	URL         string `json:"url"`
	ScanID      string `json:"scan_id"`
	CustomerID  string `json:"customer_id"`
	Plan        string `json:"plan"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// Validate checks required fields and normalizes the request in place: fields
// are trimmed, the plan lowercased and a missing URL scheme defaults to https.
func (r *Request) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	r.ScanID = strings.TrimSpace(r.ScanID)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.Plan = strings.ToLower(strings.TrimSpace(r.Plan))

	switch {
	case r.URL == "":
		return &ValidationError{Field: "url", Reason: "is required"}
	case r.ScanID == "":
		return &ValidationError{Field: "scan_id", Reason: "is required"}
	case r.CustomerID == "":
		return &ValidationError{Field: "customer_id", Reason: "is required"}
	case r.Plan == "":
		return &ValidationError{Field: "plan", Reason: "is required"}
	}

	if _, ok := enrich.LevelForPlan(r.Plan); !ok {
		return &ValidationError{Field: "plan", Reason: "must be one of free, guest, essentials, professional"}
	}

	if !strings.Contains(r.URL, "://") {
		r.URL = "https://" + r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}

	return nil
}

// Level returns the enrichment level for the request's plan.
func (r Request) Level() enrich.Level {
	level, ok := enrich.LevelForPlan(r.Plan)
	if !ok {
		return enrich.LevelNone
	}
	return level
}

// Budget returns the effective page budget.
func (r Request) Budget() int {
	return frontier.ClampBudget(r.PageBudget)
}

// Metadata returns the echoed request fields.
func (r Request) Metadata() Metadata {
	return Metadata{
		URL:         r.URL,
		ScanID:      r.ScanID,
		CustomerID:  r.CustomerID,
		Plan:        r.Plan,
		Email:       r.Email,
		CompanyName: r.CompanyName,
	}
}
