package scan

import (
	"math"
	"time"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/enrich"
)

// Fixed states of a violation. Only systems downstream of the scan move a
// violation to fixed.
const (
	StatusOpen  = "open"
	StatusFixed = "fixed"
)

// Scan statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// FailureKind classifies an unsuccessful response.
type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailureUnreachable FailureKind = "unreachable"
	FailureInternal    FailureKind = "internal"
)

// Violation is one rule failure on one element of one page.
type Violation struct {
	ID            string          `json:"id"`
	RuleID        string          `json:"rule_id"`
	Impact        audit.Impact    `json:"impact"`
	Description   string          `json:"description"`
	Help          string          `json:"help,omitempty"`
	URL           string          `json:"url"`
	Selector      string          `json:"selector"`
	HelpURL       string          `json:"help_url"`
	DetectedAt    time.Time       `json:"detected_at"`
	FixedStatus   string          `json:"fixed_status"`
	FixedDate     *time.Time      `json:"fixed_date"`
	AIExplanation *ai.Explanation `json:"ai_explanation,omitempty"`
}

// Counts holds violation totals per impact.
type Counts struct {
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
	Unknown  int `json:"unknown"`
}

func (c *Counts) add(impact audit.Impact) {
	switch impact {
	case audit.ImpactCritical:
		c.Critical++
	case audit.ImpactSerious:
		c.Serious++
	case audit.ImpactModerate:
		c.Moderate++
	case audit.ImpactMinor:
		c.Minor++
	default:
		c.Unknown++
	}
}

// DeepAnalysis is the tier-two result for one importance-tagged page. Analysis
// is set only when Outcome is ok.
type DeepAnalysis struct {
	URL      string           `json:"url"`
	Outcome  ai.Outcome       `json:"outcome"`
	Analysis *ai.PageAnalysis `json:"analysis"`
}

// Response is the structured result of one scan. It is returned for every
// outcome; Success distinguishes a report from a failure.
type Response struct {
	Success             bool           `json:"success"`
	Status              string         `json:"status"`
	Violations          []Violation    `json:"violations"`
	Counts              Counts         `json:"counts"`
	TotalViolations     int            `json:"total_violations"`
	ComplianceScore     int            `json:"compliance_score"`
	PagesScanned        int            `json:"pages_scanned"`
	ScannedURLs         []string       `json:"scanned_urls"`
	FailedURLs          []string       `json:"failed_urls"`
	PageBudget          int            `json:"page_budget"`
	EnrichmentLevel     enrich.Level   `json:"enrichment_level,omitempty"`
	DeepAnalysis        []DeepAnalysis `json:"deep_analysis,omitempty"`
	Metadata            Metadata       `json:"metadata"`
	ScanDurationSeconds float64        `json:"scan_duration_seconds"`
	Error               string         `json:"error,omitempty"`
	ErrorDetails        string         `json:"error_details,omitempty"`
	ErrorType           FailureKind    `json:"error_type,omitempty"`
}

func durationSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// Failure builds an unsuccessful response with empty result lists.
func Failure(kind FailureKind, meta Metadata, msg, details string, elapsed time.Duration) *Response {
	return &Response{
		Success:             false,
		Status:              StatusFailed,
		Violations:          []Violation{},
		ScannedURLs:         []string{},
		FailedURLs:          []string{},
		Metadata:            meta,
		ScanDurationSeconds: durationSeconds(elapsed),
		Error:               msg,
		ErrorDetails:        details,
		ErrorType:           kind,
	}
}
