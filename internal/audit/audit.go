// Package audit runs the accessibility rule engine against a rendered document.
package audit

import (
	"context"
	"strings"
)

// Impact is the severity the engine assigns to a violation.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"
	ImpactUnknown  Impact = "unknown"
)

// Impacts lists every impact in descending severity.
var Impacts = []Impact{ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor, ImpactUnknown}

// ParseImpact maps an engine impact string onto Impact, defaulting to unknown.
func ParseImpact(s string) Impact {
	switch Impact(strings.ToLower(strings.TrimSpace(s))) {
	case ImpactCritical:
		return ImpactCritical
	case ImpactSerious:
		return ImpactSerious
	case ImpactModerate:
		return ImpactModerate
	case ImpactMinor:
		return ImpactMinor
	default:
		return ImpactUnknown
	}
}

// RuleTags restricts audits to WCAG 2.0/2.1/2.2 A and AA plus best practices.
var RuleTags = []string{"wcag2a", "wcag2aa", "wcag21a", "wcag21aa", "wcag22aa", "best-practice"}

// Finding is one rule failure on one element.
type Finding struct {
	RuleID      string
	Impact      Impact
	Description string
	Help        string
	HelpURL     string
	Selector    string
}

// Document is the part of a rendered page the engine needs.
type Document interface {
	InjectScript(ctx context.Context, source string) error
	Eval(ctx context.Context, js string, args ...any) ([]byte, error)
}

// Engine runs an audit against the current document.
type Engine interface {
	Audit(ctx context.Context, doc Document) ([]Finding, error)
}
