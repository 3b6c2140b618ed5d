package scan

import (
	"fmt"
	"time"

	"github.com/v0xg/a11yscan/internal/audit"
)

// DefaultScorePenalty is the score deducted per violation.
const DefaultScorePenalty = 5

// ComplianceScore returns max(0, 100 - penalty*total).
func ComplianceScore(total, penalty int) int {
	score := 100 - penalty*total
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Aggregator accumulates a scan's violations. Ids are the scan id plus a
// running index that is never reused.
type Aggregator struct {
	scanID     string
	penalty    int
	seq        int
	violations []Violation
	perPage    map[string]int
	counts     Counts
}

// NewAggregator creates an aggregator. A negative penalty selects
// DefaultScorePenalty.
func NewAggregator(scanID string, penalty int) *Aggregator {
	if penalty < 0 {
		penalty = DefaultScorePenalty
	}
	return &Aggregator{
		scanID:     scanID,
		penalty:    penalty,
		violations: make([]Violation, 0),
		perPage:    make(map[string]int),
	}
}

// Add records one page's findings and returns the page's violation count.
func (a *Aggregator) Add(pageURL string, findings []audit.Finding, detectedAt time.Time) int {
	for _, f := range findings {
		a.seq++
		impact := audit.ParseImpact(string(f.Impact))
		a.violations = append(a.violations, Violation{
			ID:          fmt.Sprintf("%s-%d", a.scanID, a.seq),
			RuleID:      f.RuleID,
			Impact:      impact,
			Description: f.Description,
			Help:        f.Help,
			URL:         pageURL,
			Selector:    f.Selector,
			HelpURL:     f.HelpURL,
			DetectedAt:  detectedAt,
			FixedStatus: StatusOpen,
		})
		a.counts.add(impact)
	}
	a.perPage[pageURL] += len(findings)
	return a.perPage[pageURL]
}

// Violations returns the accumulated violations in detection order.
func (a *Aggregator) Violations() []Violation { return a.violations }

// Counts returns per-impact totals.
func (a *Aggregator) Counts() Counts { return a.counts }

// Total returns the number of violations.
func (a *Aggregator) Total() int { return len(a.violations) }

// Score returns the compliance score for the current total.
func (a *Aggregator) Score() int { return ComplianceScore(a.Total(), a.penalty) }
