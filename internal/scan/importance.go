package scan

// DefaultSnapshotCap bounds the number of pages selected for deep review.
const DefaultSnapshotCap = 10

// ViolationThreshold is the per-page violation count that makes a page
// important on its own.
const ViolationThreshold = 5

// Signal is what the classifier knows about an audited page.
type Signal struct {
	First        bool
	FormControls int
	Violations   int
}

// Eligible reports whether the page qualifies for deep review.
func (s Signal) Eligible() bool {
	return s.First || s.FormControls >= 1 || s.Violations >= ViolationThreshold
}

// Classifier admits eligible pages first-come until the cap is reached. Earlier
// picks are never evicted.
type Classifier struct {
	limit    int
	admitted []string
}

// NewClassifier creates a classifier; a non-positive limit selects
// DefaultSnapshotCap.
func NewClassifier(limit int) *Classifier {
	if limit <= 0 {
		limit = DefaultSnapshotCap
	}
	return &Classifier{limit: limit}
}

// Admit claims a snapshot slot for url if the signal qualifies and a slot is
// free.
func (c *Classifier) Admit(url string, s Signal) bool {
	if !s.Eligible() || len(c.admitted) >= c.limit {
		return false
	}
	c.admitted = append(c.admitted, url)
	return true
}

// Admitted returns the admitted URLs in admission order.
func (c *Classifier) Admitted() []string {
	return append([]string(nil), c.admitted...)
}
