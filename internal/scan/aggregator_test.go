package scan_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/scan"
)

func TestComplianceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		penalty int
		want    int
	}{
		{"no violations", 0, 5, 100},
		{"linear", 3, 5, 85},
		{"exactly zero", 20, 5, 0},
		{"floored", 57, 5, 0},
		{"no penalty", 12, 0, 100},
		{"custom penalty", 4, 10, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scan.ComplianceScore(tt.total, tt.penalty))
		})
	}
}

func TestAggregator(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	agg := scan.NewAggregator("s1", -1)

	n := agg.Add("https://example.com/", []audit.Finding{
		finding("image-alt", audit.ImpactCritical, "img"),
		{RuleID: "odd", Impact: "weird"},
	}, at)
	assert.Equal(t, 2, n)

	n = agg.Add("https://example.com/a", nil, at)
	assert.Equal(t, 0, n)

	agg.Add("https://example.com/b", []audit.Finding{finding("label", audit.ImpactSerious, "#q")}, at)

	v := agg.Violations()
	require.Len(t, v, 3)
	assert.Equal(t, []string{"s1-1", "s1-2", "s1-3"}, []string{v[0].ID, v[1].ID, v[2].ID})
	assert.Equal(t, audit.ImpactUnknown, v[1].Impact)
	assert.Equal(t, at, v[2].DetectedAt)
	assert.Equal(t, "https://example.com/b", v[2].URL)

	assert.Equal(t, scan.Counts{Critical: 1, Serious: 1, Unknown: 1}, agg.Counts())
	assert.Equal(t, 3, agg.Add("https://example.com/", []audit.Finding{finding("region", audit.ImpactModerate, "div")}, at),
		"per-page count accumulates across calls for the same URL")
	assert.Equal(t, 80, agg.Score())
}

func TestClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		signal scan.Signal
		want   bool
	}{
		{"first page", scan.Signal{First: true}, true},
		{"form control", scan.Signal{FormControls: 1}, true},
		{"violation threshold", scan.Signal{Violations: 5}, true},
		{"below threshold", scan.Signal{Violations: 4}, false},
		{"nothing", scan.Signal{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.signal.Eligible(), tt.name)
	}

	c := scan.NewClassifier(2)
	assert.True(t, c.Admit("/a", scan.Signal{First: true}))
	assert.False(t, c.Admit("/b", scan.Signal{}))
	assert.True(t, c.Admit("/c", scan.Signal{FormControls: 3}))
	// Full: a later, stronger page does not evict an earlier pick.
	assert.False(t, c.Admit("/d", scan.Signal{FormControls: 9, Violations: 40}))
	assert.Equal(t, []string{"/a", "/c"}, c.Admitted())
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := func() scan.Request {
		return scan.Request{URL: "example.com/shop", ScanID: "s", CustomerID: "c", Plan: " Guest "}
	}

	req := valid()
	require.NoError(t, req.Validate())
	assert.Equal(t, "https://example.com/shop", req.URL)
	assert.Equal(t, "guest", req.Plan)
	assert.Equal(t, enrich.LevelBasic, req.Level())
	assert.Equal(t, 50, req.Budget())

	tests := []struct {
		name  string
		edit  func(*scan.Request)
		field string
	}{
		{"missing url", func(r *scan.Request) { r.URL = "" }, "url"},
		{"missing scan id", func(r *scan.Request) { r.ScanID = "" }, "scan_id"},
		{"missing customer", func(r *scan.Request) { r.CustomerID = "" }, "customer_id"},
		{"missing plan", func(r *scan.Request) { r.Plan = "" }, "plan"},
		{"unknown plan", func(r *scan.Request) { r.Plan = "enterprise" }, "plan"},
		{"bad scheme", func(r *scan.Request) { r.URL = "ftp://example.com" }, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid()
			tt.edit(&req)
			err := req.Validate()
			var verr *scan.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRequest_Budget(t *testing.T) {
	t.Parallel()

	for budget, want := range map[int]int{-3: 1, 0: 50, 1: 1, 10: 10, 50: 50, 500: 50} {
		assert.Equal(t, want, scan.Request{PageBudget: budget}.Budget(), budget)
	}
}
