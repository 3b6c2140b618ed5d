package frontier

import "strings"

// DefaultBudget is the page budget used when none is requested.
// MaxBudget is the hard ceiling no request can exceed.
const (
	DefaultBudget = 50
	MaxBudget     = 50
)

// ClampBudget maps a requested budget onto [1, MaxBudget]. Zero means no budget
// was requested and selects DefaultBudget; negative values clamp to 1.
func ClampBudget(requested int) int {
	switch {
	case requested == 0:
		return DefaultBudget
	case requested < 1:
		return 1
	case requested > MaxBudget:
		return MaxBudget
	default:
		return requested
	}
}

// Entry is one frontier item: the URL to navigate and its canonical key.
type Entry struct {
	URL string
	Key string
}

// Frontier tracks visited and pending URLs for a single scan. It is not safe
// for concurrent use; a scan owns its frontier exclusively.
type Frontier struct {
	budget   int
	seedHost string
	queue    []Entry
	queued   map[string]struct{}
	visited  map[string]struct{}
	failed   []string
}

// New creates a frontier seeded with seedURL. The budget is clamped with ClampBudget.
func New(seedURL string, budget int) *Frontier {
	f := &Frontier{
		budget:   ClampBudget(budget),
		seedHost: Host(seedURL),
		queued:   make(map[string]struct{}),
		visited:  make(map[string]struct{}),
	}
	f.enqueue(seedURL)
	return f
}

// Budget returns the effective page budget.
func (f *Frontier) Budget() int { return f.budget }

// SeedHost returns the seed hostname with any leading "www." removed.
func (f *Frontier) SeedHost() string { return f.seedHost }

// Next pops the oldest pending URL that has not been visited and marks it
// visited. It reports false once the frontier is empty or the budget is spent.
func (f *Frontier) Next() (Entry, bool) {
	for len(f.queue) > 0 && len(f.visited) < f.budget {
		next := f.queue[0]
		f.queue = f.queue[1:]
		if _, seen := f.visited[next.Key]; seen {
			continue
		}
		f.visited[next.Key] = struct{}{}
		return next, true
	}
	return Entry{}, false
}

// Add enqueues a discovered link if it is on the seed's site and has been
// neither visited nor queued. It reports whether the link was enqueued.
func (f *Frontier) Add(rawURL string) bool {
	if !SameSite(Host(rawURL), f.seedHost) {
		return false
	}
	return f.enqueue(rawURL)
}

// Fail records that a visited URL could not be audited.
func (f *Frontier) Fail(e Entry) {
	f.failed = append(f.failed, e.URL)
}

// Failed returns the URLs whose audit failed, in visit order.
func (f *Frontier) Failed() []string {
	return append([]string{}, f.failed...)
}

// Visited returns the number of URLs popped so far, failures included.
func (f *Frontier) Visited() int { return len(f.visited) }

// Pending returns the number of queued URLs not yet popped.
func (f *Frontier) Pending() int { return len(f.queue) }

func (f *Frontier) enqueue(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	key := Normalize(rawURL)
	if _, seen := f.visited[key]; seen {
		return false
	}
	if _, seen := f.queued[key]; seen {
		return false
	}
	f.queued[key] = struct{}{}
	f.queue = append(f.queue, Entry{URL: rawURL, Key: key})
	return true
}
