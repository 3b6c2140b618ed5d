package frontier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/v0xg/a11yscan/internal/frontier"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"upgrade http to https", "http://example.com/path", "https://example.com/path"},
		{"lowercase host", "https://EXAMPLE.COM/Path", "https://example.com/Path"},
		{"strip www", "https://www.example.com/a", "https://example.com/a"},
		{"remove default https port", "https://example.com:443/path", "https://example.com/path"},
		{"remove default http port", "http://example.com:80/path", "https://example.com/path"},
		{"keep non-default port", "https://example.com:8080/path", "https://example.com:8080/path"},
		{"remove trailing slash", "https://example.com/path/", "https://example.com/path"},
		{"keep root slash", "https://example.com/", "https://example.com/"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
		{"resolve dot segments", "https://example.com/a/b/../c", "https://example.com/a/c"},
		{"remove fragment", "https://example.com/path#section", "https://example.com/path"},
		{"sort query params", "https://example.com/p?z=1&a=2", "https://example.com/p?a=2&z=1"},
		{"strip utm params", "https://example.com/p?utm_source=x&utm_medium=y&utm_campaign=z&id=1", "https://example.com/p?id=1"},
		{"strip ref", "https://example.com/p?ref=nav", "https://example.com/p"},
		{"semicolon query kept", "https://example.com/item?id=1;v=2", "https://example.com/item?id=1;v=2"},
		{"bad escape kept", "https://example.com/p?b=%zz&utm_source=x&a=1", "https://example.com/p?a=1&b=%zz"},
		{"unparseable returned unchanged", "://not-a-url", "://not-a-url"},
		{"missing scheme returned unchanged", "example.com/path", "example.com/path"},
		{"empty returned unchanged", "", ""},
		{"mailto returned unchanged", "mailto:a@example.com", "mailto:a@example.com"},
	}

	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, frontier.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"http://WWW.Example.com/a/",
		"https://example.com:443/a/./b/../c/?utm_source=x&b=2&a=1#frag",
		"https://example.com/with%20space/",
		"https://[::1]:8080/x/",
		"https://example.com/?flag",
		"https://example.com/item?v=2;id=1&utm_medium=x",
		"not a url",
	}

	for _, in := range inputs {
		once := frontier.Normalize(in)
		assert.Equal(t, once, frontier.Normalize(once), "input %q", in)
	}
}

func TestNormalize_Equivalence(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		frontier.Normalize("https://example.com/a"),
		frontier.Normalize("http://WWW.Example.com/a/"),
	)
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	assert.True(t, frontier.SameSite("www.example.com", "example.com"))
	assert.True(t, frontier.SameSite("Example.com", "www.EXAMPLE.com"))
	assert.False(t, frontier.SameSite("blog.example.com", "example.com"))
	assert.False(t, frontier.SameSite("example.org", "example.com"))
	assert.False(t, frontier.SameSite("", ""))
}

func TestHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", frontier.Host("http://WWW.example.com:8080/x"))
	assert.Empty(t, frontier.Host("/relative/path"))
}

func TestNormalize_MalformedQueriesStayDistinct(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t,
		frontier.Normalize("https://example.com/item?id=1;v=2"),
		frontier.Normalize("https://example.com/item?id=3;v=4"))
	assert.NotEqual(t,
		frontier.Normalize("https://example.com/p?b=%zz"),
		frontier.Normalize("https://example.com/p"))
}
