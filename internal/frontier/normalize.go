// Package frontier holds the per-scan crawl frontier and the URL canonicalization
// it keys on. Two URLs name the same page iff their normalized forms match.
package frontier

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// trackingParams lists query parameters stripped during normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"ref":          {},
	"fbclid":       {},
	"gclid":        {},
	"msclkid":      {},
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize returns the canonical form of rawURL: https scheme, no default port,
// lowercase host without a leading "www.", no fragment, cleaned path without a
// trailing slash (except root), tracking parameters removed and the remaining
// query sorted. Input that cannot be parsed, or that lacks a scheme or host, is
// returned unchanged.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return rawURL
	}

	originalScheme := strings.ToLower(parsed.Scheme)
	parsed.Scheme = "https"
	parsed.Host = normalizeHost(parsed, originalScheme)
	parsed.User = nil
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = cleanQuery(parsed.RawQuery)
	parsed.Path = normalizePath(parsed.Path)
	parsed.RawPath = ""

	return parsed.String()
}

// Host returns the lowercase hostname of rawURL with any leading "www." removed,
// or "" when rawURL has no host.
func Host(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return bareHost(parsed.Hostname())
}

// SameSite reports whether two hostnames belong to the same site once a
// leading "www." is stripped from both.
func SameSite(host, seedHost string) bool {
	h := bareHost(host)
	return h != "" && h == bareHost(seedHost)
}

func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// normalizeHost lowercases the hostname, drops "www." and removes default ports.
// originalScheme is the scheme before the https upgrade.
func normalizeHost(u *url.URL, originalScheme string) string {
	hostname := bareHost(u.Hostname())
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	port := u.Port()
	if port == "" {
		return hostname
	}

	for _, scheme := range []string{originalScheme, u.Scheme} {
		if defaultPort, ok := defaultPorts[scheme]; ok && port == defaultPort {
			return hostname
		}
	}

	return hostname + ":" + port
}

// cleanQuery strips tracking parameters and sorts the rest. A query that
// url.ParseQuery rejects (";" separators, bad escapes) is filtered pair by pair
// on its raw text so no parameter is lost.
func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return cleanRawQuery(rawQuery)
	}
	return buildCleanQuery(values)
}

func cleanRawQuery(rawQuery string) string {
	pairs := make([]string, 0, strings.Count(rawQuery, "&")+1)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if _, isTracking := trackingParams[strings.ToLower(key)]; isTracking {
			continue
		}
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

func buildCleanQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, isTracking := trackingParams[strings.ToLower(key)]; !isTracking {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		for j, val := range values[key] {
			if j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}

	return b.String()
}

// normalizePath resolves dot-segments and removes trailing slashes while
// preserving the root "/".
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}

	cleaned := path.Clean(p)
	if cleaned == "/" {
		return "/"
	}

	return strings.TrimRight(cleaned, "/")
}
