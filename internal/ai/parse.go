package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Outcome tags how an enrichment call ended. Only OutcomeOK carries a value.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeUnparseable Outcome = "unparseable"
	OutcomeCallFailed  Outcome = "call_failed"
)

// Result is a tagged enrichment result.
type Result[T any] struct {
	Outcome Outcome
	Value   *T
	Err     error
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool { return r.Outcome == OutcomeOK && r.Value != nil }

// CallFailed builds the result for a provider call that did not return.
func CallFailed[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeCallFailed, Err: err}
}

var (
	errNoJSON = errors.New("no JSON object found in response")

	fencedBlock = regexp.MustCompile("(?s)```([a-zA-Z]*)[ \t]*\r?\n?(.*?)```")
)

// Decode extracts the JSON payload from a model reply, unmarshals it into T and
// validates it.
func Decode[T any, PT interface {
	*T
	Validate() error
}](text string) Result[T] {
	payload, ok := ExtractJSON(text)
	if !ok {
		return Result[T]{Outcome: OutcomeUnparseable, Err: errNoJSON}
	}

	v := new(T)
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return Result[T]{Outcome: OutcomeUnparseable, Err: fmt.Errorf("decode response: %w", err)}
	}
	if err := PT(v).Validate(); err != nil {
		return Result[T]{Outcome: OutcomeInvalid, Err: err}
	}

	return Result[T]{Outcome: OutcomeOK, Value: v}
}

// ExtractJSON finds the JSON object in a reply that may be wrapped in prose or
// fenced code blocks. A reply that is itself an object wins, then the first
// json or untagged fenced block holding valid JSON, then the first valid
// balanced {...} span in the text, then the first balanced span at all.
// Fences tagged with another language are skipped.
func ExtractJSON(text string) (string, bool) {
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") {
		if span, ok := balancedObject(trimmed); ok && json.Valid([]byte(span)) {
			return span, true
		}
	}

	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if lang := strings.ToLower(m[1]); lang != "" && lang != "json" {
			continue
		}
		if span, ok := firstValidObject(m[2]); ok {
			return span, true
		}
	}

	if span, ok := firstValidObject(text); ok {
		return span, true
	}
	return balancedObject(text)
}

// firstValidObject walks balanced spans left to right and returns the first
// that is valid JSON. It stops at the first unbalanced span.
func firstValidObject(s string) (string, bool) {
	for offset := 0; offset < len(s); {
		span, ok := balancedObject(s[offset:])
		if !ok {
			return "", false
		}
		if json.Valid([]byte(span)) {
			return span, true
		}
		offset += strings.Index(s[offset:], span) + len(span)
	}
	return "", false
}

// balancedObject returns the first brace-balanced span, ignoring braces inside
// JSON strings.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
