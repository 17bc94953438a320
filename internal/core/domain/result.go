package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// RootLocation is reported when the violating node is the document itself.
const RootLocation = "root"

// Violation is a single schema keyword failure.
type Violation struct {
	Location string `json:"location"`
	Keyword  string `json:"keyword"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	return v.Location + ": " + v.Message
}

// Result is the outcome of one validate call. No violations means success.
type Result struct {
	Violations []Violation
}

func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Message renders the violations the way they are surfaced to users: a single
// entry verbatim, or a counted list joined with "; ".
func (r Result) Message() string {
	switch len(r.Violations) {
	case 0:
		return ""
	case 1:
		return r.Violations[0].String()
	}
	entries := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		entries = append(entries, v.String())
	}
	return strconv.Itoa(len(entries)) + " validation errors: " + strings.Join(entries, "; ")
}

// Err returns nil for a valid result and a *ValidationFailedError otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationFailedError{Result: r}
}

var plainKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// InstanceLocation converts a JSON pointer into dot/bracket notation, using doc
// to tell array indexes from object keys that happen to be numeric.
func InstanceLocation(pointer string, doc any) string {
	if pointer == "" {
		return RootLocation
	}
	tokens := strings.Split(strings.TrimPrefix(pointer, "/"), "/")

	var b strings.Builder
	node := doc
	for _, raw := range tokens {
		tok := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		switch n := node.(type) {
		case []any:
			if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 && idx < len(n) {
				b.WriteString("[" + tok + "]")
				node = n[idx]
				continue
			}
			node = nil
		case map[string]any:
			node = n[tok]
		default:
			node = nil
		}
		writeKey(&b, tok)
	}
	return b.String()
}

func writeKey(b *strings.Builder, key string) {
	if !plainKey.MatchString(key) {
		b.WriteString("[" + strconv.Quote(key) + "]")
		return
	}
	if b.Len() > 0 {
		b.WriteByte('.')
	}
	b.WriteString(key)
}

// KeywordFromLocation returns the last token of a keyword location such as
// "/properties/name/type".
func KeywordFromLocation(keywordLocation string) string {
	if i := strings.LastIndexByte(keywordLocation, '/'); i >= 0 {
		return keywordLocation[i+1:]
	}
	return keywordLocation
}
