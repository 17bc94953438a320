package domain

import (
	"errors"
	"testing"
)

func TestResultMessage(t *testing.T) {
	var ok Result
	if !ok.Valid() || ok.Message() != "" || ok.Err() != nil {
		t.Fatalf("empty result should be valid with no message: %+v", ok)
	}

	one := Result{Violations: []Violation{{Location: "name", Keyword: "type", Message: "expected string, but got number"}}}
	if got := one.Message(); got != "name: expected string, but got number" {
		t.Fatalf("unexpected single message: %q", got)
	}

	two := Result{Violations: []Violation{
		{Location: "root", Keyword: "required", Message: "missing properties: 'name'"},
		{Location: "age", Keyword: "minimum", Message: "must be >= 0 but found -1"},
	}}
	want := "2 validation errors: root: missing properties: 'name'; age: must be >= 0 but found -1"
	if got := two.Message(); got != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", got, want)
	}

	var failed *ValidationFailedError
	if !errors.As(two.Err(), &failed) {
		t.Fatalf("expected ValidationFailedError, got %T", two.Err())
	}
	if len(failed.Result.Violations) != 2 {
		t.Fatalf("error should carry violations: %+v", failed.Result)
	}
}

func TestInstanceLocation(t *testing.T) {
	doc := map[string]any{
		"name": "x",
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
		"by-id": map[string]any{"0": "zero"},
		"a.b":   1,
		"x/y":   2,
	}

	tests := []struct {
		pointer string
		want    string
	}{
		{pointer: "", want: "root"},
		{pointer: "/name", want: "name"},
		{pointer: "/items/1/id", want: "items[1].id"},
		{pointer: "/items/0", want: "items[0]"},
		{pointer: "/by-id/0", want: `by-id["0"]`},
		{pointer: "/a.b", want: `["a.b"]`},
		{pointer: "/x~1y", want: `["x/y"]`},
		{pointer: "/missing/deeper", want: "missing.deeper"},
	}
	for _, tt := range tests {
		if got := InstanceLocation(tt.pointer, doc); got != tt.want {
			t.Fatalf("InstanceLocation(%q) = %q, want %q", tt.pointer, got, tt.want)
		}
	}

	if got := InstanceLocation("/2", []any{"a", "b", "c"}); got != "[2]" {
		t.Fatalf("root array index: got %q", got)
	}
}

func TestKeywordFromLocation(t *testing.T) {
	tests := map[string]string{
		"/properties/name/type": "type",
		"/required":             "required",
		"":                      "",
		"/items/$ref/minimum":   "minimum",
	}
	for in, want := range tests {
		if got := KeywordFromLocation(in); got != want {
			t.Fatalf("KeywordFromLocation(%q) = %q, want %q", in, got, want)
		}
	}
}
