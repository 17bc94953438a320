package domain

import "testing"

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "https://example.com/schema.json", want: true},
		{input: "http://example.com/schema.json", want: true},
		{input: "http://", want: true},
		{input: "schema.json", want: false},
		{input: "/path/to/schema.json", want: false},
		{input: "file://schema.json", want: false},
		{input: "HTTPS://example.com/schema.json", want: false},
		{input: "ftp://example.com/schema.json", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		if got := IsURL(tt.input); got != tt.want {
			t.Fatalf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestClassifySchemaInput(t *testing.T) {
	if got := ClassifySchemaInput("https://example.com/s.json"); got != SchemaSourceRemote {
		t.Fatalf("expected remote, got %s", got)
	}
	if got := ClassifySchemaInput("./s.json"); got != SchemaSourceLocal {
		t.Fatalf("expected local, got %s", got)
	}
}
