package domain

import "strings"

// SchemaSource tells where a schema input is loaded from.
type SchemaSource string

const (
	SchemaSourceLocal  SchemaSource = "local"
	SchemaSourceRemote SchemaSource = "remote"
)

// IsURL reports whether input is treated as a remote schema. Only the exact
// lowercase http:// and https:// prefixes count.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

func ClassifySchemaInput(input string) SchemaSource {
	if IsURL(input) {
		return SchemaSourceRemote
	}
	return SchemaSourceLocal
}
