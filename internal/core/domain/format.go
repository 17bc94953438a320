package domain

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Format is the serialization of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOrigin records which rule picked the format.
type FormatOrigin string

const (
	OriginExtension FormatOrigin = "extension"
	OriginContent   FormatOrigin = "content"
	OriginExplicit  FormatOrigin = "explicit"
)

func (f Format) Label() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatYAML:
		return "YAML"
	default:
		return string(f)
	}
}

// ParseFormat accepts "json", "yaml", "yml" in any case. An empty string or
// "auto" returns ok=true with an empty Format, meaning "sniff the content".
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// DetectFormat classifies content without parsing it: JSON if the first
// non-whitespace character opens an object or array, YAML otherwise.
func DetectFormat(content string) Format {
	trimmed := strings.TrimLeftFunc(content, unicode.IsSpace)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// FormatFromExtension maps .json, .yaml and .yml (case-insensitive).
func FormatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// ResolveFormat prefers the path's extension and falls back to DetectFormat.
func ResolveFormat(path, content string) (Format, FormatOrigin) {
	if f, ok := FormatFromExtension(path); ok {
		return f, OriginExtension
	}
	return DetectFormat(content), OriginContent
}
