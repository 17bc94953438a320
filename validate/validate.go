// Package validate checks YAML and JSON documents against JSON Schema Draft 7.
//
// Schemas come from text, local files or http(s) URLs. Remote schemas are
// cached on disk, keyed by the SHA-256 of the exact URL string, and are never
// refetched until the cache is cleared.
//
//	v, err := validate.New(`{"type":"object","properties":{"name":{"type":"string"}}}`)
//	if err != nil {
//		return err
//	}
//	err = v.ValidateContent("name: Alice")
//
// Every failure is one of the typed errors below; use errors.As or KindOf to
// tell them apart.
package validate

import (
	"context"
	"sync"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/filecache"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/usecase"
)

type (
	Validator = usecase.Validator
	Result    = domain.Result
	Violation = domain.Violation
	Format    = domain.Format
	ErrorKind = domain.ErrorKind
	Error     = domain.Error

	FileReadError          = domain.FileReadError
	YAMLParseError         = domain.YAMLParseError
	JSONParseError         = domain.JSONParseError
	SchemaCompilationError = domain.SchemaCompilationError
	ValidationFailedError  = domain.ValidationFailedError
	HTTPRequestError       = domain.HTTPRequestError
	InvalidURLError        = domain.InvalidURLError
	CacheDirectoryError    = domain.CacheDirectoryError
)

const (
	FormatJSON = domain.FormatJSON
	FormatYAML = domain.FormatYAML

	KindFileRead          = domain.KindFileRead
	KindYAMLParse         = domain.KindYAMLParse
	KindJSONParse         = domain.KindJSONParse
	KindSchemaCompilation = domain.KindSchemaCompilation
	KindValidationFailed  = domain.KindValidationFailed
	KindHTTPRequest       = domain.KindHTTPRequest
	KindInvalidURL        = domain.KindInvalidURL
	KindCacheDirectory    = domain.KindCacheDirectory
)

// ErrRemoteSchemasDisabled is returned when a schema loaded from text or a
// local file $refs an http(s) URL. Use a Client to enable remote references.
var ErrRemoteSchemasDisabled = usecase.ErrRemoteSchemasDisabled

// local compiles text and file schemas without touching the cache.
var local = usecase.NewValidatorFactory(nil)

var defaultClient = sync.OnceValues(func() (*Client, error) {
	dir, err := filecache.DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewClient(dir), nil
})

// New compiles schemaText.
func New(schemaText string) (*Validator, error) {
	return local.FromSchemaText(context.Background(), schemaText)
}

// FromFile reads and compiles a local schema file.
func FromFile(path string) (*Validator, error) {
	return local.FromFile(context.Background(), path)
}

// FromURL fetches (or loads from the default cache) and compiles a remote schema.
func FromURL(url string) (*Validator, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.FromURL(context.Background(), url)
}

// FromInput treats input starting with http:// or https:// as a URL and
// anything else as a file path.
func FromInput(input string) (*Validator, error) {
	if !domain.IsURL(input) {
		return FromFile(input)
	}
	return FromURL(input)
}

func ValidateYAML(yamlContent, schemaText string) error {
	v, err := New(schemaText)
	if err != nil {
		return err
	}
	return v.ValidateYAML(yamlContent)
}

func ValidateJSON(jsonContent, schemaText string) error {
	v, err := New(schemaText)
	if err != nil {
		return err
	}
	return v.ValidateJSON(jsonContent)
}

// ValidateContent detects the content's format before validating.
func ValidateContent(content, schemaText string) error {
	v, err := New(schemaText)
	if err != nil {
		return err
	}
	return v.ValidateContent(content)
}

// ValidateFile validates filePath against schemaInput (file path or URL).
func ValidateFile(filePath, schemaInput string) error {
	v, err := FromInput(schemaInput)
	if err != nil {
		return err
	}
	return v.ValidateFile(filePath)
}

// ValidateYAMLFile is ValidateFile with the document always parsed as YAML.
func ValidateYAMLFile(yamlPath, schemaInput string) error {
	v, err := FromInput(schemaInput)
	if err != nil {
		return err
	}
	return v.ValidateYAMLFile(yamlPath)
}

// ClearCache removes the default schema cache directory.
func ClearCache() error {
	c, err := defaultClient()
	if err != nil {
		return err
	}
	return c.ClearCache()
}

// CacheKey returns the file name a schema URL is cached under.
func CacheKey(url string) string {
	return string(domain.CacheKeyFor(url))
}

// DetectFormat reports how content would be parsed by ValidateContent.
func DetectFormat(content string) Format {
	return domain.DetectFormat(content)
}

// KindOf returns the kind of the first typed error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	return domain.KindOf(err)
}
