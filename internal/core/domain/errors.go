package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags every failure the engine can surface.
type ErrorKind string

const (
	KindFileRead          ErrorKind = "file_read"
	KindYAMLParse         ErrorKind = "yaml_parse"
	KindJSONParse         ErrorKind = "json_parse"
	KindSchemaCompilation ErrorKind = "schema_compilation"
	KindValidationFailed  ErrorKind = "validation_failed"
	KindHTTPRequest       ErrorKind = "http_request"
	KindInvalidURL        ErrorKind = "invalid_url"
	KindCacheDirectory    ErrorKind = "cache_directory"
)

// Error is implemented only by the error types declared in this file, so a
// switch over Kind() is exhaustive.
type Error interface {
	error
	Kind() ErrorKind
	sealed()
}

// KindOf reports the kind of the first domain error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de Error
	if errors.As(err, &de) {
		return de.Kind(), true
	}
	return "", false
}

type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error   { return e.Err }
func (e *FileReadError) Kind() ErrorKind { return KindFileRead }
func (*FileReadError) sealed()           {}

type YAMLParseError struct {
	Err error
}

func (e *YAMLParseError) Error() string {
	return fmt.Sprintf("failed to parse YAML: %v", e.Err)
}

func (e *YAMLParseError) Unwrap() error   { return e.Err }
func (e *YAMLParseError) Kind() ErrorKind { return KindYAMLParse }
func (*YAMLParseError) sealed()           {}

type JSONParseError struct {
	Err error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON: %v", e.Err)
}

func (e *JSONParseError) Unwrap() error   { return e.Err }
func (e *JSONParseError) Kind() ErrorKind { return KindJSONParse }
func (*JSONParseError) sealed()           {}

// SchemaCompilationError carries the evaluator's reason for rejecting a schema.
type SchemaCompilationError struct {
	Reason string
	Err    error
}

func (e *SchemaCompilationError) Error() string {
	return "invalid schema: " + e.Reason
}

func (e *SchemaCompilationError) Unwrap() error   { return e.Err }
func (e *SchemaCompilationError) Kind() ErrorKind { return KindSchemaCompilation }
func (*SchemaCompilationError) sealed()           {}

// ValidationFailedError is returned when a document has one or more
// violations. Result holds them in evaluator order.
type ValidationFailedError struct {
	Result Result
}

func (e *ValidationFailedError) Error() string {
	return "validation failed: " + e.Result.Message()
}

func (e *ValidationFailedError) Kind() ErrorKind { return KindValidationFailed }
func (*ValidationFailedError) sealed()           {}

// HTTPRequestError covers transport failures (StatusCode == 0, Err set) and
// non-2xx responses (StatusCode set).
type HTTPRequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *HTTPRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("http request failed: HTTP %d: failed to fetch schema from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http request failed: %s: %v", e.URL, e.Err)
}

func (e *HTTPRequestError) Unwrap() error   { return e.Err }
func (e *HTTPRequestError) Kind() ErrorKind { return KindHTTPRequest }
func (*HTTPRequestError) sealed()           {}

type InvalidURLError struct {
	Input string
	Err   error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %v", e.Input, e.Err)
}

func (e *InvalidURLError) Unwrap() error   { return e.Err }
func (e *InvalidURLError) Kind() ErrorKind { return KindInvalidURL }
func (*InvalidURLError) sealed()           {}

// CacheDirectoryError is returned when the schema cache root cannot be
// resolved, created, written or removed. Op names the failed step.
type CacheDirectoryError struct {
	Op   string
	Path string
	Err  error
}

func (e *CacheDirectoryError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cache directory error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache directory error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheDirectoryError) Unwrap() error   { return e.Err }
func (e *CacheDirectoryError) Kind() ErrorKind { return KindCacheDirectory }
func (*CacheDirectoryError) sealed()           {}
