package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

var ErrRemoteSchemasDisabled = errors.New("remote schemas are not enabled")

// ValidatorFactory turns a schema input (text, file path or URL) into a
// compiled Validator.
type ValidatorFactory struct {
	fetcher *SchemaFetcher
}

// NewValidatorFactory accepts a nil fetcher; URL inputs then fail with
// ErrRemoteSchemasDisabled.
func NewValidatorFactory(fetcher *SchemaFetcher) *ValidatorFactory {
	return &ValidatorFactory{fetcher: fetcher}
}

func (f *ValidatorFactory) FromSchemaText(ctx context.Context, text string) (*Validator, error) {
	return Compile(text, WithRefLoader(f.refLoader(ctx)))
}

func (f *ValidatorFactory) FromFile(ctx context.Context, path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FileReadError{Path: path, Err: err}
	}
	resourceURL := path
	if abs, err := filepath.Abs(path); err == nil {
		resourceURL = abs
	}
	return Compile(string(data), WithResourceURL(resourceURL), WithRefLoader(f.refLoader(ctx)))
}

func (f *ValidatorFactory) FromURL(ctx context.Context, rawURL string) (*Validator, error) {
	if f.fetcher == nil {
		return nil, ErrRemoteSchemasDisabled
	}
	text, err := f.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	base, _, _ := strings.Cut(rawURL, "#")
	return Compile(text, WithResourceURL(base), WithRefLoader(f.refLoader(ctx)))
}

// FromInput treats input as a URL when it starts with http:// or https://
// and as a file path otherwise.
func (f *ValidatorFactory) FromInput(ctx context.Context, input string) (*Validator, error) {
	if domain.IsURL(input) {
		return f.FromURL(ctx, input)
	}
	return f.FromFile(ctx, input)
}

// refLoader sends remote $refs through the fetcher so they share the schema
// cache. Everything else goes to the evaluator's default loaders.
func (f *ValidatorFactory) refLoader(ctx context.Context) func(string) (io.ReadCloser, error) {
	return func(url string) (io.ReadCloser, error) {
		if !domain.IsURL(url) {
			return santhosh.LoadURL(url)
		}
		if f.fetcher == nil {
			return nil, ErrRemoteSchemasDisabled
		}
		text, err := f.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(strings.NewReader(text)), nil
	}
}
