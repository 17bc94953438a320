package usecase

import (
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

// defaultResourceURL names schemas compiled from bare text.
const defaultResourceURL = "schema.json"

// Validator wraps one compiled Draft 7 schema. It holds no mutable state and
// is safe for concurrent use.
type Validator struct {
	schema *santhosh.Schema
}

type compileConfig struct {
	resourceURL string
	loadRef     func(url string) (io.ReadCloser, error)
}

type CompileOption func(*compileConfig)

// WithResourceURL sets the base URL relative $refs are resolved against.
func WithResourceURL(url string) CompileOption {
	return func(c *compileConfig) {
		if url != "" {
			c.resourceURL = url
		}
	}
}

// WithRefLoader replaces the loader used for $refs outside the schema itself.
func WithRefLoader(fn func(url string) (io.ReadCloser, error)) CompileOption {
	return func(c *compileConfig) {
		c.loadRef = fn
	}
}

// Compile parses schemaText as JSON and compiles it. No Validator is returned
// unless compilation succeeds completely.
func Compile(schemaText string, opts ...CompileOption) (*Validator, error) {
	cfg := compileConfig{resourceURL: defaultResourceURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := ParseJSON(schemaText)
	if err != nil {
		return nil, err
	}
	schemaText, err = forceDraft7(doc, schemaText)
	if err != nil {
		return nil, err
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if cfg.loadRef != nil {
		compiler.LoadURL = cfg.loadRef
	}
	if err := compiler.AddResource(cfg.resourceURL, strings.NewReader(schemaText)); err != nil {
		return nil, &domain.SchemaCompilationError{Reason: err.Error(), Err: err}
	}
	schema, err := compiler.Compile(cfg.resourceURL)
	if err != nil {
		return nil, &domain.SchemaCompilationError{Reason: err.Error(), Err: err}
	}
	return &Validator{schema: schema}, nil
}

// Validate runs the schema against a canonical value and reports every
// violation in the order the evaluator produced them.
func (v *Validator) Validate(value any) domain.Result {
	err := v.schema.Validate(value)
	if err == nil {
		return domain.Result{}
	}

	var ve *santhosh.ValidationError
	if errors.As(err, &ve) {
		return domain.Result{Violations: collectViolations(ve, value)}
	}
	return domain.Result{Violations: []domain.Violation{{
		Location: domain.RootLocation,
		Message:  err.Error(),
	}}}
}

// collectViolations flattens the error tree into one violation per failed
// keyword. anyOf and oneOf are reported once, not per branch.
func collectViolations(ve *santhosh.ValidationError, doc any) []domain.Violation {
	keyword := domain.KeywordFromLocation(ve.KeywordLocation)
	if len(ve.Causes) == 0 || keyword == "anyOf" || keyword == "oneOf" {
		return []domain.Violation{{
			Location: domain.InstanceLocation(ve.InstanceLocation, doc),
			Keyword:  keyword,
			Message:  ve.Message,
		}}
	}

	// The evaluator visits object keywords in map order; sort so repeated
	// runs agree.
	causes := slices.Clone(ve.Causes)
	slices.SortStableFunc(causes, func(a, b *santhosh.ValidationError) int {
		if c := comparePointers(a.KeywordLocation, b.KeywordLocation); c != 0 {
			return c
		}
		return comparePointers(a.InstanceLocation, b.InstanceLocation)
	})

	var out []domain.Violation
	for _, cause := range causes {
		out = append(out, collectViolations(cause, doc)...)
	}
	return out
}

// comparePointers orders JSON pointers token by token, numerically where both
// tokens are array indexes, so "/2" sorts before "/10".
func comparePointers(a, b string) int {
	ta, tb := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if ta[i] == tb[i] {
			continue
		}
		na, errA := strconv.Atoi(ta[i])
		nb, errB := strconv.Atoi(tb[i])
		if errA == nil && errB == nil {
			return na - nb
		}
		return strings.Compare(ta[i], tb[i])
	}
	return len(ta) - len(tb)
}

// forceDraft7 drops a root $schema naming another draft, so every schema is
// evaluated with Draft 7 keywords.
func forceDraft7(doc any, schemaText string) (string, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return schemaText, nil
	}
	declared, ok := root["$schema"]
	if !ok {
		return schemaText, nil
	}
	if s, isString := declared.(string); isString && isDraft7URI(s) {
		return schemaText, nil
	}

	delete(root, "$schema")
	data, err := json.Marshal(root)
	if err != nil {
		return "", &domain.SchemaCompilationError{Reason: err.Error(), Err: err}
	}
	return string(data), nil
}

func isDraft7URI(uri string) bool {
	uri = strings.TrimSuffix(uri, "#")
	uri = strings.TrimPrefix(strings.TrimPrefix(uri, "https://"), "http://")
	return uri == "json-schema.org/draft-07/schema"
}

func (v *Validator) ValidateText(format domain.Format, text string) error {
	value, err := Parse(format, text)
	if err != nil {
		return err
	}
	return v.Validate(value).Err()
}

func (v *Validator) ValidateYAML(text string) error {
	return v.ValidateText(domain.FormatYAML, text)
}

func (v *Validator) ValidateJSON(text string) error {
	return v.ValidateText(domain.FormatJSON, text)
}

// ValidateContent sniffs the format from the text itself.
func (v *Validator) ValidateContent(text string) error {
	return v.ValidateText(domain.DetectFormat(text), text)
}

// ValidateFile reads path and picks the format by extension, falling back to
// content sniffing.
func (v *Validator) ValidateFile(path string) error {
	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}
	return v.ValidateText(doc.Format, doc.Content)
}

// ValidateYAMLFile reads path and parses it as YAML regardless of extension.
func (v *Validator) ValidateYAMLFile(path string) error {
	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}
	return v.ValidateYAML(doc.Content)
}
