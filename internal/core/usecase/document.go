package usecase

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

// Document is a file read from disk together with the format chosen for it.
type Document struct {
	Path    string
	Content string
	Format  domain.Format
	Origin  domain.FormatOrigin
}

func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &domain.FileReadError{Path: path, Err: err}
	}
	content := string(data)
	format, origin := domain.ResolveFormat(path, content)
	return Document{Path: path, Content: content, Format: format, Origin: origin}, nil
}

// Parse converts text in the given format into the canonical value tree:
// nil, bool, json.Number, string, []any and map[string]any.
func Parse(format domain.Format, text string) (any, error) {
	switch format {
	case domain.FormatJSON:
		return ParseJSON(text)
	case domain.FormatYAML:
		return ParseYAML(text)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// ParseJSON accepts exactly one RFC 8259 value. The syntax check runs first
// because the decoder tolerates some invalid input, such as leading zeros.
func ParseJSON(text string) (any, error) {
	if !stdjson.Valid([]byte(text)) {
		return nil, &domain.JSONParseError{Err: syntaxError(text)}
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, &domain.JSONParseError{Err: err}
	}
	return v, nil
}

// syntaxError describes why text is not valid JSON.
func syntaxError(text string) error {
	var v any
	if err := stdjson.Unmarshal([]byte(text), &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}

// ParseYAML accepts a single YAML document. An empty stream is null.
func ParseYAML(text string) (any, error) {
	decoder := yaml.NewDecoder(strings.NewReader(text))

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &domain.YAMLParseError{Err: err}
	}

	var next yaml.Node
	if err := decoder.Decode(&next); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("more than one YAML document in stream")
		}
		return nil, &domain.YAMLParseError{Err: err}
	}

	v, err := canonicalYAML(raw)
	if err != nil {
		return nil, &domain.YAMLParseError{Err: err}
	}
	return v, nil
}

func canonicalYAML(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string:
		return t, nil
	case int:
		return stdjson.Number(strconv.Itoa(t)), nil
	case int64:
		return stdjson.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return stdjson.Number(strconv.FormatUint(t, 10)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("number %v has no JSON representation", t)
		}
		return stdjson.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			c, err := canonicalYAML(item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			c, err := canonicalYAML(item)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key, err := mappingKey(k)
			if err != nil {
				return nil, err
			}
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("mapping key %q is defined more than once", key)
			}
			c, err := canonicalYAML(item)
			if err != nil {
				return nil, err
			}
			out[key] = c
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported YAML value of type %T", v)
	}
}

// mappingKey stringifies scalar keys such as `1:` or `true:`.
func mappingKey(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case nil:
		return "null", nil
	case bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("mapping key of type %T cannot be used as a JSON object key", k)
	}
}
