// Package schema validates configuration documents against the embedded JSON
// Schemas that describe each supported revision of cradle.yaml.
//
// Schemas are authored in YAML, converted to canonical JSON, and compiled with
// gojsonschema. Compiled schemas are cached per revision for reuse.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/cradle-dev/cradle/internal/assets"
)

// Result holds the outcome of one structural validation.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is a single structural violation.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Validator wraps a compiled schema for repeated validation.
type Validator struct {
	schema *gojsonschema.Schema
}

var (
	regMu    sync.RWMutex
	registry = map[string]*Validator{}
)

// DocumentValidator returns the validator for a schema revision ("0.1").
// Compiled validators are cached.
func DocumentValidator(version string) (*Validator, error) {
	regMu.RLock()
	if v, ok := registry[version]; ok {
		regMu.RUnlock()
		return v, nil
	}
	regMu.RUnlock()

	data, ok := assets.GetSchema("cradle-config-v" + version + ".yaml")
	if !ok {
		return nil, fmt.Errorf("no embedded schema for revision %s", version)
	}
	v, err := NewValidatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	regMu.Lock()
	registry[version] = v
	regMu.Unlock()
	return v, nil
}

// NewValidatorFromBytes compiles schema bytes (YAML or JSON) into a reusable
// validator.
func NewValidatorFromBytes(schemaBytes []byte) (*Validator, error) {
	jb, err := toJSON(schemaBytes)
	if err != nil {
		return nil, fmt.Errorf("encode schema to JSON: %w", err)
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jb))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks dataBytes (YAML or JSON) against the compiled schema.
func (v *Validator) Validate(dataBytes []byte) (*Result, error) {
	jb, err := toJSON(dataBytes)
	if err != nil {
		return nil, fmt.Errorf("encode document to JSON: %w", err)
	}
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(jb))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	out := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{Path: e.Field(), Message: e.Description()})
	}
	return out, nil
}

// toJSON converts YAML (a superset of JSON for our purposes) to canonical
// JSON bytes for the gojsonschema loader.
func toJSON(in []byte) ([]byte, error) {
	var tmp any
	if err := yaml.Unmarshal(in, &tmp); err != nil {
		return nil, err
	}
	return json.Marshal(normalize(tmp))
}

// normalize rewrites map[any]any (produced by older YAML decoders) into
// map[string]any so json.Marshal accepts it.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
