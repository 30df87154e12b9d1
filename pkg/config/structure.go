package config

import (
	"fmt"
	"strings"

	"github.com/cradle-dev/cradle/pkg/schema"
)

// validateStructure checks raw document bytes against the embedded JSON Schema
// for the given revision before any fields are decoded. Structural failures
// (unknown keys, wrong types, missing required sections) surface here with
// their field paths; semantic invariants are enforced later by validate.
func validateStructure(version string, raw []byte) error {
	v, err := schema.DocumentValidator(version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	res, err := v.Validate(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if res.Valid {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		if e.Path != "" && e.Path != "(root)" {
			msgs = append(msgs, e.Path+": "+e.Message)
			continue
		}
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
