package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version identifies a cradle.yaml schema revision. The schema revision is
// independent of the user's project version; it only governs how the document
// is parsed.
type Version string

// V01 is the initial schema revision.
const V01 Version = "0.1"

// ErrSchema marks schema-version failures (missing or unsupported version tag).
var ErrSchema = errors.New("schema error")

// parsers routes a schema revision to its parser. Adding a revision means
// adding one entry here and one Document implementation.
var parsers = map[Version]func(raw []byte) (Document, error){
	V01: parseV01,
}

// SupportedVersions returns the recognized schema revisions in ascending order.
func SupportedVersions() []string {
	return []string{string(V01)}
}

// versionProbe decodes only the version field so an unsupported document is
// rejected before any other field is read.
type versionProbe struct {
	Version string `yaml:"version"`
}

// ProbeVersion extracts the schema revision tag from raw document text without
// parsing the rest of the document.
func ProbeVersion(raw []byte) (Version, error) {
	var probe versionProbe
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("%w: document is not valid YAML: %v", ErrSchema, err)
	}
	if probe.Version == "" {
		return "", fmt.Errorf("%w: missing version field", ErrSchema)
	}
	v := Version(probe.Version)
	if _, ok := parsers[v]; !ok {
		return "", fmt.Errorf("%w: unsupported schema version %q (supported: %s)",
			ErrSchema, probe.Version, strings.Join(SupportedVersions(), ", "))
	}
	return v, nil
}

// IsSupported reports whether s names a recognized schema revision.
func IsSupported(s string) bool {
	_, ok := parsers[Version(s)]
	return ok
}
