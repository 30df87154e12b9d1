// Package assets holds the embedded artifact templates and document schemas.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var templates embed.FS

//go:embed embedded_schemas
var schemas embed.FS

// GetTemplate returns an embedded artifact template by name
// (e.g. "devcontainer.json.tmpl").
func GetTemplate(name string) ([]byte, bool) {
	data, err := fs.ReadFile(templates, "embedded_templates/"+name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// GetSchema returns an embedded document schema by file name
// (e.g. "cradle-config-v0.1.yaml").
func GetSchema(name string) ([]byte, bool) {
	data, err := fs.ReadFile(schemas, "embedded_schemas/"+name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// GetTemplatesFS exposes the template tree rooted at its own directory.
func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(templates, "embedded_templates"); err == nil {
		return sub
	}
	return templates
}
