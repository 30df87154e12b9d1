// Package marketplace models plugin marketplaces and the plugins they host.
//
// Catalog retrieval goes through the Fetcher interface so callers can inject
// a real transport or a fixture. The package itself performs no network I/O.
package marketplace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
)

// ErrInvalidMarketplace marks rejected marketplace definitions.
var ErrInvalidMarketplace = errors.New("invalid marketplace")

// ErrPluginNotFound is returned when a catalog has no plugin with the
// requested name.
var ErrPluginNotFound = errors.New("plugin not found")

// Marketplace is a named source of installable plugins.
type Marketplace struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Plugin is a catalog entry within a marketplace.
type Plugin struct {
	Name        string   `json:"name" yaml:"name"`
	Marketplace string   `json:"marketplace" yaml:"marketplace"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty" yaml:"repository,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Fetcher retrieves a marketplace catalog. The generator never fetches; the
// intended consumer is a plugin pull or browse command that resolves catalog
// entries on demand.
type Fetcher interface {
	// ListPlugins returns the full catalog of a marketplace.
	ListPlugins(m Marketplace) ([]Plugin, error)
}

// FromURL derives a marketplace from its URL. The name is the last non-empty
// path segment.
func FromURL(url string) (Marketplace, error) {
	if url == "" {
		return Marketplace{}, fmt.Errorf("%w: url cannot be empty", ErrInvalidMarketplace)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return Marketplace{}, fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidMarketplace)
	}
	if !govalidator.IsURL(url) {
		return Marketplace{}, fmt.Errorf("%w: malformed url %q", ErrInvalidMarketplace, url)
	}

	name := "unknown"
	for _, seg := range strings.Split(url, "/") {
		if seg != "" {
			name = seg
		}
	}
	return Marketplace{Name: name, URL: url}, nil
}

func (m Marketplace) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.URL)
}

func (p Plugin) String() string {
	version := p.Version
	if version == "" {
		version = "latest"
	}
	return fmt.Sprintf("%s@%s from %s", p.Name, version, p.Marketplace)
}

// FindPlugin looks a plugin up by name through a fetcher.
func FindPlugin(f Fetcher, m Marketplace, name string) (Plugin, error) {
	if name == "" {
		return Plugin{}, fmt.Errorf("%w: plugin name cannot be empty", ErrPluginNotFound)
	}
	plugins, err := f.ListPlugins(m)
	if err != nil {
		return Plugin{}, fmt.Errorf("list plugins from %s: %w", m.Name, err)
	}
	for _, p := range plugins {
		if p.Name == name {
			return p, nil
		}
	}
	return Plugin{}, fmt.Errorf("%w: %q in marketplace %s", ErrPluginNotFound, name, m.Name)
}
