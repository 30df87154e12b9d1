// Package config parses and validates cradle.yaml documents.
//
// A document is parsed once, fully validated, and then held immutably for the
// duration of a generate, plan, or diff operation. Callers only ever see the
// Document interface with fully resolved values; whether a field was explicit
// or defaulted is not observable after parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"github.com/cradle-dev/cradle/pkg/marketplace"
)

// ErrValidation marks invariant failures in an otherwise well-formed document.
var ErrValidation = errors.New("validation error")

// DefaultWorkspaceDir is used when workspace.dir is omitted.
const DefaultWorkspaceDir = "./project"

// ValidProviders are the accepted values for assistant.provider.
var ValidProviders = []string{"anthropic", "openai", "bedrock", "vertex", "azure"}

// GitPolicy governs how generated files are recorded in the user's git
// metadata.
type GitPolicy string

const (
	GitIgnored           GitPolicy = "ignored"
	GitCommitted         GitPolicy = "committed"
	GitLinguistGenerated GitPolicy = "linguist-generated"
)

// Assistant holds the AI-assistant integration settings.
type Assistant struct {
	Version  string            `yaml:"version"`
	Provider string            `yaml:"provider"`
	Models   map[string]string `yaml:"models,omitempty"`
}

// Runtime describes the project language toolchain.
type Runtime struct {
	Language       string   `yaml:"language"`
	Version        string   `yaml:"version"`
	PackageManager string   `yaml:"package_manager"`
	Tools          []string `yaml:"tools,omitempty"`
}

// Proxy holds corporate proxy endpoints.
type Proxy struct {
	HTTP    string `yaml:"http,omitempty"`
	HTTPS   string `yaml:"https,omitempty"`
	NoProxy string `yaml:"no_proxy,omitempty"`
}

// Marketplace is a named source of installable plugins.
type Marketplace struct {
	URL string `yaml:"url"`
}

// Plugin references a plugin within a configured marketplace.
type Plugin struct {
	Marketplace string
	Name        string
	Activate    bool
}

// Document is the stable accessor surface over a parsed configuration,
// independent of the schema revision it was parsed from.
type Document interface {
	SchemaVersion() Version
	Name() string
	WorkspaceDir() string
	Image() string
	BuildArgs() []string
	Assistant() Assistant
	Runtime() (Runtime, bool)
	Proxy() (Proxy, bool)
	Marketplaces() map[string]Marketplace
	Plugins() []Plugin
	GitPolicy() GitPolicy

	// Encode serializes the document with all defaults resolved.
	Encode() ([]byte, error)
}

// Parse loads a document from raw YAML: probe the schema revision, dispatch to
// the revision's parser, apply defaults, then validate. No partial document is
// ever returned.
func Parse(raw []byte) (Document, error) {
	v, err := ProbeVersion(raw)
	if err != nil {
		return nil, err
	}
	return parsers[v](raw)
}

// ParseFile loads and parses a document from disk.
func ParseFile(path string) (Document, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Wire representation of schema revision 0.1. Field names diverge from the
// accessor names so the struct can implement Document directly.

type documentV01 struct {
	SchemaVer    string                 `yaml:"version"`
	ProjectName  string                 `yaml:"name"`
	Workspace    workspaceV01           `yaml:"workspace"`
	Docker       dockerV01              `yaml:"docker"`
	AssistantCfg assistantV01           `yaml:"assistant"`
	RuntimeCfg   *Runtime               `yaml:"runtime,omitempty"`
	ProxyCfg     *Proxy                 `yaml:"proxy,omitempty"`
	Markets      map[string]Marketplace `yaml:"marketplaces,omitempty"`
	PluginList   []pluginV01            `yaml:"plugins,omitempty"`
	Git          gitV01                 `yaml:"git"`
}

type workspaceV01 struct {
	Dir string `yaml:"dir"`
}

type dockerV01 struct {
	Image     string   `yaml:"image"`
	BuildArgs []string `yaml:"build_args,omitempty"`
}

type assistantV01 struct {
	Version  string            `yaml:"version"`
	Provider string            `yaml:"provider"`
	Models   map[string]string `yaml:"models,omitempty"`
}

type pluginV01 struct {
	Marketplace string `yaml:"marketplace"`
	Name        string `yaml:"name"`
	Activate    *bool  `yaml:"activate,omitempty"`
}

type gitV01 struct {
	Generated string `yaml:"generated,omitempty"`
}

func parseV01(raw []byte) (Document, error) {
	if err := validateStructure(string(V01), raw); err != nil {
		return nil, err
	}

	var wire documentV01
	if err := yaml.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	wire.applyDefaults()
	if err := wire.validate(); err != nil {
		return nil, err
	}
	return &wire, nil
}

func (d *documentV01) applyDefaults() {
	if d.Workspace.Dir == "" {
		d.Workspace.Dir = DefaultWorkspaceDir
	}
	if d.AssistantCfg.Version == "" {
		d.AssistantCfg.Version = "latest"
	}
	if d.AssistantCfg.Provider == "" {
		d.AssistantCfg.Provider = "anthropic"
	}
	if d.Git.Generated == "" {
		d.Git.Generated = string(GitIgnored)
	}
	for i := range d.PluginList {
		if d.PluginList[i].Activate == nil {
			t := true
			d.PluginList[i].Activate = &t
		}
	}
}

func (d *documentV01) validate() error {
	if d.ProjectName == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrValidation)
	}
	if d.Workspace.Dir == "" {
		return fmt.Errorf("%w: workspace directory cannot be empty", ErrValidation)
	}
	if d.Docker.Image == "" {
		return fmt.Errorf("%w: docker image cannot be empty", ErrValidation)
	}
	if !providerAllowed(d.AssistantCfg.Provider) {
		return fmt.Errorf("%w: invalid assistant provider %q, must be one of: %s",
			ErrValidation, d.AssistantCfg.Provider, strings.Join(ValidProviders, ", "))
	}
	for name, m := range d.Markets {
		if m.URL == "" {
			return fmt.Errorf("%w: marketplace %q has no url", ErrValidation, name)
		}
		if _, err := marketplace.FromURL(m.URL); err != nil {
			return fmt.Errorf("%w: marketplace %q: %v", ErrValidation, name, err)
		}
	}
	for _, p := range d.PluginList {
		if _, ok := d.Markets[p.Marketplace]; !ok {
			return fmt.Errorf("%w: plugin %q references unknown marketplace %q",
				ErrValidation, p.Name, p.Marketplace)
		}
	}
	if proxy := d.ProxyCfg; proxy != nil {
		for _, u := range []string{proxy.HTTP, proxy.HTTPS} {
			if u != "" && !govalidator.IsURL(u) {
				return fmt.Errorf("%w: invalid proxy url %q", ErrValidation, u)
			}
		}
	}
	switch GitPolicy(d.Git.Generated) {
	case GitIgnored, GitCommitted, GitLinguistGenerated:
	default:
		return fmt.Errorf("%w: invalid git.generated value %q", ErrValidation, d.Git.Generated)
	}
	return nil
}

func providerAllowed(p string) bool {
	for _, v := range ValidProviders {
		if p == v {
			return true
		}
	}
	return false
}

func (d *documentV01) SchemaVersion() Version { return V01 }
func (d *documentV01) Name() string           { return d.ProjectName }
func (d *documentV01) WorkspaceDir() string   { return d.Workspace.Dir }
func (d *documentV01) Image() string          { return d.Docker.Image }
func (d *documentV01) BuildArgs() []string    { return d.Docker.BuildArgs }

func (d *documentV01) Assistant() Assistant {
	return Assistant(d.AssistantCfg)
}

func (d *documentV01) Runtime() (Runtime, bool) {
	if d.RuntimeCfg == nil {
		return Runtime{}, false
	}
	return *d.RuntimeCfg, true
}

func (d *documentV01) Proxy() (Proxy, bool) {
	if d.ProxyCfg == nil {
		return Proxy{}, false
	}
	return *d.ProxyCfg, true
}

func (d *documentV01) Marketplaces() map[string]Marketplace {
	out := make(map[string]Marketplace, len(d.Markets))
	for k, v := range d.Markets {
		out[k] = v
	}
	return out
}

func (d *documentV01) Plugins() []Plugin {
	out := make([]Plugin, 0, len(d.PluginList))
	for _, p := range d.PluginList {
		out = append(out, Plugin{Marketplace: p.Marketplace, Name: p.Name, Activate: *p.Activate})
	}
	return out
}

func (d *documentV01) GitPolicy() GitPolicy { return GitPolicy(d.Git.Generated) }

func (d *documentV01) Encode() ([]byte, error) {
	return yaml.Marshal(d)
}
