// Package doctor checks the environment cradle depends on: the container
// tooling on PATH, the configuration document, and the tool installation.
package doctor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/cradle-dev/cradle/internal/generator"
	"github.com/cradle-dev/cradle/pkg/config"
)

// Health classifies one probe outcome.
type Health string

const (
	HealthOK    Health = "ok"
	HealthWarn  Health = "warn"
	HealthError Health = "error"
)

// Result is the outcome of a single probe.
type Result struct {
	Name   string `json:"name"`
	Health Health `json:"health"`
	Detail string `json:"detail,omitempty"`
}

// Probe checks one aspect of the environment.
type Probe interface {
	Name() string
	Check() Result
}

// Report aggregates probe results.
type Report struct {
	Results []Result `json:"results"`
}

// Healthy reports whether no probe returned an error. Warnings do not fail
// the report.
func (r *Report) Healthy() bool {
	for _, res := range r.Results {
		if res.Health == HealthError {
			return false
		}
	}
	return true
}

// Run executes every probe in order.
func Run(probes []Probe) *Report {
	report := &Report{}
	for _, p := range probes {
		report.Results = append(report.Results, p.Check())
	}
	return report
}

// DefaultProbes covers a standard working directory: container tooling,
// configuration document, and installation root.
func DefaultProbes(configPath string) []Probe {
	return []Probe{
		BinaryProbe{Binary: "docker", Required: false,
			Hint: "container builds need docker or a compatible runtime"},
		BinaryProbe{Binary: "devcontainer", Required: false,
			Hint: "install the devcontainer CLI to launch containers from the terminal"},
		ConfigProbe{Path: configPath},
		InstallRootProbe{},
	}
}

// BinaryProbe checks that an executable is on PATH.
type BinaryProbe struct {
	Binary   string
	Required bool
	Hint     string
}

func (p BinaryProbe) Name() string { return p.Binary }

func (p BinaryProbe) Check() Result {
	path, err := exec.LookPath(p.Binary)
	if err == nil {
		return Result{Name: p.Binary, Health: HealthOK, Detail: path}
	}
	health := HealthWarn
	if p.Required {
		health = HealthError
	}
	detail := fmt.Sprintf("%s not found on PATH", p.Binary)
	if p.Hint != "" {
		detail += "; " + p.Hint
	}
	return Result{Name: p.Binary, Health: health, Detail: detail}
}

// ConfigProbe parses and validates the configuration document.
type ConfigProbe struct {
	Path string
}

func (p ConfigProbe) Name() string { return "config" }

func (p ConfigProbe) Check() Result {
	if _, err := os.Stat(p.Path); os.IsNotExist(err) {
		return Result{Name: "config", Health: HealthWarn,
			Detail: fmt.Sprintf("%s not found; run cradle init to create one", p.Path)}
	}
	doc, err := config.ParseFile(p.Path)
	if err != nil {
		return Result{Name: "config", Health: HealthError, Detail: err.Error()}
	}
	return Result{Name: "config", Health: HealthOK,
		Detail: fmt.Sprintf("%s (schema %s, project %s)", p.Path, doc.SchemaVersion(), doc.Name())}
}

// InstallRootProbe looks for the tool installation that provides on-disk
// templates and feature trees.
type InstallRootProbe struct {
	// Start overrides the search origin, mainly for tests.
	Start string
}

func (p InstallRootProbe) Name() string { return "install-root" }

func (p InstallRootProbe) Check() Result {
	start := p.Start
	if start == "" {
		start = "."
	}
	root, err := generator.FindInstallRoot(start)
	if err != nil {
		return Result{Name: "install-root", Health: HealthWarn,
			Detail: "not found; embedded templates will be used and feature copies skipped"}
	}
	return Result{Name: "install-root", Health: HealthOK, Detail: root}
}
