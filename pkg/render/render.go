// Package render turns a parsed configuration document into the flat
// key/value mapping consumed by artifact templates, and applies that mapping
// with simple {{KEY}} substitution.
//
// There is deliberately no conditional or loop syntax. Every template decision
// is made while building the mapping, so rendering itself stays a single
// deterministic string pass.
package render

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/cradle-dev/cradle/pkg/config"
)

// Feature paths baked into the generated devcontainer descriptor. They are
// relative to the .devcontainer directory, where the feature trees are copied.
const (
	FeatureAssistant     = "./features/assistant"
	FeatureProxy         = "./features/proxy"
	FeaturePluginManager = "./features/plugin-manager"
)

// defaultNoProxy applies when the document has no proxy section or leaves
// no_proxy unset.
const defaultNoProxy = "localhost,127.0.0.1,.local"

// languageVersionKeys maps a runtime language to its Dockerfile ARG name.
// Aliases share a key so "node", "nodejs" and "javascript" all resolve the
// same way.
var languageVersionKeys = map[string]string{
	"python":     "PYTHON_VERSION",
	"node":       "NODE_VERSION",
	"nodejs":     "NODE_VERSION",
	"javascript": "NODE_VERSION",
	"rust":       "RUST_VERSION",
	"go":         "GO_VERSION",
	"golang":     "GO_VERSION",
}

// LanguageVersionKey returns the Dockerfile ARG name for a runtime language,
// or false when the language has no version argument.
func LanguageVersionKey(language string) (string, bool) {
	key, ok := languageVersionKeys[language]
	return key, ok
}

// BuildMapping flattens a document into the substitution map used by all
// artifact templates. Every key is always present so templates never depend on
// which optional sections the document carries.
func BuildMapping(doc config.Document) map[string]string {
	m := map[string]string{
		"PROJECT_NAME": doc.Name(),
		"BASE_IMAGE":   doc.Image(),
	}

	assistant := doc.Assistant()
	m["ASSISTANT_VERSION"] = assistant.Version
	m["ASSISTANT_PROVIDER"] = assistant.Provider
	m["ASSISTANT_MODELS"] = jsonObject(assistant.Models)

	if proxy, ok := doc.Proxy(); ok {
		m["PROXY_ENABLED"] = "true"
		m["HTTP_PROXY"] = proxy.HTTP
		m["HTTPS_PROXY"] = proxy.HTTPS
		if proxy.NoProxy != "" {
			m["NO_PROXY"] = proxy.NoProxy
		} else {
			m["NO_PROXY"] = defaultNoProxy
		}
	} else {
		m["PROXY_ENABLED"] = "false"
		m["HTTP_PROXY"] = ""
		m["HTTPS_PROXY"] = ""
		m["NO_PROXY"] = defaultNoProxy
	}

	m["FEATURES_ASSISTANT"] = FeatureAssistant
	m["FEATURES_PROXY"] = FeatureProxy
	m["FEATURES_PLUGIN_MANAGER"] = FeaturePluginManager

	var activate, deactivate []string
	for _, p := range doc.Plugins() {
		if p.Activate {
			activate = append(activate, p.Name)
		} else {
			deactivate = append(deactivate, p.Name)
		}
	}
	// Array fragments; the surrounding brackets live in the template.
	m["ACTIVATE_PLUGINS"] = quotedList(activate)
	m["DEACTIVATE_PLUGINS"] = quotedList(deactivate)

	m["LANG_VERSION_ARG"] = ""
	if rt, ok := doc.Runtime(); ok {
		if key, known := LanguageVersionKey(rt.Language); known {
			m[key] = rt.Version
			m["LANG_VERSION_ARG"] = "ARG " + key + "=" + rt.Version + "\n"
		}
	}

	var extra strings.Builder
	for i, arg := range doc.BuildArgs() {
		if i > 0 {
			extra.WriteString("\n")
		}
		extra.WriteString("ARG " + arg)
	}
	m["EXTRA_BUILD_ARGS"] = extra.String()

	return m
}

// Apply substitutes every {{KEY}} occurrence in template with its mapped
// value. Keys are applied in sorted order for deterministic output. Tokens
// without a mapping are left untouched.
func Apply(template string, mapping map[string]string) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", mapping[k])
	}
	return out
}

var tokenPattern = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

// UnresolvedTokens reports the {{KEY}} tokens still present in rendered
// output, deduplicated and sorted. Callers use it to warn about templates that
// reference unknown keys.
func UnresolvedTokens(rendered string) []string {
	seen := map[string]struct{}{}
	for _, match := range tokenPattern.FindAllStringSubmatch(rendered, -1) {
		seen[match[1]] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func jsonObject(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func quotedList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, `"`+it+`"`)
	}
	return strings.Join(quoted, ", ")
}
