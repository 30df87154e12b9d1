// Package generator turns a validated configuration document into the
// on-disk project layout: the .devcontainer tree, the workspace skeleton, and
// their git repositories.
//
// Generation is deterministic. Rendering the same document twice yields
// byte-identical artifacts, which is what makes plan and diff meaningful.
package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cradle-dev/cradle/internal/assets"
	"github.com/cradle-dev/cradle/internal/reconcile"
	"github.com/cradle-dev/cradle/pkg/config"
	"github.com/cradle-dev/cradle/pkg/ignore"
	"github.com/cradle-dev/cradle/pkg/logger"
	"github.com/cradle-dev/cradle/pkg/render"
	"github.com/cradle-dev/cradle/pkg/safeio"
)

// junkPatterns are never copied out of feature source trees.
var junkPatterns = []string{"**/.DS_Store", "**/Thumbs.db", "**/*.swp"}

// Artifact is one rendered file, addressed relative to the output directory.
type Artifact struct {
	Rel     string
	Content string
}

// Manifest is the outcome of a plan: what apply would do, without touching
// disk.
type Manifest struct {
	WouldCreate []string `json:"would_create"`
	WouldModify []string `json:"would_modify"`
	Unchanged   []string `json:"unchanged"`
	Orphaned    []string `json:"orphaned"`
}

// Report is the outcome of an apply.
type Report struct {
	Created  []string `json:"created"`
	Modified []string `json:"modified"`
	Orphaned []string `json:"orphaned"`
}

// Generator renders and writes project artifacts for one document.
type Generator struct {
	doc         config.Document
	installRoot string
	git         GitRunner
}

// Option configures a Generator.
type Option func(*Generator)

// WithInstallRoot pins the installation root instead of searching upward from
// the working directory.
func WithInstallRoot(root string) Option {
	return func(g *Generator) { g.installRoot = root }
}

// WithGitRunner substitutes the git implementation.
func WithGitRunner(r GitRunner) Option {
	return func(g *Generator) { g.git = r }
}

// New builds a generator for a document. A missing installation root is not
// fatal: embedded templates cover rendering and the feature copy is skipped.
func New(doc config.Document, opts ...Option) (*Generator, error) {
	g := &Generator{doc: doc, git: NewGitRunner()}
	for _, opt := range opts {
		opt(g)
	}
	if g.installRoot == "" {
		root, err := FindInstallRoot(".")
		if err == nil {
			g.installRoot = root
		} else {
			logger.Debug("install root not found, using embedded templates only")
		}
	}
	return g, nil
}

// RenderArtifacts produces the full deterministic artifact set for the
// document. Feature trees are copied separately and are not part of this set.
func (g *Generator) RenderArtifacts() ([]Artifact, error) {
	mapping := render.BuildMapping(g.doc)

	descriptorTmpl, err := g.descriptorTemplate()
	if err != nil {
		return nil, err
	}
	dockerfileTmpl, ok := assets.GetTemplate("Dockerfile.tmpl")
	if !ok {
		return nil, fmt.Errorf("embedded Dockerfile template missing")
	}
	assistantTmpl, ok := assets.GetTemplate("assistant-config.json.tmpl")
	if !ok {
		return nil, fmt.Errorf("embedded assistant config template missing")
	}

	descriptor := render.Apply(descriptorTmpl, mapping)
	if tokens := render.UnresolvedTokens(descriptor); len(tokens) > 0 {
		logger.Warn("descriptor template has unresolved tokens", logger.Strings("tokens", tokens))
	}

	ws := g.doc.WorkspaceDir()
	artifacts := []Artifact{
		{Rel: filepath.Join(".devcontainer", "devcontainer.json"), Content: descriptor},
		{Rel: filepath.Join(".devcontainer", "Dockerfile"), Content: render.Apply(string(dockerfileTmpl), mapping)},
		{Rel: filepath.Join(".devcontainer", ".gitignore"), Content: devcontainerGitignore},
		{Rel: filepath.Join(ws, ".assistant", "config.json"), Content: render.Apply(string(assistantTmpl), mapping)},
		{Rel: filepath.Join(ws, ".gitignore"), Content: g.workspaceGitignore()},
		{Rel: filepath.Join(ws, "README.md"), Content: render.Apply(readmeTemplate, mapping)},
	}
	if g.doc.GitPolicy() == config.GitLinguistGenerated {
		artifacts = append(artifacts, Artifact{
			Rel:     filepath.Join(ws, ".gitattributes"),
			Content: ".assistant/** linguist-generated=true\n",
		})
	}
	return artifacts, nil
}

// Plan reports what Apply would do against outputDir, without writing.
// Existence decides creation; among existing artifacts, byte equality of the
// rendered content splits unchanged from modified. Feature directories are
// classified by existence alone because they are copied trees, not rendered
// artifacts.
func (g *Generator) Plan(outputDir string) (*Manifest, error) {
	artifacts, err := g.RenderArtifacts()
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	for _, a := range artifacts {
		path := filepath.Join(outputDir, a.Rel)
		current, err := os.ReadFile(path) // #nosec G304 -- path derives from the output tree
		switch {
		case os.IsNotExist(err):
			m.WouldCreate = append(m.WouldCreate, a.Rel)
		case err != nil:
			return nil, fmt.Errorf("inspect %s: %w", path, err)
		case string(current) == a.Content:
			m.Unchanged = append(m.Unchanged, a.Rel)
		default:
			m.WouldModify = append(m.WouldModify, a.Rel)
		}
	}

	for _, name := range g.featureNames() {
		rel := filepath.Join(".devcontainer", "features", name)
		if isDir(filepath.Join(outputDir, rel)) {
			m.WouldModify = append(m.WouldModify, rel)
		} else {
			m.WouldCreate = append(m.WouldCreate, rel)
		}
	}

	orphans, err := g.findOrphans(outputDir, artifacts)
	if err != nil {
		return nil, err
	}
	m.Orphaned = orphans
	return m, nil
}

// Apply writes all artifacts, copies feature trees, and initializes the two
// git repositories. Existing artifact files are overwritten; orphans are
// reported but never removed here.
func (g *Generator) Apply(outputDir string) (*Report, error) {
	artifacts, err := g.RenderArtifacts()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, a := range artifacts {
		path := filepath.Join(outputDir, a.Rel)
		existed := fileExists(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", a.Rel, err)
		}
		if err := safeio.WriteFilePreservePerms(path, []byte(a.Content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", a.Rel, err)
		}
		if existed {
			report.Modified = append(report.Modified, a.Rel)
		} else {
			report.Created = append(report.Created, a.Rel)
		}
		logger.Debug("wrote artifact", logger.String("path", a.Rel))
	}

	copied, err := g.copyFeatures(outputDir)
	if err != nil {
		return nil, err
	}
	report.Created = append(report.Created, copied...)

	if err := g.ensureRepos(outputDir); err != nil {
		return nil, err
	}

	orphans, err := g.findOrphans(outputDir, artifacts)
	if err != nil {
		return nil, err
	}
	report.Orphaned = orphans
	return report, nil
}

// PruneOrphans deletes previously reported orphans under the generated
// .devcontainer tree. Paths are relative to that tree.
func (g *Generator) PruneOrphans(outputDir string, orphans []string) error {
	devDir := filepath.Join(outputDir, ".devcontainer")
	for _, rel := range orphans {
		path := filepath.Join(devDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove orphan %s: %w", rel, err)
		}
		logger.Info("removed orphan", logger.String("path", rel))
	}
	return nil
}

// descriptorTemplate prefers the on-disk template from the installation root
// and falls back to the embedded copy.
func (g *Generator) descriptorTemplate() (string, error) {
	if g.installRoot != "" {
		path := filepath.Join(g.installRoot, "templates", "generic", ".devcontainer", "devcontainer.json")
		if data, err := safeio.ReadFileContained(g.installRoot, path); err == nil {
			return string(data), nil
		}
	}
	data, ok := assets.GetTemplate("devcontainer.json.tmpl")
	if !ok {
		return "", fmt.Errorf("embedded devcontainer template missing")
	}
	return string(data), nil
}

// featureNames lists the feature directories available for copying.
func (g *Generator) featureNames() []string {
	if g.installRoot == "" {
		return nil
	}
	entries, err := os.ReadDir(filepath.Join(g.installRoot, "core", "features"))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// copyFeatures copies each feature tree under .devcontainer/features,
// replacing any existing copy. A missing feature source is not an error.
func (g *Generator) copyFeatures(outputDir string) ([]string, error) {
	names := g.featureNames()
	if len(names) == 0 {
		return nil, nil
	}

	var copied []string
	featuresDir := filepath.Join(outputDir, ".devcontainer", "features")
	for _, name := range names {
		src := filepath.Join(g.installRoot, "core", "features", name)
		dst := filepath.Join(featuresDir, name)
		if err := os.RemoveAll(dst); err != nil {
			return nil, fmt.Errorf("replace feature %s: %w", name, err)
		}
		if err := copyTree(src, dst); err != nil {
			return nil, fmt.Errorf("copy feature %s: %w", name, err)
		}
		copied = append(copied, filepath.Join(".devcontainer", "features", name))
	}
	return copied, nil
}

// ensureRepos initializes the workspace and devcontainer repositories when
// they do not exist yet. Existing repositories are left untouched.
func (g *Generator) ensureRepos(outputDir string) error {
	workspaceDir := filepath.Join(outputDir, g.doc.WorkspaceDir())
	if !isDir(filepath.Join(workspaceDir, ".git")) {
		if err := g.git.Init(workspaceDir); err != nil {
			return err
		}
		var initial []string
		for _, name := range []string{"README.md", ".gitignore"} {
			if fileExists(filepath.Join(workspaceDir, name)) {
				initial = append(initial, name)
			}
		}
		if err := g.git.Commit(workspaceDir, initial, "Initial commit"); err != nil {
			return err
		}
		logger.Info("initialized workspace repository", logger.String("dir", workspaceDir))
	}

	devDir := filepath.Join(outputDir, ".devcontainer")
	if !isDir(filepath.Join(devDir, ".git")) {
		if err := g.git.Init(devDir); err != nil {
			return err
		}
		if err := g.git.Commit(devDir, nil, "Initial devcontainer setup"); err != nil {
			return err
		}
		logger.Info("initialized devcontainer repository", logger.String("dir", devDir))
	}
	return nil
}

// findOrphans reports files under the generated .devcontainer tree that are
// neither rendered artifacts nor copied feature files.
func (g *Generator) findOrphans(outputDir string, artifacts []Artifact) ([]string, error) {
	devDir := filepath.Join(outputDir, ".devcontainer")
	if !isDir(devDir) {
		return nil, nil
	}

	expected := map[string]struct{}{}
	prefix := ".devcontainer" + string(filepath.Separator)
	for _, a := range artifacts {
		if strings.HasPrefix(a.Rel, prefix) {
			expected[filepath.ToSlash(strings.TrimPrefix(a.Rel, prefix))] = struct{}{}
		}
	}
	for _, name := range g.featureNames() {
		src := filepath.Join(g.installRoot, "core", "features", name)
		err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			expected["features/"+name+"/"+filepath.ToSlash(rel)] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("enumerate feature %s: %w", name, err)
		}
	}

	keep, err := ignore.NewKeepMatcher(devDir)
	if err != nil {
		return nil, err
	}
	return reconcile.FindOrphans(devDir, expected, keep)
}

// copyTree copies a directory recursively, skipping junk files.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		for _, pattern := range junkPatterns {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				return nil
			}
		}
		data, err := os.ReadFile(path) // #nosec G304 -- path enumerated from the feature source tree
		if err != nil {
			return err
		}
		return safeio.WriteFilePreservePerms(target, data)
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
