package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cradle-dev/cradle/pkg/config"
)

const demoConfig = `
version: "0.1"
name: demo
docker:
  image: ubuntu:latest
runtime:
  language: python
  version: "3.12"
  package_manager: pip
`

type gitCall struct {
	op      string
	dir     string
	paths   []string
	message string
}

// fakeGit records operations instead of touching a real repository. Init also
// drops a .git directory so ensureRepos sees the repository as existing.
type fakeGit struct {
	calls []gitCall
}

func (f *fakeGit) Init(dir string) error {
	f.calls = append(f.calls, gitCall{op: "init", dir: dir})
	return os.MkdirAll(filepath.Join(dir, ".git"), 0o755)
}

func (f *fakeGit) Commit(dir string, paths []string, message string) error {
	f.calls = append(f.calls, gitCall{op: "commit", dir: dir, paths: paths, message: message})
	return nil
}

func parseDoc(t *testing.T, yaml string) config.Document {
	t.Helper()
	doc, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return doc
}

// installRootFixture builds a minimal installation with one feature tree.
func installRootFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0o755))
	featureDir := filepath.Join(root, "core", "features", "assistant")
	require.NoError(t, os.MkdirAll(featureDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "install.sh"), []byte("#!/bin/sh\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, ".DS_Store"), []byte("junk"), 0o644))
	return root
}

func newTestGenerator(t *testing.T, yaml string, git GitRunner, installRoot string) *Generator {
	t.Helper()
	if installRoot == "" {
		// A bare directory has no templates or features, which forces
		// the embedded fallbacks.
		installRoot = t.TempDir()
	}
	g, err := New(parseDoc(t, yaml), WithInstallRoot(installRoot), WithGitRunner(git))
	require.NoError(t, err)
	return g
}

func TestFindInstallRoot(t *testing.T) {
	root := installRootFixture(t)
	nested := filepath.Join(root, "some", "deep", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindInstallRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindInstallRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrInstallRootNotFound)
}

func TestApplyGeneratesFullLayout(t *testing.T) {
	out := t.TempDir()
	git := &fakeGit{}
	g := newTestGenerator(t, demoConfig, git, installRootFixture(t))

	report, err := g.Apply(out)
	require.NoError(t, err)

	descriptor, err := os.ReadFile(filepath.Join(out, ".devcontainer", "devcontainer.json"))
	require.NoError(t, err)
	assert.Contains(t, string(descriptor), "demo")
	assert.NotContains(t, string(descriptor), "{{PROJECT_NAME}}")

	dockerfile, err := os.ReadFile(filepath.Join(out, ".devcontainer", "Dockerfile"))
	require.NoError(t, err)
	lines := strings.Split(string(dockerfile), "\n")
	assert.Equal(t, "ARG BASE_IMAGE=ubuntu:latest", lines[0])
	assert.Contains(t, string(dockerfile), "ARG PYTHON_VERSION=3.12")

	assert.FileExists(t, filepath.Join(out, "project", "README.md"))
	assert.FileExists(t, filepath.Join(out, "project", ".gitignore"))
	assert.FileExists(t, filepath.Join(out, "project", ".assistant", "config.json"))
	assert.FileExists(t, filepath.Join(out, ".devcontainer", "features", "assistant", "install.sh"))
	assert.NoFileExists(t, filepath.Join(out, ".devcontainer", "features", "assistant", ".DS_Store"))

	assert.NotEmpty(t, report.Created)
	assert.Empty(t, report.Modified)
	assert.Empty(t, report.Orphaned)
}

func TestApplyInitializesBothRepositories(t *testing.T) {
	out := t.TempDir()
	git := &fakeGit{}
	g := newTestGenerator(t, demoConfig, git, "")

	_, err := g.Apply(out)
	require.NoError(t, err)

	require.Len(t, git.calls, 4)
	assert.Equal(t, "init", git.calls[0].op)
	assert.Equal(t, filepath.Join(out, "project"), git.calls[0].dir)
	assert.Equal(t, "commit", git.calls[1].op)
	assert.Equal(t, []string{"README.md", ".gitignore"}, git.calls[1].paths)
	assert.Equal(t, "Initial commit", git.calls[1].message)

	assert.Equal(t, "init", git.calls[2].op)
	assert.Equal(t, filepath.Join(out, ".devcontainer"), git.calls[2].dir)
	assert.Equal(t, "commit", git.calls[3].op)
	assert.Empty(t, git.calls[3].paths)
	assert.Equal(t, "Initial devcontainer setup", git.calls[3].message)

	// A second apply must not re-initialize existing repositories.
	_, err = g.Apply(out)
	require.NoError(t, err)
	assert.Len(t, git.calls, 4)
}

func TestApplyIsIdempotent(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, demoConfig, &fakeGit{}, "")

	_, err := g.Apply(out)
	require.NoError(t, err)

	plan, err := g.Plan(out)
	require.NoError(t, err)
	assert.Empty(t, plan.WouldCreate)
	assert.Empty(t, plan.WouldModify)
	assert.NotEmpty(t, plan.Unchanged)
	assert.Empty(t, plan.Orphaned)
}

func TestPlanBeforeApply(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, demoConfig, &fakeGit{}, installRootFixture(t))

	plan, err := g.Plan(out)
	require.NoError(t, err)

	assert.Contains(t, plan.WouldCreate, filepath.Join(".devcontainer", "devcontainer.json"))
	assert.Contains(t, plan.WouldCreate, filepath.Join(".devcontainer", "features", "assistant"))
	assert.Contains(t, plan.WouldCreate, filepath.Join("project", "README.md"))
	assert.Empty(t, plan.WouldModify)
	assert.Empty(t, plan.Unchanged)
}

func TestPlanDetectsDrift(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, demoConfig, &fakeGit{}, "")

	_, err := g.Apply(out)
	require.NoError(t, err)

	dockerfile := filepath.Join(out, ".devcontainer", "Dockerfile")
	require.NoError(t, os.WriteFile(dockerfile, []byte("FROM scratch\n"), 0o644))

	plan, err := g.Plan(out)
	require.NoError(t, err)
	assert.Contains(t, plan.WouldModify, filepath.Join(".devcontainer", "Dockerfile"))
}

func TestOrphanDetectionAndPrune(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, demoConfig, &fakeGit{}, "")

	_, err := g.Apply(out)
	require.NoError(t, err)

	stray := filepath.Join(out, ".devcontainer", "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("leftover"), 0o644))

	plan, err := g.Plan(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"stray.txt"}, plan.Orphaned)

	require.NoError(t, g.PruneOrphans(out, plan.Orphaned))
	assert.NoFileExists(t, stray)
}

func TestWorkspaceGitignoreFollowsPolicy(t *testing.T) {
	ignored := newTestGenerator(t, demoConfig, &fakeGit{}, "")
	assert.True(t, strings.HasPrefix(ignored.workspaceGitignore(), "# Assistant local files"))

	committed := newTestGenerator(t, demoConfig+"git:\n  generated: committed\n", &fakeGit{}, "")
	assert.NotContains(t, committed.workspaceGitignore(), ".assistant/")
}

func TestLinguistPolicyAddsGitattributes(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, demoConfig+"git:\n  generated: linguist-generated\n", &fakeGit{}, "")

	_, err := g.Apply(out)
	require.NoError(t, err)

	attrs, err := os.ReadFile(filepath.Join(out, "project", ".gitattributes"))
	require.NoError(t, err)
	assert.Equal(t, ".assistant/** linguist-generated=true\n", string(attrs))
}

func TestDescriptorTemplateOverride(t *testing.T) {
	root := installRootFixture(t)
	dir := filepath.Join(root, "templates", "generic", ".devcontainer")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	override := `{"name": "{{PROJECT_NAME}}", "custom": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devcontainer.json"), []byte(override), 0o644))

	g := newTestGenerator(t, demoConfig, &fakeGit{}, root)
	artifacts, err := g.RenderArtifacts()
	require.NoError(t, err)

	descriptor := artifacts[0].Content
	assert.Contains(t, descriptor, `"custom": true`)
	assert.Contains(t, descriptor, `"name": "demo"`)
}

func TestApplyCustomWorkspaceDir(t *testing.T) {
	out := t.TempDir()
	g := newTestGenerator(t, `
version: "0.1"
name: demo
workspace:
  dir: ./src
docker:
  image: ubuntu:latest
`, &fakeGit{}, "")

	_, err := g.Apply(out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "src", "README.md"))
}
