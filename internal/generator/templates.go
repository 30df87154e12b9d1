package generator

import "github.com/cradle-dev/cradle/pkg/config"

// generatedIgnoreBlock is prepended to the workspace .gitignore when the
// document's git policy is "ignored".
const generatedIgnoreBlock = `# Assistant local files
.assistant/

`

// workspaceGitignoreBase covers the usual editor, OS, and toolchain noise for
// a fresh workspace regardless of git policy.
const workspaceGitignoreBase = `# IDE
.vscode/
.idea/

# OS
.DS_Store
Thumbs.db

# Python
__pycache__/
*.py[cod]
venv/
.venv/

# Node
node_modules/
npm-debug.log*
yarn-debug.log*
yarn-error.log*

# Rust
target/

# Go
*.test
*.prof
`

// devcontainerGitignore keeps local assistant state out of the devcontainer
// repository.
const devcontainerGitignore = `# Assistant local files (not in git)
.assistant/
settings.json

# IDE files
.vscode/
.idea/
`

const readmeTemplate = `# {{PROJECT_NAME}}

This project was scaffolded with cradle.

## Getting Started

1. Open this project in your editor
2. Reopen in Container when prompted
3. Start coding!

## Project Structure

- ` + "`project/`" + ` - Your main project code (this directory)
- ` + "`.devcontainer/`" + ` - Devcontainer configuration (separate git repository)
- ` + "`.assistant/`" + ` - AI assistant configuration

## DevContainer

Development happens inside a devcontainer. Its configuration lives in the
` + "`.devcontainer/`" + ` directory, which is a separate git repository.

To rebuild the container:
1. Press F1 in VS Code
2. Select "Dev Containers: Rebuild Container"
`

// workspaceGitignore assembles the workspace .gitignore according to the
// document's git policy. The "committed" and "linguist-generated" policies
// leave generated files visible to git.
func (g *Generator) workspaceGitignore() string {
	if g.doc.GitPolicy() == config.GitIgnored {
		return generatedIgnoreBlock + workspaceGitignoreBase
	}
	return workspaceGitignoreBase
}
