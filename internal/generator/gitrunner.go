package generator

import (
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRunner abstracts the git operations the generator performs, so tests can
// substitute a recorder and callers can disable repository setup entirely.
type GitRunner interface {
	// Init creates an empty repository at dir.
	Init(dir string) error
	// Commit stages paths (all tracked and untracked files when paths is
	// empty) and records a commit with the given message.
	Commit(dir string, paths []string, message string) error
}

// goGitRunner is the production implementation backed by go-git, so no git
// binary is required on the host.
type goGitRunner struct{}

// NewGitRunner returns the default go-git backed runner.
func NewGitRunner() GitRunner { return goGitRunner{} }

func (goGitRunner) Init(dir string) error {
	if _, err := git.PlainInit(dir, false); err != nil {
		return fmt.Errorf("git init %s: %w", dir, err)
	}
	return nil
}

func (goGitRunner) Commit(dir string, paths []string, message string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open repository %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree %s: %w", dir, err)
	}

	if len(paths) == 0 {
		if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return fmt.Errorf("stage all in %s: %w", dir, err)
		}
	} else {
		for _, p := range paths {
			if _, err := wt.Add(p); err != nil {
				return fmt.Errorf("stage %s in %s: %w", p, dir, err)
			}
		}
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "cradle",
			Email: "cradle@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit in %s: %w", dir, err)
	}
	return nil
}
