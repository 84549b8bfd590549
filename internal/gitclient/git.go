// Package gitclient reads repository history with go-git, so no git binary
// is required.
package gitclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/huangsam/reposcope/internal/contract"
)

// GoGitClient implements the HistoryClient interface on top of go-git.
type GoGitClient struct{}

var _ contract.HistoryClient = &GoGitClient{} // Compile-time check

// NewGoGitClient creates a new instance of the go-git history client.
func NewGoGitClient() *GoGitClient {
	return &GoGitClient{}
}

// open opens the repository containing repoPath.
func open(repoPath string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}
	return repo, nil
}

// CommitHistory returns the commits reachable from HEAD committed at or after
// since, newest first. A repository without commits yields an empty slice.
func (c *GoGitClient) CommitHistory(ctx context.Context, repoPath string, since time.Time) ([]contract.CommitInfo, error) {
	repo, err := open(repoPath)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []contract.CommitInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime, Since: &since})
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	commits := []contract.CommitInfo{}
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, contract.CommitInfo{
			Hash:   commit.Hash.String(),
			Author: commit.Author.Email,
			When:   commit.Committer.When,
		})
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}
	return commits, nil
}

// IsRepository reports whether path is inside a git work tree.
func IsRepository(path string) bool {
	_, err := open(path)
	return err == nil
}
