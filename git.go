package nearver

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// GitSource reads repository state through go-git. It implements GitReader.
type GitSource struct {
	repo *git.Repository
}

// NewGitSource wraps an already-open repository
func NewGitSource(repo *git.Repository) *GitSource {
	return &GitSource{repo: repo}
}

func (s *GitSource) CurrentBranch() (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}

	// Detached HEAD
	return head.Hash().String()[:8], nil
}

func (s *GitSource) Tags() ([]string, error) {
	iter, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return names, nil
}

func (s *GitSource) CommitCount() (int, error) {
	commit, err := s.headCommit()
	if err != nil {
		return 0, err
	}

	count := 0
	walker := object.NewCommitPreorderIter(commit, nil, nil)
	err = walker.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking history: %w", err)
	}

	return count, nil
}

// Describe computes a git-describe style token for HEAD relative to one
// tag. Returns the bare tag name when HEAD is the tagged commit,
// `<tag>-<count>-g<hash>` otherwise, and an empty string when the tag is
// not reachable from HEAD.
func (s *GitSource) Describe(tag string) (string, error) {
	// Fast path for filesystem storage
	if _, ok := s.repo.Storer.(*filesystem.Storage); ok {
		workTree, err := s.repo.Worktree()
		if err == nil {
			return describeWithGitCommand(workTree.Filesystem.Root(), tag)
		}
	}

	return s.describeWithWalk(tag)
}

func describeWithGitCommand(repoPath, tag string) (string, error) {
	cmd := exec.Command("git", "describe", "--tags", "--match", tag, "HEAD")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// git exits non-zero when no matching tag describes HEAD
			return "", nil
		}
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

func (s *GitSource) describeWithWalk(tag string) (string, error) {
	ref, err := s.repo.Tag(tag)
	if err != nil {
		return "", fmt.Errorf("resolving tag %q: %w", tag, err)
	}

	target, err := s.peelToCommit(ref)
	if err != nil {
		return "", fmt.Errorf("peeling tag %q: %w", tag, err)
	}

	headCommit, err := s.headCommit()
	if err != nil {
		return "", err
	}

	distance := -1
	steps := 0
	walker := object.NewCommitPreorderIter(headCommit, nil, nil)
	err = walker.ForEach(func(commit *object.Commit) error {
		if commit.Hash == target {
			distance = steps
			return storer.ErrStop
		}
		steps++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking history: %w", err)
	}

	if distance < 0 {
		// Tag not reachable from HEAD
		return "", nil
	}
	if distance == 0 {
		return tag, nil
	}

	return fmt.Sprintf("%s-%d-g%s", tag, distance, headCommit.Hash.String()[:7]), nil
}

func (s *GitSource) headCommit() (*object.Commit, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}

	return commit, nil
}

func (s *GitSource) peelToCommit(ref *plumbing.Reference) (plumbing.Hash, error) {
	obj, err := s.repo.TagObject(ref.Hash())
	switch err {
	case nil:
		// Annotated tag
		return obj.Target, nil
	case plumbing.ErrObjectNotFound:
		// Lightweight tag
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}
