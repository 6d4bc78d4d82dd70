package nearver

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testRepoCommit writes one file and commits it, returning the commit hash
func testRepoCommit(repo *git.Repository, filename, content string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = writeFile(workTree.Filesystem, filename, content)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = workTree.Add(filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit("Commit "+filename, &git.CommitOptions{Author: testSignature})
}

// testRepoSingleCommit adds a single commit to the repository and returns the commit hash
func testRepoSingleCommit(repo *git.Repository) (plumbing.Hash, error) {
	return testRepoCommit(repo, "test.txt", "Hello world")
}

// testRepoTaggedHistory builds a linear history with one commit per entry.
// Each entry lists the tags to create at that commit; an empty entry is an
// untagged commit. HEAD ends up at the last entry, so a tag at index i of n
// entries sits at distance n-1-i from HEAD.
func testRepoTaggedHistory(repo *git.Repository, history [][]string) error {
	for i, tags := range history {
		filename := "file_" + string(rune('a'+i)) + ".txt"
		hash, err := testRepoCommit(repo, filename, "Content "+filename)
		if err != nil {
			return err
		}

		for _, tag := range tags {
			_, err = repo.CreateTag(tag, hash, nil)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
