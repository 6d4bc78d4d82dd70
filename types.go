// Package nearver locates the nearest semantically-versioned tags in a Git
// repository relative to HEAD, measured in commit distance. It reports two
// results per repository: the nearest tag of any kind (pre-releases
// included) and the nearest normal (non-pre-release) tag. Release tooling
// uses the pair to decide how to bump the next version.
package nearver

import (
	"github.com/blang/semver"
	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// GitReader is the read-only view of a repository the locator needs.
// GitSource implements it on top of go-git; tests substitute fakes.
type GitReader interface {
	// CurrentBranch returns the short name of the checked-out branch,
	// or the short commit hash when HEAD is detached. Diagnostic only.
	CurrentBranch() (string, error)

	// Tags returns the short names of all tag references, one snapshot
	// per call.
	Tags() ([]string, error)

	// Describe returns a git-describe style token for HEAD relative to
	// the given tag (`<tag>-<count>-g<hash>`, or just the tag name when
	// HEAD is the tagged commit). An empty string means no description
	// is available, e.g. the tag is not an ancestor of HEAD.
	Describe(tag string) (string, error)

	// CommitCount returns the total number of commits reachable from
	// HEAD.
	CommitCount() (int, error)
}

// Options configures a Locate call
type Options struct {
	// Repository is the Git repository to analyze
	Repository *git.Repository

	// Reader overrides Repository with a custom GitReader
	Reader GitReader

	// Logger receives diagnostic output; discarded when nil
	Logger logrus.FieldLogger
}

// Candidate is one tag's resolved (version, distance) pair.
type Candidate struct {
	// Tag is the raw tag name the candidate was derived from. Empty for
	// the no-tags fallback.
	Tag string

	// Version is the tag's parsed version, or 0.0.0 when unresolved.
	Version semver.Version

	// Distance is the number of commits between the tag and HEAD, or the
	// total commit count from HEAD when unresolved.
	Distance int

	// Resolved is false when the describe lookup yielded nothing and the
	// commit-count fallback was applied.
	Resolved bool
}

// Result holds the nearest tags relative to HEAD
type Result struct {
	// Any is the nearest version of any kind, including pre-releases
	Any semver.Version `json:"any"`

	// Normal is the nearest version without pre-release identifiers
	Normal semver.Version `json:"normal"`

	// AnyDistance is the commit distance from HEAD to Any
	AnyDistance int `json:"any_distance"`

	// NormalDistance is the commit distance from HEAD to Normal
	NormalDistance int `json:"normal_distance"`
}
