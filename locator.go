package nearver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blang/semver"
	"github.com/sirupsen/logrus"
)

// unknownVersion stands in when no tag in a partition resolves to a valid
// version. It is a fixed constant, never the product of parsing a real tag.
var unknownVersion = semver.MustParse("0.0.0")

// tagCandidate is a tag whose name parsed as a semantic version
type tagCandidate struct {
	name    string
	version semver.Version
}

// Locator resolves the nearest version tags relative to HEAD
type Locator struct {
	reader GitReader
	log    logrus.FieldLogger
}

// NewLocator builds a Locator around a GitReader. A nil logger discards
// all diagnostic output.
func NewLocator(reader GitReader, log logrus.FieldLogger) *Locator {
	if log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		log = logger
	}

	return &Locator{reader: reader, log: log}
}

// Locate determines the nearest version tags for the repository in opts
func Locate(opts Options) (*Result, error) {
	reader := opts.Reader
	if reader == nil {
		if opts.Repository == nil {
			return nil, fmt.Errorf("repository is required")
		}
		reader = NewGitSource(opts.Repository)
	}

	return NewLocator(reader, opts.Logger).Locate()
}

// Locate enumerates all tags, partitions the ones that parse as semantic
// versions into "any" and "normal" (no pre-release identifiers), and picks
// the nearest candidate of each partition by commit distance.
//
// A describe lookup that fails or comes back empty never aborts the call;
// the affected candidate falls back to 0.0.0 paired with the total commit
// count from HEAD. The only errors returned are from listing tags and
// counting commits, where nothing sensible remains to compute.
func (l *Locator) Locate() (*Result, error) {
	if branch, err := l.reader.CurrentBranch(); err == nil {
		l.log.WithField("branch", branch).Debug("locating nearest version tags")
	}

	tags, err := l.reader.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	totalCommits, err := l.reader.CommitCount()
	if err != nil {
		return nil, fmt.Errorf("counting commits: %w", err)
	}

	var all, normal []tagCandidate
	for _, name := range tags {
		version, err := semver.Parse(strings.TrimPrefix(name, "v"))
		if err != nil {
			l.log.WithField("tag", name).Debug("skipping tag that is not a semantic version")
			continue
		}

		candidate := tagCandidate{name: name, version: version}
		all = append(all, candidate)
		if len(version.Pre) == 0 {
			normal = append(normal, candidate)
		}
	}

	nearestAny := l.nearest(all, totalCommits)
	nearestNormal := l.nearest(normal, totalCommits)

	l.log.WithFields(logrus.Fields{
		"any":             nearestAny.Version.String(),
		"any_distance":    nearestAny.Distance,
		"normal":          nearestNormal.Version.String(),
		"normal_distance": nearestNormal.Distance,
	}).Info("located nearest version tags")

	return &Result{
		Any:            nearestAny.Version,
		Normal:         nearestNormal.Version,
		AnyDistance:    nearestAny.Distance,
		NormalDistance: nearestNormal.Distance,
	}, nil
}

// nearest picks the single best candidate of one partition. An empty
// partition yields the unknown version at the total commit count.
func (l *Locator) nearest(candidates []tagCandidate, totalCommits int) Candidate {
	if len(candidates) == 0 {
		return Candidate{Version: unknownVersion, Distance: totalCommits}
	}

	best := l.distanceTo(candidates[0], totalCommits)
	for _, candidate := range candidates[1:] {
		if c := l.distanceTo(candidate, totalCommits); c.nearerThan(best) {
			best = c
		}
	}

	return best
}

// distanceTo resolves one tag's commit distance from HEAD. Any failure or
// missing description substitutes the unknown version and the total commit
// count instead of propagating, so a single bad tag cannot abort location
// for the whole repository.
func (l *Locator) distanceTo(candidate tagCandidate, totalCommits int) Candidate {
	fallback := Candidate{Tag: candidate.name, Version: unknownVersion, Distance: totalCommits}

	description, err := l.reader.Describe(candidate.name)
	if err != nil {
		l.log.WithField("tag", candidate.name).WithError(err).
			Warn("describe failed, falling back to commit count")
		return fallback
	}
	if description == "" {
		l.log.WithField("tag", candidate.name).
			Debug("no description for tag, falling back to commit count")
		return fallback
	}

	distance, err := parseDescription(description)
	if err != nil {
		l.log.WithField("tag", candidate.name).WithError(err).
			Warn("unreadable description, falling back to commit count")
		return fallback
	}

	return Candidate{
		Tag:      candidate.name,
		Version:  candidate.version,
		Distance: distance,
		Resolved: true,
	}
}

// nearerThan orders candidates by distance ascending, then version
// precedence descending (1.0.0 beats 1.0.0-rc.2 at equal distance), then
// tag name ascending so equally-ranked candidates resolve the same way on
// every run.
func (c Candidate) nearerThan(other Candidate) bool {
	if c.Distance != other.Distance {
		return c.Distance < other.Distance
	}
	if !c.Version.EQ(other.Version) {
		return c.Version.GT(other.Version)
	}
	return c.Tag < other.Tag
}

// parseDescription extracts the commit count from a git-describe token of
// the shape `<tag>-<count>-g<hash>`. Fewer than three dash-separated
// segments means HEAD is the tagged commit itself.
func parseDescription(description string) (int, error) {
	parts := strings.Split(description, "-")
	if len(parts) < 3 {
		return 0, nil
	}

	count, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("parsing commit count from %q: %w", description, err)
	}

	return count, nil
}
