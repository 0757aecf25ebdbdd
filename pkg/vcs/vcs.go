// Package vcs derives release tags from manifest versions and applies
// them through the git collaborator.
//
// Tag names are never stored anywhere: they are recomputed from the
// manifest version on every run and checked against the repository's
// existing tag set before creation.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/runner"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/version"
)

// DefaultRemote is where tags go unless configured otherwise.
const DefaultRemote = "origin"

// TagFor derives the tag name for a version: "v" plus the canonical form.
func TagFor(v version.Version) string {
	return "v" + v.String()
}

// IsVersionTag reports whether name looks like a tag produced by TagFor.
func IsVersionTag(name string) bool {
	return semver.IsValid(name)
}

// CompareTags orders two version-shaped tags like semver does.
func CompareTags(a, b string) int {
	return semver.Compare(a, b)
}

// HighestVersionTag picks the highest version-shaped tag, or "" when
// there is none. Tags that are not version-shaped are ignored.
func HighestVersionTag(tags []string) string {
	best := ""
	for _, t := range tags {
		if !IsVersionTag(t) {
			continue
		}
		if best == "" || semver.Compare(t, best) > 0 {
			best = t
		}
	}
	return best
}

// Git talks to the git binary through a Runner.
type Git struct {
	run runner.Runner
	dir string
	log *zap.Logger
}

// Option tunes a Git collaborator.
type Option func(*Git)

// WithDir runs git in the given directory instead of the current one.
func WithDir(dir string) Option {
	return func(g *Git) {
		g.dir = dir
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Git) {
		g.log = log
	}
}

// New builds a Git collaborator on top of run.
func New(run runner.Runner, opts ...Option) *Git {
	g := &Git{run: run, log: zap.NewNop()}
	for _, apply := range opts {
		apply(g)
	}
	return g
}

func (g *Git) git(args ...string) runner.Command {
	return runner.Command{Name: "git", Args: args, Dir: g.dir}
}

// Tags lists every tag known to the repository.
func (g *Git) Tags(ctx context.Context) ([]string, error) {
	out, err := g.run.Output(ctx, g.git("tag", "--list"))
	if err != nil {
		return nil, errors.New("listing existing tags").Wrap(err)
	}
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

// CreateTag derives the tag for v and creates it as an annotated tag
// at the current checkout position. existing is the repository's tag
// set as returned by Tags, fetched once by the caller; a tag of the
// same name already present is status.ErrTagExists, nothing is
// overwritten or forced.
func (g *Git) CreateTag(ctx context.Context, v version.Version, message string, existing []string) (string, error) {
	tag := TagFor(v)
	for _, e := range existing {
		if e == tag {
			return "", errors.New(fmt.Sprintf("tag %q already exists", tag)).Wrap(status.ErrTagExists)
		}
	}
	g.log.Debug("creating tag", zap.String("tag", tag), zap.String("message", message))
	if err := g.run.Run(ctx, g.git("tag", "-a", tag, "-m", message)); err != nil {
		return "", errors.New(fmt.Sprintf("creating tag %q", tag)).Wrap(err)
	}
	return tag, nil
}

// PushTag sends an existing tag to the named remote. The local tag
// stays in place when the push fails.
func (g *Git) PushTag(ctx context.Context, remote, tag string) error {
	g.log.Debug("pushing tag", zap.String("tag", tag), zap.String("remote", remote))
	if err := g.run.Run(ctx, g.git("push", remote, tag)); err != nil {
		return errors.New(fmt.Sprintf("pushing tag %q to remote %q (the local tag remains)", tag, remote)).Wrap(err)
	}
	return nil
}

// RemoteURL resolves the URL of the named remote.
func (g *Git) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := g.run.Output(ctx, g.git("remote", "get-url", remote))
	if err != nil {
		return "", errors.New(fmt.Sprintf("resolving URL of remote %q", remote)).Wrap(err)
	}
	return strings.TrimSpace(out), nil
}
