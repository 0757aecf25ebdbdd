// Package locator resolves the solution or project file a command
// operates on.
//
// Resolution is pure lookup: zero candidates and more than one
// candidate are both failures (status.ErrNotFound, status.ErrAmbiguous)
// so that no command ever guesses which file the user meant.
package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
)

// Kind of file being resolved.
type Kind int

const (
	// Solution resolves "*.sln" files
	Solution Kind = iota
	// Project resolves "*.csproj" files
	Project
)

func (k Kind) String() string {
	if k == Solution {
		return "solution"
	}
	return "project"
}

func (k Kind) ext() string {
	if k == Solution {
		return ".sln"
	}
	return ".csproj"
}

func (k Kind) pattern(recursive bool) string {
	if recursive {
		return "**/*" + k.ext()
	}
	return "*" + k.ext()
}

// Locator finds manifests and solutions on a filesystem.
type Locator struct {
	fs  afero.Fs
	log *zap.Logger
}

// New builds a locator. A nil fs falls back to the OS filesystem and a
// nil logger disables logging.
func New(fs afero.Fs, log *zap.Logger) *Locator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{fs: fs, log: log}
}

// Option tunes a single resolution.
type Option func(*settings)

type settings struct {
	recursive bool
	name      string
}

// Recursive searches the whole tree under the target directory instead
// of the directory alone.
func Recursive() Option {
	return func(s *settings) {
		s.recursive = true
	}
}

// WithName disambiguates multiple candidates by exact file name
// (case-sensitive, e.g. "Tools.sln").
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// Resolve narrows target down to exactly one file of the wanted kind.
//
// A target that is already a file is validated and returned as is. A
// directory is searched, non-recursively by default. Zero matches
// yield status.ErrNotFound, several yield status.ErrAmbiguous unless
// WithName picks a single winner.
func (l *Locator) Resolve(target string, kind Kind, opts ...Option) (string, error) {
	var s settings
	for _, apply := range opts {
		apply(&s)
	}

	info, err := l.fs.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(fmt.Sprintf("target path %q does not exist", target)).Wrap(status.ErrNotFound)
		}
		return "", errors.New(fmt.Sprintf("cannot stat target path %q", target)).Wrap(err)
	}

	if !info.IsDir() {
		if !strings.HasSuffix(target, kind.ext()) {
			return "", errors.New(fmt.Sprintf("%q is not a %s (%s) file", target, kind, kind.ext())).
				Wrap(status.ErrNotFound)
		}
		return filepath.Clean(target), nil
	}

	candidates, err := l.glob(target, kind.pattern(s.recursive))
	if err != nil {
		return "", err
	}
	l.log.Debug("resolved candidates",
		zap.String("target", target),
		zap.Stringer("kind", kind),
		zap.Bool("recursive", s.recursive),
		zap.Strings("candidates", candidates),
	)

	if s.name != "" {
		var named []string
		for _, c := range candidates {
			if filepath.Base(c) == s.name {
				named = append(named, c)
			}
		}
		candidates = named
		if len(candidates) == 0 {
			return "", errors.New(fmt.Sprintf("no %s named %q under %q", kind, s.name, target)).
				Wrap(status.ErrNotFound)
		}
	}

	switch len(candidates) {
	case 0:
		return "", errors.New(fmt.Sprintf("no %s (%s) found under %q", kind, kind.ext(), target)).
			Wrap(status.ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		return "", errors.New(fmt.Sprintf("several %ss found under %q: %s",
			kind, target, strings.Join(candidates, ", "))).Wrap(status.ErrAmbiguous)
	}
}

// TestProjects lists every project file under root that belongs to a
// test tree, skipping anything nested below a "Setup" directory in any
// letter case. Zero results is not an error here, the caller decides.
func (l *Locator) TestProjects(root string) ([]string, error) {
	matches, err := l.glob(root, Project.pattern(true))
	if err != nil {
		return nil, err
	}
	projects := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, relErr := filepath.Rel(root, m)
		if relErr != nil {
			rel = m
		}
		if underSetupDir(rel) {
			l.log.Debug("skipping setup project", zap.String("project", m))
			continue
		}
		projects = append(projects, m)
	}
	return projects, nil
}

func underSetupDir(rel string) bool {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, seg := range segments[:max(len(segments)-1, 0)] {
		if strings.EqualFold(seg, "Setup") {
			return true
		}
	}
	return false
}

// glob walks dir and keeps the paths whose dir-relative form matches
// pattern. Results come back sorted for deterministic ambiguity
// reports.
func (l *Locator) glob(dir, pattern string) ([]string, error) {
	var matches []string
	err := afero.Walk(l.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		ok, matchErr := doublestar.Match(pattern, filepath.ToSlash(rel))
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(fmt.Sprintf("searching %q for %q", dir, pattern)).Wrap(err)
	}
	sort.Strings(matches)
	return matches, nil
}
