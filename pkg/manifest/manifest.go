// Package manifest reads and rewrites the version element of a
// project manifest (.csproj) without touching any other byte.
//
// Writes run as a backup transaction: copy the manifest aside, patch
// it, re-read and re-parse, then drop the backup. A failed
// verification restores the original bytes and leaves the backup in
// place for inspection, so an interrupted or misbehaving run never
// costs the previous version.
package manifest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/version"
)

// BackupTimeFormat stamps backup file names to second resolution.
const BackupTimeFormat = "20060102150405"

var (
	versionElem       = regexp.MustCompile(`(?s)(<Version>)([^<]*)(</Version>)`)
	packageIDClose    = regexp.MustCompile(`(?s)</PackageId>`)
	propertyGroupOpen = regexp.MustCompile(`<PropertyGroup>`)
)

// Editor rewrites manifest version elements on a filesystem.
type Editor struct {
	fs  afero.Fs
	log *zap.Logger
	now func() time.Time
}

// Option tunes an Editor.
type Option func(*Editor)

// WithClock overrides the time source used for backup names.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// New builds an Editor. A nil fs falls back to the OS filesystem and a
// nil logger disables logging.
func New(fs afero.Fs, log *zap.Logger, opts ...Option) *Editor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Editor{fs: fs, log: log, now: time.Now}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// ReadVersion extracts the manifest's version. An absent element is
// reported through found, not as an error; a present but unparseable
// value is status.ErrInvalidVersion.
func (e *Editor) ReadVersion(path string) (v version.Version, found bool, err error) {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return version.Version{}, false, errors.New(fmt.Sprintf("reading manifest %q", path)).Wrap(err)
	}
	m := versionElem.FindSubmatch(data)
	if m == nil {
		return version.Version{}, false, nil
	}
	v, err = version.Parse(strings.TrimSpace(string(m[2])))
	if err != nil {
		return version.Version{}, true, errors.New(fmt.Sprintf("manifest %q carries an unusable version", path)).Wrap(err)
	}
	return v, true, nil
}

// StaleBackups lists leftover backup files sitting next to the
// manifest, sorted by name (and so by timestamp).
func (e *Editor) StaleBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + ".bak."
	infos, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("scanning %q for backups", dir)).Wrap(err)
	}
	var backups []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasPrefix(info.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, info.Name()))
		}
	}
	sort.Strings(backups)
	return backups, nil
}

// WriteVersion sets the manifest's version element to v.
//
// An existing element is patched in place, preserving every
// surrounding byte. A missing element is inserted after </PackageId>
// when the manifest has one, otherwise after the first <PropertyGroup>,
// otherwise appended. The write is wrapped in the backup transaction
// described in the package comment.
func (e *Editor) WriteVersion(path string, v version.Version) error {
	stale, err := e.StaleBackups(path)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		return errors.New(fmt.Sprintf(
			"manifest %q has leftover backups from an earlier run (%s), inspect and remove them first",
			path, strings.Join(stale, ", "))).Wrap(status.ErrStaleBackup)
	}

	info, err := e.fs.Stat(path)
	if err != nil {
		return errors.New(fmt.Sprintf("manifest %q is not accessible", path)).Wrap(err)
	}
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return errors.New(fmt.Sprintf("reading manifest %q", path)).Wrap(err)
	}

	backup := fmt.Sprintf("%s.bak.%s", path, e.now().Format(BackupTimeFormat))
	if err := afero.WriteFile(e.fs, backup, data, info.Mode()); err != nil {
		return errors.New(fmt.Sprintf("creating backup %q", backup)).Wrap(err)
	}
	e.log.Debug("backup created", zap.String("manifest", path), zap.String("backup", backup))

	if err := afero.WriteFile(e.fs, path, patch(data, v), info.Mode()); err != nil {
		return errors.New(fmt.Sprintf("writing manifest %q, original preserved in %q", path, backup)).Wrap(err)
	}

	got, found, verr := e.ReadVersion(path)
	if verr != nil || !found || got != v {
		if rerr := afero.WriteFile(e.fs, path, data, info.Mode()); rerr != nil {
			return errors.New(fmt.Sprintf(
				"manifest %q failed verification and could not be restored, recover it from %q",
				path, backup)).Wrap(status.ErrVerificationFailed)
		}
		return errors.New(fmt.Sprintf(
			"manifest %q did not read back version %s, original restored, backup kept at %q",
			path, v, backup)).Wrap(status.ErrVerificationFailed)
	}

	if err := e.fs.Remove(backup); err != nil {
		return errors.New(fmt.Sprintf("version written but backup %q could not be removed", backup)).Wrap(err)
	}
	e.log.Debug("version written", zap.String("manifest", path), zap.Stringer("version", v))
	return nil
}

// patch replaces the first version element's value, or inserts a new
// element at the manifest's conventional spot.
func patch(data []byte, v version.Version) []byte {
	value := []byte(v.String())

	if idx := versionElem.FindSubmatchIndex(data); idx != nil {
		out := make([]byte, 0, len(data)+len(value))
		out = append(out, data[:idx[4]]...)
		out = append(out, value...)
		out = append(out, data[idx[5]:]...)
		return out
	}

	element := []byte("\n    <Version>" + v.String() + "</Version>")
	if idx := packageIDClose.FindIndex(data); idx != nil {
		return splice(data, idx[1], element)
	}
	if idx := propertyGroupOpen.FindIndex(data); idx != nil {
		return splice(data, idx[1], element)
	}
	return append(data, append(element, '\n')...)
}

func splice(data []byte, at int, insert []byte) []byte {
	out := make([]byte, 0, len(data)+len(insert))
	out = append(out, data[:at]...)
	out = append(out, insert...)
	out = append(out, data[at:]...)
	return out
}
