package manifest

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/version"
)

const manifestWithVersion = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <PackageId>Acme.Toolbelt</PackageId>
    <Version>1.4.2</Version>
    <Authors>Acme</Authors>
  </PropertyGroup>

</Project>
`

const manifestWithoutVersion = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <PackageId>Acme.Toolbelt</PackageId>
    <Authors>Acme</Authors>
  </PropertyGroup>

</Project>
`

const manifestBareGroup = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>
`

const csproj = "src/Toolbelt/Toolbelt.csproj"

func editorOn(t *testing.T, content string) (*Editor, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, csproj, []byte(content), 0o644))
	fixed := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	return New(fs, nil, WithClock(func() time.Time { return fixed })), fs
}

func TestReadVersion(t *testing.T) {
	e, _ := editorOn(t, manifestWithVersion)

	v, found, err := e.ReadVersion(csproj)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1.4.2", v.String())
}

func TestReadVersionAbsent(t *testing.T) {
	e, _ := editorOn(t, manifestWithoutVersion)

	_, found, err := e.ReadVersion(csproj)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadVersionPadded(t *testing.T) {
	e, _ := editorOn(t, `<PropertyGroup><Version> 2.0.1 </Version></PropertyGroup>`)

	v, found, err := e.ReadVersion(csproj)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2.0.1", v.String())
}

func TestReadVersionMalformed(t *testing.T) {
	e, _ := editorOn(t, `<PropertyGroup><Version>1.2</Version></PropertyGroup>`)

	_, found, err := e.ReadVersion(csproj)
	require.Error(t, err)
	assert.True(t, found)
	assert.True(t, errors.Is(err, status.ErrInvalidVersion))
}

func TestReadVersionMissingFile(t *testing.T) {
	e := New(afero.NewMemMapFs(), nil)

	_, _, err := e.ReadVersion("nowhere.csproj")
	require.Error(t, err)
}

func TestWriteVersionReplaces(t *testing.T) {
	e, fs := editorOn(t, manifestWithVersion)

	require.NoError(t, e.WriteVersion(csproj, version.MustParse("1.5.0")))

	data, err := afero.ReadFile(fs, csproj)
	require.NoError(t, err)
	// only the version value changed
	assert.Equal(t,
		string(bytes.ReplaceAll([]byte(manifestWithVersion), []byte("1.4.2"), []byte("1.5.0"))),
		string(data))

	backups, err := e.StaleBackups(csproj)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestWriteVersionInsertsAfterPackageID(t *testing.T) {
	e, fs := editorOn(t, manifestWithoutVersion)

	require.NoError(t, e.WriteVersion(csproj, version.MustParse("2.0.0")))

	data, err := afero.ReadFile(fs, csproj)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</PackageId>\n    <Version>2.0.0</Version>\n    <Authors>")

	v, found, err := e.ReadVersion(csproj)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2.0.0", v.String())
}

func TestWriteVersionInsertsAfterPropertyGroup(t *testing.T) {
	e, fs := editorOn(t, manifestBareGroup)

	require.NoError(t, e.WriteVersion(csproj, version.MustParse("0.1.0")))

	data, err := afero.ReadFile(fs, csproj)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<PropertyGroup>\n    <Version>0.1.0</Version>\n    <TargetFramework>")
}

func TestWriteVersionAppendsWithoutAnchors(t *testing.T) {
	e, _ := editorOn(t, "plain text, no xml anchors\n")

	require.NoError(t, e.WriteVersion(csproj, version.MustParse("3.1.4")))

	v, found, err := e.ReadVersion(csproj)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3.1.4", v.String())
}

func TestWriteVersionRefusesStaleBackup(t *testing.T) {
	e, fs := editorOn(t, manifestWithVersion)
	stale := csproj + ".bak.20230101000000"
	require.NoError(t, afero.WriteFile(fs, stale, []byte("old"), 0o644))

	err := e.WriteVersion(csproj, version.MustParse("1.5.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrStaleBackup))
	assert.Contains(t, err.Error(), stale)

	// the manifest was not touched
	data, rerr := afero.ReadFile(fs, csproj)
	require.NoError(t, rerr)
	assert.Equal(t, manifestWithVersion, string(data))
}

// corruptFs garbles the nth write to one path, simulating a manifest
// that does not read back what was written.
type corruptFs struct {
	afero.Fs
	target string
	writes int
}

func (c *corruptFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := c.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if name == c.target && flag&os.O_WRONLY != 0 {
		c.writes++
		if c.writes == 1 {
			return corruptFile{f}, nil
		}
	}
	return f, nil
}

type corruptFile struct {
	afero.File
}

func (f corruptFile) Write(p []byte) (int, error) {
	garbled := bytes.ReplaceAll(p, []byte("<Version>"), []byte("<Versoin>"))
	return f.File.Write(garbled)
}

func TestWriteVersionVerificationFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, csproj, []byte(manifestWithVersion), 0o644))
	fs := &corruptFs{Fs: base, target: csproj}
	e := New(fs, nil, WithClock(func() time.Time {
		return time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	}))

	err := e.WriteVersion(csproj, version.MustParse("1.5.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrVerificationFailed))

	// original bytes restored
	data, rerr := afero.ReadFile(base, csproj)
	require.NoError(t, rerr)
	assert.Equal(t, manifestWithVersion, string(data))

	// backup retained for inspection
	backups, berr := e.StaleBackups(csproj)
	require.NoError(t, berr)
	require.Len(t, backups, 1)
	assert.Equal(t, csproj+".bak.20240517103000", backups[0])
	backupData, berr := afero.ReadFile(base, backups[0])
	require.NoError(t, berr)
	assert.Equal(t, manifestWithVersion, string(backupData))
}

func TestWriteVersionSameValue(t *testing.T) {
	e, fs := editorOn(t, manifestWithVersion)

	require.NoError(t, e.WriteVersion(csproj, version.MustParse("1.4.2")))

	data, err := afero.ReadFile(fs, csproj)
	require.NoError(t, err)
	assert.Equal(t, manifestWithVersion, string(data))
}
