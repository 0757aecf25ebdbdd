package locator

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
)

func testTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("<Project>"), 0o644))
	}
	return fs
}

func TestResolveSingleMatch(t *testing.T) {
	fs := testTree(t,
		"repo/src/Tools.sln",
		"repo/src/Tools/Tools.csproj",
	)
	l := New(fs, nil)

	sln, err := l.Resolve("repo/src", Solution)
	require.NoError(t, err)
	assert.Equal(t, "repo/src/Tools.sln", sln)
}

func TestResolveNothingFound(t *testing.T) {
	fs := testTree(t, "repo/src/readme.txt")
	l := New(fs, nil)

	_, err := l.Resolve("repo/src", Solution)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
	assert.Contains(t, err.Error(), "repo/src")
}

func TestResolveMissingTarget(t *testing.T) {
	l := New(afero.NewMemMapFs(), nil)

	_, err := l.Resolve("no/such/dir", Project)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestResolveAmbiguous(t *testing.T) {
	fs := testTree(t,
		"repo/src/Alpha.sln",
		"repo/src/Beta.sln",
	)
	l := New(fs, nil)

	_, err := l.Resolve("repo/src", Solution)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrAmbiguous))
	// the report lists every candidate
	assert.Contains(t, err.Error(), "Alpha.sln")
	assert.Contains(t, err.Error(), "Beta.sln")
}

func TestResolveAmbiguityByName(t *testing.T) {
	fs := testTree(t,
		"repo/src/Alpha.sln",
		"repo/src/Beta.sln",
	)
	l := New(fs, nil)

	sln, err := l.Resolve("repo/src", Solution, WithName("Beta.sln"))
	require.NoError(t, err)
	assert.Equal(t, "repo/src/Beta.sln", sln)

	_, err = l.Resolve("repo/src", Solution, WithName("Gamma.sln"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestResolveFileTarget(t *testing.T) {
	fs := testTree(t, "repo/src/Tools/Tools.csproj")
	l := New(fs, nil)

	proj, err := l.Resolve("repo/src/Tools/Tools.csproj", Project)
	require.NoError(t, err)
	assert.Equal(t, "repo/src/Tools/Tools.csproj", proj)

	// a file of the wrong kind is rejected
	_, err = l.Resolve("repo/src/Tools/Tools.csproj", Solution)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestResolveRecursive(t *testing.T) {
	fs := testTree(t, "repo/src/Tools/Tools.csproj")
	l := New(fs, nil)

	// default search stays at the top level
	_, err := l.Resolve("repo/src", Project)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))

	proj, err := l.Resolve("repo/src", Project, Recursive())
	require.NoError(t, err)
	assert.Equal(t, "repo/src/Tools/Tools.csproj", proj)
}

func TestResolveRecursiveAmbiguousByName(t *testing.T) {
	fs := testTree(t,
		"repo/src/One/One.csproj",
		"repo/src/Two/Two.csproj",
	)
	l := New(fs, nil)

	_, err := l.Resolve("repo/src", Project, Recursive())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrAmbiguous))

	proj, err := l.Resolve("repo/src", Project, Recursive(), WithName("Two.csproj"))
	require.NoError(t, err)
	assert.Equal(t, "repo/src/Two/Two.csproj", proj)
}

func TestTestProjects(t *testing.T) {
	fs := testTree(t,
		"repo/tests/Alpha.Tests/Alpha.Tests.csproj",
		"repo/tests/Beta.Tests/Beta.Tests.csproj",
		"repo/tests/Setup/Fixture.csproj",
		"repo/tests/Integration/setup/Seed.csproj",
		"repo/tests/readme.md",
	)
	l := New(fs, nil)

	projects, err := l.TestProjects("repo/tests")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"repo/tests/Alpha.Tests/Alpha.Tests.csproj",
		"repo/tests/Beta.Tests/Beta.Tests.csproj",
	}, projects)
}

func TestTestProjectsEmptyTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("repo/tests", 0o755))
	l := New(fs, nil)

	projects, err := l.TestProjects("repo/tests")
	require.NoError(t, err)
	assert.Empty(t, projects)
}
