package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireNoBackups(t *testing.T, dir string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".bak.", "no backup may survive a successful write")
	}
}

func TestBumpMinor(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump", "--minor"}, "bump the minor component", false)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>1.5.0</Version>")
	assert.NotContains(t, data, fixtureVersion)
	requireNoBackups(t, filepath.Join("src", "Toolbelt"))
}

func TestBumpMajor(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump", "--major"}, "bump the major component and zero the rest", false)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>2.0.0</Version>")
}

func TestBumpPatchExplicitPath(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump", filepath.Join("src", "Toolbelt", "Toolbelt.csproj"), "--patch"},
		"bump the manifest named on the command line", false)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>1.4.3</Version>")
}

func TestBumpSetMovesBackward(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump", "--set", "1.0.0"}, "an explicit version may move backward", false)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>1.0.0</Version>")
}

func TestBumpNeedsExactlyOneSelector(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump"}, "a selector is required", true)
	runCmd(t, []string{"bump", "--major", "--patch"}, "two selectors conflict", true)
	runCmd(t, []string{"bump", "--minor", "--set", "3.0.0"}, "set conflicts with component selectors", true)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>"+fixtureVersion+"</Version>", "rejected runs must not touch the manifest")
}

func TestBumpRejectsBadLiteral(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)

	runCmd(t, []string{"bump", "--set", "1.2"}, "versions are strict major.minor.patch", true)
	runCmd(t, []string{"bump", "--set", "v1.2.3"}, "no prefix allowed in the manifest version", true)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>"+fixtureVersion+"</Version>")
}

func TestBumpMissingVersionNeedsSet(t *testing.T) {
	setupTests(t)
	writeFixture(t, filepath.Join("src", "Bare", "Bare.csproj"), fixtureBareProject)

	runCmd(t, []string{"bump", "--patch"}, "a manifest without version cannot be bumped", true)

	data := readTestFile(t, filepath.Join("src", "Bare", "Bare.csproj"))
	assert.NotContains(t, data, "<Version>")
}

func TestBumpSetInsertsVersion(t *testing.T) {
	setupTests(t)
	writeFixture(t, filepath.Join("src", "Bare", "Bare.csproj"), fixtureBareProject)

	runCmd(t, []string{"bump", "--set", "2.0.0"}, "set inserts the element when absent", false)

	data := readTestFile(t, filepath.Join("src", "Bare", "Bare.csproj"))
	assert.Contains(t, data, "</PackageId>\n    <Version>2.0.0</Version>")
	requireNoBackups(t, filepath.Join("src", "Bare"))
}

func TestBumpStaleBackupAborts(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)
	stale := filepath.Join("src", "Toolbelt", "Toolbelt.csproj.bak.20240101000000")
	writeFixture(t, stale, fixtureProject)

	runCmd(t, []string{"bump", "--patch"}, "a leftover backup aborts the bump", true)

	data := readTestFile(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"))
	assert.Contains(t, data, "<Version>"+fixtureVersion+"</Version>")
	_, err := os.Stat(stale)
	require.NoError(t, err, "the leftover backup is kept for inspection")
}

func TestBumpAmbiguousManifest(t *testing.T) {
	setupTests(t)
	makeTestRepo(t)
	writeFixture(t, filepath.Join("src", "Helper", "Helper.csproj"), fixtureProject)

	runCmd(t, []string{"bump", "--patch"}, "two manifests cannot be picked automatically", true)

	runCmd(t, []string{"bump", filepath.Join("src", "Helper", "Helper.csproj"), "--patch"},
		"the explicit path disambiguates", false)
	data := readTestFile(t, filepath.Join("src", "Helper", "Helper.csproj"))
	assert.Contains(t, data, "<Version>1.4.3</Version>")
}
