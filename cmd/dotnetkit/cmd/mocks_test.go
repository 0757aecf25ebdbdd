package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotnetkit/dotnetkit/pkg/runner"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fixtureVersion = "1.4.2"

const fixtureSolution = `Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
`

const fixtureProject = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <PackageId>Toolbelt</PackageId>
    <Version>` + fixtureVersion + `</Version>
  </PropertyGroup>

</Project>
`

const fixtureBareProject = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <PackageId>Bare</PackageId>
  </PropertyGroup>

</Project>
`

const fixtureTestProject = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <IsPackable>false</IsPackable>
  </PropertyGroup>

</Project>
`

type ExitMocks struct {
	mock.Mock
	exitStatuses []int
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	fmt.Printf(format+"\n", v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	fmt.Println(v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Exit(code int) {
	m.exitStatuses = append(m.exitStatuses, code)
}

func (m *ExitMocks) fatalCalls() int {
	return len(m.exitStatuses)
}

func NewExitMocks() *ExitMocks {
	exitMocks := ExitMocks{
		exitStatuses: make([]int, 0),
	}
	return &exitMocks
}

// https://github.com/stretchr/testify/issues/610
func MakeFatalfMock(m *ExitMocks) func(string, ...interface{}) {
	return func(format string, v ...interface{}) {
		m.Fatalf(format, v...)
	}
}

func MakeFatallnMock(m *ExitMocks) func(...interface{}) {
	return func(v ...interface{}) {
		m.Fatalln(v...)
	}
}

func MakeExitMock(m *ExitMocks) func(int) {
	return func(code int) {
		m.Exit(code)
	}
}

var exitMocks *ExitMocks

// setupTests turns fatal exits into counters, swaps the external tool
// runner for a scripted one and moves into a fresh temporary directory
// so neither the developer's config files nor their repositories leak
// into a test run.
func setupTests(t *testing.T) *runner.Script {
	exitMocks = NewExitMocks()
	savedFatalf := logFatalf
	savedFatalln := logFatalln
	savedExit := osExit
	logFatalf = MakeFatalfMock(exitMocks)
	logFatalln = MakeFatallnMock(exitMocks)
	osExit = MakeExitMock(exitMocks)

	script := runner.NewScript()
	savedRun := cliRun
	cliRun = script

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DOTNETKIT_CONFIG", "")
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prevWD)) })

	t.Cleanup(func() {
		logFatalf = savedFatalf
		logFatalln = savedFatalln
		osExit = savedExit
		cliRun = savedRun
		dotnetkitFlags = flagsT{}
		config = nil
		viper.Reset()
	})
	return script
}

// runCmd runs one CLI invocation end to end, with the flags struct
// reset as in a fresh process. Fatal outcomes are observed through the
// exit mocks since the mocked logFatalf does not interrupt the run.
func runCmd(t *testing.T, cmd []string, intentMsg string, expectError bool) {
	fatalCallsBefore := exitMocks.fatalCalls()
	dotnetkitFlags = flagsT{}
	rootCmd.SetArgs(cmd)
	require.NoError(t, rootCmd.Execute(), "error executing '"+strings.Join(cmd, " ")+"' : "+intentMsg)
	if expectError {
		require.Equal(t, fatalCallsBefore+1, exitMocks.fatalCalls(),
			"ran '"+strings.Join(cmd, " ")+"' expecting error and didn't see one in mocks : "+intentMsg)
	} else {
		require.Equal(t, fatalCallsBefore, exitMocks.fatalCalls(),
			"unexpected error in mocks on '"+strings.Join(cmd, " ")+"' : "+intentMsg)
	}
}

// makeTestRepo lays out a conventional repository in the current
// directory: a solution and a versioned project under src, an xunit
// project under tests and an empty docs folder.
func makeTestRepo(t *testing.T) {
	writeFixture(t, filepath.Join("src", "Toolbelt.sln"), fixtureSolution)
	writeFixture(t, filepath.Join("src", "Toolbelt", "Toolbelt.csproj"), fixtureProject)
	writeFixture(t, filepath.Join("tests", "Toolbelt.Tests", "Toolbelt.Tests.csproj"), fixtureTestProject)
	require.NoError(t, os.MkdirAll("docs", 0o755))
}

func writeFixture(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readTestFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoErrorf(t, err, "expected %s to exist", path)
	return string(data)
}

// captureStdOut collects everything a command prints through logStdOut.
func captureStdOut(t *testing.T) *bytes.Buffer {
	buf := new(bytes.Buffer)
	saved := logStdOut
	logStdOut = func(format string, a ...interface{}) (int, error) {
		return fmt.Fprintf(buf, format, a...)
	}
	t.Cleanup(func() { logStdOut = saved })
	return buf
}
