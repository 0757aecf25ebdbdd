package cmd

import (
	"context"
	"os"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/scaffold"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// initCmd groups the scaffolding commands
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold new repository and project layouts",
	Long: `Scaffold new .NET repository and project layouts from embedded templates.

Parameters come either from discrete flags or from a single JSON parameters file (--json);
the two are mutually exclusive. Print a starter parameters file with "dotnetkit init params".
Scaffolding never overwrites: the target must not exist yet.
`,
}

// scaffoldParams assembles the scaffold parameters from the discrete
// flags or from the JSON parameters file, then fills the defaults that
// need the environment: the author from git or user variables and the
// repository URL from the origin remote of the enclosing repository.
func (in *cliOptionInputs) scaffoldParams() (scaffold.Params, error) {
	flags := in.flags.scaffold
	discrete := flags.root != "" || flags.solution != "" || flags.project != "" ||
		flags.author != "" || flags.company != "" || flags.description != "" ||
		flags.packageID != "" || flags.repoURL != "" || flags.license != "" ||
		flags.version != ""

	if flags.paramsFile != "" {
		if discrete {
			return scaffold.Params{}, errors.New("--json and the discrete scaffold flags are mutually exclusive").
				Wrap(status.ErrInvalidParams)
		}
		return scaffold.LoadParams(cliFS, flags.paramsFile)
	}

	p := scaffold.Params{
		RootFolder:        flags.root,
		SolutionName:      flags.solution,
		ProjectName:       flags.project,
		Author:            flags.author,
		Company:           flags.company,
		Description:       flags.description,
		PackageID:         flags.packageID,
		RepositoryURL:     flags.repoURL,
		LicenseExpression: flags.license,
		Version:           flags.version,
	}
	if p.Author == "" {
		p.Author = authorFromEnv()
	}
	if p.RepositoryURL == "" {
		p.RepositoryURL = in.remoteURL()
	}
	return p, nil
}

// authorFromEnv resolves the scaffold author from the environment
func authorFromEnv() string {
	for _, key := range []string{"GIT_AUTHOR_NAME", "USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "Unknown Author"
}

// remoteURL looks up the URL of the configured remote in the enclosing
// git repository. Outside a repository this comes back empty and the
// scaffolded metadata simply carries no repository URL.
func (in *cliOptionInputs) remoteURL() string {
	git, err := in.git(".")
	if err != nil {
		return ""
	}
	url, err := git.RemoteURL(context.Background(), in.flags.tag.remote)
	if err != nil {
		if logger, lerr := in.getLogger(); lerr == nil {
			logger.Debug("no remote URL for scaffold metadata", zap.Error(err))
		}
		return ""
	}
	return url
}

func init() {
	rootCmd.AddCommand(initCmd)
}
