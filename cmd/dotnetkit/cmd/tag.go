package cmd

import (
	"context"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/vcs"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag [path]",
	Short: "Create a git tag from the manifest version",
	Long: `Derive an annotated git tag from the version stored in the project manifest and create it.

The tag name is "v" followed by the manifest version. An existing tag with that name is
never overwritten. With --push, the created tag is pushed to the remote; a failed push is
reported but the local tag remains.

Git runs in the current directory. Without a path, the manifest is searched recursively
under the configured source folder.
`,
	Example: `% dotnetkit tag
% dotnetkit tag --push --remote upstream`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		manifestPath, err := optionInputs.resolveManifest(targetPath(args))
		if err != nil {
			wrapFatalln("resolve manifest", err)
			return
		}

		editor, err := optionInputs.editor()
		if err != nil {
			wrapFatalln("initialize manifest editor", err)
			return
		}
		current, found, err := editor.ReadVersion(manifestPath)
		if err != nil {
			wrapFatalln("read version from "+manifestPath, err)
			return
		}
		if !found {
			wrapFatalln("tag "+manifestPath,
				errors.New("the manifest carries no version element").Wrap(status.ErrMissingVersion))
			return
		}

		git, err := optionInputs.git(".")
		if err != nil {
			wrapFatalln("initialize git", err)
			return
		}

		candidate := vcs.TagFor(current)
		tags, err := git.Tags(ctx)
		if err != nil {
			wrapFatalln("list tags", err)
			return
		}
		if highest := vcs.HighestVersionTag(tags); highest != "" && vcs.IsVersionTag(candidate) {
			if vcs.CompareTags(candidate, highest) < 0 {
				warnf("tag %s is behind the highest existing version tag %s", candidate, highest)
			}
		}

		tag, err := git.CreateTag(ctx, current, "Release "+current.String(), tags)
		if err != nil {
			wrapFatalln("create tag", err)
			return
		}
		okf("created tag %s for %s", tag, manifestPath)

		if !dotnetkitFlags.tag.push {
			return
		}
		stepf("pushing %s to %s", tag, dotnetkitFlags.tag.remote)
		if err = git.PushTag(ctx, dotnetkitFlags.tag.remote, tag); err != nil {
			wrapFatalln("push tag", err)
			return
		}
		okf("pushed %s to %s", tag, dotnetkitFlags.tag.remote)
	},
}

func init() {
	addPushFlag(tagCmd)
	addRemoteFlag(tagCmd)
	rootCmd.AddCommand(tagCmd)
}
