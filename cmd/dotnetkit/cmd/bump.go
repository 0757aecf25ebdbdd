package cmd

import (
	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
	"github.com/dotnetkit/dotnetkit/pkg/version"
	"github.com/spf13/cobra"
)

var bumpCmd = &cobra.Command{
	Use:   "bump [path]",
	Short: "Bump the version in the project manifest",
	Long: `Bump the semantic version stored in the <Version> element of the project manifest.

Exactly one of --major, --minor, --patch or --set must be given. Bumping a component
zeroes all lower components. --set accepts any major.minor.patch literal and also inserts
the element into a manifest that has none; moving backward is allowed.

Without a path, the manifest is searched recursively under the configured source folder.
The write is transactional: the manifest is backed up first, the result is verified by
re-reading, and on verification failure the original is restored and the backup kept.
A leftover backup from an earlier failed run aborts the bump until it is inspected and removed.
`,
	Example: `% dotnetkit bump --minor
% dotnetkit bump src/Toolbelt/Toolbelt.csproj --set 2.0.0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		explicit, field, err := bumpSelection()
		if err != nil {
			wrapFatalln("invalid arguments", err)
			return
		}

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

		var next version.Version
		switch {
		case explicit != "":
			if next, err = version.Parse(explicit); err != nil {
				wrapFatalln("invalid arguments", err)
				return
			}
		case !found:
			wrapFatalln("bump "+manifestPath,
				errors.New("the manifest carries no version element, use --set to insert one").
					Wrap(status.ErrMissingVersion))
			return
		default:
			next = current.Bump(field)
		}

		if err = editor.WriteVersion(manifestPath, next); err != nil {
			wrapFatalln("write version to "+manifestPath, err)
			return
		}
		if found {
			okf("bumped %s from %s to %s", manifestPath, current, next)
		} else {
			okf("set version of %s to %s", manifestPath, next)
		}
	},
}

// bumpSelection reads the version selector flags: either the explicit
// literal from --set, or the component to bump. Exactly one selector
// must be present.
func bumpSelection() (string, version.Field, error) {
	flags := dotnetkitFlags.bump
	selected := 0
	for _, on := range []bool{flags.major, flags.minor, flags.patch, flags.set != ""} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		return "", 0, errors.New("exactly one of --major, --minor, --patch or --set must be given").
			Wrap(status.ErrInvalidParams)
	}
	switch {
	case flags.set != "":
		return flags.set, 0, nil
	case flags.major:
		return "", version.Major, nil
	case flags.minor:
		return "", version.Minor, nil
	default:
		return "", version.Patch, nil
	}
}

func init() {
	addBumpMajorFlag(bumpCmd)
	addBumpMinorFlag(bumpCmd)
	addBumpPatchFlag(bumpCmd)
	addBumpSetFlag(bumpCmd)
	rootCmd.AddCommand(bumpCmd)
}
