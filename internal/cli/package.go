package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/salvage-search/salvage-tools/internal/config"
	"github.com/salvage-search/salvage-tools/internal/manifest"
	"github.com/salvage-search/salvage-tools/internal/packager"
	"github.com/spf13/cobra"
)

func init() {
	f := packageCmd.Flags()
	f.String("src", "", "Extension source directory")
	f.String("dest", "", "Directory the archives are written to")
	f.String("version-manifest", "", "Manifest the release version is read from")
	f.StringSlice("target", nil, "Build only these targets (repeatable, default all)")
	f.Bool("dry-run", false, "Print the archive contents without writing anything")
	f.Bool("keep-partial", false, "Leave a half-written archive in place after a failure")
	f.Bool("strict", false, "Treat version drift between manifests as an error")

	rootCmd.AddCommand(packageCmd)
}

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Zip the extension source into one package per browser",
	Long: `Reads the release version from the version manifest, then writes one zip
archive per target. Each archive holds the source tree with the source
directory stripped from entry names, without any file named manifest.json,
and with the target's own manifest added as manifest.json.

  salvage-tools package
  salvage-tools package --target chrome
  salvage-tools package --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := stringSetting(cmd, "src", config.KeyPackageSrc)
		dest := stringSetting(cmd, "dest", config.KeyPackageDest)
		versionManifest := stringSetting(cmd, "version-manifest", config.KeyPackageVersionManifest)
		names, _ := cmd.Flags().GetStringSlice("target")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		keepPartial, _ := cmd.Flags().GetBool("keep-partial")
		strict, _ := cmd.Flags().GetBool("strict")

		version, err := manifest.ReadVersion(versionManifest)
		if err != nil {
			return fmt.Errorf("reading release version: %w", err)
		}

		targets, err := resolveTargets(names)
		if err != nil {
			return err
		}

		for _, t := range targets {
			if err := checkTargetManifest(t, version, strict); err != nil {
				return err
			}
		}

		p := packager.New(src, dest,
			packager.WithLogger(logger),
			packager.WithKeepPartial(keepPartial),
		)

		out := cmd.OutOrStdout()
		if dryRun {
			for _, t := range targets {
				entries, err := p.Plan(t)
				if err != nil {
					return fmt.Errorf("planning %s package: %w", t.Name, err)
				}
				fmt.Fprintf(out, "%s (%s):\n", t.ArchiveName(version), t.Name)
				for _, e := range entries {
					fmt.Fprintf(out, "  %s\n", e.Name)
				}
			}
			return nil
		}

		artifacts, err := p.PackageAll(targets, version)
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			fmt.Fprintf(out, "%s  %s  %d files, %s\n", a.Target, a.Path, len(a.Entries), humanize.Bytes(uint64(a.Size)))
		}
		return nil
	},
}

func resolveTargets(names []string) ([]packager.Target, error) {
	configured, err := config.Targets()
	if err != nil {
		return nil, err
	}
	if len(configured) == 0 {
		return nil, fmt.Errorf("no package targets configured")
	}

	all := make([]packager.Target, len(configured))
	for i, t := range configured {
		all[i] = packager.Target{Name: t.Name, Manifest: t.Manifest, Archive: t.Archive}
		if err := all[i].Validate(); err != nil {
			return nil, err
		}
	}
	return packager.SelectTargets(all, names)
}

// checkTargetManifest validates a platform manifest before any archive is
// written and reports version drift against the release version.
func checkTargetManifest(t packager.Target, version string, strict bool) error {
	res, err := manifest.ValidateFile(t.Manifest)
	if err != nil {
		return fmt.Errorf("target %s: %w", t.Name, err)
	}
	if !res.Valid {
		issues := make([]string, len(res.Issues))
		for i, issue := range res.Issues {
			issues[i] = issue.String()
		}
		return fmt.Errorf("target %s: invalid manifest %s: %s", t.Name, t.Manifest, strings.Join(issues, "; "))
	}

	drift, err := manifest.CheckDrift(t.Manifest, version)
	if err != nil {
		return fmt.Errorf("target %s: %w", t.Name, err)
	}
	if drift != nil {
		if strict {
			return fmt.Errorf("target %s: %w", t.Name, drift)
		}
		logger.Warn("manifest version drift", "target", t.Name, "detail", drift.Error())
	}
	return nil
}
