package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/output"
)

var (
	infoShowMetadata bool

	infoCmd = &cobra.Command{
		Use:   "info REF",
		Short: "Show details of an installed ref",
		Long: `Show what the installation knows about one deployed ref: origin,
commits, sizes, deploy directory, installed subpaths, end-of-life status
and appstream data.

REF is a full ref (app/org.example.App/x86_64/stable) or an application
ID, which selects the current branch of that application.`,
		Example: `  goflatpak info org.gnome.Maps
  goflatpak info runtime/org.gnome.Platform/x86_64/46 --show-metadata`,
		Args: cobra.ExactArgs(1),
		RunE: runInfo,
	}
)

func init() {
	infoCmd.Flags().BoolVarP(&infoShowMetadata, "show-metadata", "m", false, "print the ref's metadata file")

	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ref, err := findInstalled(ctx, s, args[0])
		if err != nil {
			return err
		}
		defer ref.Release()

		if infoShowMetadata {
			data, err := ref.LoadMetadata(ctx)
			if err != nil {
				return fmt.Errorf("failed to load metadata: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		}

		fields, err := refDetails(ref)
		if err != nil {
			return err
		}
		name, err := ref.Name()
		if err != nil {
			return err
		}
		if title := deref(ref.AppdataName()); title != "" {
			name = title + " (" + name + ")"
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderDetails(name, fields))
		return nil
	})
}

// findInstalled looks up an installed ref by full ref or application ID.
func findInstalled(ctx context.Context, s *session, arg string) (*flatpak.InstalledRef, error) {
	if !strings.Contains(arg, "/") {
		return s.inst.GetCurrentInstalledApp(ctx, arg)
	}
	parsed, err := s.client.ParseRef(arg)
	if err != nil {
		return nil, err
	}
	defer parsed.Release()

	kind, err := parsed.Kind()
	if err != nil {
		return nil, err
	}
	name, err := parsed.Name()
	if err != nil {
		return nil, err
	}
	arch, err := parsed.Arch()
	if err != nil {
		return nil, err
	}
	branch, err := parsed.Branch()
	if err != nil {
		return nil, err
	}
	return s.inst.GetInstalledRef(ctx, kind, name, &arch, &branch)
}

func refDetails(ref *flatpak.InstalledRef) ([]output.Field, error) {
	full, err := ref.Format()
	if err != nil {
		return nil, err
	}
	origin, err := ref.Origin()
	if err != nil {
		return nil, err
	}
	size, err := ref.InstalledSize()
	if err != nil {
		return nil, err
	}
	deployDir, err := ref.DeployDir()
	if err != nil {
		return nil, err
	}
	subpaths, err := ref.Subpaths()
	if err != nil {
		return nil, err
	}
	current, err := ref.IsCurrent()
	if err != nil {
		return nil, err
	}

	commit := deref(ref.Commit())
	latest := deref(ref.LatestCommit())
	if latest == commit {
		latest = ""
	}
	fields := []output.Field{
		{Label: "Ref", Value: full},
		{Label: "Origin", Value: origin},
		{Label: "Commit", Value: commit},
		{Label: "Latest commit", Value: latest},
		{Label: "Installed", Value: output.FormatSize(size)},
		{Label: "Location", Value: deployDir},
		{Label: "Subpaths", Value: strings.Join(subpaths, ", ")},
		{Label: "Version", Value: deref(ref.AppdataVersion())},
		{Label: "License", Value: deref(ref.AppdataLicense())},
		{Label: "Summary", Value: deref(ref.AppdataSummary())},
		{Label: "End of life", Value: deref(ref.EOL())},
		{Label: "Rebased to", Value: deref(ref.EOLRebase())},
	}
	if current {
		fields = append(fields, output.Field{Label: "Current", Value: "yes"})
	}
	return fields, nil
}
