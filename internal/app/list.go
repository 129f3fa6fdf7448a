package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/output"
)

var (
	listApps     bool
	listRuntimes bool
	listUpdates  bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List installed applications and runtimes",
		Long: `List the refs deployed in the installation with their origin remote,
commit, installed size and status.

Use --app or --runtime to show one kind only, and --updates to show only
refs for which the origin remote has a newer commit.`,
		Example: `  # Everything in the system installation
  goflatpak list

  # Applications in the user installation
  goflatpak --user list --app

  # Refs with pending updates
  goflatpak list --updates`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().BoolVar(&listApps, "app", false, "list applications only")
	listCmd.Flags().BoolVar(&listRuntimes, "runtime", false, "list runtimes only")
	listCmd.Flags().BoolVar(&listUpdates, "updates", false, "list refs with pending updates only")
	listCmd.MarkFlagsMutuallyExclusive("app", "runtime")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		refs, err := listRefs(ctx, s.inst)
		if err != nil {
			return fmt.Errorf("failed to list installed refs: %w", err)
		}
		defer func() {
			for _, r := range refs {
				r.Release()
			}
		}()

		rows := make([]output.InstalledRow, 0, len(refs))
		for _, r := range refs {
			kind, err := r.Kind()
			if err != nil {
				return err
			}
			if (listApps && kind != flatpak.KindApp) || (listRuntimes && kind != flatpak.KindRuntime) {
				continue
			}
			row, err := installedRow(r)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}

		fmt.Fprint(cmd.OutOrStdout(), output.RenderInstalledTable(rows))
		return nil
	})
}

func listRefs(ctx context.Context, inst *flatpak.Installation) ([]*flatpak.InstalledRef, error) {
	switch {
	case listUpdates:
		return inst.ListInstalledRefsForUpdate(ctx)
	case listApps:
		return inst.ListInstalledRefsByKind(ctx, flatpak.KindApp)
	case listRuntimes:
		return inst.ListInstalledRefsByKind(ctx, flatpak.KindRuntime)
	}
	return inst.ListInstalledRefs(ctx)
}

func installedRow(r *flatpak.InstalledRef) (output.InstalledRow, error) {
	ref, err := r.Format()
	if err != nil {
		return output.InstalledRow{}, err
	}
	origin, err := r.Origin()
	if err != nil {
		return output.InstalledRow{}, err
	}
	size, err := r.InstalledSize()
	if err != nil {
		return output.InstalledRow{}, err
	}
	current, err := r.IsCurrent()
	if err != nil {
		return output.InstalledRow{}, err
	}
	return output.InstalledRow{
		Ref:           ref,
		Origin:        origin,
		Commit:        deref(r.Commit()),
		InstalledSize: size,
		IsCurrent:     current,
		EOL:           deref(r.EOL()),
	}, nil
}
