package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
)

var (
	installFrom   string
	installBundle string

	installCmd = &cobra.Command{
		Use:   "install REMOTE REF... | --from FILE | --bundle FILE",
		Short: "Install applications or runtimes",
		Long: `Install refs from a configured remote, together with the runtimes they
need and their related extensions.

REF is a full ref or an application ID (installed from the stable branch
for the default arch). Instead of REMOTE and REF, --from installs the ref
described by a .flatpakref file and --bundle installs a single-file
bundle.`,
		Example: `  goflatpak install flathub org.gnome.Maps
  goflatpak install flathub runtime/org.gnome.Platform/x86_64/46
  goflatpak install --from org.gnome.Maps.flatpakref
  goflatpak install --bundle maps.flatpak`,
		RunE: runInstall,
	}

	uninstallCmd = &cobra.Command{
		Use:   "uninstall REF...",
		Short: "Uninstall applications or runtimes",
		Long: `Remove deployed refs from the installation. An application ID selects
the current branch of that application.`,
		Example: `  goflatpak uninstall org.gnome.Maps
  goflatpak uninstall runtime/org.gnome.Platform/x86_64/45`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUninstall,
	}

	updateCmd = &cobra.Command{
		Use:   "update [REF...]",
		Short: "Update installed refs",
		Long: `Update the given refs, or every installed ref whose origin remote has a
newer commit when none are given.`,
		Example: `  goflatpak update
  goflatpak update org.gnome.Maps`,
		RunE: runUpdate,
	}
)

func init() {
	installCmd.Flags().StringVar(&installFrom, "from", "", "install the ref described by a .flatpakref file")
	installCmd.Flags().StringVar(&installBundle, "bundle", "", "install a single-file bundle")
	installCmd.Flags().BoolVar(&txReinstall, "reinstall", false, "reinstall refs that are already installed")
	installCmd.MarkFlagsMutuallyExclusive("from", "bundle")
	addTransactionFlags(installCmd)
	addTransactionFlags(updateCmd)
	addTransactionFlags(uninstallCmd)

	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(uninstallCmd)
	RootCmd.AddCommand(updateCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	switch {
	case installFrom != "" || installBundle != "":
		if len(args) != 0 {
			return fmt.Errorf("--from and --bundle take no REMOTE or REF arguments")
		}
	case len(args) < 2:
		return fmt.Errorf("install needs a REMOTE and at least one REF")
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		tx, err := buildTransaction(ctx, s, func(tx *flatpak.Transaction) error {
			switch {
			case installFrom != "":
				data, err := os.ReadFile(installFrom)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", installFrom, err)
				}
				return tx.AddInstallFlatpakref(data)
			case installBundle != "":
				return tx.AddInstallBundle(installBundle, nil)
			}
			remote := args[0]
			for _, arg := range args[1:] {
				ref, err := resolveRef(s.client, arg)
				if err != nil {
					return err
				}
				if err := tx.AddInstall(remote, ref, nil); err != nil {
					return fmt.Errorf("failed to add %s: %w", ref, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		defer tx.Release()
		return runTransaction(cmd, tx)
	})
}

func runUninstall(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		tx, err := buildTransaction(ctx, s, func(tx *flatpak.Transaction) error {
			for _, arg := range args {
				ref, err := findInstalled(ctx, s, arg)
				if err != nil {
					return fmt.Errorf("%s is not installed: %w", arg, err)
				}
				full, err := ref.Format()
				ref.Release()
				if err != nil {
					return err
				}
				if err := tx.AddUninstall(full); err != nil {
					return fmt.Errorf("failed to add %s: %w", full, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		defer tx.Release()
		return runTransaction(cmd, tx)
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		refs, err := updateTargets(ctx, s, args)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to update.")
			return nil
		}

		tx, err := buildTransaction(ctx, s, func(tx *flatpak.Transaction) error {
			for _, ref := range refs {
				if err := tx.AddUpdate(ref, nil, nil); err != nil {
					return fmt.Errorf("failed to add %s: %w", ref, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		defer tx.Release()
		return runTransaction(cmd, tx)
	})
}

// updateTargets returns the full refs to update: the arguments, or every
// ref with a pending update.
func updateTargets(ctx context.Context, s *session, args []string) ([]string, error) {
	var refs []string
	if len(args) > 0 {
		for _, arg := range args {
			ref, err := findInstalled(ctx, s, arg)
			if err != nil {
				return nil, fmt.Errorf("%s is not installed: %w", arg, err)
			}
			full, err := ref.Format()
			ref.Release()
			if err != nil {
				return nil, err
			}
			refs = append(refs, full)
		}
		return refs, nil
	}

	pending, err := s.inst.ListInstalledRefsForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	defer func() {
		for _, r := range pending {
			r.Release()
		}
	}()
	for _, r := range pending {
		full, err := r.Format()
		if err != nil {
			return nil, err
		}
		refs = append(refs, full)
	}
	return refs, nil
}
