package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/output"
)

var (
	remoteAddIfNotExists bool
	remoteAddTitle       string
	remoteAddNoGPG       bool
	remoteAddPrio        int

	remotesCmd = &cobra.Command{
		Use:   "remotes",
		Short: "List configured remotes",
		Long: `List the remotes configured in the installation, highest priority
first, with their title, URL and options.`,
		Example: `  goflatpak remotes
  goflatpak --user remotes`,
		Args: cobra.NoArgs,
		RunE: runRemotes,
	}

	remoteAddCmd = &cobra.Command{
		Use:   "remote-add NAME URL",
		Short: "Add a remote repository",
		Long: `Add a remote repository to the installation.

With --if-not-exists an existing remote of the same name is left untouched
and the command succeeds.`,
		Example: `  goflatpak remote-add flathub https://dl.flathub.org/repo/
  goflatpak remote-add --if-not-exists --title "Flathub" flathub https://dl.flathub.org/repo/`,
		Args: cobra.ExactArgs(2),
		RunE: runRemoteAdd,
	}

	remoteDeleteCmd = &cobra.Command{
		Use:   "remote-delete NAME",
		Short: "Remove a remote repository",
		Long: `Remove a remote from the installation. Refs installed from it stay
deployed but can no longer be updated.`,
		Example: `  goflatpak remote-delete flathub-beta`,
		Args:    cobra.ExactArgs(1),
		RunE:    runRemoteDelete,
	}

	remoteLsCmd = &cobra.Command{
		Use:   "remote-ls REMOTE",
		Short: "List the refs a remote publishes",
		Long: `Fetch the summary of REMOTE and list every ref it publishes with its
commit and sizes. This needs network access for remote repositories.`,
		Example: `  goflatpak remote-ls flathub`,
		Args:    cobra.ExactArgs(1),
		RunE:    runRemoteLs,
	}
)

func init() {
	remoteAddCmd.Flags().BoolVar(&remoteAddIfNotExists, "if-not-exists", false, "do nothing if the remote already exists")
	remoteAddCmd.Flags().StringVar(&remoteAddTitle, "title", "", "human readable title of the remote")
	remoteAddCmd.Flags().BoolVar(&remoteAddNoGPG, "no-gpg-verify", false, "disable GPG verification of the remote")
	remoteAddCmd.Flags().IntVar(&remoteAddPrio, "prio", 1, "priority of the remote")

	RootCmd.AddCommand(remotesCmd)
	RootCmd.AddCommand(remoteAddCmd)
	RootCmd.AddCommand(remoteDeleteCmd)
	RootCmd.AddCommand(remoteLsCmd)
}

func runRemotes(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		remotes, err := s.inst.ListRemotes(ctx)
		if err != nil {
			return fmt.Errorf("failed to list remotes: %w", err)
		}
		defer func() {
			for _, r := range remotes {
				r.Release()
			}
		}()

		rows := make([]output.RemoteRow, 0, len(remotes))
		for _, r := range remotes {
			row, err := remoteRow(r)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderRemoteTable(rows))
		return nil
	})
}

func remoteRow(r *flatpak.Remote) (output.RemoteRow, error) {
	name, err := r.Name()
	if err != nil {
		return output.RemoteRow{}, err
	}
	prio, err := r.Prio()
	if err != nil {
		return output.RemoteRow{}, err
	}
	disabled, err := r.Disabled()
	if err != nil {
		return output.RemoteRow{}, err
	}
	return output.RemoteRow{
		Name:     name,
		Title:    deref(r.Title()),
		URL:      deref(r.URL()),
		Prio:     prio,
		Disabled: disabled,
	}, nil
}

func runRemoteAdd(cmd *cobra.Command, args []string) error {
	name, url := args[0], args[1]
	return withSession(cmd, func(ctx context.Context, s *session) error {
		r, err := s.client.NewRemote(name)
		if err != nil {
			return err
		}
		defer r.Release()

		if err := r.SetURL(url); err != nil {
			return err
		}
		if remoteAddTitle != "" {
			if err := r.SetTitle(&remoteAddTitle); err != nil {
				return err
			}
		}
		if err := r.SetGPGVerify(!remoteAddNoGPG); err != nil {
			return err
		}
		if err := r.SetPrio(remoteAddPrio); err != nil {
			return err
		}

		if err := s.inst.AddRemote(ctx, r, remoteAddIfNotExists); err != nil {
			return fmt.Errorf("failed to add remote %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added remote %s (%s)\n", name, url)
		return nil
	})
}

func runRemoteDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.inst.RemoveRemote(ctx, name); err != nil {
			return fmt.Errorf("failed to remove remote %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed remote %s\n", name)
		return nil
	})
}

func runRemoteLs(cmd *cobra.Command, args []string) error {
	remote := args[0]
	return withSession(cmd, func(ctx context.Context, s *session) error {
		spinner := output.NewSpinner("Fetching " + remote)
		spinner.SetWriter(cmd.ErrOrStderr())
		spinner.Start()
		refs, err := s.inst.ListRemoteRefs(ctx, remote)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("failed to list refs of %s: %w", remote, err)
		}
		defer func() {
			for _, r := range refs {
				r.Release()
			}
		}()

		rows := make([]output.RemoteRefRow, 0, len(refs))
		for _, r := range refs {
			full, err := r.Format()
			if err != nil {
				return err
			}
			download, err := r.DownloadSize()
			if err != nil {
				return err
			}
			installed, err := r.InstalledSize()
			if err != nil {
				return err
			}
			rows = append(rows, output.RemoteRefRow{
				Ref:           full,
				Commit:        deref(r.Commit()),
				DownloadSize:  download,
				InstalledSize: installed,
			})
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderRemoteRefTable(rows))
		return nil
	})
}
