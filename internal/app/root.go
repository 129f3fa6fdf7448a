package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	backendName      string
	simDBPath        string
	useUser          bool
	installationPath string
	verbose          bool

	// RootCmd is the root command for goflatpak
	RootCmd = &cobra.Command{
		Use:   "goflatpak",
		Short: "Manage flatpak installations through libflatpak",
		Long: `goflatpak drives libflatpak from Go: it lists and inspects installed
refs, manages remotes, and runs install, update and uninstall transactions
with live progress.

Backends:
  • libflatpak (default): the system libflatpak.so.0, loaded at runtime
  • sim: a simulated libflatpak whose state lives in a SQLite file

Settings are read from GOFLATPAK_* environment variables; flags override
them.`,
		Example: `  # List installed applications
  goflatpak list --app

  # Add flathub to the user installation
  goflatpak --user remote-add flathub https://dl.flathub.org/repo/

  # Install an application and its runtime
  goflatpak install flathub app/org.gnome.Maps/x86_64/stable

  # Try things out against the simulator
  goflatpak --backend sim remotes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "native backend: libflatpak or sim (default from GOFLATPAK_BACKEND)")
	RootCmd.PersistentFlags().StringVar(&simDBPath, "sim-db", "", "simulator database (default from GOFLATPAK_SIM_DB)")
	RootCmd.PersistentFlags().BoolVar(&useUser, "user", false, "operate on the per-user installation")
	RootCmd.PersistentFlags().StringVar(&installationPath, "installation", "", "operate on the installation rooted at PATH")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	RootCmd.MarkFlagsMutuallyExclusive("user", "installation")
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command. Ctrl-C cancels the command's context,
// which cancels a running transaction.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}
