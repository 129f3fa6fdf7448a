package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the installation as they happen",
	Long: `Watch the installation directory and print a line each time refs or
remotes change, whether the change came from goflatpak, the flatpak CLI or
a software center. Runs in the foreground until Ctrl+C.`,
	Example: `  # Watch the system installation
  goflatpak watch

  # Watch a custom installation
  goflatpak watch --installation /srv/flatpak`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		path, err := s.inst.Path()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", path)

		return s.inst.Monitor(ctx, func(c flatpak.InstallationChange) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s changed: %s\n",
				c.Time.Format("15:04:05"), strings.Join(c.Paths, ", "))
		})
	})
}
