package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/output"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List running sandboxes",
	Long: `List the running flatpak instances with their pid, application and
runtime. Instances that exited but were not yet cleaned up are dimmed.`,
	Example: `  goflatpak ps`,
	Args:    cobra.NoArgs,
	RunE:    runPs,
}

func init() {
	RootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	c, closer, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer closer()

	instances, err := c.Instances()
	if err != nil {
		return fmt.Errorf("failed to list instances: %w", err)
	}
	defer func() {
		for _, i := range instances {
			i.Release()
		}
	}()

	rows := make([]output.InstanceRow, 0, len(instances))
	for _, i := range instances {
		row, err := instanceRow(i)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderInstanceTable(rows))
	return nil
}

func instanceRow(i *flatpak.Instance) (output.InstanceRow, error) {
	id, err := i.ID()
	if err != nil {
		return output.InstanceRow{}, err
	}
	pid, err := i.PID()
	if err != nil {
		return output.InstanceRow{}, err
	}
	app, err := i.App()
	if err != nil {
		return output.InstanceRow{}, err
	}
	running, err := i.IsRunning()
	if err != nil {
		return output.InstanceRow{}, err
	}
	return output.InstanceRow{
		ID:      id,
		PID:     pid,
		App:     app,
		Runtime: deref(i.Runtime()),
		Running: running,
	}, nil
}
