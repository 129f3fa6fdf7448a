package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/output"
)

var (
	txNoDeps    bool
	txNoRelated bool
	txReinstall bool
	txNoPull    bool
	txNoDeploy  bool
)

// addTransactionFlags registers the flags shared by install, update and
// uninstall.
func addTransactionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&txNoDeps, "no-deps", false, "don't resolve runtime dependencies")
	cmd.Flags().BoolVar(&txNoRelated, "no-related", false, "don't process related refs such as locales")
	cmd.Flags().BoolVar(&txNoPull, "no-pull", false, "don't download, use local data only")
	cmd.Flags().BoolVar(&txNoDeploy, "no-deploy", false, "download only, don't deploy")
}

// buildTransaction creates a transaction on the session's installation,
// applies the shared flags and lets add queue its operations.
func buildTransaction(ctx context.Context, s *session, add func(tx *flatpak.Transaction) error) (*flatpak.Transaction, error) {
	tx, err := s.inst.NewTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	setters := []struct {
		set func(bool) error
		v   bool
	}{
		{tx.SetNoInteraction, true},
		{tx.SetDisableDependencies, txNoDeps},
		{tx.SetDisableRelated, txNoRelated},
		{tx.SetNoPull, txNoPull},
		{tx.SetNoDeploy, txNoDeploy},
		{tx.SetReinstall, txReinstall},
	}
	for _, st := range setters {
		if err := st.set(st.v); err != nil {
			tx.Release()
			return nil, err
		}
	}
	if err := add(tx); err != nil {
		tx.Release()
		return nil, err
	}
	return tx, nil
}

// runTransaction runs tx, rendering its events to the command's stdout.
func runTransaction(cmd *cobra.Command, tx *flatpak.Transaction) error {
	printer := output.NewTransactionPrinter(cmd.OutOrStdout())
	tx.AddListener(func(ev flatpak.Event) {
		printer.Handle(txEvent(ev))
	})

	if err := tx.Run(cmd.Context()); err != nil {
		if flatpak.IsKind(err, flatpak.Cancelled) && cmd.Context().Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted.")
		}
		return err
	}
	return nil
}

var txEventKinds = map[flatpak.EventType]output.TxEventKind{
	flatpak.Ready:            output.TxReady,
	flatpak.OperationStarted: output.TxOpStarted,
	flatpak.ProgressChanged:  output.TxOpProgress,
	flatpak.OperationDone:    output.TxOpDone,
	flatpak.OperationError:   output.TxOpError,
	flatpak.TransactionDone:  output.TxDone,
	flatpak.TransactionError: output.TxFailed,
}

// txEvent converts a transaction event for the printer. It runs inside a
// listener, while the event's operation view is still usable.
func txEvent(ev flatpak.Event) output.TxEvent {
	out := output.TxEvent{
		Kind:     txEventKinds[ev.Type],
		Percent:  ev.Progress.Percent,
		Status:   ev.Progress.Status,
		Err:      ev.Err,
		NonFatal: ev.NonFatal,
	}
	if op := ev.Operation; op != nil {
		if t, err := op.Type(); err == nil {
			out.Op = t.String()
		}
		out.Ref, _ = op.Ref()
	}
	return out
}
