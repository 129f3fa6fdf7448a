package flatpak

import (
	"fmt"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// OperationType is FlatpakTransactionOperationType.
type OperationType int

const (
	OperationInstall       OperationType = 0
	OperationUpdate        OperationType = 1
	OperationInstallBundle OperationType = 2
	OperationUninstall     OperationType = 3
)

var operationTypeNames = []string{"install", "update", "install-bundle", "uninstall"}

func (t OperationType) String() string {
	if t >= 0 && int(t) < len(operationTypeNames) {
		return operationTypeNames[t]
	}
	return fmt.Sprintf("OperationType(%d)", int(t))
}

// ParseOperationType parses the String form of an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	for i, name := range operationTypeNames {
		if name == s {
			return OperationType(i), nil
		}
	}
	return 0, newError(InvalidData, fmt.Sprintf("unknown operation type %q", s))
}

// OperationState tracks one operation through a run.
type OperationState int

const (
	OperationPending OperationState = iota
	OperationInProgress
	OperationSucceeded
	OperationFailed
)

func (s OperationState) String() string {
	switch s {
	case OperationPending:
		return "pending"
	case OperationInProgress:
		return "in-progress"
	case OperationSucceeded:
		return "done"
	case OperationFailed:
		return "error"
	}
	return fmt.Sprintf("OperationState(%d)", int(s))
}

type opRecord struct {
	state OperationState
}

// TransactionOperation is one resolved step of a transaction.
type TransactionOperation struct {
	object
	tx  *Transaction
	rec *opRecord
}

func (o *TransactionOperation) Type() (OperationType, error) {
	n, err := o.integer(native.OperationGetType)
	if err != nil {
		return 0, err
	}
	t := OperationType(n)
	if t < OperationInstall || t > OperationUninstall {
		return 0, newError(InvalidData, fmt.Sprintf("%s: unknown operation type %d", native.OperationGetType.Symbol, n))
	}
	return t, nil
}

func (o *TransactionOperation) Ref() (string, error)    { return o.str(native.OperationGetRef) }
func (o *TransactionOperation) Remote() (string, error) { return o.str(native.OperationGetRemote) }

// Commit is nil until the operation has been resolved against its remote.
func (o *TransactionOperation) Commit() (*string, error) { return o.optStr(native.OperationGetCommit) }

func (o *TransactionOperation) DownloadSize() (uint64, error) {
	return o.size(native.OperationGetDownloadSize)
}

func (o *TransactionOperation) InstalledSize() (uint64, error) {
	return o.size(native.OperationGetInstalledSize)
}

func (o *TransactionOperation) IsSkipped() (bool, error) {
	return o.boolean(native.OperationGetIsSkipped)
}

// BundlePath is the bundle file of an install-bundle operation, nil for
// every other type.
func (o *TransactionOperation) BundlePath() (*string, error) {
	m := native.OperationGetBundlePath
	var path *string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		file := o.c.lib.GetObject(p, m)
		if file.IsNull() {
			return nil
		}
		s, err := o.path(m)
		if err != nil {
			return err
		}
		path = &s
		return nil
	})
	return path, err
}

// Metadata returns the metadata key file of the ref being operated on.
func (o *TransactionOperation) Metadata() (map[string]map[string]string, error) {
	return o.keyFile(native.OperationGetMetadata)
}

// Transaction returns the transaction the operation belongs to.
func (o *TransactionOperation) Transaction() *Transaction { return o.tx }

// State reports how far the current run got with this operation.
func (o *TransactionOperation) State() OperationState {
	o.tx.mu.Lock()
	defer o.tx.mu.Unlock()
	return o.rec.state
}
