package flatpak

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a transaction event.
type EventType int

const (
	// Ready is delivered once the transaction has resolved its operations,
	// before the first one starts.
	Ready EventType = iota
	OperationStarted
	ProgressChanged
	OperationDone
	OperationError
	// TransactionDone and TransactionError are terminal: exactly one of them
	// ends every run.
	TransactionDone
	TransactionError
)

var eventTypeNames = map[EventType]string{
	Ready:            "ready",
	OperationStarted: "operation-started",
	ProgressChanged:  "progress-changed",
	OperationDone:    "operation-done",
	OperationError:   "operation-error",
	TransactionDone:  "transaction-done",
	TransactionError: "transaction-error",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Terminal reports whether t ends a run.
func (t EventType) Terminal() bool {
	return t == TransactionDone || t == TransactionError
}

// Event is one step of a transaction run, delivered to listeners on the
// goroutine that called Run, in the order the native side emitted them.
type Event struct {
	Type  EventType
	RunID uuid.UUID
	// Seq starts at 1 for every run and increases by one per event.
	Seq  uint64
	Time time.Time

	// Operation is set for the operation events. It is a view that stays
	// usable while the transaction is alive.
	Operation *TransactionOperation
	// Progress is set for OperationStarted and ProgressChanged.
	Progress Progress
	// Commit is the deployed commit of an OperationDone, nil for uninstalls.
	Commit *string
	// Err is set for OperationError and TransactionError.
	Err error
	// NonFatal marks an OperationError the transaction continues past.
	NonFatal bool
}

// Listener receives transaction events.
type Listener func(Event)
