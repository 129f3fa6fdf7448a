package output

import (
	"fmt"
	"io"
	"sync"
)

// TxEventKind is the kind of a transaction step shown by the printer.
type TxEventKind int

const (
	TxReady TxEventKind = iota
	TxOpStarted
	TxOpProgress
	TxOpDone
	TxOpError
	TxDone
	TxFailed
)

// TxEvent carries what the printer shows of one transaction event.
type TxEvent struct {
	Kind TxEventKind
	// Op is the operation type name: install, update, install-bundle or
	// uninstall.
	Op       string
	Ref      string
	Percent  int
	Status   string
	Err      error
	NonFatal bool
}

// TransactionPrinter renders a running transaction. On a terminal each
// operation gets a live progress bar; elsewhere each operation is one
// line when it starts and one when it ends.
type TransactionPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	tty    bool
	bar    *ProgressBar
	ops    int
	failed int
}

// NewTransactionPrinter creates a printer writing to w.
func NewTransactionPrinter(w io.Writer) *TransactionPrinter {
	return &TransactionPrinter{w: w, tty: writerIsTTY(w)}
}

// Handle renders one event.
func (p *TransactionPrinter) Handle(ev TxEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case TxOpStarted:
		p.ops++
		p.closeBar()
		if p.tty {
			p.bar = NewProgress(describe(ev))
			p.bar.SetWriter(p.w)
			p.bar.Set(ev.Percent, ev.Status)
			return
		}
		fmt.Fprintf(p.w, "%s...\n", describe(ev))

	case TxOpProgress:
		if p.bar != nil {
			p.bar.Set(ev.Percent, ev.Status)
		}

	case TxOpDone:
		if p.bar != nil {
			p.bar.Finish()
			p.bar = nil
			return
		}
		fmt.Fprintf(p.w, "%s: done\n", describe(ev))

	case TxOpError:
		p.closeBar()
		label := colorize(colorRed, "error")
		if ev.NonFatal {
			label = colorize(colorYellow, "warning")
		} else {
			p.failed++
		}
		fmt.Fprintf(p.w, "%s: %s: %v\n", describe(ev), label, ev.Err)

	case TxDone:
		p.closeBar()
		if p.ops == 0 {
			fmt.Fprintln(p.w, "Nothing to do.")
			return
		}
		fmt.Fprintf(p.w, "Changes complete (%d %s).\n", p.ops, plural(p.ops, "operation", "operations"))

	case TxFailed:
		p.closeBar()
		fmt.Fprintf(p.w, "%s: %v\n", colorize(colorRed, "Transaction failed"), ev.Err)
	}
}

// Operations returns how many operations have started.
func (p *TransactionPrinter) Operations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ops
}

// Failed returns how many operations failed fatally.
func (p *TransactionPrinter) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *TransactionPrinter) closeBar() {
	if p.bar != nil {
		p.bar.Abandon()
		p.bar = nil
	}
}

var opVerbs = map[string]string{
	"install":        "Installing",
	"update":         "Updating",
	"install-bundle": "Installing bundle",
	"uninstall":      "Uninstalling",
}

func describe(ev TxEvent) string {
	verb, ok := opVerbs[ev.Op]
	if !ok {
		verb = "Processing"
	}
	return verb + " " + ev.Ref
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
