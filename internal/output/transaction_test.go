package output

import (
	"bytes"
	"errors"
	"testing"
)

func TestTransactionPrinter_NonTTY(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	p := NewTransactionPrinter(buf)

	events := []TxEvent{
		{Kind: TxReady},
		{Kind: TxOpStarted, Op: "install", Ref: "runtime/org.example.Platform/x86_64/23.08"},
		{Kind: TxOpProgress, Op: "install", Ref: "runtime/org.example.Platform/x86_64/23.08", Percent: 50},
		{Kind: TxOpDone, Op: "install", Ref: "runtime/org.example.Platform/x86_64/23.08"},
		{Kind: TxOpStarted, Op: "uninstall", Ref: "app/org.example.Old/x86_64/stable"},
		{Kind: TxOpError, Op: "uninstall", Ref: "app/org.example.Old/x86_64/stable", Err: errors.New("busy"), NonFatal: true},
		{Kind: TxDone},
	}
	for _, ev := range events {
		p.Handle(ev)
	}

	want := "Installing runtime/org.example.Platform/x86_64/23.08...\n" +
		"Installing runtime/org.example.Platform/x86_64/23.08: done\n" +
		"Uninstalling app/org.example.Old/x86_64/stable...\n" +
		"Uninstalling app/org.example.Old/x86_64/stable: warning: busy\n" +
		"Changes complete (2 operations).\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
	if p.Operations() != 2 || p.Failed() != 0 {
		t.Errorf("Operations/Failed = %d/%d, want 2/0", p.Operations(), p.Failed())
	}
}

func TestTransactionPrinter_Failure(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	p := NewTransactionPrinter(buf)

	p.Handle(TxEvent{Kind: TxOpStarted, Op: "update", Ref: "app/a/x86_64/stable"})
	p.Handle(TxEvent{Kind: TxOpError, Op: "update", Ref: "app/a/x86_64/stable", Err: errors.New("no space")})
	p.Handle(TxEvent{Kind: TxFailed, Err: errors.New("aborted")})

	want := "Updating app/a/x86_64/stable...\n" +
		"Updating app/a/x86_64/stable: error: no space\n" +
		"Transaction failed: aborted\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
	if p.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", p.Failed())
	}
}

func TestTransactionPrinter_NothingToDo(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewTransactionPrinter(buf)
	p.Handle(TxEvent{Kind: TxReady})
	p.Handle(TxEvent{Kind: TxDone})
	if got := buf.String(); got != "Nothing to do.\n" {
		t.Errorf("output = %q", got)
	}
}
