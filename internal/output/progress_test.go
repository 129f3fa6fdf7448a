package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar_NonTTYPrintsOnlyOnFinish(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Installing app/org.example.App")
	p.SetWriter(buf)

	p.Set(40, "Downloading")
	if buf.Len() != 0 {
		t.Fatalf("Set() wrote to a non-TTY writer: %q", buf.String())
	}
	if got := p.Percent(); got != 40 {
		t.Errorf("Percent() = %d, want 40", got)
	}

	p.Finish()
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Finish() should write exactly one line, got %q", out)
	}
	if !strings.Contains(out, "100% Installing app/org.example.App") {
		t.Errorf("Finish() output = %q", out)
	}
	if strings.Contains(out, "Downloading") {
		t.Errorf("finished bar still shows status: %q", out)
	}

	p.Finish()
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("second Finish() wrote again")
	}
}

func TestProgressBar_Clamp(t *testing.T) {
	p := NewProgress("x")
	p.SetWriter(&bytes.Buffer{})

	p.Set(-5, "")
	if got := p.Percent(); got != 0 {
		t.Errorf("Percent() after -5 = %d, want 0", got)
	}
	p.Set(250, "")
	if got := p.Percent(); got != 100 {
		t.Errorf("Percent() after 250 = %d, want 100", got)
	}
}

func TestProgressBar_Line(t *testing.T) {
	tests := []struct {
		percent int
		status  string
		want    string
	}{
		{0, "", "[          ]   0% Work"},
		{50, "Pulling", "[====>     ]  50% Work (Pulling)"},
		{100, "", "[=========>] 100% Work"},
	}
	for _, tt := range tests {
		p := NewProgress("Work")
		p.SetWidth(10)
		p.percent = tt.percent
		p.status = tt.status
		if got := p.line(); got != tt.want {
			t.Errorf("line() at %d%% = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestProgressBar_AbandonOnNonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("x")
	p.SetWriter(buf)
	p.Set(30, "")
	p.Abandon()
	p.Finish()
	if buf.Len() != 0 {
		t.Errorf("abandoned bar wrote %q", buf.String())
	}
}

func TestSpinner_NonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Fetching flathub")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	s.StopWithMessage("Fetched.")
	s.Stop()

	want := "Fetching flathub...\nFetched.\n"
	if got := buf.String(); got != want {
		t.Errorf("spinner output = %q, want %q", got, want)
	}
}
