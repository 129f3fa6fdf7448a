// Package output provides terminal output utilities for goflatpak.
//
// This package includes:
//   - Table rendering for installed refs, remote catalogs, remotes and instances
//   - Progress bars and spinners for long-running operations
//   - A transaction printer fed by transaction events
//   - A stderr logger for the CLI
//
// Tables use plain ASCII columns and ANSI color codes when stdout is a
// terminal. Progress indicators are safe for use from multiple goroutines.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// InstalledRow is one line of the installed refs table.
type InstalledRow struct {
	Ref           string
	Origin        string
	Commit        string
	InstalledSize uint64
	IsCurrent     bool
	// EOL is the end-of-life message, empty for supported refs.
	EOL string
}

// RenderInstalledTable renders installed refs sorted by ref.
func RenderInstalledTable(rows []InstalledRow) string {
	if len(rows) == 0 {
		return "Nothing installed.\n"
	}

	sorted := make([]InstalledRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ref < sorted[j].Ref })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-48s %-12s %-12s %-10s %s\n",
		"Ref", "Origin", "Commit", "Size", "Status"))
	sb.WriteString(strings.Repeat("─", 96))
	sb.WriteString("\n")

	for _, r := range sorted {
		sb.WriteString(fmt.Sprintf("%-48s %-12s %-12s %-10s %s\n",
			truncate(r.Ref, 48),
			truncate(r.Origin, 12),
			shortCommit(r.Commit),
			formatSize(r.InstalledSize),
			installedStatus(r)))
	}
	return sb.String()
}

func installedStatus(r InstalledRow) string {
	switch {
	case r.EOL != "":
		return colorize(colorRed, "eol: "+truncate(r.EOL, 40))
	case r.IsCurrent:
		return colorize(colorGreen, "current")
	}
	return colorize(colorGray, "—")
}

// RemoteRefRow is one line of a remote catalog.
type RemoteRefRow struct {
	Ref           string
	Commit        string
	DownloadSize  uint64
	InstalledSize uint64
}

// RenderRemoteRefTable renders a remote catalog sorted by ref.
func RenderRemoteRefTable(rows []RemoteRefRow) string {
	if len(rows) == 0 {
		return "No refs published.\n"
	}

	sorted := make([]RemoteRefRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ref < sorted[j].Ref })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-48s %-12s %-10s %s\n",
		"Ref", "Commit", "Download", "Installed"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, r := range sorted {
		sb.WriteString(fmt.Sprintf("%-48s %-12s %-10s %s\n",
			truncate(r.Ref, 48),
			shortCommit(r.Commit),
			formatSize(r.DownloadSize),
			formatSize(r.InstalledSize)))
	}
	return sb.String()
}

// RemoteRow is one configured remote.
type RemoteRow struct {
	Name     string
	Title    string
	URL      string
	Prio     int
	Disabled bool
}

// RenderRemoteTable renders remotes in the order given, which is priority
// order when it comes from ListRemotes.
func RenderRemoteTable(rows []RemoteRow) string {
	if len(rows) == 0 {
		return "No remotes configured.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-24s %-40s %-5s %s\n",
		"Name", "Title", "URL", "Prio", "Options"))
	sb.WriteString(strings.Repeat("─", 96))
	sb.WriteString("\n")

	for _, r := range rows {
		opts := ""
		if r.Disabled {
			opts = colorize(colorYellow, "disabled")
		}
		sb.WriteString(fmt.Sprintf("%-16s %-24s %-40s %-5d %s\n",
			truncate(r.Name, 16),
			truncate(r.Title, 24),
			truncate(r.URL, 40),
			r.Prio,
			opts))
	}
	return sb.String()
}

// InstanceRow is one running sandbox.
type InstanceRow struct {
	ID      string
	PID     int
	App     string
	Runtime string
	Running bool
}

// RenderInstanceTable renders running instances sorted by pid.
func RenderInstanceTable(rows []InstanceRow) string {
	if len(rows) == 0 {
		return "No running instances.\n"
	}

	sorted := make([]InstanceRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PID < sorted[j].PID })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-8s %-32s %s\n",
		"Instance", "PID", "Application", "Runtime"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, r := range sorted {
		app := truncate(r.App, 32)
		if !r.Running {
			app = colorize(colorGray, app)
		}
		sb.WriteString(fmt.Sprintf("%-12s %-8d %-32s %s\n",
			truncate(r.ID, 12),
			r.PID,
			app,
			r.Runtime))
	}
	return sb.String()
}

// Field is one labelled value of a details view.
type Field struct {
	Label string
	Value string
}

// RenderDetails renders a titled key/value block with the labels aligned.
func RenderDetails(title string, fields []Field) string {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%*s: %s\n", width, f.Label, f.Value))
	}
	return sb.String()
}

// FormatSize converts bytes to a human-readable IEC size.
func FormatSize(bytes uint64) string { return formatSize(bytes) }

func formatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// shortCommit abbreviates an ostree checksum for tables.
func shortCommit(commit string) string {
	if commit == "" {
		return "—"
	}
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
