package output

import (
	"strings"
	"testing"
)

func TestRenderInstalledTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name     string
		rows     []InstalledRow
		contains []string
	}{
		{
			name:     "empty",
			rows:     nil,
			contains: []string{"Nothing installed"},
		},
		{
			name: "current app",
			rows: []InstalledRow{{
				Ref:           "app/org.example.App/x86_64/stable",
				Origin:        "flathub",
				Commit:        "0123456789abcdef0123",
				InstalledSize: 3 * 1024 * 1024,
				IsCurrent:     true,
			}},
			contains: []string{"app/org.example.App/x86_64/stable", "flathub", "0123456789ab", "3.0 MiB", "current"},
		},
		{
			name: "end of life",
			rows: []InstalledRow{{
				Ref: "runtime/org.example.Platform/x86_64/22.08",
				EOL: "superseded by 23.08",
			}},
			contains: []string{"eol: superseded by 23.08", "0 B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderInstalledTable(tt.rows)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("RenderInstalledTable() missing %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestRenderInstalledTable_SortedByRef(t *testing.T) {
	result := RenderInstalledTable([]InstalledRow{
		{Ref: "runtime/b/x86_64/1"},
		{Ref: "app/a/x86_64/1"},
	})
	if strings.Index(result, "app/a") > strings.Index(result, "runtime/b") {
		t.Errorf("rows not sorted by ref:\n%s", result)
	}
}

func TestRenderRemoteRefTable(t *testing.T) {
	if got := RenderRemoteRefTable(nil); !strings.Contains(got, "No refs published") {
		t.Errorf("empty table = %q", got)
	}

	result := RenderRemoteRefTable([]RemoteRefRow{{
		Ref:           "app/org.example.App/x86_64/stable",
		Commit:        "a1",
		DownloadSize:  2048,
		InstalledSize: 4096,
	}})
	for _, expected := range []string{"org.example.App", "a1", "2.0 KiB", "4.0 KiB"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderRemoteRefTable() missing %q\nGot:\n%s", expected, result)
		}
	}
}

func TestRenderRemoteTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := RenderRemoteTable(nil); !strings.Contains(got, "No remotes configured") {
		t.Errorf("empty table = %q", got)
	}

	result := RenderRemoteTable([]RemoteRow{
		{Name: "flathub", Title: "Flathub", URL: "https://dl.flathub.org/repo/", Prio: 1},
		{Name: "beta", URL: "https://example.org/beta/", Prio: 0, Disabled: true},
	})
	for _, expected := range []string{"flathub", "Flathub", "https://dl.flathub.org/repo/", "beta", "disabled"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderRemoteTable() missing %q\nGot:\n%s", expected, result)
		}
	}
	if strings.Index(result, "flathub") > strings.Index(result, "beta") {
		t.Error("remotes were reordered")
	}
}

func TestRenderInstanceTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := RenderInstanceTable(nil); !strings.Contains(got, "No running instances") {
		t.Errorf("empty table = %q", got)
	}

	result := RenderInstanceTable([]InstanceRow{
		{ID: "2", PID: 900, App: "org.example.Two", Runtime: "org.example.Platform"},
		{ID: "1", PID: 100, App: "org.example.One", Runtime: "org.example.Platform", Running: true},
	})
	if strings.Index(result, "org.example.One") > strings.Index(result, "org.example.Two") {
		t.Errorf("rows not sorted by pid:\n%s", result)
	}
	if !strings.Contains(result, "900") {
		t.Errorf("missing pid:\n%s", result)
	}
}

func TestRenderDetails(t *testing.T) {
	result := RenderDetails("org.example.App", []Field{
		{Label: "Ref", Value: "app/org.example.App/x86_64/stable"},
		{Label: "Commit", Value: ""},
		{Label: "Installed", Value: "30 B"},
	})

	if !strings.HasPrefix(result, "org.example.App\n") {
		t.Errorf("missing title:\n%s", result)
	}
	if strings.Contains(result, "Commit") {
		t.Errorf("empty field rendered:\n%s", result)
	}
	if !strings.Contains(result, "      Ref: app/org.example.App/x86_64/stable\n") {
		t.Errorf("labels not right-aligned:\n%s", result)
	}
	if !strings.Contains(result, "Installed: 30 B\n") {
		t.Errorf("missing size:\n%s", result)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer than that", 10, "much lo..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
