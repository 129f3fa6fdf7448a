package app

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
)

func TestResolveRef(t *testing.T) {
	db := seedDB(t, nil)
	resetFlags(RootCmd)
	backendName = "sim"
	simDBPath = db
	t.Cleanup(func() { resetFlags(RootCmd) })

	c, closer, err := newClient(&cobra.Command{})
	if err != nil {
		t.Fatalf("newClient() error: %v", err)
	}
	defer closer()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"org.example.App", "app/org.example.App/x86_64/stable", false},
		{runtimeRef, runtimeRef, false},
		{"app/org.example.App", "", true},
		{"nonsense/org.example.App/x86_64/stable", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolveRef(c, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveRef(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeref(t *testing.T) {
	v := "x"
	if got := deref(&v, nil); got != "x" {
		t.Errorf("deref(&x) = %q", got)
	}
	if got := deref(nil, nil); got != "" {
		t.Errorf("deref(nil) = %q", got)
	}
	if got := deref(&v, errors.New("boom")); got != "" {
		t.Errorf("deref with error = %q", got)
	}
}
