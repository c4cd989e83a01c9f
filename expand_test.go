package dicomexplorer

import (
	"os/user"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	usr, err := user.Current()
	if err != nil {
		t.Fatalf("Resolving the current user: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/data/scan.dcm", filepath.Join(usr.HomeDir, "data/scan.dcm")},
		{"/var/tmp/scan.dcm", "/var/tmp/scan.dcm"},
		{"gs://bucket/series/scan.dcm", "gs://bucket/series/scan.dcm"},
		{"relative/scan.dcm", "relative/scan.dcm"},
		{"~elsewhere/scan.dcm", "~elsewhere/scan.dcm"},
		{"", ""},
	}

	for _, test := range tests {
		if got := ExpandHome(test.in); got != test.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
