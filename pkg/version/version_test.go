// pkg/version/version_test.go
package version

import (
	"strings"
	"testing"
	"time"
)

func TestInfo_ReturnsFormattedString(t *testing.T) {
	info := Info()

	if !strings.Contains(info, "Mediabridge") {
		t.Errorf("Expected info to contain 'Mediabridge', got: %s", info)
	}
	if !strings.Contains(info, Version) {
		t.Errorf("Expected info to contain version '%s'", Version)
	}
	if !strings.Contains(info, Commit) {
		t.Errorf("Expected info to contain commit '%s'", Commit)
	}
	if !strings.Contains(info, BuildDate) {
		t.Errorf("Expected info to contain build date '%s'", BuildDate)
	}
}

func TestGet_ReturnsCorrectStruct(t *testing.T) {
	v := Get()

	if v.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, v.Version)
	}
	if v.Commit != Commit {
		t.Errorf("Expected commit %s, got %s", Commit, v.Commit)
	}
	if v.GoVersion == "" || v.Platform == "" {
		t.Errorf("Expected runtime fields to be set, got %+v", v)
	}
}

func TestStartDate_IsInitialized(t *testing.T) {
	if time.Since(StartDate) > time.Minute {
		t.Errorf("StartDate is too old: %s", StartDate)
	}
}

func TestIsNewer(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		current   string
		candidate string
		want      bool
		wantErr   bool
	}{
		{"dev", "9.9.9", false, false},
		{"1.2.0", "1.3.0", true, false},
		{"1.2.0", "v1.2.0", false, false},
		{"1.2.0", "1.1.9", false, false},
		{"1.2.0", "2.0.0-rc.1", false, false},
		{"1.2.0-beta.1", "1.2.0", true, false},
		{"1.2.0", "latest", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.candidate, func(t *testing.T) {
			Version = tt.current
			got, err := IsNewer(tt.candidate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsNewer(%q) error = %v, wantErr %v", tt.candidate, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsNewer(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}
