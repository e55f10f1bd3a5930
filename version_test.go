package agrivaani

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func stampedBuild(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func TestResolveBuild(t *testing.T) {
	vcs := stampedBuild(
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
		debug.BuildSetting{Key: "vcs.time", Value: "2025-06-01T12:00:00Z"},
	)
	unavailable := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := []struct {
		name       string
		commit     string
		date       string
		read       func() (*debug.BuildInfo, bool)
		wantCommit string
		wantDate   string
		wantString string
	}{
		{"vcs stamp", "", "", vcs, "0123456789abcdef", "2025-06-01T12:00:00Z", Version + "+0123456"},
		{"ldflags win", "feedbee", "2024-01-01", vcs, "feedbee", "2024-01-01", Version + "+feedbee"},
		{"no build info", "", "", unavailable, "", "", Version},
		{"unstamped", "", "", stampedBuild(), "", "", Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := resolveBuild(tt.commit, tt.date, tt.read)
			if b.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", b.Commit, tt.wantCommit)
			}
			if b.BuildDate != tt.wantDate {
				t.Errorf("BuildDate = %q, want %q", b.BuildDate, tt.wantDate)
			}
			if b.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", b.String(), tt.wantString)
			}
			if b.GoVersion != runtime.Version() {
				t.Errorf("GoVersion = %q", b.GoVersion)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, Name+"/"+Version) {
		t.Errorf("UserAgent() = %q, want prefix %q", ua, Name+"/"+Version)
	}
	if ua != UserAgent() {
		t.Error("UserAgent should be stable")
	}
}
