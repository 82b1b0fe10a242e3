package version

import (
	"strings"
	"testing"
	"time"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestGet_LinkerValues(t *testing.T) {
	restore(t)
	Version = "v1.0.0"
	GitCommit = "abc1234def"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if !info.IsRelease {
		t.Error("v1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234def" {
		t.Errorf("expected linker commit, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build year 2026, got %d", info.BuildDate.Year())
	}
}

func TestGet_Dev(t *testing.T) {
	restore(t)
	Version = "dev"
	if Get().IsRelease {
		t.Error("dev should not be a release")
	}
	Version = "v1.0.0-dirty"
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"short commit", Info{Version: "v1.0.0", GitCommit: "abc1234"}, "v1.0.0-abc1234"},
		{"long commit truncated", Info{Version: "v1.0.0", GitCommit: "abc1234def567"}, "v1.0.0-abc1234"},
		{"dirty", Info{Version: "v1.0.0", GitCommit: "abc1234", IsDirty: true}, "v1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GoVersion: "go1.26.0",
		BuildDate: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	s := info.String()
	if !strings.Contains(s, "built 2026-01-15T10:30:00Z") || !strings.HasSuffix(s, "go1.26.0") {
		t.Errorf("unexpected string %q", s)
	}
}
