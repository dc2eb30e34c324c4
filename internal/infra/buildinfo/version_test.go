package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q, want runtime version", info.GoVersion)
	}
}

func TestLdflagsWin(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "v9.9.9"
	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("Get().Version = %q, want v9.9.9", got)
	}
	if got := UserAgent(); got != "kci-cli/v9.9.9" {
		t.Errorf("UserAgent() = %q", got)
	}
	if !strings.HasPrefix(String(), "v9.9.9 (") {
		t.Errorf("String() = %q", String())
	}
}
