package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "librarybuilder ") {
		t.Fatalf("unexpected version line %q", got)
	}
	if !strings.Contains(got, Version) || !strings.Contains(got, GitCommit) {
		t.Errorf("version line %q missing metadata", got)
	}
}
