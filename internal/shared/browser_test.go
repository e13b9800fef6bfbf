package shared

import "testing"

func TestOpenBrowser(t *testing.T) {
	original := goos
	t.Cleanup(func() { goos = original })

	goos = func() string { return "plan9" }
	if err := OpenBrowser("http://localhost"); err == nil {
		t.Error("expected unsupported platform error")
	}
}
