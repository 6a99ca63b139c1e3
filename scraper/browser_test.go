package scraper

import "testing"

func TestFindChromeBinaryPrefersConfiguredPath(t *testing.T) {
	if got := findChromeBinary("/opt/custom/chrome"); got != "/opt/custom/chrome" {
		t.Errorf("configured path should win: got %q", got)
	}
}

func TestFindChromeBinaryIgnoresEnvironment(t *testing.T) {
	t.Setenv("CHROME_BIN", "/tmp/not-a-browser")

	// CHROME_BIN reaches the lookup only through config.Load; the raw
	// environment must not leak in.
	if got := findChromeBinary(""); got == "/tmp/not-a-browser" {
		t.Error("lookup read CHROME_BIN from the environment directly")
	}
}
