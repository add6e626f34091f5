package plugin_loader

import (
	"os"
	"strings"
	"testing"

	"github.com/relloyd/survey2sql/constants"
)

func TestLoadPluginExports_Missing(t *testing.T) {
	dir := t.TempDir()
	old := os.Getenv(constants.EnvVarPluginDir)
	defer os.Setenv(constants.EnvVarPluginDir, old)
	os.Setenv(constants.EnvVarPluginDir, dir)
	_, err := LoadPluginExports("no-such-plugin.so")
	if err == nil {
		t.Fatal("expected an error loading a missing plugin")
	}
	if !strings.Contains(err.Error(), dir) {
		t.Fatalf("expected the error to mention the plugin dir %v; got %v", dir, err)
	}
}

func TestLoc_String(t *testing.T) {
	l := Loc{"/a", "/b"}
	if got := l.String(); got != "'/a', '/b'" {
		t.Fatalf("unexpected %q", got)
	}
}
