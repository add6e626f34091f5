package plugin_loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/relloyd/survey2sql/constants"
)

type Loc []string

// Locations are searched in order for plugins; the directory of the executable is added first.
var Locations = Loc{
	"/usr/local/lib",
}

func init() {
	ex, err := os.Executable()
	if err != nil {
		return
	}
	exReal, err := filepath.EvalSymlinks(ex)
	if err != nil {
		return
	}
	Locations = append(Loc{filepath.Dir(exReal)}, Locations...)
}

func (l Loc) String() string {
	tmp := make([]string, 0, len(l))
	for _, v := range l {
		tmp = append(tmp, fmt.Sprintf("'%v'", v))
	}
	return strings.Join(tmp, ", ")
}

// searchPath returns Locations followed by the directory in env var S2S_PLUGIN_DIR if it is set.
func searchPath() []string {
	dirs := append([]string{}, Locations...)
	if l := os.Getenv(constants.EnvVarPluginDir); l != "" {
		dirs = append(dirs, l)
	}
	return dirs
}

// LoadPluginExports opens the shared library pluginName and returns its symbol "Exports".
func LoadPluginExports(pluginName string) (interface{}, error) {
	const symbolName = "Exports"
	var errs []string
	for _, l := range searchPath() { // for each location...
		fullPath := path.Join(l, pluginName)
		plug, err := plugin.Open(fullPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%v: %v", fullPath, err))
			continue
		}
		t, err := plug.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("symbol %v not found in plugin %v: %v", symbolName, fullPath, err)
		}
		return t, nil
	}
	if os.Getenv(constants.EnvVarPluginDir) == "" {
		errs = append(errs, fmt.Sprintf("environment variable %v not set", constants.EnvVarPluginDir))
	}
	// Build one error string from all errors of format: (<n>) <error>
	var errTxt string
	for i, e := range errs {
		errTxt = fmt.Sprintf("%v (%v) %v", errTxt, i+1, e)
	}
	return nil, fmt.Errorf("unable to load plugin due to the following error(s): %v", strings.TrimSpace(errTxt))
}
