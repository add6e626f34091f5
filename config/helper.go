package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/survey2sql/constants"
	h "github.com/relloyd/survey2sql/helper"
)

var configHomeDir string

// EnvVarHomeDir overrides the default config directory.
var EnvVarHomeDir = h.GetEnvVarName("home")

// mustGetConfigHomeDir returns the directory that stores all config files.
// S2S_HOME overrides the default of ~/.survey2sql.
func mustGetConfigHomeDir() string {
	if configHomeDir == "" {
		if d := os.Getenv(EnvVarHomeDir); d != "" {
			configHomeDir = d
			return configHomeDir
		}
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		configHomeDir = path.Join(home, constants.ConfigDirName)
	}
	return configHomeDir
}

// makeDir will make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("error creating directory %v: %w", dir, err)
		}
	} else if err != nil {
		return err
	}
	return nil
}
