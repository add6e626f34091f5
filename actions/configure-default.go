package actions

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/config"
	"github.com/relloyd/survey2sql/helper"
)

type DefaultAddConfig struct {
	ConfigFile ConnectionGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string                 `errorTxt:"key" mandatory:"yes"`
	Value      string                 `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Out        io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile ConnectionGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string                 `errorTxt:"key" mandatory:"yes"`
	Out        io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it returns an error when the key exists.
// The config file is created lazily when the value is set.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if cfg.ConfigFile == nil {
		return fmt.Errorf("please supply values for config-file")
	}
	var val string
	err := cfg.ConfigFile.Get(cfg.Key, &val)
	if err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil && !errors.Is(err, config.ErrKeyNotFound) { // else there was an unexpected error...
		return err
	}
	if err = cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	fmt.Fprintf(out(cfg.Out), "Key %q added\n", cfg.Key)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if cfg.ConfigFile == nil {
		return fmt.Errorf("please supply values for config-file")
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	fmt.Fprintf(out(cfg.Out), "Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints all keys and values in c.
func RunDefaultList(c ConnectionLister, w io.Writer) error {
	keys, err := c.GetAllKeys()
	if err != nil {
		return err
	}
	w = out(w)
	for _, k := range keys {
		var v string
		if err := c.Get(k, &v); err != nil {
			return err
		}
		fmt.Fprintf(w, "%v: %v\n", k, v)
	}
	return nil
}
