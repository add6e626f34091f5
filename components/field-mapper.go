package components

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/constants"
	h "github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/stream"
)

// FanOutConfig describes how survey records are reshaped into target table rows.
type FanOutConfig struct {
	Log              logger.Logger
	Name             string
	Columns          *om.OrderedMap // ordered map of: key = survey field name; value = target column name
	MultiSelectField string         // optional survey field holding comma separated choices
	OptionColumn     string         // target column that receives one choice per output row
	Separator        string
}

func (cfg *FanOutConfig) validate() error {
	if cfg.Columns == nil || cfg.Columns.Len() == 0 {
		return fmt.Errorf("%v: missing column mapping configuration", cfg.Name)
	}
	if cfg.MultiSelectField != "" && cfg.OptionColumn == "" {
		cfg.OptionColumn = constants.DefaultOptionColumn
	}
	if cfg.Separator == "" {
		cfg.Separator = constants.MultiSelectSeparator
	}
	if cfg.MultiSelectField != "" {
		iter := cfg.Columns.IterFunc()
		for kv, ok := iter(); ok; kv, ok = iter() {
			if kv.Value.(string) == cfg.OptionColumn {
				return fmt.Errorf("%v: option column %q is also mapped from field %v", cfg.Name, cfg.OptionColumn, kv.Key)
			}
		}
	}
	return nil
}

// OutputColumns returns the target columns in insert order, keyed and valued by column name.
// The option column comes last when a multi-select field is configured.
func (cfg *FanOutConfig) OutputColumns() *om.OrderedMap {
	retval := om.NewOrderedMap()
	iter := cfg.Columns.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval.Set(kv.Value, kv.Value)
	}
	if cfg.MultiSelectField != "" {
		col := cfg.OptionColumn
		if col == "" {
			col = constants.DefaultOptionColumn
		}
		retval.Set(col, col)
	}
	return retval
}

// SplitMultiSelect splits v into its selected options.
// Tokens are trimmed. A nil or NaN value, or an empty token, yields a nil option so that
// every input value produces at least one output row.
func SplitMultiSelect(v interface{}, sep string) []interface{} {
	if v == nil || h.IsNaN(v) {
		return []interface{}{nil}
	}
	tokens := strings.Split(h.GetStringFromInterface(v), sep)
	retval := make([]interface{}, len(tokens))
	for idx, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			retval[idx] = nil
		} else {
			retval[idx] = t
		}
	}
	return retval
}

// FanOutMultiSelect maps each input record to target columns and emits one output record per
// option found in MultiSelectField. Without a multi-select field each input yields one output.
// NaN values are converted to nil.
func FanOutMultiSelect(cfg *FanOutConfig, rows []stream.Record) ([]stream.Record, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// Split all options up front so the output can be allocated once.
	options := make([][]interface{}, len(rows))
	total := 0
	for idx, rec := range rows { // for each input record...
		if cfg.MultiSelectField == "" {
			options[idx] = []interface{}{nil}
		} else {
			v, ok := rec.Lookup(cfg.MultiSelectField)
			if !ok {
				return nil, errors.Errorf("%v: multi-select field %q not found in record %v", cfg.Name, cfg.MultiSelectField, idx+1)
			}
			options[idx] = SplitMultiSelect(v, cfg.Separator)
		}
		total += len(options[idx])
	}
	numCols := cfg.Columns.Len() + 1
	retval := make([]stream.Record, 0, total)
	for idx, rec := range rows { // for each input record...
		base := stream.NewRecordWithCapacity(numCols)
		iter := cfg.Columns.IterFunc()
		for kv, ok := iter(); ok; kv, ok = iter() { // for each mapped field...
			v, found := rec.Lookup(kv.Key.(string))
			if !found {
				return nil, errors.Errorf("%v: field %q not found in record %v", cfg.Name, kv.Key, idx+1)
			}
			if h.IsNaN(v) {
				v = nil
			}
			base.SetData(kv.Value.(string), v)
		}
		if cfg.MultiSelectField == "" {
			retval = append(retval, base)
			continue
		}
		for _, opt := range options[idx] { // for each selected option...
			out := base.Clone()
			out.SetData(cfg.OptionColumn, opt)
			retval = append(retval, out)
		}
	}
	cfg.Log.Debug(cfg.Name, " produced ", len(retval), " records from ", len(rows), " inputs")
	return retval, nil
}
