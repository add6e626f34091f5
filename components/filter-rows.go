package components

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic"
	h "github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/stream"
)

const (
	FilterRowsJsonLogic  = "JsonLogic"
	FilterRowsAbortAfter = "AbortAfter"
)

var filterTypes = mapFilterFuncs{
	FilterRowsJsonLogic:  setupJsonLogicFilter,  // FilterMetadata is the JSON Logic rule
	FilterRowsAbortAfter: setupAbortAfterFilter, // FilterMetadata is the max number of records allowed through
}

var (
	ErrFilterAbortAfterExceededCount = errors.New("record count exceeded")
)

type FilterRowsConfig struct {
	Log     logger.Logger
	Name    string
	Filters []RowFilter // applied in order; a record is kept only if every filter keeps it.
}

// NewRowFilter looks up the filter type in the registry and sets it up with metadata.
func NewRowFilter(log logger.Logger, filterType FilterType, metadata FilterMetadata) (RowFilter, error) {
	fnSetup, ok := filterTypes[filterType]
	if !ok {
		return nil, fmt.Errorf("unable to find filter function using name %v", filterType)
	}
	f, err := fnSetup(log, metadata)
	if err != nil {
		return nil, fmt.Errorf("unable to setup filter %v: %w", filterType, err)
	}
	return f, nil
}

// NewJsonLogicFilter returns a RowFilter that keeps records for which rule evaluates to true.
func NewJsonLogicFilter(log logger.Logger, rule string) (RowFilter, error) {
	return NewRowFilter(log, FilterRowsJsonLogic, FilterMetadata(rule))
}

// FilterRows returns the records in rows that pass all cfg.Filters, preserving their order.
func FilterRows(cfg *FilterRowsConfig, rows []stream.Record) ([]stream.Record, error) {
	retval := make([]stream.Record, 0, len(rows))
	for idx, rec := range rows { // for each input row...
		keep := true
		for _, f := range cfg.Filters {
			var err error
			if keep, err = f(rec); err != nil {
				return nil, fmt.Errorf("%v failed on record %v: %w", cfg.Name, idx+1, err)
			}
			if !keep {
				break
			}
		}
		if keep {
			retval = append(retval, rec)
		}
	}
	cfg.Log.Debug(cfg.Name, " kept ", len(retval), " of ", len(rows), " records")
	return retval, nil
}

// NewDateWindowFilter returns a RowFilter that normalises field to YYYY-MM-DD in loc and keeps
// the record if lower < date and, when upper is not empty, date < upper.
// Records with an empty date are dropped.
func NewDateWindowFilter(log logger.Logger, field string, lower string, upper string, loc *time.Location) RowFilter {
	return func(rec stream.Record) (bool, error) {
		v, ok := rec.Lookup(field)
		if !ok {
			return false, fmt.Errorf("date field %q not found in survey record", field)
		}
		d, err := h.NormaliseDate(v, loc)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", field, err)
		}
		if d == "" {
			log.Trace("dropping record with empty ", field)
			rec.SetData(field, nil)
			return false, nil
		}
		rec.SetData(field, d) // downstream steps see the canonical date.
		if d <= lower {
			return false, nil
		}
		if upper != "" && d >= upper {
			return false, nil
		}
		return true, nil
	}
}

// setupJsonLogicFilter returns a RowFilter, which can be used to filter records using JSON Logic.
func setupJsonLogicFilter(log logger.Logger, metadata FilterMetadata) (RowFilter, error) {
	var result bytes.Buffer
	rule := string(metadata)
	if !jsonlogic.IsValid(strings.NewReader(rule)) {
		return nil, fmt.Errorf("invalid %v rule: %v", FilterRowsJsonLogic, metadata)
	}
	return func(data stream.Record) (bool, error) {
		result.Reset()
		if err := applyJsonLogic(data, rule, &result); err != nil {
			return false, err
		}
		return strings.TrimSpace(result.String()) == "true", nil
	}, nil
}

// setupAbortAfterFilter returns a RowFilter, which can be used to count records and cause an error if the count
// exceeds the (max) integer supplied in the metadata.
// If max == 0 then the filter is essentially disabled.
func setupAbortAfterFilter(log logger.Logger, metadata FilterMetadata) (RowFilter, error) {
	count := 0
	max, err := strconv.Atoi(string(metadata))
	if err != nil {
		return nil, fmt.Errorf("error converting filter metadata value '%v' to an integer: %w", metadata, err)
	}
	return func(data stream.Record) (bool, error) {
		count++
		if max != 0 && count > max { // if the count has exceeded the number of rows we are allowed to pass through...
			return false, ErrFilterAbortAfterExceededCount
		}
		return true, nil
	}, nil
}

// applyJsonLogic will apply json logic supplied in rule to data.
// The result is written to result.
func applyJsonLogic(data stream.Record, rule string, result *bytes.Buffer) error {
	jsonData, err := json.Marshal(data.GetDataMap())
	if err != nil {
		return fmt.Errorf("error marshalling data before applying JSON logic: %v", err)
	}
	if err = jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(jsonData), result); err != nil {
		return fmt.Errorf("error applying JSON logic: %v", err)
	}
	return nil
}
