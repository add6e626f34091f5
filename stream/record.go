package stream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	h "github.com/relloyd/survey2sql/helper"
)

// Record holds one row of data flowing from the survey source to the target table.
// A nil value represents a database NULL.
type Record struct {
	data map[string]interface{}
}

// NewRecord creates a new Record and returns it by value. The underlying map is shared by copies.
func NewRecord() Record {
	return Record{
		data: make(map[string]interface{}),
	}
}

// NewRecordWithCapacity creates a new Record with room for n fields.
func NewRecordWithCapacity(n int) Record {
	return Record{
		data: make(map[string]interface{}, n),
	}
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data[name] = value
}

// Lookup returns the value of field name and whether it exists.
func (sr Record) Lookup(name string) (interface{}, bool) {
	val, ok := sr.data[name]
	return val, ok
}

func (sr Record) GetDataMap() map[string]interface{} {
	return sr.data
}

// GetDataAsString will convert the value of field name to a string.
func (sr Record) GetDataAsString(name string) string {
	v, ok := sr.data[name]
	if !ok {
		panic(fmt.Sprintf("unexpected field %q does not exist in the input stream (bad job definition?)", name))
	}
	return h.GetStringFromInterface(v)
}

// GetSortedDataMapKeys will return a slice of the keys found in map sr.data.
func (sr Record) GetSortedDataMapKeys() []string {
	retval := make([]string, 0, len(sr.data))
	for k := range sr.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

func (sr Record) CopyTo(t Record) {
	for k, v := range sr.data {
		t.SetData(k, v)
	}
}

// Clone returns a new Record holding a shallow copy of the fields in sr.
func (sr Record) Clone() Record {
	retval := NewRecordWithCapacity(len(sr.data))
	sr.CopyTo(retval)
	return retval
}

// GetJson returns the JSON representation of sr.data using the supplied keys to fetch the data.
func (sr Record) GetJson(keys []string) (string, error) {
	out := make([]string, len(keys))
	for idx, key := range keys { // for each key...
		jsonValue, err := json.Marshal(sr.GetDataAsString(key))
		if err != nil {
			return "", fmt.Errorf("error marshalling the value of key %q to JSON: %v", key, err)
		}
		k, _ := json.Marshal(key)
		out[idx] = fmt.Sprintf("%s: %s", k, jsonValue)
	}
	return fmt.Sprintf("{%v}", strings.Join(out, ", ")), nil
}
