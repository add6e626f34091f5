package components

import (
	"math"
	"strings"
	"testing"

	"github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/stream"
)

func TestFanOutMultiSelect(t *testing.T) {
	log := newTestLogger()
	cfg := &FanOutConfig{
		Log:              log,
		Name:             "test-fan-out",
		Columns:          helper.TokensToOrderedMap("survey_date:date_col, site:site_col"),
		MultiSelectField: "activities",
		OptionColumn:     "activity_col",
	}

	// Test 1
	log.Info("Test 1, one output row per selected option...")
	rows := []stream.Record{newRecord("survey_date", "2021-03-11", "site", "north", "activities", "Inspection,Feeding,Treatment")}
	out, err := FanOutMultiSelect(cfg, rows)
	if err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	if len(out) != 3 {
		t.Fatal("Test 1, expected 3 rows; got ", len(out))
	}
	expected := []string{"Inspection", "Feeding", "Treatment"}
	for idx, r := range out {
		if fieldValue(r, "activity_col") != expected[idx] {
			t.Fatal("Test 1, unexpected option: ", fieldValue(r, "activity_col"))
		}
		if fieldValue(r, "date_col") != "2021-03-11" || fieldValue(r, "site_col") != "north" {
			t.Fatal("Test 1, mapped columns differ: ", r.GetDataMap())
		}
		if len(r.GetDataMap()) != 3 {
			t.Fatal("Test 1, unexpected number of columns: ", r.GetDataMap())
		}
	}
	log.Info("Test 1, complete")

	// Test 2
	log.Info("Test 2, output count is the sum of token counts...")
	rows = []stream.Record{
		newRecord("survey_date", "2021-03-11", "site", "a", "activities", "Inspection"),
		newRecord("survey_date", "2021-03-12", "site", "b", "activities", " Inspection , Feeding "),
		newRecord("survey_date", "2021-03-13", "site", "c", "activities", nil),
		newRecord("survey_date", "2021-03-14", "site", "d", "activities", ""),
		newRecord("survey_date", "2021-03-15", "site", "e", "activities", "Feeding,"),
	}
	want := 0
	for _, r := range rows {
		v := fieldValue(r, "activities")
		if v == nil {
			want++
		} else {
			want += strings.Count(v.(string), ",") + 1
		}
	}
	out, err = FanOutMultiSelect(cfg, rows)
	if err != nil {
		t.Fatal("Test 2, unexpected error: ", err)
	}
	if len(out) != want || want != 7 {
		t.Fatal("Test 2, expected ", want, " rows; got ", len(out))
	}
	if fieldValue(out[1], "activity_col") != "Inspection" || fieldValue(out[2], "activity_col") != "Feeding" {
		t.Fatal("Test 2, tokens were not trimmed")
	}
	if fieldValue(out[3], "activity_col") != nil || fieldValue(out[4], "activity_col") != nil || fieldValue(out[6], "activity_col") != nil {
		t.Fatal("Test 2, empty options should be nil")
	}
	log.Info("Test 2, complete")

	// Test 3
	log.Info("Test 3, NaN values become nil...")
	rows = []stream.Record{newRecord("survey_date", "2021-03-11", "site", math.NaN(), "activities", math.NaN())}
	out, err = FanOutMultiSelect(cfg, rows)
	if err != nil {
		t.Fatal("Test 3, unexpected error: ", err)
	}
	if len(out) != 1 || fieldValue(out[0], "site_col") != nil || fieldValue(out[0], "activity_col") != nil {
		t.Fatal("Test 3, expected nil values; got ", out)
	}
	log.Info("Test 3, complete")

	// Test 4
	log.Info("Test 4, missing fields are errors...")
	if _, err = FanOutMultiSelect(cfg, []stream.Record{newRecord("survey_date", "2021-03-11", "activities", "x")}); err == nil {
		t.Fatal("Test 4, expected error for missing mapped field")
	}
	if _, err = FanOutMultiSelect(cfg, []stream.Record{newRecord("survey_date", "2021-03-11", "site", "x")}); err == nil {
		t.Fatal("Test 4, expected error for missing multi-select field")
	}
	log.Info("Test 4, complete")

	// Test 5
	log.Info("Test 5, without a multi-select field each input makes one output...")
	cfg5 := &FanOutConfig{Log: log, Name: "test", Columns: helper.TokensToOrderedMap("site:site_col")}
	out, err = FanOutMultiSelect(cfg5, []stream.Record{newRecord("site", "a"), newRecord("site", "b")})
	if err != nil {
		t.Fatal("Test 5, unexpected error: ", err)
	}
	if len(out) != 2 || cfg5.OutputColumns().Len() != 1 {
		t.Fatal("Test 5, unexpected output: ", out)
	}
	log.Info("Test 5, complete")
}

func TestFanOutOutputColumns(t *testing.T) {
	cfg := &FanOutConfig{
		Columns:          helper.TokensToOrderedMap("a:col_a,b:col_b"),
		MultiSelectField: "m",
		OptionColumn:     "opt",
	}
	got := helper.OrderedMapKeysToStringSlice(cfg.OutputColumns())
	if strings.Join(got, ",") != "col_a,col_b,opt" {
		t.Fatal("unexpected output columns: ", got)
	}
	// The option column may not also be a mapped target.
	cfg.OptionColumn = "col_b"
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for duplicate option column")
	}
}
