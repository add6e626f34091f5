package helper

import (
	"strings"
	"testing"
)

type validationTarget struct {
	Name   string `errorTxt:"name" mandatory:"yes"`
	Table  string `errorTxt:"table" mandatory:"yes"`
	Batch  int    `errorTxt:"batch size" mandatory:"yes"`
	Notes  string `errorTxt:"notes"`
	Nested struct {
		Field string `errorTxt:"nested field" mandatory:"yes"`
	}
}

func TestValidateStructIsPopulated(t *testing.T) {
	// Test 1, all mandatory fields missing.
	v := validationTarget{}
	err := ValidateStructIsPopulated(&v)
	if err == nil {
		t.Fatal("expected an error for missing fields")
	}
	for _, s := range []string{"name", "table", "batch size", "nested field"} {
		if !strings.Contains(err.Error(), s) {
			t.Fatalf("expected error to mention %q; got %v", s, err)
		}
	}
	if strings.Contains(err.Error(), "notes") {
		t.Fatalf("optional field reported as missing: %v", err)
	}
	// Test 2, all populated.
	v = validationTarget{Name: "a", Table: "b", Batch: 1}
	v.Nested.Field = "c"
	if err := ValidateStructIsPopulated(v); err != nil {
		t.Fatal(err)
	}
}
