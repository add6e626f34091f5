package rdbms

import (
	"testing"
)

func TestSchemaTable(t *testing.T) {
	cases := []struct {
		input  string
		schema string
		table  string
	}{
		{"schema.table", "schema", "table"},         // Test 1
		{`schema."table"`, "schema", `"table"`},     // Test 2
		{`"random.table"`, "", `"random.table"`},    // Test 3
		{`"schema"."table"`, `"schema"`, `"table"`}, // Test 4
		{`"schema".table`, `"schema"`, `table`},     // Test 5
		{"survey_activity", "", "survey_activity"},  // Test 6
		{"dbo.survey_activity", "dbo", "survey_activity"},
	}
	for idx, c := range cases {
		st := SchemaTable{SchemaTable: c.input}
		if got := st.GetSchema(); got != c.schema {
			t.Fatalf("test %v: expected schema = %q; got %q", idx+1, c.schema, got)
		}
		if got := st.GetTable(); got != c.table {
			t.Fatalf("test %v: expected table = %q; got %q", idx+1, c.table, got)
		}
		if got := st.String(); got != c.input {
			t.Fatalf("test %v: expected %q; got %q", idx+1, c.input, got)
		}
	}
	st := NewSchemaTable("dbo", "t")
	if st.String() != "dbo.t" {
		t.Fatalf("unexpected NewSchemaTable result %q", st.String())
	}
}
