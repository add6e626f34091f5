package rdbms

import (
	"regexp"
	"strings"
)

var (
	reQuotedDottedName = regexp.MustCompile(`".+\..+"`)   // "random.table"
	reQuotedSchemaName = regexp.MustCompile(`".+"\.".+"`) // "schema"."table"
)

// SchemaTable holds a target table name of the form [<schema>.]<table>.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{schema + "." + table}
}

// isQuotedTable is true if the name is a quoted "random.table" and not a regular "schema"."table".
func (st *SchemaTable) isQuotedTable() bool {
	return reQuotedDottedName.MatchString(st.SchemaTable) && !reQuotedSchemaName.MatchString(st.SchemaTable)
}

func (st *SchemaTable) GetTable() string {
	if st.isQuotedTable() {
		return st.SchemaTable
	}
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return st.SchemaTable
	}
	return st.SchemaTable[i+1:]
}

func (st *SchemaTable) GetSchema() string {
	if st.isQuotedTable() {
		return ""
	}
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 {
		return ""
	}
	return st.SchemaTable[:i]
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}
