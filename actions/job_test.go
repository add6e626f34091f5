package actions

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/stream"
)

func TestRunJobFromFile(t *testing.T) {
	log := newTestLogger()
	calls := 0
	rows := []stream.Record{
		submission("2021-03-10", "ann", "Inspection,Feeding"),
		submission("2021-03-11", "bob", "Treatment"),
	}
	dir := t.TempDir()

	for idx, outputType := range []string{"json", "yaml"} {
		// Test 1 & 2
		log.Info("Test ", idx+1, ", export ", outputType, " then run the file with connections from config...")
		cfg := newTestSurveyDeltaConfig(t)
		cfg.ExportConfigType = outputType
		cfg.SurveyPageSize = 50
		buf := &bytes.Buffer{}
		cfg.Out = buf
		if err := RunSurveyDelta(cfg); err != nil {
			t.Fatal("Test ", idx+1, ", unexpected error exporting: ", err)
		}
		fileName := filepath.Join(dir, "job."+outputType)
		if err := ioutil.WriteFile(fileName, buf.Bytes(), 0600); err != nil {
			t.Fatal(err)
		}
		j, err := loadJobFromFile(fileName)
		if err != nil {
			t.Fatal("Test ", idx+1, ", unexpected error loading job: ", err)
		}
		if j.SurveyDelta != cfg.SurveyDeltaJob {
			t.Fatalf("Test %v, job changed after save and load: got %+v; expected %+v", idx+1, j.SurveyDelta, cfg.SurveyDeltaJob)
		}
		conns := mapConnections{"portal": *cfg.SrcConnDetails, "target": *cfg.TgtConnDetails}
		err = RunJobFromFile(&JobConfig{
			JobFile:     fileName,
			Connections: conns,
			LogLevel:    "error",
			Download:    newStubDownload(rows, &calls),
			Now:         fixedNow("2021-03-15"),
		})
		if err != nil {
			t.Fatal("Test ", idx+1, ", unexpected error running job: ", err)
		}
		if n := countRows(t, cfg.TgtConnDetails, ""); n != 3 {
			t.Fatal("Test ", idx+1, ", expected 3 rows; got ", n)
		}
		log.Info("Test ", idx+1, ", complete")
	}

	// Test 3
	log.Info("Test 3, missing options take their defaults...")
	fileName := filepath.Join(dir, "minimal.yaml")
	minimal := `type: surveyDelta
connections:
  portal:
    type: survey123
    logicalName: portal
  target:
    type: sqlite3
    logicalName: target
surveyDelta:
  sourceConnection: portal
  surveyId: abc
  surveyDateField: survey_date
  targetConnection: target
  targetTable: inspections
  targetDateField: date_col
`
	if err := ioutil.WriteFile(fileName, []byte(minimal), 0600); err != nil {
		t.Fatal(err)
	}
	j, err := loadJobFromFile(fileName)
	if err != nil {
		t.Fatal("Test 3, unexpected error: ", err)
	}
	if !j.SurveyDelta.ExcludeToday || j.SurveyDelta.OptionColumn != "activity_col" || j.SurveyDelta.StartDate != "1900-01-01" {
		t.Fatalf("Test 3, expected defaults; got %+v", j.SurveyDelta)
	}
	log.Info("Test 3, complete")

	// Test 4
	log.Info("Test 4, unknown connection...")
	err = RunJobFromFile(&JobConfig{JobFile: fileName, Connections: mapConnections{}})
	if err == nil {
		t.Fatal("Test 4, expected error for connections missing from config")
	}
	log.Info("Test 4, complete")

	// Test 5
	log.Info("Test 5, unsupported file extension...")
	if _, err = loadJobFromFile(filepath.Join(dir, "job.txt")); err == nil {
		t.Fatal("Test 5, expected error")
	}
	log.Info("Test 5, complete")
}

func TestLoadConnectionDataIfMissing(t *testing.T) {
	log := newTestLogger()
	src := newTestSource()
	j := &JobDefinition{Connections: shared.DBConnections{
		"portal": {Type: src.Type, LogicalName: "portal"},
		"other":  {Type: "sqlite3", LogicalName: "x", Data: map[string]string{"dsn": "sqlite3::memory:"}},
	}}

	// Test 1
	log.Info("Test 1, only connections without data are loaded...")
	if err := loadConnectionDataIfMissing(mapConnections{"portal": *src}, j); err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	if j.Connections["portal"].Data["portalUrl"] != "https://example.invalid" {
		t.Fatal("Test 1, expected portal data to be loaded; got ", j.Connections["portal"])
	}
	if j.Connections["other"].LogicalName != "x" {
		t.Fatal("Test 1, expected populated connection to be untouched")
	}
	log.Info("Test 1, complete")
}
