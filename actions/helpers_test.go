package actions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/stream"
	"github.com/relloyd/survey2sql/survey"
)

const testTableDDL = "create table inspections (date_col text not null, inspector text, activity_col text)"

func newTestLogger() logger.Logger {
	return logger.NewLogger("survey2sql", "error", true)
}

// newTestTarget creates a SQLite database file containing table inspections and returns its connection details.
func newTestTarget(t *testing.T) *shared.ConnectionDetails {
	dsn := "sqlite3:" + filepath.Join(t.TempDir(), "target.db")
	db, err := rdbms.NewSqliteConnection(newTestLogger(), &shared.DsnConnectionDetails{Dsn: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err = db.Exec(testTableDDL); err != nil {
		t.Fatal(err)
	}
	return &shared.ConnectionDetails{
		Type:        constants.ConnectionTypeSqlite,
		LogicalName: "target",
		Data:        map[string]string{shared.DefaultDsnConnectionKeyNames.Dsn: dsn},
	}
}

func newTestSource() *shared.ConnectionDetails {
	return &shared.ConnectionDetails{
		Type:        constants.ConnectionTypeSurvey123,
		LogicalName: "portal",
		Data:        map[string]string{"portalUrl": "https://example.invalid"},
	}
}

func countRows(t *testing.T, d *shared.ConnectionDetails, where string) int64 {
	log := newTestLogger()
	db, err := rdbms.OpenDbConnection(log, *d)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	v, _, err := rdbms.SqlQuerySingleValue(context.Background(), log, db, "select count(*) from inspections "+where)
	if err != nil {
		t.Fatal(err)
	}
	return v.(int64)
}

func submission(date string, inspector string, activities interface{}) stream.Record {
	d, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		panic(err)
	}
	rec := stream.NewRecord()
	rec.SetData("survey_date", d.Add(9*time.Hour))
	rec.SetData("inspector", inspector)
	rec.SetData("activities", activities)
	return rec
}

// newStubDownload returns a survey.DownloadFunc that serves rows and counts its calls.
func newStubDownload(rows []stream.Record, calls *int) survey.DownloadFunc {
	return func(ctx context.Context, surveyID string) ([]stream.Record, error) {
		*calls++
		return rows, nil
	}
}

func fixedNow(date string) func() time.Time {
	return func() time.Time {
		d, _ := time.Parse(constants.DateFormat, date)
		return d.Add(10 * time.Hour)
	}
}

func newTestSurveyDeltaConfig(t *testing.T) *SurveyDeltaConfig {
	job := NewSurveyDeltaJob()
	job.SourceConnection = "portal"
	job.SurveyID = "0123456789abcdef"
	job.SurveyDateField = "survey_date"
	job.TargetConnection = "target"
	job.TargetTable = "inspections"
	job.TargetDateField = "date_col"
	job.ColumnMap = "inspector"
	job.MultiSelectField = "activities"
	job.TimeZone = "UTC"
	return &SurveyDeltaConfig{
		SurveyDeltaJob: job,
		SrcConnDetails: newTestSource(),
		TgtConnDetails: newTestTarget(t),
		LogLevel:       "error",
	}
}

// mapConnections satisfies ConnectionHandler and ConnectionLoader.
type mapConnections map[string]shared.ConnectionDetails

func (m mapConnections) GetConnectionType(name string) (string, error) {
	d, err := m.LoadConnection(name)
	return d.Type, err
}

func (m mapConnections) GetConnectionDetails(name string) (*shared.ConnectionDetails, error) {
	d, err := m.LoadConnection(name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m mapConnections) LoadConnection(name string) (shared.ConnectionDetails, error) {
	d, ok := m[name]
	if !ok {
		return shared.ConnectionDetails{}, &connectionNotFoundError{name}
	}
	return d, nil
}

type connectionNotFoundError struct{ name string }

func (e *connectionNotFoundError) Error() string { return "connection not found: " + e.name }
