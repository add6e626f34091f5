package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/survey"
)

const JobTypeSurveyDelta = "surveyDelta"

// JobDefinition is the saved form of a load that can be replayed with 'pipe --file'.
type JobDefinition struct {
	Type        string               `json:"type"`
	Connections shared.DBConnections `json:"connections"`
	SurveyDelta SurveyDeltaJob       `json:"surveyDelta"`
}

// GetJobDefinition returns the job for c.
// Connection credentials are only included if includeConnections is true, otherwise the logical names
// are kept so the connections can be loaded from config at run time.
func (c *SurveyDeltaConfig) GetJobDefinition(includeConnections bool) JobDefinition {
	j := JobDefinition{
		Type:        JobTypeSurveyDelta,
		Connections: make(shared.DBConnections),
		SurveyDelta: c.SurveyDeltaJob,
	}
	add := func(name string, d *shared.ConnectionDetails) {
		if includeConnections {
			j.Connections[name] = *d
		} else {
			j.Connections[name] = shared.ConnectionDetails{Type: d.Type, LogicalName: d.LogicalName}
		}
	}
	add(c.SourceConnection, c.SrcConnDetails)
	add(c.TargetConnection, c.TgtConnDetails)
	return j
}

// writeJobDefinition writes j to w in the format outputType (yaml or json).
func writeJobDefinition(w io.Writer, j *JobDefinition, outputType string) error {
	var data []byte
	var err error
	switch strings.ToLower(outputType) {
	case "yaml":
		data, err = yaml.Marshal(j)
	case "json":
		data, err = json.MarshalIndent(j, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output type %q, use yaml or json", outputType)
	}
	if err != nil {
		return errors.Wrap(err, "unable to marshal the job definition")
	}
	_, err = w.Write(data)
	return err
}

// loadJobFromFile reads a YAML or JSON job definition.
// Options missing from the file keep their default values.
func loadJobFromFile(fileName string) (*JobDefinition, error) {
	raw, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	j := JobDefinition{SurveyDelta: NewSurveyDeltaJob()}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		if err = json.Unmarshal(raw, &j); err != nil {
			return nil, fmt.Errorf("error reading job JSON: unmarshal errors: %v", err)
		}
	case ".yaml", ".yml":
		b, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(b, &j); err != nil {
			return nil, fmt.Errorf("error reading job YAML after conversion to JSON: unmarshal errors: %v", err)
		}
	default:
		return nil, fmt.Errorf("unable to identify type of job file by its extension. Please use .yaml or .json")
	}
	if j.Type != JobTypeSurveyDelta {
		return nil, fmt.Errorf("unsupported job type %q in file %v", j.Type, fileName)
	}
	return &j, nil
}

// loadConnectionDataIfMissing loads connections from config if they have no credentials in j.
// Do this based on logical name only.
func loadConnectionDataIfMissing(c ConnectionLoader, j *JobDefinition) error {
	for connectionName, v := range j.Connections { // for each connection...
		if len(v.Data) == 0 { // if the credentials are missing...
			if v.LogicalName == "" {
				v.LogicalName = connectionName
				j.Connections[connectionName] = v
			}
			if err := j.Connections.LoadConnection(c, connectionName); err != nil {
				return err
			}
		}
	}
	return nil
}

type JobConfig struct {
	JobFile          string `errorTxt:"job file" mandatory:"yes"`
	Connections      ConnectionLoader
	LogLevel         string
	StackDumpOnPanic bool
	JsonLogs         bool
	DryRun           bool
	// Optional overrides passed through to SurveyDeltaConfig.
	Ctx      context.Context
	Download survey.DownloadFunc
	Now      func() time.Time
}

// RunJobFromFile loads the job in cfg.JobFile and runs it.
func RunJobFromFile(cfg *JobConfig) error {
	if cfg == nil {
		return fmt.Errorf("nil pointer for job config supplied")
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	j, err := loadJobFromFile(cfg.JobFile)
	if err != nil {
		return err
	}
	if err := loadConnectionDataIfMissing(cfg.Connections, j); err != nil {
		return err
	}
	src, ok := j.Connections[j.SurveyDelta.SourceConnection]
	if !ok {
		return fmt.Errorf("source connection %q not found in job connections", j.SurveyDelta.SourceConnection)
	}
	tgt, ok := j.Connections[j.SurveyDelta.TargetConnection]
	if !ok {
		return fmt.Errorf("target connection %q not found in job connections", j.SurveyDelta.TargetConnection)
	}
	a := &SurveyDeltaConfig{
		SurveyDeltaJob:   j.SurveyDelta,
		SrcConnDetails:   &src,
		TgtConnDetails:   &tgt,
		LogLevel:         cfg.LogLevel,
		StackDumpOnPanic: cfg.StackDumpOnPanic,
		JsonLogs:         cfg.JsonLogs,
		DryRun:           cfg.DryRun,
		Ctx:              cfg.Ctx,
		Download:         cfg.Download,
		Now:              cfg.Now,
	}
	if a.LogLevel == "" {
		a.LogLevel = constants.DefaultLogLevel
	}
	return RunSurveyDelta(a)
}
