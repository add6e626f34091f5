package cmd

import (
	"os"
	"testing"

	"github.com/relloyd/survey2sql/config"
	"github.com/spf13/cobra"
)

func TestGetCliFlag(t *testing.T) {
	defer func() { twelveFactorMode = false }()
	keyNotFound := func(key string, out interface{}) error {
		return config.KeyNotFoundError{}
	}
	fromConfig := func(key string, out interface{}) error {
		*out.(*string) = "configValue"
		return nil
	}
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	d := "myDefault"

	// Test 1
	got := switches.getCliFlag(flagName, d, keyNotFound)
	if got.val != d {
		t.Fatalf("Test 1, expected default value %v; got %v", d, got.val)
	}

	// Test 2
	got = switches.getCliFlag(flagName, d, fromConfig)
	if got.val != "configValue" {
		t.Fatalf("Test 2, expected the config value; got %v", got.val)
	}

	// Test 3
	twelveFactorMode = true
	_ = os.Unsetenv(mockEnvVar)
	got = switches.getCliFlag(flagName, d, fromConfig)
	if got.val != d {
		t.Fatalf("Test 3, expected default value %v when %v is unset; got %v", d, mockEnvVar, got.val)
	}

	// Test 4
	if err := os.Setenv(mockEnvVar, "envTest"); err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv(mockEnvVar)
	got = switches.getCliFlag(flagName, d, fromConfig)
	if got.val != "envTest" {
		t.Fatalf("Test 4, expected value from %v; got %v", mockEnvVar, got.val)
	}

	// Test 5
	defer func() {
		if recover() == nil {
			t.Fatal("Test 5, expected panic for an unregistered flag")
		}
	}()
	switches.getCliFlag("not-a-flag", "", fromConfig)
}

func TestAddFlagTwelveFactor(t *testing.T) {
	defer func() { twelveFactorMode = false }()
	twelveFactorMode = true
	setEnv(t, map[string]string{
		"S2S_EXCLUDE_TODAY":   "false",
		"S2S_EXEC_BATCH_SIZE": "50",
		"S2S_TIME_ZONE":       "Pacific/Auckland",
	})
	c := &cobra.Command{Use: "test"}
	excludeToday := true
	batchSize := 0
	tz := ""

	// Test 1
	switches.addFlag(c, &excludeToday, "exclude-today", "true", false, "")
	switches.addFlag(c, &batchSize, "exec-batch-size", "1", false, "")
	switches.addFlag(c, &tz, "time-zone", "Local", false, "")
	if excludeToday || batchSize != 50 || tz != "Pacific/Auckland" {
		t.Fatal("Test 1, unexpected values read from the environment: ", excludeToday, batchSize, tz)
	}

	// Test 2
	dryRun := true
	switches.addFlag(c, &dryRun, "dry-run", "", false, "")
	if dryRun {
		t.Fatal("Test 2, expected dry-run to default to false")
	}
}

func TestFlagNameToEnvVar(t *testing.T) {
	if got := flagNameToEnvVar("survey-date-field"); got != "S2S_SURVEY_DATE_FIELD" {
		t.Fatal("unexpected env var name: ", got)
	}
}
