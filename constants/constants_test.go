package constants

import (
	"regexp"
	"testing"
	"time"
)

func TestDateFormats(t *testing.T) {
	// Dates written to the target must match the regexp used to validate them.
	re := regexp.MustCompile(DateFormatRegex)
	if !re.MatchString(time.Date(2021, 3, 9, 0, 0, 0, 0, time.UTC).Format(DateFormat)) {
		t.Fatal("DateFormat does not match DateFormatRegex")
	}
	if !re.MatchString(DefaultStartDate) {
		t.Fatal("DefaultStartDate does not match DateFormatRegex")
	}
	if _, err := time.Parse(DateFormat, DefaultStartDate); err != nil {
		t.Fatal("DefaultStartDate cannot be parsed: ", err)
	}
}
