package actions

import (
	"sort"
	"strings"

	"github.com/relloyd/survey2sql/constants"
)

// IsSupportedConnectionType returns true if the connection type is a source or target found in ActionFuncs.
func IsSupportedConnectionType(connectionType string) bool {
	_, ok := getSupportedConnectionTypesMap("")[connectionType]
	return ok
}

// GetSupportedOdbcConnectionTypes returns the ODBC target types as a CSV string.
func GetSupportedOdbcConnectionTypes() string {
	return getSupportedConnectionTypes(constants.ConnectionTypeOdbc)
}

// GetSupportedLoadDeltaConnectionTypes returns the <source type>-<target type> pairs usable with 'load delta'.
func GetSupportedLoadDeltaConnectionTypes() string {
	var s []string
	for k := range ActionFuncs[constants.ActionFuncsCommandLoad][constants.ActionFuncsSubCommandDelta] {
		s = append(s, "  "+k)
	}
	sort.Strings(s)
	return strings.Join(s, "\n")
}

// getSupportedConnectionTypes returns a sorted CSV of the types in ActionFuncs that start with typePrefix.
func getSupportedConnectionTypes(typePrefix string) string {
	m := getSupportedConnectionTypesMap(typePrefix)
	s := make([]string, 0, len(m))
	for k := range m {
		s = append(s, k)
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

// getSupportedConnectionTypesMap collects source and target types from keys of the form <src type>-<tgt type>.
func getSupportedConnectionTypesMap(typePrefix string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, command := range ActionFuncs { // for each command in ActionFuncs...
		for _, subcommand := range command { // for each subcommand in command...
			for k := range subcommand { // for each Action...
				for _, t := range strings.SplitN(k, "-", 2) {
					if strings.HasPrefix(t, typePrefix) {
						m[t] = struct{}{}
					}
				}
			}
		}
	}
	return m
}
