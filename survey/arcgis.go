package survey

import (
	"encoding/json"
	"fmt"
	"strings"

	h "github.com/relloyd/survey2sql/helper"
)

const (
	esriFieldTypeDate  = "esriFieldTypeDate"
	esriFeatureService = "Feature Service"
	survey2Service     = "Survey2Service"
)

// arcgisError is the error envelope returned by the ArcGIS REST API with HTTP status 200.
type arcgisError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *arcgisError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("ArcGIS error %v: %v (%v)", e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("ArcGIS error %v: %v", e.Code, e.Message)
}

type tokenResponse struct {
	Token   string       `json:"token"`
	Expires int64        `json:"expires"`
	Error   *arcgisError `json:"error"`
}

type item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

type itemResponse struct {
	item
	Error *arcgisError `json:"error"`
}

type relatedItemsResponse struct {
	RelatedItems []item       `json:"relatedItems"`
	Error        *arcgisError `json:"error"`
}

type field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Alias string `json:"alias"`
}

type feature struct {
	Attributes map[string]interface{} `json:"attributes"`
}

type queryResponse struct {
	Fields                []field      `json:"fields"`
	Features              []feature    `json:"features"`
	ExceededTransferLimit bool         `json:"exceededTransferLimit"`
	Error                 *arcgisError `json:"error"`
}

// convertValue turns a decoded JSON attribute into a value the database drivers accept.
// Date fields hold epoch milliseconds.
func convertValue(fieldType string, v interface{}) (interface{}, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, nil // strings, bools and nil pass through.
	}
	if fieldType == esriFieldTypeDate {
		ms, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return nil, fmt.Errorf("invalid date value %q: %w", n, err)
			}
			ms = int64(f)
		}
		return h.EpochMillisToTime(ms), nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	return n.Float64()
}
