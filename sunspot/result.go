package sunspot

import "encoding/json"

// Source reports where a result's sun data came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
)

// Result is a resolved lookup.
type Result struct {
	City      string          `json:"city"`
	Latitude  string          `json:"latitude"`
	Longitude string          `json:"longitude"`
	Date      string          `json:"date_requested"`
	SunData   json.RawMessage `json:"sun_data"`
	Source    Source          `json:"source"`
}
