package models

// ScanEvent is one barcode scan pushed by a scanner gateway. Timestamp is unix
// seconds at scan time.
type ScanEvent struct {
	EventID        string       `json:"event_id"`
	ISBN           string       `json:"isbn"`
	Title          string       `json:"title,omitempty"`
	Condition      string       `json:"condition"`
	SeriesName     string       `json:"series_name,omitempty"`
	SeriesIndex    int          `json:"series_index,omitempty"`
	LocationName   string       `json:"location"`
	Decision       ScanDecision `json:"decision,omitempty"`
	EstimatedPrice float64      `json:"estimated_price,omitempty"`
	Timestamp      int64        `json:"ts"`
}
