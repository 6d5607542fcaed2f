package models

import "time"

// ScanDecision is the outcome recorded for one historical scan event.
type ScanDecision string

const (
	DecisionAccepted ScanDecision = "accepted"
	DecisionRejected ScanDecision = "rejected"
	DecisionSkipped  ScanDecision = "skipped"
)

// PreviousSeriesScan is one historical scan of a same-series book. Created once
// per scan event, append-only; the scan-history store owns the lifecycle.
type PreviousSeriesScan struct {
	ISBN           string
	Title          string
	SeriesIndex    int // 0 means unknown
	ScannedAt      time.Time
	LocationName   string
	Decision       ScanDecision
	EstimatedPrice float64 // 0 means unknown
}

// SeriesCompletionCheck is the consolidated same-series view for one scan.
type SeriesCompletionCheck struct {
	IsPartOfSeries bool
	SeriesName     string

	// BooksInSeries counts accepted catalog items in the series.
	BooksInSeries int

	// PreviousScans lists recent rejected same-series scans, most-recent-first,
	// restricted to the decision-relevance window.
	PreviousScans []PreviousSeriesScan

	// TotalInSeries/MissingCount come from external series metadata; 0 when
	// unknown.
	TotalInSeries int
	MissingCount  int

	// TotalRejections is the all-time rejected count for audit reporting. The
	// relevance window never trims this figure.
	TotalRejections int
}
