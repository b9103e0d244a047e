package model

import "time"

// RunSummary captures metrics from a single batch validation / ingest run.
type RunSummary struct {
	RunID            string
	BatchSHA256      string
	Status           string // report status: ok, warn or error
	AlreadyLoaded    bool
	Rejected         bool
	Promoted         bool
	FilesLoaded      int
	RecordsRead      int64
	RecordsStaged    int64
	RecordsPromoted  int64
	IssueCount       int
	WarningCount     int
	RecordsByFile    map[Category]int64
	DurationParse    time.Duration
	DurationValidate time.Duration
	DurationStage    time.Duration
	DurationPromote  time.Duration
	DurationTotal    time.Duration
}
