package service

import "time"

// LogFilter selects events of the current run.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "START", "STOP", "STATE_CHANGE", "ERROR", "CANCEL", "TELEMETRY"
	AfterID string    // return only events after this one; unknown IDs select the whole log
	Limit   int       // at most this many events, oldest first; 0 means all
}
