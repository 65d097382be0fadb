package recorder

import "time"

// Fetch outcomes.
const (
	OutcomeSuccess      = "SUCCESS"
	OutcomeNetworkError = "NETWORK_ERROR"
	OutcomeParseError   = "PARSE_ERROR"
	OutcomeOtherError   = "ERROR"
)

// FetchAttempt is one pass through the Fetching state.
type FetchAttempt struct {
	ID          string
	At          time.Time
	Source      string
	Outcome     string
	Slots       int
	WindowStart time.Time
	WindowEnd   time.Time
	RetryCount  int
	NextDue     time.Time
	Error       string
}

// Recorder journals fetch attempts for diagnostics. It is never read back to
// restore prices; the cache always starts empty at boot.
type Recorder interface {
	RecordFetch(a *FetchAttempt) error
	Close() error
}
