package domain

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind int

const (
	OutcomeRefreshing OutcomeKind = iota
	OutcomeSuccess
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRefreshing:
		return "refreshing"
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is one emission of a weather sync.
//
//	Refreshing: Refreshing is set, Snapshot and Err are empty.
//	Success:    Snapshot is set.
//	Error:      Err is set; Snapshot is set only for fresh cached data.
type Outcome struct {
	Kind       OutcomeKind
	Refreshing bool
	Snapshot   *WeatherSnapshot
	Err        error
}

// Refreshing reports that a remote fetch started (true) or finished (false).
func Refreshing(active bool) Outcome {
	return Outcome{Kind: OutcomeRefreshing, Refreshing: active}
}

// Success carries a snapshot that can be displayed.
func Success(s WeatherSnapshot) Outcome {
	return Outcome{Kind: OutcomeSuccess, Snapshot: &s}
}

// Failure carries the cause of a failed fetch and, optionally, fresh cached data.
func Failure(err error, cached *WeatherSnapshot) Outcome {
	return Outcome{Kind: OutcomeError, Err: err, Snapshot: cached}
}
