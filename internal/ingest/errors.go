package ingest

// OracleError marks a failure of the scoring oracle for one observation.
// The observation is dropped: nothing is persisted and nothing is broadcast.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string { return "scoring oracle: " + e.Err.Error() }
func (e *OracleError) Unwrap() error { return e.Err }

// PersistenceError marks a failed atomic write set. The pipeline never
// broadcasts after one: subscribers must not observe state that failed to
// persist.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persist observation logs: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
