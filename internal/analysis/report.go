package analysis

// OperationReport holds the outcome of one operation kind in a complexity
// analysis. It is zero-valued when the kind was not requested.
type OperationReport struct {
	Complexity     Complexity `json:"complexity"`
	Pass1ElapsedUS uint64     `json:"pass1_elapsed_us"`
	Pass2ElapsedUS uint64     `json:"pass2_elapsed_us"`

	// Error identifiers and messages captured from failed workers, per pass.
	Pass1Errors        []string `json:"pass1_errors,omitempty"`
	Pass2Errors        []string `json:"pass2_errors,omitempty"`
	Pass1ErrorMessages []string `json:"pass1_error_messages,omitempty"`
	Pass2ErrorMessages []string `json:"pass2_error_messages,omitempty"`

	// Analysis is the printable measurement table. Advisory only.
	Analysis string `json:"analysis,omitempty"`
}

// Failed reports whether any worker of either pass failed.
func (r OperationReport) Failed() bool {
	return len(r.Pass1Errors) > 0 || len(r.Pass2Errors) > 0
}

// ComplexityReport is returned by AnalyseComplexity.
type ComplexityReport struct {
	RunID    string          `json:"run_id"`
	TestName string          `json:"test_name"`
	Insert   OperationReport `json:"insert"`
	Select   OperationReport `json:"select"`
	Update   OperationReport `json:"update"`
	Delete   OperationReport `json:"delete"`
}

// Operation returns the report of kind.
func (r *ComplexityReport) Operation(kind OperationKind) *OperationReport {
	switch kind {
	case Insert:
		return &r.Insert
	case Select:
		return &r.Select
	case Update:
		return &r.Update
	default:
		return &r.Delete
	}
}

// Failed reports whether any operation captured errors.
func (r *ComplexityReport) Failed() bool {
	for _, kind := range operationKinds {
		if r.Operation(kind).Failed() {
			return true
		}
	}
	return false
}

// LatencySummary condenses the per-operation latencies of a reentrancy phase,
// in microseconds.
type LatencySummary struct {
	Count int64 `json:"count"`
	P50   int64 `json:"p50_us"`
	P95   int64 `json:"p95_us"`
	P99   int64 `json:"p99_us"`
	Max   int64 `json:"max_us"`
}

// ReentrancyReport is returned by TestReentrancy.
type ReentrancyReport struct {
	RunID    string `json:"run_id"`
	TestName string `json:"test_name"`

	// ActivityLog interleaves the I/S/U/D tags of the four phases as they ran.
	ActivityLog string `json:"activity_log"`

	MsInserting    uint64 `json:"ms_inserting"`
	MsSelectSettle uint64 `json:"ms_select_settle"`
	MsUpdating     uint64 `json:"ms_updating"`
	MsDeleteSettle uint64 `json:"ms_delete_settle"`

	Errors        []string `json:"errors,omitempty"`
	ErrorMessages []string `json:"error_messages,omitempty"`

	// Latencies is keyed by phase: insert, select, update, delete.
	Latencies map[string]LatencySummary `json:"latencies"`
}

// Failed reports whether any phase failed.
func (r *ReentrancyReport) Failed() bool {
	return len(r.Errors) > 0
}
