package analysis

// ResetOccasion tells a Subject which lifecycle boundary triggered Reset.
type ResetOccasion int

const (
	// PreWarmupReset precedes the discarded warm-up inserts.
	PreWarmupReset ResetOccasion = iota
	// FullReset precedes the measured passes and the reentrancy phases.
	FullReset
	// FinalReset follows the last operation of a run.
	FinalReset
)

func (o ResetOccasion) String() string {
	switch o {
	case PreWarmupReset:
		return "PRE_WARMUP_RESET"
	case FullReset:
		return "FULL_RESET"
	case FinalReset:
		return "FINAL_RESET"
	default:
		return "UNKNOWN_RESET"
	}
}

// OperationKind names one of the four operations under test.
type OperationKind int

const (
	Insert OperationKind = iota
	Select
	Update
	Delete
)

var operationKinds = [...]OperationKind{Insert, Select, Update, Delete}

func (k OperationKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Select:
		return "select"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// label is the capitalized name used in report text.
func (k OperationKind) label() string {
	switch k {
	case Insert:
		return "Insert"
	case Select:
		return "Select"
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// tag is the activity log letter of the reentrancy phase.
func (k OperationKind) tag() string {
	return string("ISUD"[k])
}

// Subject is the data structure under test.
//
// The engine never creates or destroys a Subject and imposes no locking on
// it: concurrent calls to the operation methods are exactly what is being
// measured and tested. Each operation receives the element index it must act
// on and returns an error when it fails or detects corrupted data.
type Subject interface {
	// Reset clears whatever storage the subject keeps, if it wants to.
	// A returned error aborts the run.
	Reset(occasion ResetOccasion) error

	Insert(i uint) error
	Select(i uint) error
	Update(i uint) error
	Delete(i uint) error
}

// UnimplementedSubject can be embedded in a Subject to supply only the
// operations a test needs. Every operation it provides fails with an
// UNIMPLEMENTED_OPERATION error naming the method to implement; Reset does
// nothing.
type UnimplementedSubject struct{}

func (UnimplementedSubject) Reset(ResetOccasion) error { return nil }

func (UnimplementedSubject) Insert(uint) error { return newUnimplementedError(Insert) }
func (UnimplementedSubject) Select(uint) error { return newUnimplementedError(Select) }
func (UnimplementedSubject) Update(uint) error { return newUnimplementedError(Update) }
func (UnimplementedSubject) Delete(uint) error { return newUnimplementedError(Delete) }

// operation returns the Subject method for kind.
func operation(s Subject, kind OperationKind) func(uint) error {
	switch kind {
	case Insert:
		return s.Insert
	case Select:
		return s.Select
	case Update:
		return s.Update
	default:
		return s.Delete
	}
}
