package entities

import "time"

// PackageState is the terminal state reached by one package in a batch
type PackageState string

// Terminal package states
const (
	StateMalformed          PackageState = "malformed"
	StateFetchFailed        PackageState = "fetch_failed"
	StateVerificationFailed PackageState = "verification_failed"
	StateScanFailed         PackageState = "scan_failed"
	StateScanTimedOut       PackageState = "scan_timed_out"
	StateRejected           PackageState = "rejected"
	StatePublished          PackageState = "published"
	StatePublishFailed      PackageState = "publish_failed"
	StateInterrupted        PackageState = "interrupted"
)

// AllPackageStates lists terminal states in summary order
var AllPackageStates = []PackageState{
	StatePublished,
	StateRejected,
	StatePublishFailed,
	StateScanFailed,
	StateScanTimedOut,
	StateVerificationFailed,
	StateFetchFailed,
	StateMalformed,
	StateInterrupted,
}

// PackageOutcome is the result of processing one request record
type PackageOutcome struct {
	Line     int
	Request  PackageRequest
	State    PackageState
	Decision *Decision
	Receipt  *PublishReceipt
	Err      error
	Duration time.Duration
}

// BatchResult collects outcomes in request order
type BatchResult struct {
	BatchID  string
	Outcomes []PackageOutcome
	Duration time.Duration
}

// Counts tallies outcomes per terminal state
func (r *BatchResult) Counts() map[PackageState]int {
	counts := make(map[PackageState]int, len(AllPackageStates))
	for _, o := range r.Outcomes {
		counts[o.State]++
	}
	return counts
}
