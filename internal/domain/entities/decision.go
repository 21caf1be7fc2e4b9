package entities

// Outcome is the admission result for a package
type Outcome string

// Admission outcomes
const (
	OutcomeAdmit  Outcome = "admit"
	OutcomeReject Outcome = "reject"
)

// Decision is derived from one findings page and never persisted
type Decision struct {
	Outcome  Outcome
	Findings []Finding
	// Truncated is set when the backend had more findings than were inspected
	Truncated bool
}

// Admitted reports whether the package may be published
func (d Decision) Admitted() bool {
	return d.Outcome == OutcomeAdmit
}
