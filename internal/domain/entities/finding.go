package entities

import "strings"

// Severity is the backend-reported severity of a finding
type Severity string

// Severity values, lowest first
const (
	SeverityInfo     Severity = "Info"
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var severityRank = map[string]int{
	"info":          1,
	"informational": 1,
	"low":           2,
	"medium":        3,
	"high":          4,
	"critical":      5,
}

// Rank orders severities. Unknown values rank 0.
func (s Severity) Rank() int {
	return severityRank[strings.ToLower(string(s))]
}

// Known reports whether the severity is one of the recognized values
func (s Severity) Known() bool {
	return s.Rank() > 0
}

// ParseSeverity normalizes a severity name such as "medium" or "HIGH"
func ParseSeverity(name string) (Severity, bool) {
	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	if strings.EqualFold(name, "informational") {
		return SeverityInfo, true
	}
	return "", false
}

// Finding is a single issue reported by the scan backend
type Finding struct {
	Title          string
	Description    string
	Severity       Severity
	Recommendation string
	FilePath       string
	ReferenceURLs  []string
}
