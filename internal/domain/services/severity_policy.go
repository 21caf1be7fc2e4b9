package services

import (
	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// severityPolicy rejects any finding at or above the threshold
type severityPolicy struct {
	threshold entities.Severity
}

// NewSeverityPolicy creates a policy that rejects at threshold and above.
// An empty or unknown threshold falls back to Medium.
func NewSeverityPolicy(threshold entities.Severity) services.SeverityPolicy {
	if !threshold.Known() {
		threshold = entities.SeverityMedium
	}
	return &severityPolicy{threshold: threshold}
}

// Evaluate decides on the findings page as retrieved; it does not paginate.
// Pure business logic - no I/O
func (p *severityPolicy) Evaluate(page *entities.FindingsPage) entities.Decision {
	decision := entities.Decision{Outcome: entities.OutcomeAdmit}
	if page == nil {
		return decision
	}

	decision.Findings = page.Findings
	decision.Truncated = page.HasMore
	for _, f := range page.Findings {
		if p.blocks(f.Severity) {
			decision.Outcome = entities.OutcomeReject
			break
		}
	}
	return decision
}

// Unknown severities block so a new backend value cannot slip through
func (p *severityPolicy) blocks(s entities.Severity) bool {
	if !s.Known() {
		return true
	}
	return s.Rank() >= p.threshold.Rank()
}
