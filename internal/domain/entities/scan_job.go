package entities

// ScanState is the remote state of a scan run
type ScanState string

// Known scan states. The backend may report others; they are kept verbatim.
const (
	ScanStateInProgress ScanState = "InProgress"
	ScanStateSuccessful ScanState = "Successful"
	ScanStateFailed     ScanState = "Failed"
)

// Terminal reports whether the scan has stopped running
func (s ScanState) Terminal() bool {
	return s != ScanStateInProgress
}

// ScanJob tracks a submitted scan. State only changes through polling.
type ScanJob struct {
	ScanName string
	RunID    string
	State    ScanState
}

// UploadTarget is the staging location handed out by the scan backend
type UploadTarget struct {
	URL        string
	Headers    map[string]string
	ArtifactID string
}

// ScanRequest registers a scan for an uploaded artifact
type ScanRequest struct {
	ArtifactID   string
	ScanName     string
	ScanType     string
	AnalysisType string
	ClientToken  string
}

// FindingsQuery selects one page of findings for a scan
type FindingsQuery struct {
	ScanName   string
	MaxResults int
	Status     string
}

// FindingsPage is a single page of findings. Findings is nil when the
// backend response carried no findings field.
type FindingsPage struct {
	Findings []Finding
	HasMore  bool
}
