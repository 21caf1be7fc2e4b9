package entities

// PublishTarget names the kind of store an artifact was published to
type PublishTarget string

// Publish targets
const (
	PublishTargetRegistry      PublishTarget = "registry"
	PublishTargetSourceControl PublishTarget = "source-control"
)

// PublishReceipt describes a successful publish. Only the field matching
// Target is set.
type PublishReceipt struct {
	Target   PublishTarget
	Registry *RegistryVersion
	Commit   *CommitInfo
}

// RegistryVersion is the package version metadata returned by an artifact registry
type RegistryVersion struct {
	Format          string
	Namespace       string
	Package         string
	Version         string
	VersionRevision string
	Status          string
	AssetName       string
	AssetSize       int64
	AssetHashes     map[string]string
}

// CommitInfo is the result of pushing an artifact to a source-control branch
type CommitInfo struct {
	Branch        string
	FilePath      string
	CommitMessage string
	CommitSHA     string
	FileSize      int64
	DownloadURL   string
	Created       bool // false when an existing file was updated
}
