package gateways

import (
	"context"
	"errors"
)

// ErrRefExists is returned by CreateBranch when the branch is already present
var ErrRefExists = errors.New("reference already exists")

// Branch is a named ref and the commit it points at
type Branch struct {
	Name string
	SHA  string
}

// RepositoryInfo holds repository metadata needed for branching
type RepositoryInfo struct {
	FullName      string
	DefaultBranch string
	HTMLURL       string
}

// FileInfo identifies an existing file revision
type FileInfo struct {
	Path string
	SHA  string
}

// Committer is the identity recorded on commits
type Committer struct {
	Name  string
	Email string
}

// PutFileInput creates or updates a file on a branch
type PutFileInput struct {
	Path      string
	Branch    string
	Message   string
	Content   []byte
	SHA       string // existing blob SHA when updating, empty when creating
	Committer *Committer
}

// CommitResult is the outcome of a file write
type CommitResult struct {
	CommitSHA   string
	ContentSHA  string
	HTMLURL     string
	DownloadURL string
}

// SourceControlGateway defines the repository operations used to publish artifacts
type SourceControlGateway interface {
	// GetRepository returns repository metadata
	GetRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error)

	// FindBranch looks up a branch; found is false when it does not exist
	FindBranch(ctx context.Context, owner, repo, name string) (branch *Branch, found bool, err error)

	// CreateBranch creates refs/heads/<name> at sha. Returns ErrRefExists if present.
	CreateBranch(ctx context.Context, owner, repo, name, sha string) error

	// FindFile looks up a file on a ref; found is false when it does not exist
	FindFile(ctx context.Context, owner, repo, path, ref string) (file *FileInfo, found bool, err error)

	// PutFile creates or updates a file
	PutFile(ctx context.Context, owner, repo string, input PutFileInput) (*CommitResult, error)
}
