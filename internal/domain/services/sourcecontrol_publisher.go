package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// SourceControlPublisherConfig identifies the repository that receives artifacts
type SourceControlPublisherConfig struct {
	Owner         string
	Repo          string
	PathPrefix    string // directory for artifacts, default "packages"
	DefaultBranch string // used when the repository reports none, default "main"
	WebURL        string // browser base URL, default "https://github.com"
	Committer     *gateways.Committer
}

type sourceControlPublisher struct {
	gateway gateways.SourceControlGateway
	config  SourceControlPublisherConfig
	logger  interfaces.Logger
}

// NewSourceControlPublisher creates a publisher that commits artifacts to a per-package branch
func NewSourceControlPublisher(gateway gateways.SourceControlGateway, config SourceControlPublisherConfig, logger interfaces.Logger) services.Publisher {
	if config.PathPrefix == "" {
		config.PathPrefix = "packages"
	}
	if config.DefaultBranch == "" {
		config.DefaultBranch = "main"
	}
	if config.WebURL == "" {
		config.WebURL = "https://github.com"
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &sourceControlPublisher{gateway: gateway, config: config, logger: logger}
}

func (p *sourceControlPublisher) Target() entities.PublishTarget {
	return entities.PublishTargetSourceControl
}

// Publish ensures the package branch exists, then creates or updates the artifact file on it
func (p *sourceControlPublisher) Publish(ctx context.Context, artifact *entities.Artifact) (*entities.PublishReceipt, error) {
	owner, repo := p.config.Owner, p.config.Repo
	branch := BranchName(artifact.Name)

	info, err := p.gateway.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read repository %s/%s: %v", entities.ErrPublish, owner, repo, err)
	}

	if err := p.ensureBranch(ctx, info, branch); err != nil {
		return nil, err
	}

	filePath := path.Join(p.config.PathPrefix, artifact.FileName())
	message := "Add private package - " + artifact.FileName()

	existing, found, err := p.gateway.FindFile(ctx, owner, repo, filePath, branch)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up %s on %s: %v", entities.ErrPublish, filePath, branch, err)
	}

	input := gateways.PutFileInput{
		Path:      filePath,
		Branch:    branch,
		Message:   message,
		Content:   artifact.Content,
		Committer: p.config.Committer,
	}
	if found {
		input.SHA = existing.SHA
	}

	result, err := p.gateway.PutFile(ctx, owner, repo, input)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to push %s to %s: %v", entities.ErrPublish, filePath, branch, err)
	}

	fullName := info.FullName
	if fullName == "" {
		fullName = owner + "/" + repo
	}

	p.logger.Info("artifact committed",
		interfaces.F("branch", branch),
		interfaces.F("path", filePath),
		interfaces.F("updated", found))

	return &entities.PublishReceipt{
		Target: entities.PublishTargetSourceControl,
		Commit: &entities.CommitInfo{
			Branch:        branch,
			FilePath:      filePath,
			CommitMessage: message,
			CommitSHA:     result.CommitSHA,
			FileSize:      artifact.Size(),
			DownloadURL:   fmt.Sprintf("%s/%s/blob/%s/%s", strings.TrimRight(p.config.WebURL, "/"), fullName, branch, filePath),
			Created:       !found,
		},
	}, nil
}

// ensureBranch creates the branch from the default branch head. An existing
// branch counts as success, so concurrent runs cannot race each other.
func (p *sourceControlPublisher) ensureBranch(ctx context.Context, info *gateways.RepositoryInfo, branch string) error {
	owner, repo := p.config.Owner, p.config.Repo

	base := info.DefaultBranch
	if base == "" {
		base = p.config.DefaultBranch
	}

	head, found, err := p.gateway.FindBranch(ctx, owner, repo, base)
	if err != nil {
		return fmt.Errorf("%w: failed to read branch %s: %v", entities.ErrPublish, base, err)
	}
	if !found {
		return fmt.Errorf("%w: default branch %s not found in %s/%s", entities.ErrPublish, base, owner, repo)
	}

	err = p.gateway.CreateBranch(ctx, owner, repo, branch, head.SHA)
	switch {
	case err == nil:
		p.logger.Info("branch created", interfaces.F("branch", branch), interfaces.F("from", base))
		return nil
	case errors.Is(err, gateways.ErrRefExists):
		p.logger.Debug("branch already exists", interfaces.F("branch", branch))
		return nil
	default:
		return fmt.Errorf("%w: failed to create branch %s: %v", entities.ErrPublish, branch, err)
	}
}

// BranchName maps a sanitized package name onto a valid git branch name.
// Git forbids ':' and '..' in ref names and a leading or trailing '.'.
func BranchName(name string) string {
	branch := strings.ReplaceAll(name, ":", "-")
	for strings.Contains(branch, "..") {
		branch = strings.ReplaceAll(branch, "..", ".")
	}
	branch = strings.Trim(branch, ".")
	branch = strings.TrimSuffix(branch, ".lock")
	if branch == "" {
		return "package"
	}
	return branch
}
