package gateways

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact/types"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

type codeArtifactAPI interface {
	PublishPackageVersion(ctx context.Context, params *codeartifact.PublishPackageVersionInput, optFns ...func(*codeartifact.Options)) (*codeartifact.PublishPackageVersionOutput, error)
}

// CodeArtifactGateway implements RegistryGateway on AWS CodeArtifact generic packages
type CodeArtifactGateway struct {
	api codeArtifactAPI
}

// NewCodeArtifactGateway creates a registry gateway from an AWS config
func NewCodeArtifactGateway(cfg aws.Config) *CodeArtifactGateway {
	return &CodeArtifactGateway{api: codeartifact.NewFromConfig(cfg)}
}

var _ gateways.RegistryGateway = (*CodeArtifactGateway)(nil)

// PublishVersion uploads the asset and creates the version in one call
func (g *CodeArtifactGateway) PublishVersion(ctx context.Context, input gateways.RegistryVersionInput) (*entities.RegistryVersion, error) {
	params := &codeartifact.PublishPackageVersionInput{
		Domain:         aws.String(input.Domain),
		Repository:     aws.String(input.Repository),
		Format:         types.PackageFormat(input.Format),
		Namespace:      aws.String(input.Namespace),
		Package:        aws.String(input.Package),
		PackageVersion: aws.String(input.Version),
		AssetName:      aws.String(input.AssetName),
		AssetSHA256:    aws.String(input.AssetSHA256),
		AssetContent:   input.Content,
	}
	if input.DomainOwner != "" {
		params.DomainOwner = aws.String(input.DomainOwner)
	}

	out, err := g.api.PublishPackageVersion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to publish package version: %w", err)
	}

	version := &entities.RegistryVersion{
		Format:          string(out.Format),
		Namespace:       aws.ToString(out.Namespace),
		Package:         aws.ToString(out.Package),
		Version:         aws.ToString(out.Version),
		VersionRevision: aws.ToString(out.VersionRevision),
		Status:          string(out.Status),
	}
	if out.Asset != nil {
		version.AssetName = aws.ToString(out.Asset.Name)
		version.AssetSize = aws.ToInt64(out.Asset.Size)
		version.AssetHashes = out.Asset.Hashes
	}
	return version, nil
}
