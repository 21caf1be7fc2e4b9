package gateways

import (
	"context"
	"io"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

// RegistryVersionInput describes a package version to create in an artifact registry
type RegistryVersionInput struct {
	Domain      string
	DomainOwner string
	Repository  string
	Format      string
	Namespace   string
	Package     string
	Version     string
	AssetName   string
	AssetSHA256 string
	Content     io.Reader
}

// RegistryGateway publishes immutable package versions
type RegistryGateway interface {
	PublishVersion(ctx context.Context, input RegistryVersionInput) (*entities.RegistryVersion, error)
}
