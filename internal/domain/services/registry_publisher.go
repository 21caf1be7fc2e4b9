package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// RegistryPublisherConfig identifies the target registry repository
type RegistryPublisherConfig struct {
	Domain      string
	DomainOwner string
	Repository  string
}

type registryPublisher struct {
	gateway gateways.RegistryGateway
	config  RegistryPublisherConfig
	now     func() time.Time
}

// NewRegistryPublisher creates a publisher that stores generic package versions
func NewRegistryPublisher(gateway gateways.RegistryGateway, config RegistryPublisherConfig) services.Publisher {
	return &registryPublisher{gateway: gateway, config: config, now: time.Now}
}

func (p *registryPublisher) Target() entities.PublishTarget {
	return entities.PublishTargetRegistry
}

// Publish creates version <unix-time> of <name>/<name> with the artifact as its asset
func (p *registryPublisher) Publish(ctx context.Context, artifact *entities.Artifact) (*entities.PublishReceipt, error) {
	version, err := p.gateway.PublishVersion(ctx, gateways.RegistryVersionInput{
		Domain:      p.config.Domain,
		DomainOwner: p.config.DomainOwner,
		Repository:  p.config.Repository,
		Format:      "generic",
		Namespace:   artifact.Name,
		Package:     artifact.Name,
		Version:     strconv.FormatInt(p.now().Unix(), 10),
		AssetName:   artifact.FileName(),
		AssetSHA256: artifact.Digest(),
		Content:     bytes.NewReader(artifact.Content),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: registry rejected %s: %v", entities.ErrPublish, artifact.Name, err)
	}

	return &entities.PublishReceipt{
		Target:   entities.PublishTargetRegistry,
		Registry: version,
	}, nil
}
