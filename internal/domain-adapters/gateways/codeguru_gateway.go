package gateways

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codegurusecurity"
	"github.com/aws/aws-sdk-go-v2/service/codegurusecurity/types"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// codeGuruAPI is the subset of the CodeGuru Security client used by the gateway
type codeGuruAPI interface {
	CreateUploadUrl(ctx context.Context, params *codegurusecurity.CreateUploadUrlInput, optFns ...func(*codegurusecurity.Options)) (*codegurusecurity.CreateUploadUrlOutput, error)
	CreateScan(ctx context.Context, params *codegurusecurity.CreateScanInput, optFns ...func(*codegurusecurity.Options)) (*codegurusecurity.CreateScanOutput, error)
	GetScan(ctx context.Context, params *codegurusecurity.GetScanInput, optFns ...func(*codegurusecurity.Options)) (*codegurusecurity.GetScanOutput, error)
	GetFindings(ctx context.Context, params *codegurusecurity.GetFindingsInput, optFns ...func(*codegurusecurity.Options)) (*codegurusecurity.GetFindingsOutput, error)
}

// CodeGuruGateway implements ScanBackend on Amazon CodeGuru Security
type CodeGuruGateway struct {
	api codeGuruAPI
}

// NewCodeGuruGateway creates a scan backend from an AWS config
func NewCodeGuruGateway(cfg aws.Config) *CodeGuruGateway {
	return &CodeGuruGateway{api: codegurusecurity.NewFromConfig(cfg)}
}

var _ gateways.ScanBackend = (*CodeGuruGateway)(nil)

// CreateUploadURL reserves a presigned S3 location for the scan
func (g *CodeGuruGateway) CreateUploadURL(ctx context.Context, scanName string) (*entities.UploadTarget, error) {
	out, err := g.api.CreateUploadUrl(ctx, &codegurusecurity.CreateUploadUrlInput{
		ScanName: aws.String(scanName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upload URL: %w", err)
	}

	return &entities.UploadTarget{
		URL:        aws.ToString(out.S3Url),
		Headers:    out.RequestHeaders,
		ArtifactID: aws.ToString(out.CodeArtifactId),
	}, nil
}

// CreateScan starts a scan of the uploaded code artifact
func (g *CodeGuruGateway) CreateScan(ctx context.Context, req entities.ScanRequest) (*entities.ScanJob, error) {
	input := &codegurusecurity.CreateScanInput{
		ResourceId:   &types.ResourceIdMemberCodeArtifactId{Value: req.ArtifactID},
		ScanName:     aws.String(req.ScanName),
		ScanType:     types.ScanType(req.ScanType),
		AnalysisType: types.AnalysisType(req.AnalysisType),
	}
	if req.ClientToken != "" {
		input.ClientToken = aws.String(req.ClientToken)
	}

	out, err := g.api.CreateScan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	return &entities.ScanJob{
		ScanName: req.ScanName,
		RunID:    aws.ToString(out.RunId),
		State:    entities.ScanState(out.ScanState),
	}, nil
}

// GetScan returns the scan state verbatim
func (g *CodeGuruGateway) GetScan(ctx context.Context, scanName, runID string) (entities.ScanState, error) {
	input := &codegurusecurity.GetScanInput{ScanName: aws.String(scanName)}
	if runID != "" {
		input.RunId = aws.String(runID)
	}

	out, err := g.api.GetScan(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to get scan: %w", err)
	}

	return entities.ScanState(out.ScanState), nil
}

// GetFindings fetches one page of findings
func (g *CodeGuruGateway) GetFindings(ctx context.Context, query entities.FindingsQuery) (*entities.FindingsPage, error) {
	input := &codegurusecurity.GetFindingsInput{
		ScanName: aws.String(query.ScanName),
		Status:   types.Status(query.Status),
	}
	if query.MaxResults > 0 {
		input.MaxResults = aws.Int32(int32(query.MaxResults))
	}

	out, err := g.api.GetFindings(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}

	page := &entities.FindingsPage{HasMore: aws.ToString(out.NextToken) != ""}
	if out.Findings != nil {
		page.Findings = make([]entities.Finding, 0, len(out.Findings))
		for _, f := range out.Findings {
			page.Findings = append(page.Findings, convertFinding(f))
		}
	}
	return page, nil
}

func convertFinding(f types.Finding) entities.Finding {
	finding := entities.Finding{
		Title:       aws.ToString(f.Title),
		Description: aws.ToString(f.Description),
		Severity:    entities.Severity(f.Severity),
	}
	if f.Remediation != nil && f.Remediation.Recommendation != nil {
		finding.Recommendation = aws.ToString(f.Remediation.Recommendation.Text)
	}
	if f.Vulnerability != nil {
		if f.Vulnerability.FilePath != nil {
			finding.FilePath = aws.ToString(f.Vulnerability.FilePath.Path)
		}
		finding.ReferenceURLs = f.Vulnerability.ReferenceUrls
	}
	return finding
}
