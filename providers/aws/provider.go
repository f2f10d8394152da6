package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reelstack-io/reelstack/internal/provision"
)

// Sub-resource kinds understood by the storage resource.
const (
	SubKindPublicAccess = "public-access"
	SubKindBucketPolicy = "bucket-policy"
	SubKindWebsite      = "website"
)

// Provider implements the deployment's control plane and data plane against
// AWS: S3 for storage and static hosting, DynamoDB for the document
// database, CloudFront for the optional CDN.
//
// Bucket and Table name the data-plane targets for site uploads and dataset
// imports. BillingMode applies to table creation and defaults to
// PAY_PER_REQUEST.
type Provider struct {
	Bucket      string
	Table       string
	BillingMode string

	region           string
	s3Client         *s3.Client
	dynamodbClient   *dynamodb.Client
	cloudfrontClient *cloudfront.Client

	tableArn           string
	distributionID     string
	distributionDomain string
}

func New(region string) *Provider {
	return &Provider{region: region}
}

func (p *Provider) ensureClient(ctx context.Context) error {
	if p.s3Client != nil && p.dynamodbClient != nil && p.cloudfrontClient != nil {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return fmt.Errorf("unable to load SDK config, %v", err)
	}

	p.s3Client = s3.NewFromConfig(cfg)
	p.dynamodbClient = dynamodb.NewFromConfig(cfg)
	p.cloudfrontClient = cloudfront.NewFromConfig(cfg)
	return nil
}

// Outputs reports the endpoints of the provisioned resources, keyed for the
// deployment record. Values discovered during provisioning (table ARN, CDN
// domain) appear once known.
func (p *Provider) Outputs() map[string]string {
	out := map[string]string{}
	if p.Bucket != "" {
		out["website_url"] = p.WebsiteEndpoint()
	}
	if p.Table != "" {
		out["table"] = p.Table
	}
	if p.tableArn != "" {
		out["table_arn"] = p.tableArn
	}
	if p.distributionDomain != "" {
		out["cdn_domain"] = p.distributionDomain
	}
	return out
}

// CreateResource issues an idempotent create for res.
func (p *Provider) CreateResource(ctx context.Context, res provision.ResourceDescriptor) error {
	if err := p.ensureClient(ctx); err != nil {
		return err
	}

	switch res.Kind {
	case provision.KindStorage:
		return p.createBucket(ctx, res)
	case provision.KindDatabase:
		return p.createTable(ctx, res)
	case provision.KindCDN:
		return p.createDistribution(ctx, res)
	}
	return fmt.Errorf("unknown resource kind: %s", res.Kind)
}

// ResourceState reads the provisioning state of res.
func (p *Provider) ResourceState(ctx context.Context, res provision.ResourceDescriptor) (provision.ProvisioningState, error) {
	if err := p.ensureClient(ctx); err != nil {
		return provision.StatePending, err
	}

	switch res.Kind {
	case provision.KindStorage:
		return p.bucketState(ctx, res)
	case provision.KindDatabase:
		return p.tableState(ctx, res)
	case provision.KindCDN:
		return p.distributionState(ctx, res)
	}
	return provision.StatePending, fmt.Errorf("unknown resource kind: %s", res.Kind)
}

// CreateSubResource applies a dependent operation on a provisioned parent.
func (p *Provider) CreateSubResource(ctx context.Context, parent provision.ResourceDescriptor, sub provision.SubResource) error {
	if err := p.ensureClient(ctx); err != nil {
		return err
	}

	switch parent.Kind {
	case provision.KindStorage:
		return p.createBucketSubResource(ctx, parent, sub)
	}
	return fmt.Errorf("resource kind %s has no sub-resources", parent.Kind)
}

// DeleteResource removes res. Missing resources are tolerated.
func (p *Provider) DeleteResource(ctx context.Context, res provision.ResourceDescriptor) error {
	if err := p.ensureClient(ctx); err != nil {
		return err
	}

	switch res.Kind {
	case provision.KindStorage:
		return p.deleteBucket(ctx, res)
	case provision.KindDatabase:
		return p.deleteTable(ctx, res)
	case provision.KindCDN:
		return p.deleteDistribution(ctx, res)
	}
	return fmt.Errorf("unknown resource kind: %s", res.Kind)
}
