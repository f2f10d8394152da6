package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/reelstack-io/reelstack/internal/provision"
)

// Managed "CachingOptimized" cache policy.
const cachePolicyID = "658327ea-f89d-4fab-a63d-7e88639e58f6"

// originDomain is the website endpoint of the storage resource without the
// scheme; CloudFront addresses S3 static hosting as a custom HTTP origin.
func originDomain(bucket, region string) string {
	return fmt.Sprintf("%s.s3-website-%s.amazonaws.com", bucket, region)
}

func (p *Provider) createDistribution(ctx context.Context, res provision.ResourceDescriptor) error {
	domain := originDomain(res.Name, res.Region)

	// Idempotence: reuse a distribution already fronting this origin.
	if id, cdnDomain, err := p.findDistribution(ctx, domain); err != nil {
		return err
	} else if id != "" {
		p.distributionID = id
		p.distributionDomain = cdnDomain
		return fmt.Errorf("distribution for %s: %w", domain, provision.ErrAlreadyExists)
	}

	originID := "site-origin"
	comment := fmt.Sprintf("reelstack site for %s", res.Name)
	enabled := true
	one := int32(1)
	httpPort := int32(80)
	httpsPort := int32(443)
	policyID := cachePolicyID
	// The caller reference doubles as a provider-side idempotency token.
	callerRef := fmt.Sprintf("reelstack-%s", res.Name)

	resp, err := p.cloudfrontClient.CreateDistribution(ctx, &cloudfront.CreateDistributionInput{
		DistributionConfig: &types.DistributionConfig{
			CallerReference: &callerRef,
			Comment:         &comment,
			Enabled:         &enabled,
			Origins: &types.Origins{
				Quantity: &one,
				Items: []types.Origin{{
					Id:         &originID,
					DomainName: &domain,
					CustomOriginConfig: &types.CustomOriginConfig{
						HTTPPort:             &httpPort,
						HTTPSPort:            &httpsPort,
						OriginProtocolPolicy: types.OriginProtocolPolicyHttpOnly,
					},
				}},
			},
			DefaultCacheBehavior: &types.DefaultCacheBehavior{
				TargetOriginId:       &originID,
				ViewerProtocolPolicy: types.ViewerProtocolPolicyRedirectToHttps,
				CachePolicyId:        &policyID,
			},
		},
	})
	if err != nil {
		var exists *types.DistributionAlreadyExists
		if errors.As(err, &exists) {
			return fmt.Errorf("distribution for %s: %w", domain, provision.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create distribution: %w", err)
	}

	p.distributionID = *resp.Distribution.Id
	p.distributionDomain = *resp.Distribution.DomainName
	return nil
}

func (p *Provider) distributionState(ctx context.Context, res provision.ResourceDescriptor) (provision.ProvisioningState, error) {
	if p.distributionID == "" {
		id, domain, err := p.findDistribution(ctx, originDomain(res.Name, res.Region))
		if err != nil {
			return provision.StatePending, err
		}
		if id == "" {
			return provision.StatePending, nil
		}
		p.distributionID = id
		p.distributionDomain = domain
	}

	resp, err := p.cloudfrontClient.GetDistribution(ctx, &cloudfront.GetDistributionInput{
		Id: &p.distributionID,
	})
	if err != nil {
		return provision.StatePending, fmt.Errorf("failed to get distribution: %w", err)
	}
	if strings.EqualFold(*resp.Distribution.Status, "Deployed") {
		return provision.StateSucceeded, nil
	}
	return provision.StateInProgress, nil
}

func (p *Provider) findDistribution(ctx context.Context, domain string) (id, cdnDomain string, err error) {
	var marker *string
	for {
		resp, err := p.cloudfrontClient.ListDistributions(ctx, &cloudfront.ListDistributionsInput{
			Marker: marker,
		})
		if err != nil {
			return "", "", fmt.Errorf("failed to list distributions: %w", err)
		}
		for _, d := range resp.DistributionList.Items {
			if d.Origins == nil {
				continue
			}
			for _, o := range d.Origins.Items {
				if o.DomainName != nil && *o.DomainName == domain {
					return *d.Id, *d.DomainName, nil
				}
			}
		}
		if resp.DistributionList.IsTruncated == nil || !*resp.DistributionList.IsTruncated {
			return "", "", nil
		}
		marker = resp.DistributionList.NextMarker
	}
}

func (p *Provider) deleteDistribution(ctx context.Context, res provision.ResourceDescriptor) error {
	id := p.distributionID
	if id == "" {
		found, _, err := p.findDistribution(ctx, originDomain(res.Name, res.Region))
		if err != nil {
			return err
		}
		if found == "" {
			return nil
		}
		id = found
	}

	resp, err := p.cloudfrontClient.GetDistribution(ctx, &cloudfront.GetDistributionInput{Id: &id})
	if err != nil {
		return fmt.Errorf("failed to get distribution: %w", err)
	}
	if resp.Distribution.DistributionConfig.Enabled != nil && *resp.Distribution.DistributionConfig.Enabled {
		// CloudFront only deletes disabled distributions, and disabling takes
		// tens of minutes to deploy.
		return fmt.Errorf("distribution %s is enabled; disable it and retry destroy once the change deploys", id)
	}

	_, err = p.cloudfrontClient.DeleteDistribution(ctx, &cloudfront.DeleteDistributionInput{
		Id:      &id,
		IfMatch: resp.ETag,
	})
	if err != nil {
		return fmt.Errorf("failed to delete distribution: %w", err)
	}
	return nil
}

// DistributionDomain returns the CDN domain once the distribution is known.
func (p *Provider) DistributionDomain() string {
	return p.distributionDomain
}
