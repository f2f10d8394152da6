package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/reelstack-io/reelstack/internal/provision"
)

func (p *Provider) createBucket(ctx context.Context, res provision.ResourceDescriptor) error {
	input := &s3.CreateBucketInput{
		Bucket: &res.Name,
	}
	// us-east-1 rejects an explicit location constraint.
	if res.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(res.Region),
		}
	}

	_, err := p.s3Client.CreateBucket(ctx, input)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			switch ae.ErrorCode() {
			case "BucketAlreadyOwnedByYou":
				return fmt.Errorf("bucket %s: %w", res.Name, provision.ErrAlreadyExists)
			case "OperationAborted":
				// A conflicting conditional operation is in progress.
				return fmt.Errorf("bucket %s create conflict: %w", res.Name, provision.ErrTransient)
			}
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (p *Provider) bucketState(ctx context.Context, res provision.ResourceDescriptor) (provision.ProvisioningState, error) {
	_, err := p.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &res.Name,
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			switch ae.ErrorCode() {
			case "NotFound", "NoSuchBucket":
				// Create accepted but not yet visible.
				return provision.StateInProgress, nil
			}
		}
		return provision.StatePending, fmt.Errorf("failed to check bucket: %w", err)
	}
	return provision.StateSucceeded, nil
}

func (p *Provider) createBucketSubResource(ctx context.Context, parent provision.ResourceDescriptor, sub provision.SubResource) error {
	var err error
	switch sub.Kind {
	case SubKindPublicAccess:
		err = p.putPublicAccess(ctx, parent.Name)
	case SubKindBucketPolicy:
		err = p.putBucketPolicy(ctx, parent.Name)
	case SubKindWebsite:
		err = p.putWebsiteConfiguration(ctx, parent.Name, sub)
	default:
		return fmt.Errorf("unknown storage sub-resource kind: %s", sub.Kind)
	}
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NoSuchBucket" {
			// Bucket not yet propagated; retryable.
			return fmt.Errorf("bucket %s not yet visible: %w", parent.Name, provision.ErrTransient)
		}
		return err
	}
	return nil
}

func (p *Provider) putPublicAccess(ctx context.Context, bucket string) error {
	off := false
	_, err := p.s3Client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: &bucket,
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       &off,
			BlockPublicPolicy:     &off,
			IgnorePublicAcls:      &off,
			RestrictPublicBuckets: &off,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure public access: %w", err)
	}
	return nil
}

func (p *Provider) putBucketPolicy(ctx context.Context, bucket string) error {
	policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Sid": "PublicRead",
    "Effect": "Allow",
    "Principal": "*",
    "Action": "s3:GetObject",
    "Resource": "arn:aws:s3:::%s/*"
  }]
}`, bucket)

	_, err := p.s3Client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: &bucket,
		Policy: &policy,
	})
	if err != nil {
		return fmt.Errorf("failed to put bucket policy: %w", err)
	}
	return nil
}

func (p *Provider) putWebsiteConfiguration(ctx context.Context, bucket string, sub provision.SubResource) error {
	index, _ := sub.Properties["index_document"].(string)
	if index == "" {
		index = "index.html"
	}
	errDoc, _ := sub.Properties["error_document"].(string)
	if errDoc == "" {
		errDoc = "error.html"
	}

	_, err := p.s3Client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: &bucket,
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{Suffix: &index},
			ErrorDocument: &types.ErrorDocument{Key: &errDoc},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put website configuration: %w", err)
	}
	return nil
}

func (p *Provider) deleteBucket(ctx context.Context, res provision.ResourceDescriptor) error {
	_, err := p.s3Client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: &res.Name,
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NoSuchBucket" {
			return nil
		}
		return fmt.Errorf("failed to delete bucket: %w", err)
	}
	return nil
}

// PutObject uploads one site asset to the configured bucket.
func (p *Provider) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	if err := p.ensureClient(ctx); err != nil {
		return err
	}
	_, err := p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &p.Bucket,
		Key:         &key,
		ContentType: &contentType,
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// WebsiteEndpoint returns the static-hosting URL of the configured bucket.
func (p *Provider) WebsiteEndpoint() string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", p.Bucket, p.region)
}
