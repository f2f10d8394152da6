package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/reelstack-io/reelstack/internal/dataset"
	"github.com/reelstack-io/reelstack/internal/provision"
)

// Partition key of the movie table.
const tableKey = "id"

func (p *Provider) createTable(ctx context.Context, res provision.ResourceDescriptor) error {
	keyAttr := tableKey
	billing := p.BillingMode
	if billing == "" {
		billing = "PAY_PER_REQUEST"
	}

	_, err := p.dynamodbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &res.Name,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: &keyAttr, AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: &keyAttr, KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingMode(billing),
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return fmt.Errorf("table %s: %w", res.Name, provision.ErrAlreadyExists)
		}
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "LimitExceededException" {
			return fmt.Errorf("table %s create limit: %w", res.Name, provision.ErrTransient)
		}
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (p *Provider) tableState(ctx context.Context, res provision.ResourceDescriptor) (provision.ProvisioningState, error) {
	resp, err := p.dynamodbClient.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: &res.Name,
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			// Create accepted but table not yet visible.
			return provision.StatePending, nil
		}
		return provision.StatePending, fmt.Errorf("failed to describe table: %w", err)
	}

	if resp.Table.TableArn != nil {
		p.tableArn = *resp.Table.TableArn
	}

	switch resp.Table.TableStatus {
	case types.TableStatusCreating, types.TableStatusUpdating:
		return provision.StateInProgress, nil
	case types.TableStatusActive:
		return provision.StateSucceeded, nil
	default:
		// DELETING, INACCESSIBLE_ENCRYPTION_CREDENTIALS, ARCHIVING, ARCHIVED
		return provision.StateFailed, nil
	}
}

func (p *Provider) deleteTable(ctx context.Context, res provision.ResourceDescriptor) error {
	_, err := p.dynamodbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: &res.Name,
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to delete table: %w", err)
	}
	return nil
}

// PutMovie writes one dataset record to the configured table.
func (p *Provider) PutMovie(ctx context.Context, m dataset.Movie) error {
	if err := p.ensureClient(ctx); err != nil {
		return err
	}

	id := fmt.Sprintf("%s (%d)", m.Title, m.Year)
	item := map[string]types.AttributeValue{
		tableKey:             &types.AttributeValueMemberS{Value: id},
		"Title":              &types.AttributeValueMemberS{Value: m.Title},
		"Year":               numberAttr(strconv.Itoa(m.Year)),
		"Rank":               numberAttr(strconv.Itoa(m.Rank)),
		"Genre":              &types.AttributeValueMemberS{Value: m.Genre},
		"Description":        &types.AttributeValueMemberS{Value: m.Description},
		"Director":           &types.AttributeValueMemberS{Value: m.Director},
		"Actors":             &types.AttributeValueMemberS{Value: m.Actors},
		"Runtime (Minutes)":  numberAttr(strconv.Itoa(m.RuntimeMinutes)),
		"Rating":             numberAttr(strconv.FormatFloat(m.Rating, 'f', -1, 64)),
		"Votes":              numberAttr(strconv.Itoa(m.Votes)),
		"Revenue (Millions)": numberAttr(strconv.FormatFloat(m.RevenueMillions, 'f', -1, 64)),
		"Metascore":          numberAttr(strconv.Itoa(m.Metascore)),
	}

	_, err := p.dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &p.Table,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put movie %q: %w", m.Title, err)
	}
	return nil
}

func numberAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v}
}
