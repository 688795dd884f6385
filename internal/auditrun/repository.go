package auditrun

import (
	"context"

	"github.com/lodthe/fromcheck/internal/audit"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

const DefaultTableName = "AuditReports"

var ErrNotFound = errors.New("not found")

type Repository interface {
	Create(ctx context.Context, report *audit.Report) error
	Get(ctx context.Context, id string) (*audit.Report, error)
}

// DynamoDBAPI is the part of the DynamoDB client used by Repo.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type Repo struct {
	client DynamoDBAPI

	tableName *string
}

func NewRepository(client DynamoDBAPI, tableName string) *Repo {
	if tableName == "" {
		tableName = DefaultTableName
	}

	return &Repo{
		client:    client,
		tableName: aws.String(tableName),
	}
}

func (r *Repo) Create(ctx context.Context, report *audit.Report) error {
	if report.ID == "" {
		return errors.New("report has no id")
	}

	marshaled, err := attributevalue.MarshalMap(report)
	if err != nil {
		return errors.Wrap(err, "marshal failed")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: r.tableName,
		Item:      marshaled,
	})
	if err != nil {
		return errors.Wrap(err, "put failed")
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*audit.Report, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: r.tableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "get failed")
	}

	report := new(audit.Report)

	err = attributevalue.UnmarshalMap(out.Item, report)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal failed")
	}

	if report.ID == "" {
		return nil, ErrNotFound
	}

	return report, nil
}
