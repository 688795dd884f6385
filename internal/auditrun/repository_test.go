package auditrun

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lodthe/fromcheck/internal/audit"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dynamoMock struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func newDynamoMock() *dynamoMock {
	return &dynamoMock{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *dynamoMock) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	id := in.Item["Id"].(*types.AttributeValueMemberS).Value
	m.items[aws.ToString(in.TableName)+"/"+id] = in.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (m *dynamoMock) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	id := in.Key["Id"].(*types.AttributeValueMemberS).Value

	return &dynamodb.GetItemOutput{Item: m.items[aws.ToString(in.TableName)+"/"+id]}, nil
}

func TestRepo_CreateGet(t *testing.T) {
	db := newDynamoMock()
	repo := NewRepository(db, "")

	updated := time.Date(2024, 4, 25, 10, 0, 0, 0, time.UTC)
	report := &audit.Report{
		ID:         "7d0e7e0c-5d2a-4d57-9a39-0c61f7b1a0a2",
		Roots:      []string{"services"},
		StartedAt:  updated,
		FinishedAt: updated.Add(3 * time.Second),
		Entries: []audit.Entry{
			{
				Dockerfile:  "services/api/Dockerfile",
				Line:        4,
				Stage:       "build",
				Image:       "golang",
				Repository:  "library/golang",
				Current:     "1.21-alpine",
				Latest:      "1.22-alpine",
				LastUpdated: &updated,
				Newer:       1,
				Status:      audit.StatusOutdated,
			},
			{
				Dockerfile: "services/api/Dockerfile",
				Line:       9,
				Image:      "postgres",
				Current:    "16.1",
				Status:     audit.StatusFailed,
				Error:      "registry is unavailable",
			},
		},
	}

	require.NoError(t, repo.Create(context.Background(), report))
	assert.Contains(t, db.items, DefaultTableName+"/"+report.ID)

	got, err := repo.Get(context.Background(), report.ID)
	require.NoError(t, err)

	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.Roots, got.Roots)
	assert.True(t, report.StartedAt.Equal(got.StartedAt))
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "1.22-alpine", got.Entries[0].Latest)
	assert.Equal(t, "build", got.Entries[0].Stage)
	require.NotNil(t, got.Entries[0].LastUpdated)
	assert.True(t, updated.Equal(*got.Entries[0].LastUpdated))
	assert.Equal(t, audit.StatusFailed, got.Entries[1].Status)
	assert.Nil(t, got.Entries[1].LastUpdated)
}

func TestRepo_GetNotFound(t *testing.T) {
	repo := NewRepository(newDynamoMock(), "Reports")

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepo_ClientError(t *testing.T) {
	db := newDynamoMock()
	db.err = errors.New("throttled")
	repo := NewRepository(db, "Reports")

	err := repo.Create(context.Background(), &audit.Report{ID: "1"})
	assert.ErrorContains(t, err, "put failed")

	_, err = repo.Get(context.Background(), "1")
	assert.ErrorContains(t, err, "get failed")
}

func TestRepo_CreateWithoutID(t *testing.T) {
	assert.Error(t, NewRepository(newDynamoMock(), "").Create(context.Background(), &audit.Report{}))
}
