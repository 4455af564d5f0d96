package controllers

import (
	"context"
	"strings"
	"sync"
	"testing"

	"pingou_server/models"
	"pingou_server/realtime"
	"pingou_server/services"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// memoryDynamo implements the subset of services.DynamoDBAPI the
// controller flows touch, keyed in memory.
type memoryDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	keys   map[string]string
}

func newMemoryDynamo() *memoryDynamo {
	return &memoryDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{
			models.UserProfilesTable: {},
			models.ConnectionsTable:  {},
		},
		keys: map[string]string{
			models.UserProfilesTable: "userId",
			models.ConnectionsTable:  "pairId",
		},
	}
}

func attrString(item map[string]types.AttributeValue, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *memoryDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	key := attrString(params.Item, m.keys[table])
	if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[table][key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *memoryDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	key := attrString(params.Key, m.keys[table])
	return &dynamodb.GetItemOutput{Item: m.tables[table][key]}, nil
}

func (m *memoryDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := strings.SplitN(*params.KeyConditionExpression, "=", 2)
	attr := strings.TrimSpace(parts[0])
	want := attrString(params.ExpressionAttributeValues, strings.TrimSpace(parts[1]))

	var items []map[string]types.AttributeValue
	for _, item := range m.tables[*params.TableName] {
		if attrString(item, attr) == want {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *memoryDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	key := attrString(params.Key, m.keys[table])
	item := m.tables[table][key]
	updated := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		updated[k] = v
	}
	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, assignment := range strings.Split(expr, ",") {
		sides := strings.SplitN(assignment, "=", 2)
		attr := params.ExpressionAttributeNames[strings.TrimSpace(sides[0])]
		updated[attr] = params.ExpressionAttributeValues[strings.TrimSpace(sides[1])]
	}
	m.tables[table][key] = updated
	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

func (m *memoryDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	delete(m.tables[table], attrString(params.Key, m.keys[table]))
	return &dynamodb.DeleteItemOutput{}, nil
}

// fixture bundles the service graph the controllers sit on.
type fixture struct {
	profiles    *services.UserProfileService
	store       *services.ProfileStore
	connections *services.ConnectionService
	scans       *services.ScanService
	broker      *realtime.Broker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dynamo := &services.DynamoService{Client: newMemoryDynamo()}
	broker := realtime.NewBroker()
	profiles := &services.UserProfileService{Dynamo: dynamo}
	connections := &services.ConnectionService{Dynamo: dynamo, Events: broker}
	scans := services.NewScanService(connections)
	scans.Cooldown = 0
	return &fixture{
		profiles:    profiles,
		store:       services.NewProfileStore(profiles),
		connections: connections,
		scans:       scans,
		broker:      broker,
	}
}

func (f *fixture) seedProfile(t *testing.T, userID, name string) {
	t.Helper()
	_, err := f.profiles.AddUserProfile(context.Background(), models.UserProfile{
		UserID:   userID,
		FullName: name,
	})
	require.NoError(t, err)
}
