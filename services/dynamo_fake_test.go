package services

import (
	"context"
	"strings"
	"sync"

	"pingou_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoDBAPI covering the operations this
// server issues: keyed puts (conditional and not), gets, equality queries,
// SET updates and deletes. Error fields inject transport failures.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	keys   map[string]string

	putCalls    int
	getCalls    int
	queryCalls  int
	updateCalls int

	PutErr    error
	GetErr    error
	QueryErr  error
	UpdateErr error
	DeleteErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
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

func stringAttr(item map[string]types.AttributeValue, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.PutErr != nil {
		return nil, f.PutErr
	}

	table := *params.TableName
	keyAttr := f.keys[table]
	keyValue := stringAttr(params.Item, keyAttr)

	if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := f.tables[table][keyValue]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.tables[table][keyValue] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.GetErr != nil {
		return nil, f.GetErr
	}

	table := *params.TableName
	keyValue := stringAttr(params.Key, f.keys[table])
	item := f.tables[table][keyValue]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	// Supports the single shape the services use: "attr = :placeholder".
	parts := strings.SplitN(*params.KeyConditionExpression, "=", 2)
	attr := strings.TrimSpace(parts[0])
	placeholder := strings.TrimSpace(parts[1])
	want := ""
	if v, ok := params.ExpressionAttributeValues[placeholder].(*types.AttributeValueMemberS); ok {
		want = v.Value
	}

	var items []map[string]types.AttributeValue
	for _, item := range f.tables[*params.TableName] {
		if stringAttr(item, attr) == want {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}

	table := *params.TableName
	keyValue := stringAttr(params.Key, f.keys[table])
	item := f.tables[table][keyValue]
	if item == nil {
		item = map[string]types.AttributeValue{}
		for k, v := range params.Key {
			item[k] = v
		}
	}

	updated := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		updated[k] = v
	}

	// Applies "SET #a = :a, #b = :b" expressions.
	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, assignment := range strings.Split(expr, ",") {
		sides := strings.SplitN(assignment, "=", 2)
		name := strings.TrimSpace(sides[0])
		placeholder := strings.TrimSpace(sides[1])
		attr := params.ExpressionAttributeNames[name]
		updated[attr] = params.ExpressionAttributeValues[placeholder]
	}

	f.tables[table][keyValue] = updated
	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}

	table := *params.TableName
	keyValue := stringAttr(params.Key, f.keys[table])
	delete(f.tables[table], keyValue)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) rawItem(table, key string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table][key]
}

func (f *fakeDynamo) rowCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *fakeDynamo) puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls
}

func (f *fakeDynamo) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}
