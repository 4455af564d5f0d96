package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pingou_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type UserProfileService struct {
	Dynamo *DynamoService
}

// AddUserProfile creates the profile row at signup completion. The user id
// normally comes from the auth provider; a missing id gets a generated one.
// A second create for the same id is refused, not overwritten.
func (ups *UserProfileService) AddUserProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		profile.UserID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	profile.CreatedAt = now
	profile.UpdatedAt = now

	created, err := ups.Dynamo.PutItemIfAbsent(ctx, models.UserProfilesTable, profile, "userId")
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.ErrProfileExists
	}

	log.Printf("Profile created for user %s", profile.UserID)
	return &profile, nil
}

// GetUserProfile retrieves a user profile by ID. A missing row is
// models.ErrProfileNotFound, distinct from transport failures.
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.ErrProfileNotFound
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// editableProfileFields maps the payload field names of the edit-save flow
// to their stored attribute names. Identity and timestamps are managed by
// the service; anything outside this map is dropped from the update.
var editableProfileFields = map[string]string{
	"fullname":    "fullName",
	"nickname":    "nickname",
	"email":       "emailId",
	"phone":       "phone",
	"instagram":   "instagram",
	"twitter":     "twitter",
	"linkedin":    "linkedin",
	"profile_url": "avatarUrl",
}

// UpdateUserProfile applies the owner's edits. Only the card fields in
// editableProfileFields can be written through here.
func (ups *UserProfileService) UpdateUserProfile(ctx context.Context, userID string, updates map[string]string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}
	fields := make(map[string]string, len(updates))
	for k, v := range updates {
		if attr, ok := editableProfileFields[k]; ok {
			fields[attr] = v
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("nothing to update")
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	updateExpression := "SET"
	expressionAttributeValues := make(map[string]types.AttributeValue)
	expressionAttributeNames := make(map[string]string)

	for k, v := range fields {
		placeholder := ":" + k
		attributeName := "#" + k
		updateExpression += " " + attributeName + " = " + placeholder + ","

		expressionAttributeValues[placeholder] = &types.AttributeValueMemberS{Value: v}
		expressionAttributeNames[attributeName] = k
	}
	updateExpression += " #updatedAt = :updatedAt"
	expressionAttributeValues[":updatedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}
	expressionAttributeNames["#updatedAt"] = "updatedAt"

	updatedItem, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, expressionAttributeValues, expressionAttributeNames)
	if err != nil {
		return nil, err
	}

	var updatedProfile models.UserProfile
	if err := attributevalue.UnmarshalMap(updatedItem, &updatedProfile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	return &updatedProfile, nil
}

// DeleteUserProfile removes a user profile from DynamoDB
func (ups *UserProfileService) DeleteUserProfile(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	return ups.Dynamo.DeleteItem(ctx, models.UserProfilesTable, key)
}
