package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pingou_server/models"
	"pingou_server/realtime"
	"pingou_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ConnectionService is the only component that reads or writes the
// Connections table. Profile reads on behalf of the connection flow also
// go through here so the realtime layer has a single source.
type ConnectionService struct {
	Dynamo *DynamoService
	Events *realtime.Broker
}

// CreateConnection inserts the connection row for (sender, receiver).
// The insert is idempotent over the unordered pair: a duplicate comes back
// as (false, nil), not an error. A genuinely new row is announced on the
// event broker. Self-connections never reach storage.
func (cs *ConnectionService) CreateConnection(ctx context.Context, senderID, receiverID string) (bool, error) {
	if senderID == "" {
		return false, models.ErrNotAuthenticated
	}
	if receiverID == "" {
		return false, errors.New("receiver id is required")
	}
	if senderID == receiverID {
		return false, models.ErrSelfConnection
	}

	connection := models.Connection{
		PairID:     models.PairID(senderID, receiverID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	created, err := cs.Dynamo.PutItemIfAbsent(ctx, models.ConnectionsTable, connection, "pairId")
	if err != nil {
		return false, fmt.Errorf("failed to create connection: %w", err)
	}

	if created {
		log.Printf("Connection created: %s -> %s", senderID, receiverID)
		if cs.Events != nil {
			cs.Events.Publish(realtime.ConnectionEvent{SenderID: senderID, ReceiverID: receiverID})
		}
	}
	return created, nil
}

// GetProfile returns the profile for a user id, or models.ErrProfileNotFound.
func (cs *ConnectionService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profiles := &UserProfileService{Dynamo: cs.Dynamo}
	return profiles.GetUserProfile(ctx, userID)
}

// ListConnectionsFor resolves every connection row where userID appears on
// either side into the counterpart's profile. Counterparts are
// deduplicated, the user is never included in their own list, and a
// counterpart whose profile row is missing is skipped rather than fatal.
func (cs *ConnectionService) ListConnectionsFor(ctx context.Context, userID string) ([]models.UserProfile, error) {
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}

	rows, err := cs.connectionRowsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	profiles := make([]models.UserProfile, 0, len(rows))
	for _, row := range rows {
		counterpart := row.Counterpart(userID)
		if counterpart == "" || counterpart == userID || seen[counterpart] {
			continue
		}
		seen[counterpart] = true

		profile, err := cs.GetProfile(ctx, counterpart)
		if errors.Is(err, models.ErrProfileNotFound) {
			log.Printf("Skipping connection %s: no profile row", counterpart)
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// connectionRowsFor unions both GSI directions for the user.
func (cs *ConnectionService) connectionRowsFor(ctx context.Context, userID string) ([]models.Connection, error) {
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	var rows []models.Connection
	queries := []struct {
		index        string
		keyCondition string
	}{
		{models.SenderIDIndex, "senderId = :user"},
		{models.ReceiverIDIndex, "receiverId = :user"},
	}
	for _, q := range queries {
		items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, q.index, q.keyCondition, expressionValues, nil, 500)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			rows = append(rows, models.Connection{
				PairID:     utils.ExtractString(item, "pairId"),
				SenderID:   utils.ExtractString(item, "senderId"),
				ReceiverID: utils.ExtractString(item, "receiverId"),
				CreatedAt:  utils.ExtractString(item, "createdAt"),
			})
		}
	}
	return rows, nil
}
