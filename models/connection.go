package models

// Connection records a "met" relationship between two profiles. The
// relationship is undirected; sender/receiver only record who initiated
// the scan. Uniqueness is over the unordered pair, expressed as the
// partition key, so a repeated insert fails the key condition instead of
// creating a second row.
type Connection struct {
	PairID     string `dynamodbav:"pairId" json:"-"`
	SenderID   string `dynamodbav:"senderId" json:"sender_id"`
	ReceiverID string `dynamodbav:"receiverId" json:"receiver_id"`
	CreatedAt  string `dynamodbav:"createdAt" json:"created_at"`
}

// ConnectionsTable is the DynamoDB table name for connections
const ConnectionsTable = "Connections"

// GSIs used to fetch a user's connections from either direction
const (
	SenderIDIndex   = "senderId-index"
	ReceiverIDIndex = "receiverId-index"
)

// PairID returns the canonical key for an unordered pair of user ids.
func PairID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "#" + b
}

// Counterpart returns the other side of the connection relative to userID.
func (c Connection) Counterpart(userID string) string {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}
