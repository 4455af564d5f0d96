package models

// UserProfile is the networking-card record stored per user: who they are
// and how to reach them after a scan.
type UserProfile struct {
	UserID    string `dynamodbav:"userId" json:"user_id"`
	FullName  string `dynamodbav:"fullName,omitempty" json:"fullname,omitempty"`
	Nickname  string `dynamodbav:"nickname,omitempty" json:"nickname,omitempty"`
	EmailID   string `dynamodbav:"emailId,omitempty" json:"email,omitempty"`
	Phone     string `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Instagram string `dynamodbav:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `dynamodbav:"twitter,omitempty" json:"twitter,omitempty"`
	LinkedIn  string `dynamodbav:"linkedin,omitempty" json:"linkedin,omitempty"`
	AvatarURL string `dynamodbav:"avatarUrl,omitempty" json:"profile_url,omitempty"`
	CreatedAt string `dynamodbav:"createdAt,omitempty" json:"created_at,omitempty"`
	UpdatedAt string `dynamodbav:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
