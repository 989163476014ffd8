package model

const ChannelTableName = "channels"

// Channel kinds.
const (
	ChannelKindPublic  = "public"
	ChannelKindPrivate = "private"
	ChannelKindDirect  = "direct"
)

// Validation bounds.
const (
	ChannelNameMinLen = 2
	ChannelNameMaxLen = 50
	ChannelDescMaxLen = 200
)

// Channel is a named group of members sharing an ordered message history.
// Members keep their join order for display; membership checks treat the
// slice as a set. LastMessage is a weak back-reference maintained by the
// message layer and never used to reconstruct content.
type Channel struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Kind        string   `bson:"kind" json:"kind"`
	Members     []string `bson:"members" json:"members"`
	CreatedBy   string   `bson:"created_by" json:"createdBy"`
	LastMessage string   `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	Active      bool     `bson:"active" json:"active"`
	CreatedAt   int64    `bson:"created_at" json:"createdAt"` // unix ms
	UpdatedAt   int64    `bson:"updated_at" json:"updatedAt"` // unix ms
}

func (*Channel) TableName() string { return ChannelTableName }

// HasMember reports set membership regardless of join order.
func (c *Channel) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func ValidChannelKind(kind string) bool {
	switch kind {
	case ChannelKindPublic, ChannelKindPrivate, ChannelKindDirect:
		return true
	}
	return false
}
