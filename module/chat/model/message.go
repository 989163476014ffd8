package model

const MessageTableName = "messages"

// Message kinds.
const (
	MessageKindText   = "text"
	MessageKindImage  = "image"
	MessageKindFile   = "file"
	MessageKindSystem = "system"
)

// Attachment media kinds.
const (
	MediaKindImage = "image"
	MediaKindFile  = "file"
	MediaKindVideo = "video"
	MediaKindAudio = "audio"
)

// Validation bounds.
const (
	MessageContentMaxLen = 2000
	ReactionEmojiMaxLen  = 10
)

// Reaction is one (user, emoji) entry; at most one per pair on a message.
type Reaction struct {
	Emoji     string `bson:"emoji" json:"emoji"`
	User      string `bson:"user" json:"user"`
	CreatedAt int64  `bson:"created_at" json:"createdAt"` // unix ms
}

type Attachment struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
	Kind string `bson:"kind" json:"kind"` // image/file/video/audio
	Size int64  `bson:"size" json:"size"` // bytes
}

// Message is one entry of a channel's history. Channel/Sender/CreatedAt
// are immutable after creation. Deleted messages stay in storage but are
// excluded from every read path; only reply references resolve them, as
// tombstones.
type Message struct {
	ID          string       `bson:"_id" json:"id"`
	Channel     string       `bson:"channel" json:"channel"`
	Sender      string       `bson:"sender" json:"sender"`
	Kind        string       `bson:"kind" json:"kind"`
	Content     string       `bson:"content" json:"content"`
	ReplyTo     string       `bson:"reply_to,omitempty" json:"replyTo,omitempty"`
	Reactions   []Reaction   `bson:"reactions" json:"reactions"`
	Attachments []Attachment `bson:"attachments" json:"attachments"`
	Edited      bool         `bson:"edited" json:"edited"`
	EditedAt    int64        `bson:"edited_at,omitempty" json:"editedAt,omitempty"` // unix ms
	Deleted     bool         `bson:"deleted" json:"deleted"`
	DeletedAt   int64        `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"` // unix ms
	CreatedAt   int64        `bson:"created_at" json:"createdAt"`                     // unix ms
}

func (*Message) TableName() string { return MessageTableName }

// FindReaction returns the index of the (user, emoji) entry, or -1.
func (m *Message) FindReaction(userID, emoji string) int {
	for i, r := range m.Reactions {
		if r.User == userID && r.Emoji == emoji {
			return i
		}
	}
	return -1
}

func ValidMessageKind(kind string) bool {
	switch kind {
	case MessageKindText, MessageKindImage, MessageKindFile, MessageKindSystem:
		return true
	}
	return false
}

func ValidMediaKind(kind string) bool {
	switch kind {
	case MediaKindImage, MediaKindFile, MediaKindVideo, MediaKindAudio:
		return true
	}
	return false
}
