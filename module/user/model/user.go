package model

const UserTableName = "users"

// Presence status values. "custom" is a free-form status string the user
// sets themselves; the wire carries it verbatim.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
	StatusCustom  = "custom"
)

// User is the identity collaborator's document. Only the fields the chat
// core reads are modeled; credentials stay server-side.
type User struct {
	ID           string `bson:"_id" json:"id"`
	Username     string `bson:"username" json:"username"`
	Avatar       string `bson:"avatar" json:"avatar"`
	Status       string `bson:"status" json:"status"`
	LastSeen     int64  `bson:"last_seen" json:"lastSeen"` // unix ms
	PasswordHash string `bson:"password_hash" json:"-"`
}

func (*User) TableName() string { return UserTableName }

// Summary is the projection embedded in rendered channels and messages,
// mirroring the original's `username avatar status lastSeen` populate.
type Summary struct {
	ID       string `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`
	Avatar   string `bson:"avatar" json:"avatar"`
	Status   string `bson:"status" json:"status"`
	LastSeen int64  `bson:"last_seen" json:"lastSeen"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Status:   u.Status,
		LastSeen: u.LastSeen,
	}
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOnline, StatusAway, StatusOffline, StatusCustom:
		return true
	}
	return false
}
