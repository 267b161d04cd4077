package model

// Borrowing and return state enums as written by the mobile clients. Only
// the confirmed value matters to the trigger core.
const (
	StateConfirmed int64 = 3
)

// Conversation sides. A conversation is owned jointly by the book's owner
// and the borrowing peer; several paths are addressed per side.
const (
	SideOwner = "owner"
	SidePeer  = "peer"
)

// Message is one chat message, append-only under a conversation.
type Message struct {
	Recipient string `json:"recipient"`
	Timestamp int64  `json:"timestamp"`
	Text      string `json:"text"`
}

// Rating is immutable once written. BookID and Timestamp are stamped by the
// trigger core, not the client.
type Rating struct {
	Score     float64 `json:"score"`
	Comment   string  `json:"comment"`
	BookID    string  `json:"bookId,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Profile is the public part of a user record.
type Profile struct {
	Username string `json:"username"`
}

// Credentials is the private part, used by login only. Password is the
// base64 of a bcrypt hash.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the document written at registration. Everything else under
// users/{uid} is derived state maintained by the trigger core.
type User struct {
	Profile     Profile     `json:"profile"`
	Credentials Credentials `json:"credentials"`
}
