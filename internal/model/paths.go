package model

import (
	"strconv"

	"bookswap/internal/store"
)

// Typed builders for the closed set of path shapes the system addresses.
// Nothing outside this file assembles a store path from strings.

func Conversations() store.Path {
	return store.Path{"conversations"}
}

func Conversation(cid string) store.Path {
	return store.Path{"conversations", cid}
}

func ConversationBookID(cid string) store.Path {
	return store.Path{"conversations", cid, "bookId"}
}

// ConversationSide addresses the owner or peer sub-record.
func ConversationSide(cid string, side string) store.Path {
	return store.Path{"conversations", cid, side}
}

func ConversationSideUID(cid string, side string) store.Path {
	return store.Path{"conversations", cid, side, "uid"}
}

func ConversationSideRating(cid string, side string) store.Path {
	return store.Path{"conversations", cid, side, "rating"}
}

func ConversationFlag(cid string, flag string) store.Path {
	return store.Path{"conversations", cid, "flags", flag}
}

func ConversationMessage(cid string, mid string) store.Path {
	return store.Path{"conversations", cid, "messages", mid}
}

func Users() store.Path {
	return store.Path{"users"}
}

func UserDoc(uid string) store.Path {
	return store.Path{"users", uid}
}

func UserUsername(uid string) store.Path {
	return store.Path{"users", uid, "profile", "username"}
}

func UserActiveConversation(uid string, cid string) store.Path {
	return store.Path{"users", uid, "conversations", "active", cid}
}

func UserArchivedConversation(uid string, cid string) store.Path {
	return store.Path{"users", uid, "conversations", "archived", cid}
}

func UserLentBook(uid string, bid string) store.Path {
	return store.Path{"users", uid, "books", "lentBooks", bid}
}

func UserBorrowedBook(uid string, bid string) store.Path {
	return store.Path{"users", uid, "books", "borrowedBooks", bid}
}

func UserStatistic(uid string, name string) store.Path {
	return store.Path{"users", uid, "statistics", name}
}

// UserRatingEntry keys the rating history by negated timestamp so ascending
// key order lists newest first.
func UserRatingEntry(uid string, negatedTimestamp int64) store.Path {
	return store.Path{"users", uid, "ratings", strconv.FormatInt(negatedTimestamp, 10)}
}

func BookTitle(bid string) store.Path {
	return store.Path{"books", bid, "bookInfo", "title"}
}

func BookFlag(bid string, flag string) store.Path {
	return store.Path{"books", bid, "flags", flag}
}

// BookLegacyDeleted is the superseded deleted flag older clients still
// write; the trigger core mirrors it into BookFlag(bid, "deleted").
func BookLegacyDeleted(bid string) store.Path {
	return store.Path{"books", bid, "deleted"}
}

func Tokens(uid string) store.Path {
	return store.Path{"tokens", uid}
}

func Token(uid string, token string) store.Path {
	return store.Path{"tokens", uid, token}
}
