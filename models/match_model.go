package models

import (
	"strings"
	"time"
)

// Match is a confirmed mutual connection between exactly two users.
// Users is always stored sorted; PairKey carries a unique index so at most
// one match can ever exist per unordered pair, regardless of which trigger
// (mutual crush or accepted proposal) created it.
type Match struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	PairKey   string    `json:"-" bson:"pair_key"`
	Users     []string  `json:"users" bson:"users"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SortPair returns the two user IDs in canonical order.
func SortPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// PairKey builds the order-independent lookup key for a user pair.
func PairKey(a, b string) string {
	lo, hi := SortPair(a, b)
	return lo + ":" + hi
}

// HasUser reports whether the match involves the given user.
func (m *Match) HasUser(userID string) bool {
	for _, u := range m.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// OtherUser returns the counterpart of userID in the match.
func (m *Match) OtherUser(userID string) (string, bool) {
	for _, u := range m.Users {
		if u != userID {
			return u, true
		}
	}
	return "", false
}
