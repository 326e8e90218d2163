package models

import "time"

// Crush is a one-directional expression of interest. A mutual crush
// (both directions present) triggers a match. Unique per (user, target).
type Crush struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	User      string    `json:"user" bson:"user"`
	Target    string    `json:"target" bson:"target"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
