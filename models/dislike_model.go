package models

import "time"

// Dislike suppresses the target from the actor's future feed candidates.
// Unique per (user, target); removable by the actor after a 24h cooldown.
type Dislike struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	User      string    `json:"user" bson:"user"`
	Target    string    `json:"target" bson:"target"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
