package models

import "time"

// Propose status values. pending transitions to accepted or denied exactly
// once; accepted proposals are immutable. A denied proposal in either
// direction permanently blocks new proposals between the two users.
const (
	ProposeStatusPending  = "pending"
	ProposeStatusAccepted = "accepted"
	ProposeStatusDenied   = "denied"
)

type Propose struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
