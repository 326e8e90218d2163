package models

import "time"

// Admin accounts live in their own collection and never mix with users.
type Admin struct {
	ID           string    `json:"-" bson:"_id,omitempty"`
	PublicID     string    `json:"id" bson:"public_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
