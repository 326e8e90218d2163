package models

import "time"

// TempRegistration holds a multi-step signup session. Partial form data is
// merged in step by step; the collection carries a TTL index so abandoned
// sessions disappear after 24 hours.
type TempRegistration struct {
	ID             string         `json:"-" bson:"_id,omitempty"`
	RegistrationID string         `json:"registration_id" bson:"registration_id"`
	CurrentStep    int            `json:"current_step" bson:"current_step"`
	Data           map[string]any `json:"data" bson:"data"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// MaxRegistrationStep is the last form page of the signup flow.
const MaxRegistrationStep = 14
