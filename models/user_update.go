package models

import "time"

// QuotaAction identifies a rate-limited social action. The per-day counters
// and reset timestamps for each action live on the user document.
type QuotaAction string

const (
	ActionDislike QuotaAction = "dislike"
	ActionPropose QuotaAction = "propose"
	ActionCrush   QuotaAction = "crush"
)

// ProfileUpdate is a partial update of the self-editable profile fields.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Username          *string
	Nickname          *string
	Bio               *string
	Hobbies           *[]string
	HeightFt          *int
	HeightIn          *int
	Zodiac            *string
	MBTI              *string
	Photos            *[]Photo
	Contact           *string
	NicknameChangedAt *time.Time
}
