package models

import "time"

// User status values. The transition pending -> approved/rejected is one-way;
// there is no path back to pending. Deleted users are soft-deleted only.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDeleted  = "deleted"
)

// Gender / sexuality options
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderLGBT   = "lgbt"

	SexualityMale   = "male"
	SexualityFemale = "female"
	SexualityBoth   = "both"
)

// Photo is a reference to an externally hosted image. The bytes live with
// the image provider; only the metadata is stored here.
type Photo struct {
	FileID string `json:"file_id" bson:"file_id"`
	URL    string `json:"url" bson:"url"`
}

type User struct {
	ID       string `json:"-" bson:"_id,omitempty"`
	PublicID string `json:"id" bson:"public_id"`

	// Profile
	Nickname          string     `json:"nickname" bson:"nickname"`
	DOB               time.Time  `json:"dob" bson:"dob"`
	Gender            string     `json:"gender" bson:"gender"`
	Sexuality         string     `json:"sexuality" bson:"sexuality"`
	Bio               string     `json:"bio" bson:"bio"`
	Hobbies           []string   `json:"hobbies" bson:"hobbies"`
	HeightFt          int        `json:"height_ft,omitempty" bson:"height_ft,omitempty"`
	HeightIn          int        `json:"height_in,omitempty" bson:"height_in,omitempty"`
	Zodiac            string     `json:"zodiac,omitempty" bson:"zodiac,omitempty"`
	MBTI              string     `json:"mbti,omitempty" bson:"mbti,omitempty"`
	NicknameChangedAt *time.Time `json:"nickname_changed_at,omitempty" bson:"nickname_changed_at,omitempty"`

	// Verification (admin-only surface)
	Name           string  `json:"name" bson:"name"`
	Program        string  `json:"program" bson:"program"`
	Batch          string  `json:"batch" bson:"batch"`
	Contact        string  `json:"contact" bson:"contact"`
	Photos         []Photo `json:"photos" bson:"photos"`
	StudentIDPhoto *Photo  `json:"-" bson:"student_id_photo,omitempty"`

	// Authentication
	Username          string     `json:"username" bson:"username"`
	PasswordHash      string     `json:"-" bson:"password_hash"`
	PasswordChangedAt *time.Time `json:"-" bson:"password_changed_at,omitempty"`

	// Admin workflow
	Status     string `json:"status" bson:"status"`
	ApprovedBy string `json:"-" bson:"approved_by,omitempty"`
	Active     bool   `json:"-" bson:"active"`

	// Feed rotation history. Insertion order matters: the oldest half is
	// evicted when the unseen pool runs low.
	ShownProfiles []string `json:"-" bson:"shown_profiles"`

	// Daily quota counters
	DislikesUsedToday int       `json:"-" bson:"dislikes_used_today"`
	LastDislikeReset  time.Time `json:"-" bson:"last_dislike_reset"`
	DailyProposeCount int       `json:"-" bson:"daily_propose_count"`
	LastProposeReset  time.Time `json:"-" bson:"last_propose_reset"`
	DailyCrushCount   int       `json:"-" bson:"daily_crush_count"`
	LastCrushReset    time.Time `json:"-" bson:"last_crush_reset"`

	// Denormalized count of inbound crushes
	CrushCount int `json:"crush_count" bson:"crush_count"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Age derives the user's age in full years from their date of birth.
func (u *User) Age() int {
	if u.DOB.IsZero() {
		return 0
	}
	now := time.Now()
	if u.DOB.After(now) {
		return 0
	}
	age := now.Year() - u.DOB.Year()
	if now.YearDay() < u.DOB.YearDay() {
		age--
	}
	return age
}

// HeightCm converts the imperial height fields, rounded to one decimal.
func (u *User) HeightCm() float64 {
	if u.HeightFt == 0 && u.HeightIn == 0 {
		return 0
	}
	cm := float64(u.HeightFt)*30.48 + float64(u.HeightIn)*2.54
	return float64(int(cm*10+0.5)) / 10
}

// Profile is the sanitized projection of a user served to other users
// (feed chunks, crush lists, proposal summaries).
type Profile struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Age      int      `json:"age"`
	Gender   string   `json:"gender"`
	Bio      string   `json:"bio"`
	Hobbies  []string `json:"hobbies"`
	HeightFt int      `json:"height_ft,omitempty"`
	HeightIn int      `json:"height_in,omitempty"`
	Zodiac   string   `json:"zodiac,omitempty"`
	MBTI     string   `json:"mbti,omitempty"`
	Photos   []Photo  `json:"photos"`
}

// PublicProfile strips credentials, verification data and workflow state.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:       u.PublicID,
		Nickname: u.Nickname,
		Age:      u.Age(),
		Gender:   u.Gender,
		Bio:      u.Bio,
		Hobbies:  u.Hobbies,
		HeightFt: u.HeightFt,
		HeightIn: u.HeightIn,
		Zodiac:   u.Zodiac,
		MBTI:     u.MBTI,
		Photos:   u.Photos,
	}
}
