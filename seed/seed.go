package seed

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"golang.org/x/crypto/bcrypt"

	"campusmatch/logger"
	"campusmatch/models"
	"campusmatch/store"
)

// demoUserCount is how many approved demo profiles are generated on an
// empty database.
const demoUserCount = 40

var (
	programs  = []string{"CS", "CST", "EC", "Civil", "Mechatronics"}
	batches   = []string{"2021", "2022", "2023", "2024"}
	zodiacs   = []string{"aries", "taurus", "gemini", "cancer", "leo", "virgo", "libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces"}
	mbtis     = []string{"INTJ", "INTP", "ENTJ", "ENTP", "INFJ", "INFP", "ENFJ", "ENFP", "ISTJ", "ISFJ", "ESTJ", "ESFJ", "ISTP", "ISFP", "ESTP", "ESFP"}
	hobbyPool = []string{"reading", "gaming", "hiking", "cooking", "photography", "music", "football", "badminton", "painting", "coding"}
)

// DemoUsers fills an empty users collection with approved demo profiles so
// the feed has something to serve in development. No-op when any user
// exists.
func DemoUsers(ctx context.Context, users *store.UserStore) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	fake := faker.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	genders := []string{models.GenderMale, models.GenderFemale, models.GenderLGBT}
	sexualities := []string{models.SexualityMale, models.SexualityFemale, models.SexualityBoth}

	for i := 0; i < demoUserCount; i++ {
		first := fake.Person().FirstName()
		last := fake.Person().LastName()
		username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), i)

		user := &models.User{
			PublicID:  uuid.New().String(),
			Nickname:  first,
			DOB:       time.Now().AddDate(-18-rng.Intn(8), -rng.Intn(12), -rng.Intn(28)),
			Gender:    genders[rng.Intn(len(genders))],
			Sexuality: sexualities[rng.Intn(len(sexualities))],
			Bio:       fake.Lorem().Sentence(8),
			Hobbies:   pickHobbies(rng),
			HeightFt:  5 + rng.Intn(2),
			HeightIn:  rng.Intn(12),
			Zodiac:    zodiacs[rng.Intn(len(zodiacs))],
			MBTI:      mbtis[rng.Intn(len(mbtis))],
			Name:      first + " " + last,
			Program:   programs[rng.Intn(len(programs))],
			Batch:     batches[rng.Intn(len(batches))],
			Contact:   fmt.Sprintf("09%08d", rng.Intn(100000000)),
			Photos: []models.Photo{
				{FileID: uuid.New().String(), URL: fmt.Sprintf("https://picsum.photos/seed/%d-a/400", i)},
				{FileID: uuid.New().String(), URL: fmt.Sprintf("https://picsum.photos/seed/%d-b/400", i)},
				{FileID: uuid.New().String(), URL: fmt.Sprintf("https://picsum.photos/seed/%d-c/400", i)},
			},
			Username:      username,
			PasswordHash:  string(hash),
			Status:        models.StatusApproved,
			Active:        true,
			ShownProfiles: []string{},
		}
		if err := users.Insert(ctx, user); err != nil {
			return err
		}
	}

	logger.Info("seeded demo users", "count", demoUserCount)
	return nil
}

func pickHobbies(rng *rand.Rand) []string {
	n := 2 + rng.Intn(3)
	picked := make([]string, 0, n)
	seen := make(map[int]bool, n)
	for len(picked) < n {
		idx := rng.Intn(len(hobbyPool))
		if seen[idx] {
			continue
		}
		seen[idx] = true
		picked = append(picked, hobbyPool[idx])
	}
	return picked
}

// EnsureAdmin creates the bootstrap admin account from ADMIN_USERNAME /
// ADMIN_PASSWORD when it does not exist yet. Skipped silently when the
// variables are unset.
func EnsureAdmin(ctx context.Context, admins *store.AdminStore) error {
	username := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_USERNAME")))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	if _, err := admins.FindByUsername(ctx, username); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		PublicID:     uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := admins.Insert(ctx, admin); err != nil {
		return err
	}
	logger.Info("created bootstrap admin", "username", username)
	return nil
}
