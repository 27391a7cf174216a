// Package seed provides helpers to create demo lists and submissions for
// the application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"brc/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder builds demo entities and persists them to the database.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll truncates the domain tables. Demo data only; never run this
// against a real queue.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"bot_action", "bot_queue", "bot_list"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Cleared bot_action, bot_queue, bot_list")
	return nil
}

// BuildList constructs a demo list without persisting it.
func (s *Seeder) BuildList() *models.List {
	domain := gofakeit.DomainName()
	base := "https://" + domain + "/api/webhooks"
	return &models.List{
		ID:            uuid.NewString(),
		Name:          gofakeit.Company() + " Bot List",
		Description:   gofakeit.Sentence(8),
		Domain:        domain,
		Icon:          fmt.Sprintf("https://picsum.photos/seed/%s/256/256", gofakeit.UUID()),
		State:         s.randomListState(),
		ClaimBotAPI:   base + "/claim",
		UnclaimBotAPI: base + "/unclaim",
		ApproveBotAPI: base + "/approve",
		DenyBotAPI:    base + "/deny",
		SecretKey:     gofakeit.Password(true, true, true, false, false, 40),
	}
}

// BuildSubmission constructs a demo submission without persisting it.
// lists supplies the candidate origin lists; state spread covers the whole
// lifecycle so every view has data.
func (s *Seeder) BuildSubmission(lists []models.List) *models.Submission {
	state := models.State(s.r.Intn(4))
	sub := &models.Submission{
		BotID:           s.randomSnowflake(),
		Username:        gofakeit.AppName(),
		State:           state,
		Owner:           s.randomSnowflake(),
		ExtraOwners:     models.SnowflakeList{},
		CrossAdd:        s.r.Intn(4) != 0,
		Description:     gofakeit.Sentence(10),
		LongDescription: gofakeit.Paragraph(2, 4, 8, "\n"),
		Website:         "https://" + gofakeit.DomainName(),
		Invite:          "https://discord.gg/" + gofakeit.LetterN(8),
		Support:         "https://discord.gg/" + gofakeit.LetterN(8),
		Library:         gofakeit.RandomString([]string{"discord.py", "discord.js", "serenity", "JDA", "discordgo"}),
		Prefix:          gofakeit.RandomString([]string{"!", "?", ".", ";;", "~"}),
		Tags:            models.StringList{"utility"},
		NSFW:            s.r.Intn(10) == 0,
		AddedAt:         time.Now().Add(-time.Duration(s.r.Intn(90*24)) * time.Hour),
	}

	for i := 0; i < s.r.Intn(3); i++ {
		sub.ExtraOwners = append(sub.ExtraOwners, s.randomSnowflake())
	}
	for _, tag := range []string{"moderation", "fun", "music", "economy", "leveling"} {
		if s.r.Intn(3) == 0 {
			sub.Tags = append(sub.Tags, tag)
		}
	}
	if len(lists) > 0 {
		origin := lists[s.r.Intn(len(lists))].ID
		sub.ListSource = &origin
	}
	if state == models.StateUnderReview || state.Terminal() {
		reviewer := s.randomSnowflake()
		sub.Reviewer = &reviewer
	}

	return sub
}

// SeedLists persists n demo lists and returns them.
func (s *Seeder) SeedLists(n int) ([]models.List, error) {
	lists := make([]models.List, 0, n)
	for i := 0; i < n; i++ {
		list := s.BuildList()
		if err := s.db.Create(list).Error; err != nil {
			return nil, fmt.Errorf("creating list %q: %w", list.Name, err)
		}
		lists = append(lists, *list)
	}
	log.Printf("Seeded %d lists", n)
	return lists, nil
}

// SeedSubmissions persists n demo submissions spread across the given
// origin lists, plus matching audit entries for reviewed ones.
func (s *Seeder) SeedSubmissions(lists []models.List, n int) error {
	for i := 0; i < n; i++ {
		sub := s.BuildSubmission(lists)
		if err := s.db.Create(sub).Error; err != nil {
			return fmt.Errorf("creating submission %d: %w", int64(sub.BotID), err)
		}
		if err := s.seedActions(sub); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d submissions", n)
	return nil
}

// seedActions backfills the audit trail implied by the submission's state.
func (s *Seeder) seedActions(sub *models.Submission) error {
	if sub.State == models.StatePending || sub.Reviewer == nil {
		return nil
	}

	actions := []models.Action{models.ActionClaim}
	switch sub.State {
	case models.StateApproved:
		actions = append(actions, models.ActionApprove)
	case models.StateDenied:
		actions = append(actions, models.ActionDeny)
	}

	for i, action := range actions {
		entry := &models.ReviewAction{
			BotID:      sub.BotID,
			Action:     action,
			Reason:     gofakeit.Sentence(6),
			Reviewer:   *sub.Reviewer,
			ListSource: sub.ListSource,
			ActionTime: sub.AddedAt.Add(time.Duration(i+1) * time.Hour),
		}
		if err := s.db.Create(entry).Error; err != nil {
			return fmt.Errorf("creating action for %d: %w", int64(sub.BotID), err)
		}
	}
	return nil
}

func (s *Seeder) randomSnowflake() models.Snowflake {
	// Discord-era snowflakes sit well above 2^53; generating them here
	// keeps the string-serialization path exercised by demo data.
	return models.Snowflake(s.r.Int63n(1<<62) + (1 << 61))
}

func (s *Seeder) randomListState() models.ListState {
	// Mostly trusted lists so fan-out has targets.
	switch s.r.Intn(10) {
	case 0:
		return models.ListStateDefunct
	case 1:
		return models.ListStateUnconfirmedEnrollment
	case 2:
		return models.ListStatePendingAPISupport
	default:
		return models.ListStateSupported
	}
}
