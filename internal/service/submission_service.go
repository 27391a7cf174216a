package service

import (
	"context"
	"strings"

	"brc/internal/cache"
	"brc/internal/models"
	"brc/internal/observability"
	"brc/internal/repository"
)

type SubmissionService struct {
	subRepo repository.SubmissionRepository
}

// IntakeInput is one bot submission as a list sends it. ListSource is the
// authenticated origin list, never client-supplied.
type IntakeInput struct {
	BotID           models.Snowflake
	Owner           models.Snowflake
	ExtraOwners     []models.Snowflake
	Username        string
	Description     string
	LongDescription string
	Website         string
	Support         string
	Banner          string
	Donate          string
	Library         string
	Invite          string
	Prefix          string
	Tags            []string
	NSFW            bool
	CrossAdd        bool
	ListSource      string
}

// IntakeResult carries the stored submission plus the names of optional
// URL fields that were dropped during sanitisation, so the submitting
// list can surface them to the bot owner.
type IntakeResult struct {
	Submission *models.Submission
	Removed    []string
}

func NewSubmissionService(subRepo repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{subRepo: subRepo}
}

// Intake validates and stores a new submission in the pending state.
func (s *SubmissionService) Intake(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	if in.BotID <= 0 {
		return nil, models.NewValidationError("bot_id must be a positive snowflake")
	}
	if in.Owner <= 0 {
		return nil, models.NewValidationError("owner must be a positive snowflake")
	}
	if in.ListSource == "" {
		return nil, models.NewValidationError("submission has no origin list")
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, models.NewValidationError("username is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("description is required")
	}

	extraOwners := dedupeOwners(in.Owner, in.ExtraOwners)

	var removed []string
	website, ok := coerceHTTPS(in.Website)
	if !ok {
		removed = append(removed, "website")
	}
	support, ok := coerceHTTPS(in.Support)
	if !ok {
		removed = append(removed, "support")
	}
	banner, ok := coerceHTTPS(in.Banner)
	if !ok {
		removed = append(removed, "banner")
	}

	// Invites are join links; anything that is not already https is
	// dropped without coercion.
	invite := in.Invite
	if invite != "" && !strings.HasPrefix(invite, "https://") {
		invite = ""
	}

	sub := &models.Submission{
		BotID:           in.BotID,
		Username:        strings.TrimSpace(in.Username),
		State:           models.StatePending,
		Owner:           in.Owner,
		ExtraOwners:     extraOwners,
		ListSource:      &in.ListSource,
		CrossAdd:        in.CrossAdd,
		Description:     strings.TrimSpace(in.Description),
		LongDescription: in.LongDescription,
		Website:         website,
		Invite:          invite,
		Support:         support,
		Donate:          in.Donate,
		Library:         in.Library,
		Banner:          banner,
		Prefix:          in.Prefix,
		Tags:            normalizeTags(in.Tags),
		NSFW:            in.NSFW,
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return &IntakeResult{Submission: sub, Removed: removed}, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, botID models.Snowflake) (*models.Submission, error) {
	var sub models.Submission
	err := cache.Aside(ctx, cache.SubmissionKey(botID), &sub, cache.SubmissionTTL, func() error {
		found, err := s.subRepo.GetByID(ctx, botID)
		if err != nil {
			return err
		}
		sub = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, limit, offset int) ([]models.Submission, error) {
	return s.subRepo.List(ctx, limit, offset)
}

// QueueSummary groups the open queue by state. Terminal states are
// folded into the total only.
type QueueSummary struct {
	Pending     []models.Submission `json:"pending"`
	UnderReview []models.Submission `json:"under_review"`
	Counts      map[string]int      `json:"counts"`
	Total       int64               `json:"total"`
}

func (s *SubmissionService) Queue(ctx context.Context) (*QueueSummary, error) {
	pending, err := s.subRepo.ListByState(ctx, models.StatePending)
	if err != nil {
		return nil, err
	}
	underReview, err := s.subRepo.ListByState(ctx, models.StateUnderReview)
	if err != nil {
		return nil, err
	}
	total, err := s.subRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	observability.QueueSize.WithLabelValues(models.StatePending.String()).Set(float64(len(pending)))
	observability.QueueSize.WithLabelValues(models.StateUnderReview.String()).Set(float64(len(underReview)))

	return &QueueSummary{
		Pending:     pending,
		UnderReview: underReview,
		Counts: map[string]int{
			models.StatePending.String():     len(pending),
			models.StateUnderReview.String(): len(underReview),
		},
		Total: total,
	}, nil
}

// dedupeOwners strips the primary owner and duplicates from the extra
// owner set, preserving submission order.
func dedupeOwners(owner models.Snowflake, extras []models.Snowflake) models.SnowflakeList {
	seen := map[models.Snowflake]bool{owner: true}
	out := models.SnowflakeList{}
	for _, id := range extras {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// coerceHTTPS normalises an optional URL field. Empty stays empty, http
// is upgraded, https passes through, anything else is dropped and the
// second return is false.
func coerceHTTPS(u string) (string, bool) {
	u = strings.TrimSpace(u)
	switch {
	case u == "":
		return "", true
	case strings.HasPrefix(u, "https://"):
		return u, true
	case strings.HasPrefix(u, "http://"):
		return "https://" + strings.TrimPrefix(u, "http://"), true
	default:
		return "", false
	}
}

// normalizeTags lowercases and dedupes tags, guaranteeing the baseline
// utility tag so every submission is browsable somewhere.
func normalizeTags(tags []string) models.StringList {
	seen := map[string]bool{}
	out := models.StringList{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if !seen["utility"] {
		out = append(out, "utility")
	}
	return out
}
