package service

import (
	"context"
	"errors"
	"testing"

	"brc/internal/models"
	"brc/internal/observability"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subRepoStub struct {
	getByIDFn              func(ctx context.Context, botID models.Snowflake) (*models.Submission, error)
	createFn               func(ctx context.Context, sub *models.Submission) error
	updateStateIfCurrentFn func(ctx context.Context, botID models.Snowflake, allowed []models.State, newState models.State, fields map[string]any) (int64, error)
	updateFieldsFn         func(ctx context.Context, botID models.Snowflake, fields map[string]any) error
	listFn                 func(ctx context.Context, limit, offset int) ([]models.Submission, error)
	listByStateFn          func(ctx context.Context, state models.State) ([]models.Submission, error)
	countFn                func(ctx context.Context) (int64, error)
	deleteFn               func(ctx context.Context, botID models.Snowflake) error
}

func (s *subRepoStub) GetByID(ctx context.Context, botID models.Snowflake) (*models.Submission, error) {
	return s.getByIDFn(ctx, botID)
}
func (s *subRepoStub) Create(ctx context.Context, sub *models.Submission) error {
	return s.createFn(ctx, sub)
}
func (s *subRepoStub) UpdateStateIfCurrent(ctx context.Context, botID models.Snowflake, allowed []models.State, newState models.State, fields map[string]any) (int64, error) {
	return s.updateStateIfCurrentFn(ctx, botID, allowed, newState, fields)
}
func (s *subRepoStub) UpdateFields(ctx context.Context, botID models.Snowflake, fields map[string]any) error {
	return s.updateFieldsFn(ctx, botID, fields)
}
func (s *subRepoStub) List(ctx context.Context, limit, offset int) ([]models.Submission, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *subRepoStub) ListByState(ctx context.Context, state models.State) ([]models.Submission, error) {
	return s.listByStateFn(ctx, state)
}
func (s *subRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *subRepoStub) Delete(ctx context.Context, botID models.Snowflake) error {
	return s.deleteFn(ctx, botID)
}

func noopSubRepo() *subRepoStub {
	return &subRepoStub{
		getByIDFn: func(_ context.Context, botID models.Snowflake) (*models.Submission, error) {
			return nil, models.NewNotFoundError("submission", botID)
		},
		createFn: func(_ context.Context, _ *models.Submission) error { return nil },
		updateStateIfCurrentFn: func(_ context.Context, _ models.Snowflake, _ []models.State, _ models.State, _ map[string]any) (int64, error) {
			return 0, nil
		},
		updateFieldsFn: func(_ context.Context, _ models.Snowflake, _ map[string]any) error { return nil },
		listFn: func(_ context.Context, _, _ int) ([]models.Submission, error) {
			return []models.Submission{}, nil
		},
		listByStateFn: func(_ context.Context, _ models.State) ([]models.Submission, error) {
			return []models.Submission{}, nil
		},
		countFn:  func(_ context.Context) (int64, error) { return 0, nil },
		deleteFn: func(_ context.Context, _ models.Snowflake) error { return nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func validIntake() IntakeInput {
	return IntakeInput{
		BotID:       models.Snowflake(519850436899897346),
		Owner:       models.Snowflake(563808552288780322),
		Username:    "Fates List",
		Description: "A list manager bot",
		ListSource:  "5d19a9c5-68d8-4a25-a8b8-8a8a2b6a2a01",
		CrossAdd:    true,
	}
}

func TestSubmissionService_Intake_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*IntakeInput)
	}{
		{"missing bot_id", func(in *IntakeInput) { in.BotID = 0 }},
		{"negative bot_id", func(in *IntakeInput) { in.BotID = -1 }},
		{"missing owner", func(in *IntakeInput) { in.Owner = 0 }},
		{"missing origin list", func(in *IntakeInput) { in.ListSource = "" }},
		{"blank username", func(in *IntakeInput) { in.Username = "   " }},
		{"blank description", func(in *IntakeInput) { in.Description = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := validIntake()
			tc.mutate(&in)
			svc := NewSubmissionService(noopSubRepo())
			_, err := svc.Intake(context.Background(), in)
			assertValidationError(t, err)
		})
	}
}

func TestSubmissionService_Intake_OwnerDedupe(t *testing.T) {
	t.Parallel()

	repo := noopSubRepo()
	var saved *models.Submission
	repo.createFn = func(_ context.Context, sub *models.Submission) error {
		saved = sub
		return nil
	}

	in := validIntake()
	in.ExtraOwners = []models.Snowflake{
		in.Owner, // primary owner listed again
		models.Snowflake(510065483693817867),
		models.Snowflake(510065483693817867), // duplicate
		models.Snowflake(-5),                 // invalid
	}

	svc := NewSubmissionService(repo)
	res, err := svc.Intake(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, models.SnowflakeList{models.Snowflake(510065483693817867)}, saved.ExtraOwners)
	assert.Equal(t, models.StatePending, saved.State)
	require.NotNil(t, saved.ListSource)
	assert.Equal(t, in.ListSource, *saved.ListSource)
	assert.Empty(t, res.Removed)
}

func TestSubmissionService_Intake_URLSanitisation(t *testing.T) {
	t.Parallel()

	t.Run("http urls are upgraded", func(t *testing.T) {
		t.Parallel()
		repo := noopSubRepo()
		var saved *models.Submission
		repo.createFn = func(_ context.Context, sub *models.Submission) error {
			saved = sub
			return nil
		}

		in := validIntake()
		in.Website = "http://fateslist.xyz"
		in.Support = "https://discord.gg/support"
		svc := NewSubmissionService(repo)
		res, err := svc.Intake(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, "https://fateslist.xyz", saved.Website)
		assert.Equal(t, "https://discord.gg/support", saved.Support)
		assert.Empty(t, res.Removed)
	})

	t.Run("non-coercible urls are dropped and reported", func(t *testing.T) {
		t.Parallel()
		repo := noopSubRepo()
		var saved *models.Submission
		repo.createFn = func(_ context.Context, sub *models.Submission) error {
			saved = sub
			return nil
		}

		in := validIntake()
		in.Website = "ftp://fateslist.xyz"
		in.Banner = "not a url"
		svc := NewSubmissionService(repo)
		res, err := svc.Intake(context.Background(), in)
		require.NoError(t, err)

		assert.Empty(t, saved.Website)
		assert.Empty(t, saved.Banner)
		assert.ElementsMatch(t, []string{"website", "banner"}, res.Removed)
	})

	t.Run("non https invite is dropped silently", func(t *testing.T) {
		t.Parallel()
		repo := noopSubRepo()
		var saved *models.Submission
		repo.createFn = func(_ context.Context, sub *models.Submission) error {
			saved = sub
			return nil
		}

		in := validIntake()
		in.Invite = "http://discord.gg/join"
		svc := NewSubmissionService(repo)
		res, err := svc.Intake(context.Background(), in)
		require.NoError(t, err)

		assert.Empty(t, saved.Invite)
		assert.Empty(t, res.Removed)
	})
}

func TestSubmissionService_Intake_Tags(t *testing.T) {
	t.Parallel()

	repo := noopSubRepo()
	var saved *models.Submission
	repo.createFn = func(_ context.Context, sub *models.Submission) error {
		saved = sub
		return nil
	}

	in := validIntake()
	in.Tags = []string{"Moderation", "moderation", "  FUN  ", ""}
	svc := NewSubmissionService(repo)
	_, err := svc.Intake(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.StringList{"moderation", "fun", "utility"}, saved.Tags)
}

func TestSubmissionService_Intake_EmptyTagsGetUtility(t *testing.T) {
	t.Parallel()

	repo := noopSubRepo()
	var saved *models.Submission
	repo.createFn = func(_ context.Context, sub *models.Submission) error {
		saved = sub
		return nil
	}

	svc := NewSubmissionService(repo)
	_, err := svc.Intake(context.Background(), validIntake())
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"utility"}, saved.Tags)
}

func TestSubmissionService_Intake_Duplicate(t *testing.T) {
	t.Parallel()

	repo := noopSubRepo()
	repo.createFn = func(_ context.Context, _ *models.Submission) error {
		return models.NewConflictError("Bot already exists")
	}

	svc := NewSubmissionService(repo)
	_, err := svc.Intake(context.Background(), validIntake())
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestSubmissionService_Queue(t *testing.T) {
	t.Parallel()

	repo := noopSubRepo()
	repo.listByStateFn = func(_ context.Context, state models.State) ([]models.Submission, error) {
		switch state {
		case models.StatePending:
			return []models.Submission{{BotID: 1}, {BotID: 2}}, nil
		case models.StateUnderReview:
			return []models.Submission{{BotID: 3}}, nil
		default:
			return nil, errors.New("unexpected state query")
		}
	}

	repo.countFn = func(_ context.Context) (int64, error) { return 7, nil }

	svc := NewSubmissionService(repo)
	summary, err := svc.Queue(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Pending, 2)
	assert.Len(t, summary.UnderReview, 1)
	assert.Equal(t, 2, summary.Counts["PENDING"])
	assert.Equal(t, 1, summary.Counts["UNDER_REVIEW"])
	assert.Equal(t, int64(7), summary.Total)

	assert.Equal(t, float64(2), promtestutil.ToFloat64(
		observability.QueueSize.WithLabelValues(models.StatePending.String())))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(
		observability.QueueSize.WithLabelValues(models.StateUnderReview.String())))
}
