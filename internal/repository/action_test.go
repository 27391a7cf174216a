package repository

import (
	"context"
	"testing"

	"brc/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRepository_Append(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bot_action"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Append(context.Background(), &models.ReviewAction{
		BotID:    models.Snowflake(testBotID),
		Action:   models.ActionApprove,
		Reason:   "Looks good",
		Reviewer: models.Snowflake(1),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_List_NewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "bot_id", "action", "reason", "reviewer"}).
		AddRow(2, testBotID, 2, "Looks good", int64(1)).
		AddRow(1, testBotID, 0, "Taking this one", int64(1))
	mock.ExpectQuery(`SELECT \* FROM "bot_action" ORDER BY action_time DESC`).
		WillReturnRows(rows)

	actions, err := repo.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, models.ActionApprove, actions[0].Action)
	assert.Equal(t, models.ActionClaim, actions[1].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
