package repository

import (
	"context"
	"testing"

	"brc/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testListID = "5d19a9c5-68d8-4a25-a8b8-8a8a2b6a2a01"

func TestListRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "state", "secret_key"}).
			AddRow(testListID, "Fates List", 1, "s3cret")
		mock.ExpectQuery(`SELECT \* FROM "bot_list" WHERE id = \$1`).
			WithArgs(testListID, 1).
			WillReturnRows(rows)

		list, err := repo.GetByID(context.Background(), testListID)
		require.NoError(t, err)
		assert.Equal(t, "Fates List", list.Name)
		assert.Equal(t, models.ListStateSupported, list.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "bot_list" WHERE id = \$1`).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetByID(context.Background(), "missing")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListRepository_RotateSecret(t *testing.T) {
	t.Run("returns a fresh secret", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bot_list" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		secret, err := repo.RotateSecret(context.Background(), testListID)
		require.NoError(t, err)
		// 32 random bytes, base64 URL encoding without padding.
		assert.Len(t, secret, 43)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown list", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bot_list" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		_, err := repo.RotateSecret(context.Background(), "missing")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListRepository_Create_GeneratesSecret(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "bot_list"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	list := &models.List{
		ID:            testListID,
		Name:          "Fates List",
		ClaimBotAPI:   "https://fateslist.xyz/api/claim",
		UnclaimBotAPI: "https://fateslist.xyz/api/unclaim",
		ApproveBotAPI: "https://fateslist.xyz/api/approve",
		DenyBotAPI:    "https://fateslist.xyz/api/deny",
	}
	err := repo.Create(context.Background(), list)
	require.NoError(t, err)
	assert.NotEmpty(t, list.SecretKey, "a secret is generated when none is supplied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
