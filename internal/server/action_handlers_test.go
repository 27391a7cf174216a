package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"brc/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetActions(t *testing.T) {
	s, deps := newTestServer()
	app := fiber.New()
	app.Get("/actions", s.GetActions)

	t.Run("defaults", func(t *testing.T) {
		deps.actionRepo.On("List", mock.Anything, 50, 0).
			Return([]models.ReviewAction{{ID: 1, Action: models.ActionApprove}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/actions", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		deps.actionRepo.AssertExpectations(t)
	})

	t.Run("limit is capped at 200", func(t *testing.T) {
		deps.actionRepo.On("List", mock.Anything, 200, 10).
			Return([]models.ReviewAction{}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/actions?limit=5000&offset=10", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		deps.actionRepo.AssertExpectations(t)
	})
}
