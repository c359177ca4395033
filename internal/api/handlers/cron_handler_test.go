package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/service"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

type fakeRunner struct {
	RunFunc        func(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error)
	PublishOneFunc func(ctx context.Context, postID string) transfer.PostOutcome
}

func (f *fakeRunner) Run(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
	return f.RunFunc(ctx, criteria)
}

func (f *fakeRunner) PublishOne(ctx context.Context, postID string) transfer.PostOutcome {
	return f.PublishOneFunc(ctx, postID)
}

func configuredCfg() cfg.Config {
	return cfg.Config{
		InstagramAccessToken:       "token",
		InstagramBusinessAccountID: "17890",
	}
}

func cronApp(config cfg.Config, runner *fakeRunner) *fiber.App {
	app := fiber.New()
	h := NewCronHandler(config, runner)
	app.Post("/cron/auto-post", h.TriggerAutoPost)
	app.Get("/cron/auto-post", h.Health)
	return app
}

func TestTriggerAutoPost(t *testing.T) {
	t.Run("runs with default criteria on an empty body", func(t *testing.T) {
		var captured transfer.SelectionCriteria
		runner := &fakeRunner{
			RunFunc: func(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
				captured = criteria
				return &transfer.JobResult{Success: true, Message: "Successfully posted all 2 selected posts to Instagram!"}, nil
			},
		}
		app := cronApp(configuredCfg(), runner)

		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, 5000, captured.MinViews)
		assert.Equal(t, 2, captured.MaxPostsPerDay)

		var result transfer.JobResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
	})

	t.Run("body overrides criteria fields", func(t *testing.T) {
		var captured transfer.SelectionCriteria
		runner := &fakeRunner{
			RunFunc: func(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
				captured = criteria
				return &transfer.JobResult{Success: true}, nil
			},
		}
		app := cronApp(configuredCfg(), runner)

		body, _ := json.Marshal(transfer.SelectionCriteria{MinViews: 9000, MaxPostsPerDay: 1})
		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 9000, captured.MinViews)
		assert.Equal(t, 1, captured.MaxPostsPerDay)
		assert.Equal(t, 500, captured.MinLikes, "unset fields keep their defaults")
	})

	t.Run("missing Instagram configuration", func(t *testing.T) {
		app := cronApp(cfg.Config{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		runner := &fakeRunner{
			RunFunc: func(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
				return nil, service.ErrInvalidCredentials
			},
		}
		app := cronApp(configuredCfg(), runner)

		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Invalid Instagram credentials", body["error"])
	})

	t.Run("run failure returns 500", func(t *testing.T) {
		runner := &fakeRunner{
			RunFunc: func(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
				return nil, assert.AnError
			},
		}
		app := cronApp(configuredCfg(), runner)

		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := cronApp(configuredCfg(), nil)

		req := httptest.NewRequest(http.MethodPost, "/cron/auto-post", bytes.NewReader([]byte("{nope")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCronHealth(t *testing.T) {
	app := cronApp(configuredCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/cron/auto-post", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
