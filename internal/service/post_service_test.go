package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/repository"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

func newTestPostService(repo repository.PostRepository, now time.Time) *postService {
	return &postService{p: repo, now: func() time.Time { return now }}
}

func TestIngest(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("counts inserted and updated", func(t *testing.T) {
		known := map[string]bool{"existing": true}
		repo := &fakePostRepository{
			UpsertFunc: func(ctx context.Context, post *models.Post) (bool, error) {
				assert.Equal(t, now, post.UploadedAt)
				return !known[post.ID], nil
			},
		}

		result, err := newTestPostService(repo, now).Ingest(ctx, []*models.Post{
			{ID: "existing", OwnerUsername: "creator", Timestamp: now},
			{ID: "fresh", OwnerUsername: "creator", Timestamp: now},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalPosts)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, result.Updated)
		assert.Zero(t, result.Errors)
	})

	t.Run("skips records missing required fields", func(t *testing.T) {
		repo := &fakePostRepository{
			UpsertFunc: func(ctx context.Context, post *models.Post) (bool, error) {
				return true, nil
			},
		}

		result, err := newTestPostService(repo, now).Ingest(ctx, []*models.Post{
			{ID: "ok", OwnerUsername: "creator", Timestamp: now},
			{ID: "", OwnerUsername: "creator", Timestamp: now},
			{ID: "no-owner", Timestamp: now},
			{ID: "no-time", OwnerUsername: "creator"},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 3, result.Errors)
	})

	t.Run("store failures count as errors without aborting", func(t *testing.T) {
		repo := &fakePostRepository{
			UpsertFunc: func(ctx context.Context, post *models.Post) (bool, error) {
				if post.ID == "bad" {
					return false, errors.New("deadlock detected")
				}
				return true, nil
			},
		}

		result, err := newTestPostService(repo, now).Ingest(ctx, []*models.Post{
			{ID: "bad", OwnerUsername: "creator", Timestamp: now},
			{ID: "good", OwnerUsername: "creator", Timestamp: now},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, result.Errors)
	})

	t.Run("empty batch is an error", func(t *testing.T) {
		_, err := newTestPostService(&fakePostRepository{}, now).Ingest(ctx, nil)
		assert.Error(t, err)
	})
}

func TestList(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	repo := &fakePostRepository{
		ListFunc: func(ctx context.Context, params repository.ListParams) ([]*models.Post, error) {
			assert.Equal(t, 20, params.Limit, "non-positive limit falls back to twenty")
			return []*models.Post{{ID: "p1"}}, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 55, nil
		},
	}

	posts, pagination, err := newTestPostService(repo, now).List(ctx, repository.ListParams{Limit: -1, Skip: 40})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 55, pagination.Total)
	assert.False(t, pagination.HasMore, "40+20 >= 55")
}

func TestSchedulePost(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	repoWith := func(post *models.Post) *fakePostRepository {
		return &fakePostRepository{
			GetByPostIDFunc: func(ctx context.Context, id string) (*models.Post, error) {
				return post, nil
			},
			UpdateFunc: func(ctx context.Context, id string, updates transfer.PostUpdate) (*models.Post, error) {
				require.NotNil(t, updates.IsSelected)
				assert.True(t, *updates.IsSelected)
				return post, nil
			},
		}
	}

	t.Run("future time yields the delay until then", func(t *testing.T) {
		post := &models.Post{ID: "p1", Type: models.PostTypeVideo, VideoURL: "https://cdn.example.com/p1.mp4"}
		at := now.Add(3 * time.Hour)

		delay, err := newTestPostService(repoWith(post), now).SchedulePost(ctx, transfer.SchedulePostRequest{
			PostID:        "p1",
			ScheduledTime: &at,
		})
		require.NoError(t, err)
		assert.Equal(t, 3*time.Hour, delay)
	})

	t.Run("past time publishes immediately", func(t *testing.T) {
		post := &models.Post{ID: "p1", Type: models.PostTypeVideo, VideoURL: "https://cdn.example.com/p1.mp4"}
		at := now.Add(-time.Hour)

		delay, err := newTestPostService(repoWith(post), now).SchedulePost(ctx, transfer.SchedulePostRequest{
			PostID:        "p1",
			ScheduledTime: &at,
		})
		require.NoError(t, err)
		assert.Zero(t, delay)
	})

	t.Run("no time publishes immediately", func(t *testing.T) {
		post := &models.Post{ID: "p1", DisplayURL: "https://cdn.example.com/p1.jpg"}

		delay, err := newTestPostService(repoWith(post), now).SchedulePost(ctx, transfer.SchedulePostRequest{PostID: "p1"})
		require.NoError(t, err)
		assert.Zero(t, delay)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := newTestPostService(repoWith(nil), now).SchedulePost(ctx, transfer.SchedulePostRequest{PostID: "ghost"})
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("post without media is rejected", func(t *testing.T) {
		post := &models.Post{ID: "p1"}
		_, err := newTestPostService(repoWith(post), now).SchedulePost(ctx, transfer.SchedulePostRequest{PostID: "p1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no media URL")
	})
}
