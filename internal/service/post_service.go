package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/repository"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

var ErrPostNotFound = errors.New("post not found")

type PostService interface {
	Ingest(ctx context.Context, posts []*models.Post) (*transfer.UploadResult, error)
	List(ctx context.Context, params repository.ListParams) ([]*models.Post, *transfer.Pagination, error)
	Update(ctx context.Context, postID string, updates transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, postID string) error
	SchedulePost(ctx context.Context, req transfer.SchedulePostRequest) (delay time.Duration, err error)
}

type postService struct {
	p   repository.PostRepository
	now func() time.Time
}

func NewPostService(p repository.PostRepository) PostService {
	return &postService{p: p, now: time.Now}
}

// Ingest upserts a batch of exported posts by their platform ID.
// Re-ingesting a known ID refreshes its fields in place; duplicates are
// never created.
func (s *postService) Ingest(ctx context.Context, posts []*models.Post) (*transfer.UploadResult, error) {
	if len(posts) == 0 {
		return nil, errors.New("no posts to ingest")
	}

	result := &transfer.UploadResult{TotalPosts: len(posts)}
	uploadedAt := s.now()

	for _, post := range posts {
		if post.ID == "" || post.OwnerUsername == "" || post.Timestamp.IsZero() {
			slog.Info("skipping post with missing required fields", "id", post.ID)
			result.Errors++
			continue
		}

		post.UploadedAt = uploadedAt
		created, err := s.p.Upsert(ctx, post)
		if err != nil {
			slog.Info("failed to ingest post", "id", post.ID, "error", err.Error())
			result.Errors++
			continue
		}
		if created {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	slog.Info("ingest completed", "total", result.TotalPosts, "inserted", result.Inserted,
		"updated", result.Updated, "errors", result.Errors)
	return result, nil
}

func (s *postService) List(ctx context.Context, params repository.ListParams) ([]*models.Post, *transfer.Pagination, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Skip < 0 {
		params.Skip = 0
	}

	posts, err := s.p.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.p.Count(ctx)
	if err != nil {
		return nil, nil, err
	}

	pagination := &transfer.Pagination{
		Total:   total,
		Limit:   params.Limit,
		Skip:    params.Skip,
		HasMore: params.Skip+params.Limit < total,
	}
	return posts, pagination, nil
}

func (s *postService) Update(ctx context.Context, postID string, updates transfer.PostUpdate) (*models.Post, error) {
	if postID == "" {
		return nil, errors.New("post id is required")
	}

	post, err := s.p.Update(ctx, postID, updates)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) Remove(ctx context.Context, postID string) error {
	if postID == "" {
		return errors.New("post id is required")
	}
	return s.p.Remove(ctx, postID)
}

// SchedulePost records the requested publish time on the post and
// returns how long to delay the queued task. A missing or past time
// means publish now.
func (s *postService) SchedulePost(ctx context.Context, req transfer.SchedulePostRequest) (time.Duration, error) {
	if req.PostID == "" {
		return 0, errors.New("post id is required")
	}

	post, err := s.p.GetByPostID(ctx, req.PostID)
	if err != nil {
		return 0, err
	}
	if post == nil {
		return 0, ErrPostNotFound
	}
	if post.MediaURL() == "" {
		return 0, fmt.Errorf("post %s has no media URL", req.PostID)
	}

	selected := true
	updates := transfer.PostUpdate{IsSelected: &selected, ScheduledTime: req.ScheduledTime}
	if _, err := s.p.Update(ctx, req.PostID, updates); err != nil {
		return 0, err
	}

	var delay time.Duration
	if req.ScheduledTime != nil {
		delay = req.ScheduledTime.Sub(s.now())
		if delay < 0 {
			delay = 0
		}
	}
	return delay, nil
}
