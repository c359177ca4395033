package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

// ErrInvalidCredentials aborts a run before any post is processed.
var ErrInvalidCredentials = errors.New("invalid Instagram credentials")

// orphanedFileMaxAgeHours is the backstop cleanup threshold applied once
// per run, independent of the per-post cleanup.
const orphanedFileMaxAgeHours = 1

type AutoPostService interface {
	Run(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error)
	PublishOne(ctx context.Context, postID string) transfer.PostOutcome
}

// SecondaryPublisher mirrors content to an additional platform after the
// Instagram publish succeeds. Secondary failures are logged only.
type SecondaryPublisher interface {
	PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult
	ValidateCredentials(ctx context.Context) bool
}

type autoPostService struct {
	selector    SelectorService
	downloader  DownloaderService
	publisher   InstagramService
	secondaries map[string]SecondaryPublisher

	// Overlapping runs race on shared disk and per-post store writes, so
	// only one run may be active at a time. A second trigger is refused,
	// not queued; the next scheduled fire covers it.
	runMu sync.Mutex
}

func NewAutoPostService(selector SelectorService, downloader DownloaderService, publisher InstagramService, secondaries map[string]SecondaryPublisher) AutoPostService {
	return &autoPostService{
		selector:    selector,
		downloader:  downloader,
		publisher:   publisher,
		secondaries: secondaries,
	}
}

// Run executes one auto-post pipeline pass: credential check, candidate
// selection, then a strictly sequential per-post loop of validate,
// download, publish, bookkeeping, cleanup. Per-post failures are recorded
// and never abort the run; only missing credentials or a store outage do.
func (s *autoPostService) Run(ctx context.Context, criteria transfer.SelectionCriteria) (*transfer.JobResult, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	if !s.runMu.TryLock() {
		slog.Info("auto-post run refused, another run is active", "run_id", runID)
		return &transfer.JobResult{
			RunID:   runID,
			Success: false,
			Message: "Another auto-post run is already in progress",
			Errors:  []string{},
			Details: []transfer.PostOutcome{},
		}, nil
	}
	defer s.runMu.Unlock()

	slog.Info("starting auto-post run", "run_id", runID)

	if !s.publisher.ValidateCredentials(ctx) {
		return nil, ErrInvalidCredentials
	}

	selected, err := s.selector.SelectPosts(ctx, criteria)
	if err != nil {
		return nil, err
	}

	result := &transfer.JobResult{
		RunID:          runID,
		Success:        true,
		PostsProcessed: len(selected),
		Errors:         []string{},
		Details:        []transfer.PostOutcome{},
	}

	if len(selected) == 0 {
		result.Message = "No posts found matching criteria"
		return result, nil
	}

	for _, post := range selected {
		outcome := s.processPost(ctx, post.Post)
		if outcome.Success {
			result.PostsSuccessful++
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", outcome.PostID, outcome.Error))
		}
		result.Details = append(result.Details, outcome)
	}

	// Backstop against orphaned files from crashed prior runs.
	s.downloader.CleanupOldFiles(orphanedFileMaxAgeHours)

	switch {
	case result.PostsSuccessful == 0:
		result.Success = false
		result.Message = fmt.Sprintf("Failed to post any content. %d errors occurred.", len(result.Errors))
	case result.PostsSuccessful == result.PostsProcessed:
		result.Message = fmt.Sprintf("Successfully posted all %d selected posts to Instagram!", result.PostsSuccessful)
	default:
		result.Message = fmt.Sprintf("Posted %d out of %d posts. %d errors occurred.",
			result.PostsSuccessful, result.PostsProcessed, len(result.Errors))
	}

	slog.Info("auto-post run completed", "run_id", runID, "message", result.Message)
	return result, nil
}

// processPost runs the per-post pipeline. The downloaded file is removed
// once the post is handled, whether or not the publish succeeded.
func (s *autoPostService) processPost(ctx context.Context, post *models.Post) transfer.PostOutcome {
	outcome := transfer.PostOutcome{
		PostID:        post.ID,
		OwnerUsername: post.OwnerUsername,
	}

	slog.Info("processing post", "id", post.ID)

	validation, validated, err := s.selector.ValidateForPosting(ctx, post.ID)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if !validation.Valid {
		// Validation rejections are permanent for this attempt; retrying
		// the same post cannot change the outcome.
		outcome.Error = validation.Reason
		outcome.Skipped = true
		return outcome
	}
	post = validated

	var download DownloadOutcome
	if post.Type == models.PostTypeVideo && post.VideoURL != "" {
		download = s.downloader.DownloadVideo(ctx, post.VideoURL, post.ID)
	} else if post.DisplayURL != "" {
		download = s.downloader.DownloadImage(ctx, post.DisplayURL, post.ID)
	} else {
		outcome.Error = "No valid media URL found"
		return outcome
	}

	if !download.Success {
		outcome.Error = download.Error
		if outcome.Error == "" {
			outcome.Error = "Download failed"
		}
		return outcome
	}
	defer s.downloader.Cleanup(download.FilePath)

	publish := s.publisher.PostContent(ctx, post, download.FilePath)
	if !publish.Success {
		outcome.Error = publish.Error
		if outcome.Error == "" {
			outcome.Error = "Instagram posting failed"
		}
		return outcome
	}

	outcome.Success = true
	outcome.InstagramPostID = publish.PostID
	outcome.Permalink = publish.Permalink

	s.crossPost(ctx, post, download.FilePath)

	if err := s.selector.MarkPosted(ctx, post.ID, publish.PostID); err != nil {
		// The post is live; losing the bookkeeping write is logged but
		// does not turn the outcome into a failure.
		slog.Info("failed to record posting", "id", post.ID, "error", err.Error())
	}

	return outcome
}

// crossPost mirrors the post to every configured secondary platform.
func (s *autoPostService) crossPost(ctx context.Context, post *models.Post, filePath string) {
	for name, secondary := range s.secondaries {
		if !secondary.ValidateCredentials(ctx) {
			continue
		}
		result := secondary.PostContent(ctx, post, filePath)
		if result.Success {
			slog.Info("cross-posted", "platform", name, "id", post.ID, "remote_id", result.PostID)
		} else {
			slog.Info("cross-post failed", "platform", name, "id", post.ID, "error", result.Error)
		}
	}
}

// PublishOne runs the per-post pipeline for one specific post, used by
// the scheduled single-post queue. It shares the run lock with Run, but
// a queued publish waits its turn rather than being refused.
func (s *autoPostService) PublishOne(ctx context.Context, postID string) transfer.PostOutcome {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.publisher.ValidateCredentials(ctx) {
		return transfer.PostOutcome{PostID: postID, Error: ErrInvalidCredentials.Error()}
	}

	// processPost re-validates and fetches the full record by ID.
	return s.processPost(ctx, &models.Post{ID: postID})
}
