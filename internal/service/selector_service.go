package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/repository"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

// Validation floors applied to every post regardless of the selection
// criteria. Selection thresholds are caller-tunable; these are fixed
// safety checks, so keep the two independent.
const (
	minRepostIntervalHours = 24
	minViewsForPosting     = 1000
)

// ScoredPost is a candidate enriched with its computed ranking score.
type ScoredPost struct {
	*models.Post
	Score int `json:"score"`
}

type SelectorService interface {
	SelectPosts(ctx context.Context, criteria transfer.SelectionCriteria) ([]*ScoredPost, error)
	ValidateForPosting(ctx context.Context, postID string) (transfer.ValidationResult, *models.Post, error)
	MarkPosted(ctx context.Context, postID, platformPostID string) error
	PostingHistory(ctx context.Context, days int) ([]*models.Post, error)
	TopPerformers(ctx context.Context, limit int) ([]*ScoredPost, error)
}

type selectorService struct {
	p          repository.PostRepository
	fetchLimit int
	now        func() time.Time
}

func NewSelectorService(p repository.PostRepository, fetchLimit int) SelectorService {
	if fetchLimit <= 0 {
		fetchLimit = 100
	}
	return &selectorService{
		p:          p,
		fetchLimit: fetchLimit,
		now:        time.Now,
	}
}

// SelectPosts fetches eligible candidates, scores them, and returns the
// top maxPostsPerDay in descending score order. The candidate fetch is
// bounded by the configured limit, so on very large stores the absolute
// top scorer can fall outside the window.
func (s *selectorService) SelectPosts(ctx context.Context, criteria transfer.SelectionCriteria) ([]*ScoredPost, error) {
	criteria = criteria.WithDefaults()

	filter := repository.CandidateFilter{
		Types:            criteria.PreferredTypes,
		MinLikes:         criteria.MinLikes,
		MinViews:         criteria.MinViews,
		MaxCaptionLength: criteria.MaxCaptionLength,
		FetchLimit:       s.fetchLimit,
	}
	if criteria.Excludes() {
		cutoff := s.now().Add(-time.Duration(criteria.HoursToExclude) * time.Hour)
		filter.PostedBefore = &cutoff
	}

	candidates, err := s.p.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	slog.Info("found candidate posts", "count", len(candidates))
	if len(candidates) == 0 {
		return []*ScoredPost{}, nil
	}

	now := s.now()
	scored := make([]*ScoredPost, 0, len(candidates))
	for _, post := range candidates {
		scored = append(scored, &ScoredPost{Post: post, Score: CalculatePostScore(post, now)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > criteria.MaxPostsPerDay {
		scored = scored[:criteria.MaxPostsPerDay]
	}

	for i, post := range scored {
		slog.Info("selected post", "rank", i+1, "id", post.ID, "score", post.Score, "views", post.EffectiveViews())
	}

	return scored, nil
}

// ValidateForPosting applies the fixed safety floors to one post just
// before it is published.
func (s *selectorService) ValidateForPosting(ctx context.Context, postID string) (transfer.ValidationResult, *models.Post, error) {
	post, err := s.p.GetByPostID(ctx, postID)
	if err != nil {
		return transfer.ValidationResult{}, nil, err
	}
	if post == nil {
		return transfer.ValidationResult{Valid: false, Reason: "Post not found"}, nil, nil
	}

	if post.MediaURL() == "" {
		return transfer.ValidationResult{Valid: false, Reason: "No media URL available"}, nil, nil
	}

	if post.LastPostedAt != nil {
		hoursSince := s.now().Sub(*post.LastPostedAt).Hours()
		if hoursSince < minRepostIntervalHours {
			reason := fmt.Sprintf("Posted %d hours ago", int(math.Round(hoursSince)))
			return transfer.ValidationResult{Valid: false, Reason: reason}, nil, nil
		}
	}

	if post.EffectiveViews() < minViewsForPosting {
		return transfer.ValidationResult{Valid: false, Reason: "Insufficient views"}, nil, nil
	}

	return transfer.ValidationResult{Valid: true}, post, nil
}

func (s *selectorService) MarkPosted(ctx context.Context, postID, platformPostID string) error {
	if err := s.p.MarkPosted(ctx, postID, platformPostID, s.now()); err != nil {
		return fmt.Errorf("failed to mark post %s as posted: %w", postID, err)
	}
	slog.Info("marked post as posted", "id", postID)
	return nil
}

func (s *selectorService) PostingHistory(ctx context.Context, days int) ([]*models.Post, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.p.PostedSince(ctx, since)
}

func (s *selectorService) TopPerformers(ctx context.Context, limit int) ([]*ScoredPost, error) {
	if limit <= 0 {
		limit = 10
	}

	posts, err := s.p.TopPerformers(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scored := make([]*ScoredPost, 0, len(posts))
	for _, post := range posts {
		scored = append(scored, &ScoredPost{Post: post, Score: CalculatePostScore(post, now)})
	}
	return scored, nil
}
