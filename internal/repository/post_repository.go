package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

// CandidateFilter is the eligibility filter the selector derives from its
// criteria. FetchLimit bounds the candidate query on large stores.
type CandidateFilter struct {
	Types            []string
	MinLikes         int
	MinViews         int
	MaxCaptionLength int
	PostedBefore     *time.Time
	FetchLimit       int
}

// ListParams selects a page of posts for the dashboard.
type ListParams struct {
	Limit  int
	Skip   int
	SortBy string
	Order  string // asc or desc
}

type PostRepository interface {
	GetByPostID(ctx context.Context, id string) (*models.Post, error)
	Upsert(ctx context.Context, post *models.Post) (created bool, err error)
	List(ctx context.Context, params ListParams) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, updates transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, id string) error
	FindCandidates(ctx context.Context, filter CandidateFilter) ([]*models.Post, error)
	MarkPosted(ctx context.Context, id, platformPostID string, postedAt time.Time) error
	PostedSince(ctx context.Context, since time.Time) ([]*models.Post, error)
	TopPerformers(ctx context.Context, limit int) ([]*models.Post, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, type, short_code, caption, hashtags, mentions, url, display_url,
	video_url, video_duration, likes_count, comments_count, video_view_count,
	video_play_count, owner_username, owner_full_name, owner_id, timestamp,
	is_selected, is_skipped, custom_caption, scheduled_time, last_posted_at,
	times_posted, instagram_post_ids, uploaded_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	var scheduledTime, lastPostedAt sql.NullTime
	err := row.Scan(
		&post.ID, &post.Type, &post.ShortCode, &post.Caption,
		pq.Array(&post.Hashtags), pq.Array(&post.Mentions), &post.URL,
		&post.DisplayURL, &post.VideoURL, &post.VideoDuration,
		&post.LikesCount, &post.CommentsCount, &post.VideoViewCount,
		&post.VideoPlayCount, &post.OwnerUsername, &post.OwnerFullName,
		&post.OwnerID, &post.Timestamp, &post.IsSelected, &post.IsSkipped,
		&post.CustomCaption, &scheduledTime, &lastPostedAt,
		&post.TimesPosted, pq.Array(&post.InstagramPostIDs),
		&post.UploadedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if scheduledTime.Valid {
		post.ScheduledTime = &scheduledTime.Time
	}
	if lastPostedAt.Valid {
		post.LastPostedAt = &lastPostedAt.Time
	}
	return &post, nil
}

func (r *postRepository) GetByPostID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM instagram_posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Upsert(ctx context.Context, post *models.Post) (bool, error) {
	query := `
		INSERT INTO instagram_posts (
			id, type, short_code, caption, hashtags, mentions, url, display_url,
			video_url, video_duration, likes_count, comments_count,
			video_view_count, video_play_count, owner_username, owner_full_name,
			owner_id, timestamp, uploaded_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			short_code = EXCLUDED.short_code,
			caption = EXCLUDED.caption,
			hashtags = EXCLUDED.hashtags,
			mentions = EXCLUDED.mentions,
			url = EXCLUDED.url,
			display_url = EXCLUDED.display_url,
			video_url = EXCLUDED.video_url,
			video_duration = EXCLUDED.video_duration,
			likes_count = EXCLUDED.likes_count,
			comments_count = EXCLUDED.comments_count,
			video_view_count = EXCLUDED.video_view_count,
			video_play_count = EXCLUDED.video_play_count,
			owner_username = EXCLUDED.owner_username,
			owner_full_name = EXCLUDED.owner_full_name,
			owner_id = EXCLUDED.owner_id,
			timestamp = EXCLUDED.timestamp,
			uploaded_at = EXCLUDED.uploaded_at,
			updated_at = now()
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Type, post.ShortCode, post.Caption,
		pq.Array(post.Hashtags), pq.Array(post.Mentions), post.URL,
		post.DisplayURL, post.VideoURL, post.VideoDuration,
		post.LikesCount, post.CommentsCount, post.VideoViewCount,
		post.VideoPlayCount, post.OwnerUsername, post.OwnerFullName,
		post.OwnerID, post.Timestamp, post.UploadedAt,
	).Scan(&created)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return created, nil
}

var sortColumns = map[string]string{
	"timestamp":      "timestamp",
	"uploadedAt":     "uploaded_at",
	"likesCount":     "likes_count",
	"commentsCount":  "comments_count",
	"videoViewCount": "video_view_count",
	"videoPlayCount": "video_play_count",
	"timesPosted":    "times_posted",
	"lastPostedAt":   "last_posted_at",
}

func (r *postRepository) List(ctx context.Context, params ListParams) ([]*models.Post, error) {
	order := "DESC"
	if strings.EqualFold(params.Order, "asc") {
		order = "ASC"
	}

	var orderBy string
	if params.SortBy == "views" {
		// Compound sort the dashboard uses for its "most viewed" tab.
		orderBy = fmt.Sprintf("video_view_count %s, video_play_count %s, likes_count %s", order, order, order)
	} else if col, ok := sortColumns[params.SortBy]; ok {
		orderBy = fmt.Sprintf("%s %s", col, order)
	} else {
		orderBy = fmt.Sprintf("video_view_count %s", order)
	}
	if !strings.Contains(orderBy, "timestamp") {
		orderBy += ", timestamp DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM instagram_posts ORDER BY %s LIMIT $1 OFFSET $2`, postColumns, orderBy)

	rows, err := r.db.QueryContext(ctx, query, params.Limit, params.Skip)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instagram_posts`).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *postRepository) Update(ctx context.Context, id string, updates transfer.PostUpdate) (*models.Post, error) {
	query := `
		UPDATE instagram_posts
		SET is_selected = COALESCE($2, is_selected),
			is_skipped = COALESCE($3, is_skipped),
			custom_caption = COALESCE($4, custom_caption),
			scheduled_time = COALESCE($5, scheduled_time),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id,
		updates.IsSelected, updates.IsSkipped, updates.CustomCaption, updates.ScheduledTime))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM instagram_posts WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) FindCandidates(ctx context.Context, filter CandidateFilter) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM instagram_posts
		WHERE type = ANY($1)
			AND likes_count >= $2
			AND (video_view_count >= $3 OR video_play_count >= $3)
			AND char_length(caption) <= $4
			AND ($5::timestamptz IS NULL OR last_posted_at IS NULL OR last_posted_at < $5)
		LIMIT $6
	`

	rows, err := r.db.QueryContext(ctx, query,
		pq.Array(filter.Types), filter.MinLikes, filter.MinViews,
		filter.MaxCaptionLength, filter.PostedBefore, filter.FetchLimit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *postRepository) MarkPosted(ctx context.Context, id, platformPostID string, postedAt time.Time) error {
	query := `
		UPDATE instagram_posts
		SET last_posted_at = $2,
			times_posted = times_posted + 1,
			instagram_post_ids = array_append(instagram_post_ids, $3),
			updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, postedAt, platformPostID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) PostedSince(ctx context.Context, since time.Time) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM instagram_posts
		WHERE last_posted_at >= $1
		ORDER BY last_posted_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *postRepository) TopPerformers(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM instagram_posts
		ORDER BY video_view_count DESC, video_play_count DESC, likes_count DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
