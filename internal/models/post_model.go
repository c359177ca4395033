package models

import "time"

// Post is one ingested Instagram post. The id column is the
// platform-assigned post ID and is unique; re-ingesting the same id
// updates the row in place.
type Post struct {
	ID            string   `db:"id" json:"id"`
	Type          string   `db:"type" json:"type"` // Video or Image
	ShortCode     string   `db:"short_code" json:"shortCode"`
	Caption       string   `db:"caption" json:"caption"`
	Hashtags      []string `db:"hashtags" json:"hashtags"`
	Mentions      []string `db:"mentions" json:"mentions"`
	URL           string   `db:"url" json:"url"`
	DisplayURL    string   `db:"display_url" json:"displayUrl"`
	VideoURL      string   `db:"video_url" json:"videoUrl"`
	VideoDuration float64  `db:"video_duration" json:"videoDuration"`

	// Engagement as of last ingest. LikesCount is -1 when the platform
	// hides the like count.
	LikesCount     int `db:"likes_count" json:"likesCount"`
	CommentsCount  int `db:"comments_count" json:"commentsCount"`
	VideoViewCount int `db:"video_view_count" json:"videoViewCount"`
	VideoPlayCount int `db:"video_play_count" json:"videoPlayCount"`

	OwnerUsername string    `db:"owner_username" json:"ownerUsername"`
	OwnerFullName string    `db:"owner_full_name" json:"ownerFullName"`
	OwnerID       string    `db:"owner_id" json:"ownerId"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`

	// Curation state set from the dashboard.
	IsSelected    bool       `db:"is_selected" json:"isSelected"`
	IsSkipped     bool       `db:"is_skipped" json:"isSkipped"`
	CustomCaption string     `db:"custom_caption" json:"customCaption"`
	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduledTime"`

	// Auto-posting tracking.
	LastPostedAt     *time.Time `db:"last_posted_at" json:"lastPostedAt"`
	TimesPosted      int        `db:"times_posted" json:"timesPosted"`
	InstagramPostIDs []string   `db:"instagram_post_ids" json:"instagramPostIds"`

	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

const (
	PostTypeVideo = "Video"
	PostTypeImage = "Image"
)

// EffectiveViews is the view count used by scoring and validation:
// videoViewCount when present, otherwise videoPlayCount, otherwise zero.
func (p *Post) EffectiveViews() int {
	if p.VideoViewCount > 0 {
		return p.VideoViewCount
	}
	if p.VideoPlayCount > 0 {
		return p.VideoPlayCount
	}
	return 0
}

// MediaURL returns the URL the pipeline should download for this post.
func (p *Post) MediaURL() string {
	if p.Type == PostTypeVideo && p.VideoURL != "" {
		return p.VideoURL
	}
	return p.DisplayURL
}
