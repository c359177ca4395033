package transfer

import "time"

// PostUpdate carries curation changes from the dashboard. Nil fields are
// left untouched.
type PostUpdate struct {
	IsSelected    *bool      `json:"isSelected,omitempty"`
	IsSkipped     *bool      `json:"isSkipped,omitempty"`
	CustomCaption *string    `json:"customCaption,omitempty"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
}

// PostUpdateRequest is the body of PUT /api/posts.
type PostUpdateRequest struct {
	PostID  string     `json:"postId"`
	Updates PostUpdate `json:"updates"`
}

// SchedulePostRequest asks for one specific post to be published at a
// given time.
type SchedulePostRequest struct {
	PostID        string     `json:"postId"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
}

// UploadResult reports a bulk ingest of exported post data.
type UploadResult struct {
	TotalPosts int `json:"totalPosts"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Errors     int `json:"errors"`
}

// Pagination is the envelope returned alongside post listings.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	HasMore bool `json:"hasMore"`
}
