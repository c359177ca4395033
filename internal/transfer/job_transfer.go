package transfer

// PostOutcome records what happened to one selected post during a run.
// Skipped marks a validation rejection, which no retry can fix.
type PostOutcome struct {
	PostID          string `json:"postId"`
	OwnerUsername   string `json:"ownerUsername"`
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped,omitempty"`
	Error           string `json:"error,omitempty"`
	InstagramPostID string `json:"instagramPostId,omitempty"`
	Permalink       string `json:"permalink,omitempty"`
}

// JobResult is the ephemeral report of one auto-post run. It is returned
// to the caller and never persisted; only lastPostedAt/timesPosted side
// effects survive in the store.
type JobResult struct {
	RunID           string        `json:"runId"`
	Success         bool          `json:"success"`
	Message         string        `json:"message"`
	PostsProcessed  int           `json:"postsProcessed"`
	PostsSuccessful int           `json:"postsSuccessful"`
	Errors          []string      `json:"errors"`
	Details         []PostOutcome `json:"details"`
}

// PublishResult is the outcome of a single platform publish attempt.
type PublishResult struct {
	Success   bool   `json:"success"`
	PostID    string `json:"postId,omitempty"`
	Permalink string `json:"permalink,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ValidationResult is the outcome of validating one post before publish.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
