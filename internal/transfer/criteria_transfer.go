package transfer

// SelectionCriteria tunes which posts the selector considers for
// republishing. All fields are optional on the wire; zero values fall
// back to the auto-post defaults.
type SelectionCriteria struct {
	MinViews              int      `json:"minViews"`
	MinLikes              int      `json:"minLikes"`
	MaxPostsPerDay        int      `json:"maxPostsPerDay"`
	PreferredTypes        []string `json:"preferredTypes"`
	MaxCaptionLength      int      `json:"maxCaptionLength"`
	ExcludeRecentlyPosted *bool    `json:"excludeRecentlyPosted"`
	HoursToExclude        int      `json:"hoursToExclude"`
}

// DefaultCriteria are the auto-post defaults applied when a request
// leaves fields unset.
func DefaultCriteria() SelectionCriteria {
	exclude := true
	return SelectionCriteria{
		MinViews:              5000,
		MinLikes:              500,
		MaxPostsPerDay:        2,
		PreferredTypes:        []string{"Video"},
		MaxCaptionLength:      2000,
		ExcludeRecentlyPosted: &exclude,
		HoursToExclude:        24,
	}
}

// WithDefaults fills unset fields from DefaultCriteria.
func (c SelectionCriteria) WithDefaults() SelectionCriteria {
	d := DefaultCriteria()
	if c.MinViews == 0 {
		c.MinViews = d.MinViews
	}
	if c.MinLikes == 0 {
		c.MinLikes = d.MinLikes
	}
	if c.MaxPostsPerDay == 0 {
		c.MaxPostsPerDay = d.MaxPostsPerDay
	}
	if len(c.PreferredTypes) == 0 {
		c.PreferredTypes = d.PreferredTypes
	}
	if c.MaxCaptionLength == 0 {
		c.MaxCaptionLength = d.MaxCaptionLength
	}
	if c.ExcludeRecentlyPosted == nil {
		c.ExcludeRecentlyPosted = d.ExcludeRecentlyPosted
	}
	if c.HoursToExclude == 0 {
		c.HoursToExclude = d.HoursToExclude
	}
	return c
}

// Excludes reports whether recently posted content should be filtered out.
func (c SelectionCriteria) Excludes() bool {
	return c.ExcludeRecentlyPosted != nil && *c.ExcludeRecentlyPosted
}
