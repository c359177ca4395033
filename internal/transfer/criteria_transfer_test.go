package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaults(t *testing.T) {
	t.Run("zero value gets the full defaults", func(t *testing.T) {
		c := SelectionCriteria{}.WithDefaults()
		assert.Equal(t, DefaultCriteria(), c)
	})

	t.Run("set fields are preserved", func(t *testing.T) {
		exclude := false
		c := SelectionCriteria{
			MinViews:              100,
			MaxPostsPerDay:        7,
			PreferredTypes:        []string{"Image"},
			ExcludeRecentlyPosted: &exclude,
		}.WithDefaults()

		assert.Equal(t, 100, c.MinViews)
		assert.Equal(t, 7, c.MaxPostsPerDay)
		assert.Equal(t, []string{"Image"}, c.PreferredTypes)
		assert.False(t, *c.ExcludeRecentlyPosted)
		assert.Equal(t, 500, c.MinLikes)
		assert.Equal(t, 24, c.HoursToExclude)
	})
}

func TestExcludes(t *testing.T) {
	assert.False(t, SelectionCriteria{}.Excludes())

	exclude := true
	assert.True(t, SelectionCriteria{ExcludeRecentlyPosted: &exclude}.Excludes())

	exclude = false
	assert.False(t, SelectionCriteria{ExcludeRecentlyPosted: &exclude}.Excludes())
}
