package service

import (
	"math"
	"time"

	"github.com/vk-0-7/media-poster/internal/models"
)

// CalculatePostScore ranks a post by its engagement. Pure function of the
// post and the reference time, no I/O.
//
// Base score is views*0.1 + likes*2 + comments*5, then compounded
// multipliers: videos x1.2, posts with hashtags x1.1, captions over 1500
// characters x0.9, posts no older than 30 days x1.15. A likesCount of -1
// means the platform hides likes; it counts as zero here, so the result
// is never negative.
func CalculatePostScore(post *models.Post, now time.Time) int {
	views := float64(post.EffectiveViews())
	likes := float64(post.LikesCount)
	if likes < 0 {
		likes = 0
	}
	comments := float64(post.CommentsCount)

	score := views*0.1 + likes*2 + comments*5

	if post.Type == models.PostTypeVideo {
		score *= 1.2
	}

	if len(post.Hashtags) > 0 {
		score *= 1.1
	}

	if len([]rune(post.Caption)) > 1500 {
		score *= 0.9
	}

	if now.Sub(post.Timestamp) <= 30*24*time.Hour {
		score *= 1.15
	}

	return int(math.Round(score))
}
