package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/models"
)

type fakeArchive struct {
	ArchiveMediaFunc func(ctx context.Context, localPath string) (string, error)
}

func (f *fakeArchive) ArchiveMedia(ctx context.Context, localPath string) (string, error) {
	return f.ArchiveMediaFunc(ctx, localPath)
}

func newTestInstagram(baseURL string, archive MediaArchive) *instagramService {
	return &instagramService{
		cfg: cfg.Config{
			InstagramAccessToken:       "token",
			InstagramBusinessAccountID: "17890",
		},
		archive:         archive,
		client:          http.DefaultClient,
		baseURL:         baseURL,
		pollInterval:    time.Millisecond,
		maxPollAttempts: 3,
	}
}

func TestFormatCaption(t *testing.T) {
	s := newTestInstagram("", nil)

	t.Run("appends hashtags and attribution", func(t *testing.T) {
		post := &models.Post{
			Caption:        "Sunset over the bay",
			Hashtags:       []string{"sunset", "ocean"},
			OwnerUsername:  "marina",
			VideoViewCount: 15000,
			LikesCount:     2100,
		}

		caption := s.formatCaption(post)
		assert.Contains(t, caption, "Sunset over the bay")
		assert.Contains(t, caption, "#sunset #ocean")
		assert.Contains(t, caption, "@marina")
		assert.Contains(t, caption, "15.0K views")
		assert.Contains(t, caption, "2.1K likes")
	})

	t.Run("custom caption overrides original", func(t *testing.T) {
		post := &models.Post{
			Caption:       "original",
			CustomCaption: "curated text",
			OwnerUsername: "marina",
		}
		caption := s.formatCaption(post)
		assert.Contains(t, caption, "curated text")
		assert.NotContains(t, caption, "original")
	})

	t.Run("skips hashtags already in the caption", func(t *testing.T) {
		post := &models.Post{
			Caption:       "Already tagged #Sunset here",
			Hashtags:      []string{"sunset", "beach"},
			OwnerUsername: "marina",
		}
		caption := s.formatCaption(post)
		assert.Equal(t, 1, strings.Count(strings.ToLower(caption), "#sunset"))
		assert.Contains(t, caption, "#beach")
	})

	t.Run("caps appended hashtags at ten", func(t *testing.T) {
		tags := make([]string, 15)
		for i := range tags {
			tags[i] = fmt.Sprintf("tag%d", i)
		}
		post := &models.Post{Caption: "short", Hashtags: tags, OwnerUsername: "marina"}

		caption := s.formatCaption(post)
		assert.Equal(t, 10, strings.Count(caption, "#tag"))
	})

	t.Run("stays inside the platform limit", func(t *testing.T) {
		post := &models.Post{
			Caption:       strings.Repeat("a", 3000),
			OwnerUsername: "marina",
		}
		caption := s.formatCaption(post)
		assert.LessOrEqual(t, len([]rune(caption)), 2200)
		assert.True(t, strings.HasSuffix(caption, "...\n\n#viral #trending"))
	})

	t.Run("hidden like count renders as zero", func(t *testing.T) {
		post := &models.Post{Caption: "x", OwnerUsername: "marina", LikesCount: -1}
		assert.Contains(t, s.formatCaption(post), "0 likes")
	})
}

// graphServer fakes the Graph API surface the publisher touches.
func graphServer(t *testing.T, statusSequence []string) *httptest.Server {
	t.Helper()
	var statusCalls int

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/media"):
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/media_publish"):
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-post-9"})
		case r.Method == http.MethodGet && strings.Contains(r.URL.RawQuery, "status_code"):
			status := "FINISHED"
			if statusCalls < len(statusSequence) {
				status = statusSequence[statusCalls]
			} else if len(statusSequence) > 0 {
				status = statusSequence[len(statusSequence)-1]
			}
			statusCalls++
			json.NewEncoder(w).Encode(map[string]string{"status_code": status, "id": "container-1"})
		case r.Method == http.MethodGet && strings.Contains(r.URL.RawQuery, "permalink"):
			json.NewEncoder(w).Encode(map[string]string{"permalink": "https://www.instagram.com/p/abc/", "id": "ig-post-9"})
		case r.Method == http.MethodGet && strings.Contains(r.URL.RawQuery, "account_type"):
			json.NewEncoder(w).Encode(map[string]string{"id": "17890", "username": "reposter"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestPostContent(t *testing.T) {
	archive := &fakeArchive{
		ArchiveMediaFunc: func(ctx context.Context, localPath string) (string, error) {
			return "https://media.example.com/" + localPath, nil
		},
	}

	t.Run("publishes a video end to end", func(t *testing.T) {
		server := graphServer(t, []string{"IN_PROGRESS", "FINISHED"})
		defer server.Close()

		s := newTestInstagram(server.URL, archive)
		post := &models.Post{
			ID:            "p1",
			Type:          models.PostTypeVideo,
			VideoURL:      "https://cdn.example.com/reel.mp4",
			Caption:       "hello",
			OwnerUsername: "marina",
		}

		result := s.PostContent(context.Background(), post, "reel.mp4")
		require.True(t, result.Success, result.Error)
		assert.Equal(t, "ig-post-9", result.PostID)
		assert.Equal(t, "https://www.instagram.com/p/abc/", result.Permalink)
	})

	t.Run("publishes an image without polling", func(t *testing.T) {
		server := graphServer(t, nil)
		defer server.Close()

		s := newTestInstagram(server.URL, archive)
		post := &models.Post{
			ID:            "p2",
			Type:          models.PostTypeImage,
			DisplayURL:    "https://cdn.example.com/photo.jpg",
			OwnerUsername: "marina",
		}

		result := s.PostContent(context.Background(), post, "photo.jpg")
		require.True(t, result.Success, result.Error)
		assert.Equal(t, "ig-post-9", result.PostID)
	})

	t.Run("container processing error fails the publish", func(t *testing.T) {
		server := graphServer(t, []string{"ERROR"})
		defer server.Close()

		s := newTestInstagram(server.URL, archive)
		post := &models.Post{ID: "p3", Type: models.PostTypeVideo, VideoURL: "https://cdn.example.com/reel.mp4"}

		result := s.PostContent(context.Background(), post, "reel.mp4")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "video upload failed")
	})

	t.Run("container never finishing times out", func(t *testing.T) {
		server := graphServer(t, []string{"IN_PROGRESS"})
		defer server.Close()

		s := newTestInstagram(server.URL, archive)
		post := &models.Post{ID: "p4", Type: models.PostTypeVideo, VideoURL: "https://cdn.example.com/reel.mp4"}

		result := s.PostContent(context.Background(), post, "reel.mp4")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "video upload timeout")
	})

	t.Run("archive failure short-circuits", func(t *testing.T) {
		failing := &fakeArchive{
			ArchiveMediaFunc: func(ctx context.Context, localPath string) (string, error) {
				return "", fmt.Errorf("bucket unavailable")
			},
		}

		s := newTestInstagram("http://127.0.0.1:1", failing)
		post := &models.Post{ID: "p5", Type: models.PostTypeImage, DisplayURL: "x"}

		result := s.PostContent(context.Background(), post, "photo.jpg")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "bucket unavailable")
	})

	t.Run("graph API error surfaces its message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "Invalid parameter", "code": 100},
			})
		}))
		defer server.Close()

		s := newTestInstagram(server.URL, archive)
		post := &models.Post{ID: "p6", Type: models.PostTypeImage, DisplayURL: "x"}

		result := s.PostContent(context.Background(), post, "photo.jpg")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "Invalid parameter")
		assert.Contains(t, result.Error, "code 100")
	})
}

func TestValidateCredentials(t *testing.T) {
	t.Run("valid account", func(t *testing.T) {
		server := graphServer(t, nil)
		defer server.Close()

		s := newTestInstagram(server.URL, nil)
		assert.True(t, s.ValidateCredentials(context.Background()))
	})

	t.Run("rejected token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		s := newTestInstagram(server.URL, nil)
		assert.False(t, s.ValidateCredentials(context.Background()))
	})

	t.Run("unreachable API", func(t *testing.T) {
		s := newTestInstagram("http://127.0.0.1:1", nil)
		assert.False(t, s.ValidateCredentials(context.Background()))
	})
}
