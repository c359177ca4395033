package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
	"golang.org/x/oauth2"
)

// ErrPlatformNotConfigured is returned by the secondary platform clients
// when their credentials are absent. The cross-post fan-out skips
// unconfigured platforms before it ever gets here.
var ErrPlatformNotConfigured = errors.New("platform credentials not configured")

const twitterAPIBaseURL = "https://api.twitter.com/2"

type TwitterService interface {
	PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult
	ValidateCredentials(ctx context.Context) bool
}

type twitterService struct {
	cfg     cfg.Config
	client  *http.Client
	baseURL string
}

func NewTwitterService(c cfg.Config) TwitterService {
	s := &twitterService{cfg: c, baseURL: twitterAPIBaseURL}
	if c.TwitterAccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.TwitterAccessToken})
		s.client = oauth2.NewClient(context.Background(), src)
	}
	return s
}

func (s *twitterService) PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult {
	if s.client == nil {
		return transfer.PublishResult{Error: ErrPlatformNotConfigured.Error()}
	}

	payload := map[string]string{"text": truncateTweet(firstNonEmpty(post.CustomCaption, post.Caption))}
	body, err := json.Marshal(payload)
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/tweets", bytes.NewBuffer(body))
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("HTTP request error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return transfer.PublishResult{Error: fmt.Sprintf("unexpected status code from Twitter: %d", resp.StatusCode)}
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("error parsing response: %v", err)}
	}

	return transfer.PublishResult{Success: true, PostID: result.Data.ID}
}

func (s *twitterService) ValidateCredentials(ctx context.Context) bool {
	if s.client == nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/users/me", nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func truncateTweet(text string) string {
	runes := []rune(text)
	if len(runes) <= 280 {
		return text
	}
	return string(runes[:277]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
