package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

const threadsAPIBaseURL = "https://graph.threads.net/v1.0"

type ThreadsService interface {
	PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult
	ValidateCredentials(ctx context.Context) bool
}

// threadsService follows the same container-then-publish shape as the
// Instagram Graph API, so media has to be reachable by public URL.
type threadsService struct {
	cfg     cfg.Config
	archive MediaArchive
	client  *http.Client
	baseURL string
}

func NewThreadsService(c cfg.Config, archive MediaArchive) ThreadsService {
	return &threadsService{cfg: c, archive: archive, client: http.DefaultClient, baseURL: threadsAPIBaseURL}
}

func (s *threadsService) PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult {
	if s.cfg.ThreadsAccessToken == "" || s.cfg.ThreadsUserID == "" {
		return transfer.PublishResult{Error: ErrPlatformNotConfigured.Error()}
	}

	mediaURL, err := s.archive.ArchiveMedia(ctx, localFilePath)
	if err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("Failed to archive media: %s", err.Error())}
	}

	params := url.Values{}
	if post.Type == models.PostTypeVideo {
		params.Set("media_type", "VIDEO")
		params.Set("video_url", mediaURL)
	} else {
		params.Set("media_type", "IMAGE")
		params.Set("image_url", mediaURL)
	}
	params.Set("text", firstNonEmpty(post.CustomCaption, post.Caption))
	params.Set("access_token", s.cfg.ThreadsAccessToken)

	containerID, err := s.post(ctx, fmt.Sprintf("%s/%s/threads", s.baseURL, s.cfg.ThreadsUserID), params)
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}

	publishParams := url.Values{}
	publishParams.Set("creation_id", containerID)
	publishParams.Set("access_token", s.cfg.ThreadsAccessToken)

	postID, err := s.post(ctx, fmt.Sprintf("%s/%s/threads_publish", s.baseURL, s.cfg.ThreadsUserID), publishParams)
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}

	return transfer.PublishResult{Success: true, PostID: postID}
}

func (s *threadsService) ValidateCredentials(ctx context.Context) bool {
	if s.cfg.ThreadsAccessToken == "" || s.cfg.ThreadsUserID == "" {
		return false
	}

	endpoint := fmt.Sprintf("%s/%s?fields=id,username&access_token=%s",
		s.baseURL, s.cfg.ThreadsUserID, url.QueryEscape(s.cfg.ThreadsAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

func (s *threadsService) post(ctx context.Context, endpoint string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Threads: %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no ID returned from Threads")
	}
	return result.ID, nil
}
