package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
	"github.com/vk-0-7/media-poster/pkg/utils"
)

const (
	defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

	// Instagram caption limit. Captions over the limit are cut to the
	// truncation point and the fallback suffix is appended.
	captionMaxLength       = 2200
	captionTruncationPoint = 2150
	captionFallbackSuffix  = "...\n\n#viral #trending"
	maxAppendedHashtags    = 10
	defaultPollInterval    = 10 * time.Second
	defaultMaxPollAttempts = 30
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// containerOutcome tags the result of waiting on a media container.
type containerOutcome int

const (
	containerFinished containerOutcome = iota
	containerError
	containerTimedOut
)

type InstagramService interface {
	PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult
	ValidateCredentials(ctx context.Context) bool
}

type instagramService struct {
	cfg     cfg.Config
	archive MediaArchive
	client  *http.Client

	baseURL         string
	pollInterval    time.Duration
	maxPollAttempts int
}

func NewInstagramService(cfg cfg.Config, archive MediaArchive) InstagramService {
	return &instagramService{
		cfg:             cfg,
		archive:         archive,
		client:          http.DefaultClient,
		baseURL:         defaultGraphBaseURL,
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
	}
}

// PostContent publishes one post to the configured Instagram business
// account: compose the caption, stage the media at a public URL, create
// the media container, then publish it and fetch the permalink. Any step
// failing short-circuits; retrying is the caller's responsibility.
func (s *instagramService) PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult {
	slog.Info("starting instagram post", "id", post.ID)

	caption := s.formatCaption(post)

	mediaURL, err := s.archive.ArchiveMedia(ctx, localFilePath)
	if err != nil {
		slog.Info(err.Error())
		return transfer.PublishResult{Error: err.Error()}
	}

	var containerID string
	if post.Type == models.PostTypeVideo && post.VideoURL != "" {
		containerID, err = s.uploadVideo(ctx, mediaURL, caption)
	} else {
		containerID, err = s.uploadImage(ctx, mediaURL, caption)
	}
	if err != nil {
		slog.Info("media upload failed", "id", post.ID, "error", err.Error())
		return transfer.PublishResult{Error: err.Error()}
	}

	result := s.publish(ctx, containerID)
	if result.Success {
		slog.Info("posted to instagram", "id", post.ID, "permalink", result.Permalink)
	}
	return result
}

// formatCaption composes the final caption: the curated or original
// caption, up to ten hashtags not already present, and an attribution
// block, truncated to stay inside the platform limit.
func (s *instagramService) formatCaption(post *models.Post) string {
	caption := post.CustomCaption
	if caption == "" {
		caption = post.Caption
	}
	caption = strings.TrimSpace(caption)

	if len(post.Hashtags) > 0 {
		existing := make(map[string]struct{})
		for _, tag := range hashtagPattern.FindAllString(caption, -1) {
			existing[strings.ToLower(tag)] = struct{}{}
		}

		var fresh []string
		for _, tag := range post.Hashtags {
			if _, ok := existing[strings.ToLower("#"+tag)]; ok {
				continue
			}
			fresh = append(fresh, "#"+tag)
			if len(fresh) == maxAppendedHashtags {
				break
			}
		}

		if len(fresh) > 0 {
			caption += "\n\n" + strings.Join(fresh, " ")
		}
	}

	caption += fmt.Sprintf("\n\n\U0001F4F8 Originally by @%s", post.OwnerUsername)
	caption += fmt.Sprintf("\n\U0001F525 %s views", utils.FormatCount(post.EffectiveViews()))
	caption += fmt.Sprintf("\n❤️ %s likes", utils.FormatCount(max(post.LikesCount, 0)))

	if runes := []rune(caption); len(runes) > captionMaxLength {
		caption = string(runes[:captionTruncationPoint]) + captionFallbackSuffix
	}

	return caption
}

// uploadVideo creates a video media container and polls its processing
// status until it finishes. Video containers process asynchronously on
// the platform side.
func (s *instagramService) uploadVideo(ctx context.Context, videoURL, caption string) (string, error) {
	payload := map[string]interface{}{
		"media_type":   "VIDEO",
		"video_url":    videoURL,
		"caption":      caption,
		"access_token": s.cfg.InstagramAccessToken,
	}

	containerID, err := s.createContainer(ctx, payload)
	if err != nil {
		return "", err
	}
	slog.Info("media container created", "container_id", containerID)

	switch outcome := s.waitForContainer(ctx, containerID); outcome {
	case containerFinished:
		return containerID, nil
	case containerError:
		return "", fmt.Errorf("video upload failed")
	default:
		return "", fmt.Errorf("video upload timeout")
	}
}

// uploadImage creates an image container. Images are processed
// synchronously, a single create call suffices.
func (s *instagramService) uploadImage(ctx context.Context, imageURL, caption string) (string, error) {
	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": s.cfg.InstagramAccessToken,
	}
	return s.createContainer(ctx, payload)
}

func (s *instagramService) createContainer(ctx context.Context, payload map[string]interface{}) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", s.baseURL, s.cfg.InstagramBusinessAccountID)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp)
	}

	var result transfer.InstagramContainerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}

	return result.ID, nil
}

// waitForContainer is a bounded retry loop: fixed interval, fixed max
// attempts, tagged outcome instead of an error string.
func (s *instagramService) waitForContainer(ctx context.Context, containerID string) containerOutcome {
	for attempt := 0; attempt < s.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return containerTimedOut
		case <-time.After(s.pollInterval):
		}

		status, err := s.containerStatus(ctx, containerID)
		if err != nil {
			slog.Info("container status check failed", "error", err.Error())
			continue
		}

		slog.Info("upload status", "status", status)
		switch status {
		case "FINISHED":
			return containerFinished
		case "ERROR":
			return containerError
		}
	}
	return containerTimedOut
}

func (s *instagramService) containerStatus(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
		s.baseURL, containerID, url.QueryEscape(s.cfg.InstagramAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp)
	}

	var status transfer.InstagramContainerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", err
	}
	return status.StatusCode, nil
}

// publish converts a finished container into a live post and fetches its
// permalink.
func (s *instagramService) publish(ctx context.Context, containerID string) transfer.PublishResult {
	endpoint := fmt.Sprintf("%s/%s/media_publish", s.baseURL, s.cfg.InstagramBusinessAccountID)
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": s.cfg.InstagramAccessToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("HTTP request error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return transfer.PublishResult{Error: graphError(resp).Error()}
	}

	var result transfer.InstagramContainerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("error parsing response: %v", err)}
	}
	if result.ID == "" {
		return transfer.PublishResult{Error: "no post ID returned from Instagram"}
	}

	permalink, err := s.permalink(ctx, result.ID)
	if err != nil {
		slog.Info("failed to fetch permalink", "post_id", result.ID, "error", err.Error())
	}

	return transfer.PublishResult{Success: true, PostID: result.ID, Permalink: permalink}
}

func (s *instagramService) permalink(ctx context.Context, postID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s",
		s.baseURL, postID, url.QueryEscape(s.cfg.InstagramAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp)
	}

	var details transfer.InstagramPermalinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", err
	}
	return details.Permalink, nil
}

// ValidateCredentials does a lightweight read against the business
// account. Used as a precondition gate before any run.
func (s *instagramService) ValidateCredentials(ctx context.Context) bool {
	endpoint := fmt.Sprintf("%s/%s?fields=account_type,username&access_token=%s",
		s.baseURL, s.cfg.InstagramBusinessAccountID, url.QueryEscape(s.cfg.InstagramAccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info("credential validation failed", "error", err.Error())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("credential validation failed", "status", resp.StatusCode)
		return false
	}

	var info transfer.InstagramAccountInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		slog.Info(err.Error())
		return false
	}

	slog.Info("instagram credentials valid", "username", info.Username)
	return true
}

func graphError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var igErr transfer.InstagramErrorResponse
	if err := json.Unmarshal(body, &igErr); err == nil && igErr.Error.Message != "" {
		return fmt.Errorf("instagram API error: %s (code %d)", igErr.Error.Message, igErr.Error.Code)
	}
	return fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
}
