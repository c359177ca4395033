package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

const defaultPDS = "https://bsky.social"

type BlueskyService interface {
	PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult
	ValidateCredentials(ctx context.Context) bool
}

// blueskyService is a minimal AT Protocol client: createSession to
// authenticate, uploadBlob for media, createRecord for the post itself.
type blueskyService struct {
	cfg    cfg.Config
	pds    string
	client *http.Client

	accessJwt string
	did       string
}

func NewBlueskyService(c cfg.Config) BlueskyService {
	return &blueskyService{
		cfg:    c,
		pds:    defaultPDS,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *blueskyService) login(ctx context.Context) error {
	if s.cfg.BlueskyIdentifier == "" || s.cfg.BlueskyAppPassword == "" {
		return ErrPlatformNotConfigured
	}

	body := map[string]string{
		"identifier": s.cfg.BlueskyIdentifier,
		"password":   s.cfg.BlueskyAppPassword,
	}

	var resp struct {
		AccessJwt string `json:"accessJwt"`
		DID       string `json:"did"`
	}
	if err := s.xrpcPost(ctx, "/xrpc/com.atproto.server.createSession", body, &resp); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	s.accessJwt = resp.AccessJwt
	s.did = resp.DID
	return nil
}

func (s *blueskyService) PostContent(ctx context.Context, post *models.Post, localFilePath string) transfer.PublishResult {
	if err := s.login(ctx); err != nil {
		return transfer.PublishResult{Error: err.Error()}
	}

	blob, err := s.uploadBlob(ctx, localFilePath)
	if err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("upload blob: %v", err)}
	}

	record := map[string]interface{}{
		"$type":     "app.bsky.feed.post",
		"text":      firstNonEmpty(post.CustomCaption, post.Caption),
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if blob != nil {
		record["embed"] = map[string]interface{}{
			"$type": "app.bsky.embed.images",
			"images": []map[string]interface{}{
				{"alt": "", "image": blob},
			},
		}
	}

	body := map[string]interface{}{
		"repo":       s.did,
		"collection": "app.bsky.feed.post",
		"record":     record,
	}

	var resp struct {
		URI string `json:"uri"`
		CID string `json:"cid"`
	}
	if err := s.xrpcPost(ctx, "/xrpc/com.atproto.repo.createRecord", body, &resp); err != nil {
		return transfer.PublishResult{Error: fmt.Sprintf("create record: %v", err)}
	}

	return transfer.PublishResult{Success: true, PostID: resp.URI}
}

func (s *blueskyService) uploadBlob(ctx context.Context, localFilePath string) (json.RawMessage, error) {
	if localFilePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(localFilePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pds+"/xrpc/com.atproto.repo.uploadBlob", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+s.accessJwt)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var result struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Blob, nil
}

func (s *blueskyService) ValidateCredentials(ctx context.Context) bool {
	return s.login(ctx) == nil
}

func (s *blueskyService) xrpcPost(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pds+endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessJwt)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
