package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	videoDownloadTimeout = 60 * time.Second
	imageDownloadTimeout = 30 * time.Second
)

// DownloadOutcome reports one media download attempt.
type DownloadOutcome struct {
	Success  bool
	FilePath string
	FileName string
	Error    string
}

type DownloaderService interface {
	DownloadVideo(ctx context.Context, videoURL, postID string) DownloadOutcome
	DownloadImage(ctx context.Context, imageURL, postID string) DownloadOutcome
	Cleanup(filePath string)
	CleanupOldFiles(maxAgeHours int)
}

type downloaderService struct {
	dir    string
	client *http.Client
	now    func() time.Time
}

func NewDownloaderService(dir string) DownloaderService {
	return &downloaderService{
		dir:    dir,
		client: &http.Client{},
		now:    time.Now,
	}
}

func (d *downloaderService) DownloadVideo(ctx context.Context, videoURL, postID string) DownloadOutcome {
	return d.download(ctx, videoURL, postID, "mp4", videoDownloadTimeout)
}

func (d *downloaderService) DownloadImage(ctx context.Context, imageURL, postID string) DownloadOutcome {
	return d.download(ctx, imageURL, postID, "jpg", imageDownloadTimeout)
}

// download streams the remote resource to a unique file under the scoped
// download directory. On any failure the partial file is removed so a
// truncated download is never left behind.
func (d *downloaderService) download(ctx context.Context, rawURL, postID, defaultExt string, timeout time.Duration) DownloadOutcome {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		slog.Info(err.Error())
		return DownloadOutcome{Error: fmt.Sprintf("failed to create download dir: %v", err)}
	}

	fileName := fmt.Sprintf("%s_%d.%s", postID, d.now().UnixMilli(), extensionFromURL(rawURL, defaultExt))
	filePath := filepath.Join(d.dir, fileName)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return DownloadOutcome{Error: err.Error()}
	}
	// Some source CDNs reject clients without a browser user agent.
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return DownloadOutcome{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code %d downloading media", resp.StatusCode)
		slog.Info(err.Error())
		return DownloadOutcome{Error: err.Error()}
	}

	out, err := os.Create(filePath)
	if err != nil {
		slog.Info(err.Error())
		return DownloadOutcome{Error: err.Error()}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(filePath)
		slog.Info("download failed", "post_id", postID, "error", err.Error())
		return DownloadOutcome{Error: err.Error()}
	}

	if err := out.Close(); err != nil {
		os.Remove(filePath)
		slog.Info(err.Error())
		return DownloadOutcome{Error: err.Error()}
	}

	slog.Info("media downloaded", "post_id", postID, "file", fileName)
	return DownloadOutcome{Success: true, FilePath: filePath, FileName: fileName}
}

// Cleanup removes a downloaded file. It is a no-op when the file is
// already gone.
func (d *downloaderService) Cleanup(filePath string) {
	if filePath == "" {
		return
	}
	err := os.Remove(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Info("failed to clean up file", "path", filePath, "error", err.Error())
		}
		return
	}
	slog.Info("cleaned up file", "file", filepath.Base(filePath))
}

// CleanupOldFiles removes every file in the download directory whose
// modification time is older than maxAgeHours. This bounds transient
// storage left behind by crashed runs.
func (d *downloaderService) CleanupOldFiles(maxAgeHours int) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Info("failed to scan download dir", "error", err.Error())
		}
		return
	}

	maxAge := time.Duration(maxAgeHours) * time.Hour
	now := d.now()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			filePath := filepath.Join(d.dir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				slog.Info("failed to remove old file", "path", filePath, "error", err.Error())
				continue
			}
			slog.Info("cleaned up old file", "file", entry.Name())
		}
	}
}

// extensionFromURL pulls a file extension off the URL path, ignoring any
// query string, and falls back to defaultExt.
func extensionFromURL(rawURL, defaultExt string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultExt
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return defaultExt
	}
	return ext
}
