package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Downloader fetches videos with yt-dlp into the managed media
// directory, one mp4 per video named by its platform id. Quality is
// capped at 720p; pose estimation gains nothing from larger frames.
type Downloader struct {
	binPath string
	dir     string
}

func NewDownloader(dir string) (*Downloader, error) {
	path, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	return &Downloader{binPath: path, dir: dir}, nil
}

// Download fetches the URL and returns the local file path.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	id, err := d.videoID(ctx, url)
	if err != nil {
		return "", err
	}

	target := filepath.Join(d.dir, id+".mp4")
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	cmd := exec.CommandContext(ctx, d.binPath,
		"-f", "best[height<=720]",
		"--recode-video", "mp4",
		"-o", filepath.Join(d.dir, "%(id)s.%(ext)s"),
		url)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp %s: %w: %s", url, err, tail(stderr.String()))
	}

	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("downloaded file missing for %s: %w", url, err)
	}
	return target, nil
}

func (d *Downloader) videoID(ctx context.Context, url string) (string, error) {
	cmd := exec.CommandContext(ctx, d.binPath, "--print", "id", "--skip-download", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("resolving video id for %s: %w: %s", url, err, tail(stderr.String()))
	}

	id := strings.TrimSpace(stdout.String())
	if id == "" {
		return "", fmt.Errorf("empty video id for %s", url)
	}
	return id, nil
}
