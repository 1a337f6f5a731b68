package youtube

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// AudioDownloader fetches the best-available audio asset for a video into a
// caller-scoped directory and returns the local path.
type AudioDownloader interface {
	DownloadBestAudio(ctx context.Context, videoID, destDir string) (string, error)
}

type YTDLPDownloader struct {
	binPath string
	logger  *logrus.Logger
}

func NewYTDLPDownloader(binPath string) *YTDLPDownloader {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YTDLPDownloader{
		binPath: binPath,
		logger:  logrus.StandardLogger(),
	}
}

// DownloadBestAudio downloads the best audio-only format as m4a. The caller
// owns destDir and is responsible for removing it.
func (d *YTDLPDownloader) DownloadBestAudio(ctx context.Context, videoID, destDir string) (string, error) {
	outPath := filepath.Join(destDir, videoID+".m4a")

	args := []string{
		"--no-playlist",
		"-f", "bestaudio",
		"-x", "--audio-format", "m4a",
		"-o", filepath.Join(destDir, videoID+".%(ext)s"),
		WatchURL(videoID),
	}

	logger := d.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"command":  d.binPath,
	})
	logger.Info("Downloading audio")

	cmd := exec.CommandContext(ctx, d.binPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.WithFields(logrus.Fields{
			"error":  err,
			"stderr": stderr.String(),
		}).Error("Audio download failed")
		return "", errors.Wrapf(err, "yt-dlp failed: %s", stderr.String())
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", errors.Wrap(err, "downloaded audio file not found")
	}

	logger.Info("Audio download completed")
	return outPath, nil
}
