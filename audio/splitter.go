package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Splitter slices an audio asset into sequential time-bounded chunks.
type Splitter interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	SplitByDuration(ctx context.Context, path string, chunk time.Duration, destDir string) ([]string, error)
}

type FFmpegSplitter struct {
	ffmpegPath  string
	ffprobePath string
	logger      *logrus.Logger
}

func NewFFmpegSplitter(ffmpegPath string) *FFmpegSplitter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := "ffprobe"
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		ffprobePath = filepath.Join(dir, "ffprobe")
	}
	return &FFmpegSplitter{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logrus.StandardLogger(),
	}
}

// Duration probes the container duration via ffprobe.
func (s *FFmpegSplitter) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errors.Wrapf(err, "ffprobe failed: %s", stderr.String())
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parsing ffprobe duration")
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// SplitByDuration cuts the asset into ceil(duration/chunk) sequential slices
// in destDir, returning the chunk paths in time order. The last chunk may be
// shorter. Stream copy keeps slicing cheap; no re-encode is performed.
func (s *FFmpegSplitter) SplitByDuration(
	ctx context.Context,
	path string,
	chunk time.Duration,
	destDir string,
) ([]string, error) {
	total, err := s.Duration(ctx, path)
	if err != nil {
		return nil, err
	}

	count := int(math.Ceil(total.Seconds() / chunk.Seconds()))
	if count < 1 {
		count = 1
	}

	s.logger.WithFields(logrus.Fields{
		"path":     path,
		"duration": total,
		"chunks":   count,
	}).Info("Splitting audio asset")

	chunks := make([]string, 0, count)
	for i := 0; i < count; i++ {
		offset := time.Duration(i) * chunk
		outPath := filepath.Join(destDir, fmt.Sprintf("chunk_%03d%s", i, filepath.Ext(path)))

		cmd := exec.CommandContext(ctx, s.ffmpegPath,
			"-y",
			"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
			"-t", strconv.FormatFloat(chunk.Seconds(), 'f', 3, 64),
			"-i", path,
			"-c", "copy",
			outPath,
		)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, errors.Wrapf(err, "ffmpeg chunk %d failed: %s", i, stderr.String())
		}

		chunks = append(chunks, outPath)
	}

	return chunks, nil
}
