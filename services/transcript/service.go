package transcript

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/technofriends/youtube-insights/audio"
	"github.com/technofriends/youtube-insights/speech"
	"github.com/technofriends/youtube-insights/youtube"
)

// ErrUnavailable is returned when neither the caption fast path nor the
// audio slow path produced any transcript text.
var ErrUnavailable = errors.New("transcript unavailable")

// Service acquires the full transcript text for a video, or fails.
type Service interface {
	Acquire(ctx context.Context, videoID string) (string, error)
}

type Config struct {
	// TempDir is the parent for per-acquisition scratch directories.
	TempDir string

	// ChunkThresholdBytes is the asset size above which audio is split
	// before transcription.
	ChunkThresholdBytes int64

	// ChunkDuration is the length of each slice.
	ChunkDuration time.Duration

	// ProcessTimeout bounds one full acquisition, download included.
	ProcessTimeout time.Duration
}

type service struct {
	captions   youtube.CaptionClient
	downloader youtube.AudioDownloader
	splitter   audio.Splitter
	stt        speech.Transcriber
	config     Config
	logger     zerolog.Logger
}

func NewService(
	captions youtube.CaptionClient,
	downloader youtube.AudioDownloader,
	splitter audio.Splitter,
	stt speech.Transcriber,
	config Config,
) Service {
	return &service{
		captions:   captions,
		downloader: downloader,
		splitter:   splitter,
		stt:        stt,
		config:     config,
		logger:     zerolog.New(zerolog.NewConsoleWriter()),
	}
}

// Acquire tries pre-existing captions first, then falls back to downloading
// and transcribing audio. All temporary audio assets live in a scratch
// directory scoped to this call and are removed on every exit path.
func (s *service) Acquire(ctx context.Context, videoID string) (string, error) {
	if s.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ProcessTimeout)
		defer cancel()
	}

	logger := s.logger.With().Str("video_id", videoID).Logger()

	segments, err := s.captions.GetCaptions(ctx, videoID)
	if err == nil && len(segments) > 0 {
		logger.Info().Int("segments", len(segments)).Msg("Using caption fast path")
		return youtube.JoinSegments(segments), nil
	}
	logger.Warn().Err(err).Msg("No captions available, falling back to audio transcription")

	text, err := s.transcribeAudio(ctx, videoID, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Audio transcription fallback failed")
		return "", ErrUnavailable
	}

	return text, nil
}

func (s *service) transcribeAudio(ctx context.Context, videoID string, logger zerolog.Logger) (string, error) {
	workDir, err := os.MkdirTemp(s.config.TempDir, "acquire-")
	if err != nil {
		return "", errors.Wrap(err, "creating scratch directory")
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Error().Err(err).Str("dir", workDir).Msg("Failed to remove scratch directory")
		}
	}()

	assetPath, err := s.downloader.DownloadBestAudio(ctx, videoID, workDir)
	if err != nil {
		return "", errors.Wrap(err, "downloading audio")
	}

	info, err := os.Stat(assetPath)
	if err != nil {
		return "", errors.Wrap(err, "inspecting audio asset")
	}

	var text string
	if info.Size() > s.config.ChunkThresholdBytes {
		logger.Info().
			Int64("bytes", info.Size()).
			Int64("threshold", s.config.ChunkThresholdBytes).
			Msg("Audio exceeds upload limit, splitting into chunks")
		text, err = s.transcribeChunked(ctx, assetPath, workDir, logger)
	} else {
		text, err = s.stt.Transcribe(ctx, assetPath)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("transcription produced no text")
	}

	return text, nil
}

// transcribeChunked slices the asset into sequential time-bounded chunks and
// transcribes each independently. A failed chunk is dropped from the final
// text rather than failing the acquisition; only an all-empty result is an
// error.
func (s *service) transcribeChunked(ctx context.Context, assetPath, workDir string, logger zerolog.Logger) (string, error) {
	chunks, err := s.splitter.SplitByDuration(ctx, assetPath, s.config.ChunkDuration, workDir)
	if err != nil {
		return "", errors.Wrap(err, "splitting audio")
	}

	parts := make([]string, 0, len(chunks))
	for i, chunkPath := range chunks {
		chunkText, err := s.stt.Transcribe(ctx, chunkPath)
		if err != nil {
			logger.Warn().Err(err).Int("chunk", i).Msg("Chunk transcription failed, dropping chunk")
			continue
		}
		if chunkText != "" {
			parts = append(parts, chunkText)
		}
	}

	logger.Info().
		Int("chunks", len(chunks)).
		Int("transcribed", len(parts)).
		Msg("Chunked transcription completed")

	return strings.Join(parts, " "), nil
}
