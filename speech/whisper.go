package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// MaxUploadBytes is the payload limit enforced by the transcription API.
// Assets above this size must be split before upload.
const MaxUploadBytes = 25 * 1024 * 1024

const defaultBaseURL = "https://api.openai.com/v1"

// Transcriber converts one audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type WhisperConfig struct {
	APIKey  string
	Model   string
	BaseURL string // overridable for tests

	// Outbound pacing keeps chunked uploads under the API's rate limits.
	RequestsPerSecond float64
	Burst             int
}

type WhisperClient struct {
	config     WhisperConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &WhisperClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:     logrus.StandardLogger(),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one audio file and returns the recognized text. Files
// above MaxUploadBytes are rejected before any network call.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", errors.Wrap(err, "stat audio file")
	}
	if info.Size() > MaxUploadBytes {
		return "", errors.Errorf("audio file %s exceeds upload limit (%d > %d bytes)",
			filepath.Base(audioPath), info.Size(), MaxUploadBytes)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "waiting for transcription slot")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", errors.Wrap(err, "reading audio file")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", errors.Wrap(err, "creating form file")
	}
	if _, err = part.Write(audio); err != nil {
		return "", errors.Wrap(err, "writing audio")
	}
	if err = writer.WriteField("model", c.config.Model); err != nil {
		return "", errors.Wrap(err, "writing model field")
	}
	if err = writer.Close(); err != nil {
		return "", errors.Wrap(err, "closing writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.WithFields(logrus.Fields{
		"file":  filepath.Base(audioPath),
		"bytes": info.Size(),
		"model": c.config.Model,
	}).Debug("Uploading audio for transcription")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("transcription API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}

	return result.Text, nil
}
