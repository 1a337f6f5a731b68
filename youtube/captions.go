package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultTimedTextURL = "https://video.google.com/timedtext"

// CaptionSegment is one timed caption entry.
type CaptionSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// CaptionClient fetches pre-existing captions for a video. This is the fast
// path of transcript acquisition; it makes no download and no speech calls.
type CaptionClient interface {
	GetCaptions(ctx context.Context, videoID string) ([]CaptionSegment, error)
}

type TimedTextClient struct {
	httpClient *http.Client
	baseURL    string
	language   string
	logger     *logrus.Logger
}

func NewTimedTextClient(language string) *TimedTextClient {
	return NewTimedTextClientWithURL(language, defaultTimedTextURL)
}

func NewTimedTextClientWithURL(language, baseURL string) *TimedTextClient {
	if language == "" {
		language = "en"
	}
	return &TimedTextClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		language:   language,
		logger:     logrus.StandardLogger(),
	}
}

type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedSegment `xml:"text"`
}

type timedSegment struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Body     string  `xml:",chardata"`
}

func (c *TimedTextClient) GetCaptions(ctx context.Context, videoID string) ([]CaptionSegment, error) {
	query := url.Values{}
	query.Set("v", videoID)
	query.Set("lang", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating caption request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching captions")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("caption service error %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading caption response")
	}

	// Videos without captions return an empty body rather than an error
	// status.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.New("no captions available")
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing caption track")
	}

	if len(doc.Texts) == 0 {
		return nil, errors.New("caption track is empty")
	}

	segments := make([]CaptionSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(t.Body)
		if text == "" {
			continue
		}
		segments = append(segments, CaptionSegment{
			Text:     text,
			Start:    t.Start,
			Duration: t.Duration,
		})
	}

	if len(segments) == 0 {
		return nil, errors.New("caption track has no text")
	}

	c.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"segments": len(segments),
	}).Debug("Fetched caption track")

	return segments, nil
}

// JoinSegments concatenates caption segments in original order into one text
// blob, whitespace-joined.
func JoinSegments(segments []CaptionSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}
