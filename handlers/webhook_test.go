package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/technofriends/youtube-insights/errors"
	"github.com/technofriends/youtube-insights/models"
	"github.com/technofriends/youtube-insights/validation"
)

type fakeProcessService struct {
	gotReq  models.ProcessingRequest
	outcome models.DispatchOutcome
	err     error
	calls   int
}

func (f *fakeProcessService) Process(_ context.Context, req models.ProcessingRequest) (models.DispatchOutcome, error) {
	f.calls++
	f.gotReq = req
	return f.outcome, f.err
}

func newTestApp(service *fakeProcessService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	handler := NewWebhookHandler(service, validation.NewValidator())
	app.Post("/process_video", handler.ProcessVideo)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/process_video", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parsing response %q: %v", raw, err)
	}
	return resp.StatusCode, payload
}

func TestProcessVideoSuccess(t *testing.T) {
	service := &fakeProcessService{
		outcome: models.DispatchOutcome{
			Strategy: models.StrategyFirstResult,
			Results:  []models.ModelResult{{Result: "summary text", Model: "OpenAI - gpt-4o"}},
		},
	}
	app := newTestApp(service)

	status, payload := postJSON(t, app, `{"video_id": "dQw4w9WgXcQ"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if payload["result"] != "summary text" {
		t.Errorf("expected result field, got %v", payload)
	}
	if payload["model"] != "OpenAI - gpt-4o" {
		t.Errorf("expected model label, got %v", payload)
	}
}

func TestProcessVideoDefaultSection(t *testing.T) {
	service := &fakeProcessService{
		outcome: models.DispatchOutcome{
			Strategy: models.StrategyFirstResult,
			Results:  []models.ModelResult{{Result: "x", Model: "y"}},
		},
	}
	app := newTestApp(service)

	status, _ := postJSON(t, app, `{"video_id": "dQw4w9WgXcQ"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if service.gotReq.Section() != models.DefaultApplicationSection {
		t.Errorf("expected default section, got %q", service.gotReq.Section())
	}
}

func TestProcessVideoInactiveSection(t *testing.T) {
	service := &fakeProcessService{
		err: errors.InvalidInput("test", nil, errors.MsgInactiveSection),
	}
	app := newTestApp(service)

	status, payload := postJSON(t, app, `{"video_id": "dQw4w9WgXcQ", "application_section": "dead"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if payload["error"] != errors.MsgInactiveSection {
		t.Errorf("expected error body %q, got %v", errors.MsgInactiveSection, payload)
	}
}

func TestProcessVideoEmbeddedFailuresKeep200(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{name: "transcript unavailable", msg: errors.MsgNoTranscript},
		{name: "all models failed", msg: errors.MsgNoSuccessfulModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeProcessService{
				outcome: models.DispatchOutcome{Strategy: models.StrategyFirstResult, Err: tt.msg},
			}
			app := newTestApp(service)

			status, payload := postJSON(t, app, `{"video_id": "dQw4w9WgXcQ"}`)
			if status != 200 {
				t.Fatalf("completed dispatches respond 200, got %d", status)
			}
			if payload["error"] != tt.msg {
				t.Errorf("expected embedded error %q, got %v", tt.msg, payload)
			}
		})
	}
}

func TestProcessVideoReturnAllPayload(t *testing.T) {
	service := &fakeProcessService{
		outcome: models.DispatchOutcome{
			Strategy: models.StrategyReturnAll,
			Results: []models.ModelResult{
				{Result: "a", Model: "OpenAI - gpt-4o"},
				{Result: "b", Model: "Groq - llama-3.1-70b"},
			},
		},
	}
	app := newTestApp(service)

	status, payload := postJSON(t, app, `{"video_id": "dQw4w9WgXcQ"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	results, ok := payload["results"].([]any)
	if !ok {
		t.Fatalf("expected results list, got %v", payload)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestProcessVideoInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing video_id", body: `{"application_section": "4-YT-Su"}`},
		{name: "malformed video_id", body: `{"video_id": "not a valid id!"}`},
		{name: "invalid JSON", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeProcessService{}
			app := newTestApp(service)

			status, payload := postJSON(t, app, tt.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d", status)
			}
			if payload["error"] == "" {
				t.Errorf("expected error body, got %v", payload)
			}
			if service.calls != 0 {
				t.Errorf("service must not run on invalid payload, got %d calls", service.calls)
			}
		})
	}
}
