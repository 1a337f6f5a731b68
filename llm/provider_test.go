package llm

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/technofriends/youtube-insights/models"
)

type capturingModel struct {
	model    string
	system   string
	user     string
	response string
	err      error
}

func (m *capturingModel) Complete(_ context.Context, model, system, user string) (string, error) {
	m.model = model
	m.system = system
	m.user = user
	return m.response, m.err
}

func TestRegistryInvoke(t *testing.T) {
	client := &capturingModel{response: "the answer"}
	registry := NewRegistryWithClients(map[Provider]ChatModel{
		ProviderOpenAI: client,
	})

	candidate := models.Candidate{Provider: "OpenAI", Model: "gpt-4o"}
	result, err := registry.Invoke(context.Background(), candidate, "be terse", "summarize this", "the transcript text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", client.model)
	}
	if client.system != "be terse" {
		t.Errorf("system prompt must pass through verbatim, got %q", client.system)
	}
	wantUser := "summarize this\n\nTranscript:\nthe transcript text"
	if client.user != wantUser {
		t.Errorf("expected user message %q, got %q", wantUser, client.user)
	}
	if result.Model != "OpenAI - gpt-4o" {
		t.Errorf("expected label %q, got %q", "OpenAI - gpt-4o", result.Model)
	}
	if result.Result != "the answer" {
		t.Errorf("expected result text %q, got %q", "the answer", result.Result)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistryWithClients(map[Provider]ChatModel{
		ProviderOpenAI: &capturingModel{response: "x"},
	})

	candidate := models.Candidate{Provider: "Mistral", Model: "large"}
	_, err := registry.Invoke(context.Background(), candidate, "s", "u", "t")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	var unknown *ErrUnknownProvider
	if !goerrors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownProvider, got %T: %v", err, err)
	}
	if unknown.Provider != "Mistral" {
		t.Errorf("expected provider Mistral in error, got %q", unknown.Provider)
	}
}

func TestOpenAICompatClientComplete(t *testing.T) {
	var gotBody chatRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key")

	text, err := client.Complete(context.Background(), "gpt-4o", "system says", "user says")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("expected response text %q, got %q", "hello", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 ||
		gotBody.Messages[0].Role != "system" ||
		gotBody.Messages[1].Role != "user" {
		t.Errorf("expected system+user message pair, got %+v", gotBody.Messages)
	}
}

func TestOpenAICompatClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limit"}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key")

	_, err := client.Complete(context.Background(), "gpt-4o", "s", "u")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	var gotBody anthropicRequest
	var gotVersion string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotVersion = r.Header.Get("anthropic-version")
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "claude says hi"}},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.SetBaseURL(server.URL)

	text, err := client.Complete(context.Background(), "claude-3-5-sonnet", "system says", "user says")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "claude says hi" {
		t.Errorf("expected response text, got %q", text)
	}
	if gotVersion == "" {
		t.Error("expected anthropic-version header")
	}
	if gotBody.System != "system says" {
		t.Errorf("system prompt must ride the top-level field, got %q", gotBody.System)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("expected single user message, got %+v", gotBody.Messages)
	}
}
