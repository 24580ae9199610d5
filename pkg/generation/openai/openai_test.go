package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/marketerz/marketerz/pkg/prompts"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := New(Config{APIKey: "sk-test", Endpoint: srv.URL + "/", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestGenerateTextUnwrapsList(t *testing.T) {
	var got chatRequest
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"prompts\":[{\"category\":\"Strategy\",\"prompt\":\"x\"}]}"}}]}`))
	})

	text, err := b.GenerateText(context.Background(), generation.TextRequest{
		SystemInstruction: "sys",
		Contents:          "Here is the user's idea: [[Eco app]]",
		Shape:             generation.ShapeList,
		Temperature:       0.7,
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != `[{"category":"Strategy","prompt":"x"}]` {
		t.Fatalf("unexpected text %q", text)
	}

	if got.Model != DefaultModel || got.Temperature != 0.7 || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 2 || !strings.HasPrefix(got.Messages[0].Content, "sys") || got.Messages[1].Content != "Here is the user's idea: [[Eco app]]" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, `{"prompts"`) {
		t.Fatalf("list requests must ask for the envelope: %s", got.Messages[0].Content)
	}
}

func TestGenerateTextObject(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":" {\"category\":\"Strategy\",\"prompt\":\"x\"} "}}]}`))
	})
	text, err := b.GenerateText(context.Background(), generation.TextRequest{Shape: generation.ShapeObject})
	if err != nil {
		t.Fatal(err)
	}
	if text != `{"category":"Strategy","prompt":"x"}` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateTextNoChoices(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	text, err := b.GenerateText(context.Background(), generation.TextRequest{})
	if err != nil || text != "" {
		t.Fatalf("expected empty text without error, got %q, %v", text, err)
	}
}

func TestGenerateTextHTTPError(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	})
	_, err := b.GenerateText(context.Background(), generation.TextRequest{})
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Fatalf("expected API error message, got %v", err)
	}

	b = newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = b.GenerateText(context.Background(), generation.TextRequest{})
	if err == nil || !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateImage(t *testing.T) {
	var got imageRequest
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"data":[{"b64_json":"anBlZ2RhdGE="}]}`))
	})

	images, err := b.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "a bike", Count: 1, AspectRatio: "1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 || string(images[0]) != "jpegdata" {
		t.Fatalf("unexpected images %q", images)
	}
	if got.Size != "1024x1024" || got.N != 1 || got.ResponseFormat != "b64_json" || got.Model != DefaultImageModel {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestWithClient(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"prompts\":[{\"category\":\"Strategy\",\"prompt\":\"a\"},{\"category\":\"Video Prompt\",\"prompt\":\"b\"}]}"}}]}`))
	})

	got, err := generation.New(b).GenerateBulk(context.Background(), "Eco app", prompts.Settings{
		Temperature:        0.5,
		SelectedCategories: []prompts.Category{prompts.CategoryStrategy, prompts.CategoryVideoPrompt},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Prompt != "b" {
		t.Fatalf("unexpected prompts %+v", got)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error without an API key")
	}
}
