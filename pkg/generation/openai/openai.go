package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/tidwall/gjson"
)

const (
	DefaultModel      = "gpt-4.1-mini"
	DefaultImageModel = "dall-e-3"
	DefaultEndpoint   = "https://api.openai.com/v1"
	defaultTimeout    = 60 * time.Second
)

// Config controls the OpenAI-compatible backend.
type Config struct {
	APIKey     string
	Model      string
	ImageModel string
	// Endpoint is the API base URL; chat and image paths are appended to it.
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Backend speaks the chat-completions and image-generation HTTP APIs.
type Backend struct {
	apiKey     string
	model      string
	imageModel string
	endpoint   string
	client     httpClient
}

// New builds an OpenAI-compatible backend.
func New(cfg Config) (*Backend, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai backend requires an API key (set backend.api_key in config, API_KEY or OPENAI_API_KEY)")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	imageModel := strings.TrimSpace(cfg.ImageModel)
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Backend{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		endpoint:   endpoint,
		client:     client,
	}, nil
}

func (b *Backend) Name() string { return "openai/" + b.model }

// GenerateText asks for a JSON object. Lists come back wrapped as {"prompts": [...]} because
// json_object mode only produces objects; the envelope is removed before returning.
func (b *Backend) GenerateText(ctx context.Context, req generation.TextRequest) (string, error) {
	reqBody := chatRequest{
		Model: b.model,
		Messages: []message{
			{Role: "system", Content: req.SystemInstruction + "\n\n" + shapeInstruction(req.Shape)},
			{Role: "user", Content: req.Contents},
		},
		Temperature:    req.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var apiResp chatResponse
	if err := b.post(ctx, "/chat/completions", reqBody, &apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Choices) == 0 {
		return "", nil
	}

	content := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	utils.Log.Debugf("[openai] %s answered with %d bytes", b.model, len(content))
	if req.Shape == generation.ShapeList {
		return unwrapList(content), nil
	}
	return content, nil
}

// GenerateImage requests base64 encoded images.
func (b *Backend) GenerateImage(ctx context.Context, req generation.ImageRequest) ([][]byte, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}
	reqBody := imageRequest{
		Model:          b.imageModel,
		Prompt:         req.Prompt,
		N:              count,
		Size:           sizeFor(req.AspectRatio),
		ResponseFormat: "b64_json",
	}

	var apiResp imageResponse
	if err := b.post(ctx, "/images/generations", reqBody, &apiResp); err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		if d.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("unable to decode image payload: %w", err)
		}
		out = append(out, data)
	}
	return out, nil
}

func (b *Backend) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErrResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErrResp)
		if apiErrResp.Error.Message != "" {
			return fmt.Errorf("openai: %s", apiErrResp.Error.Message)
		}
		return fmt.Errorf("openai request failed with HTTP %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func shapeInstruction(shape generation.Shape) string {
	fields := strings.Join(generation.PromptFieldNames(), ", ")
	if shape == generation.ShapeList {
		return `Return ONLY a JSON object of the form {"prompts": [ ... ]} where every element is an object with the string fields: ` + fields + "."
	}
	return "Return ONLY a single JSON object with the string fields: " + fields + "."
}

// unwrapList returns the "prompts" array when present and content unchanged otherwise.
func unwrapList(content string) string {
	if !gjson.Valid(content) {
		return content
	}
	if list := gjson.Get(content, "prompts"); list.IsArray() {
		return list.Raw
	}
	return content
}

func sizeFor(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return "1792x1024"
	case "9:16":
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}
