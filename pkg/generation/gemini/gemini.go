package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/generation"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
	defaultTimeout    = 60 * time.Second
)

// Config controls the Gemini backend.
type Config struct {
	APIKey     string
	Model      string
	ImageModel string
	// Endpoint overrides the API base URL.
	Endpoint string
	Timeout  time.Duration
}

// Backend talks to the Gemini API through the genai SDK.
type Backend struct {
	client     *genai.Client
	model      string
	imageModel string
	timeout    time.Duration
}

// New builds a Gemini backend.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini backend requires an API key (set backend.api_key in config, API_KEY or GEMINI_API_KEY)")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	b := &Backend{
		client:     client,
		model:      firstNonEmpty(cfg.Model, DefaultModel),
		imageModel: firstNonEmpty(cfg.ImageModel, DefaultImageModel),
		timeout:    cfg.Timeout,
	}
	if b.timeout <= 0 {
		b.timeout = defaultTimeout
	}
	return b, nil
}

func (b *Backend) Name() string { return "gemini/" + b.model }

// GenerateText requests JSON output constrained by the GeneratedPrompt schema.
func (b *Backend) GenerateText(ctx context.Context, req generation.TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(req.Contents), ContentConfig(req))
	if err != nil {
		return "", err
	}
	text := resp.Text()
	utils.Log.Debugf("[gemini] %s answered with %d bytes", b.model, len(text))
	return text, nil
}

// GenerateImage renders req.Count images with the image model.
func (b *Backend) GenerateImage(ctx context.Context, req generation.ImageRequest) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	count := req.Count
	if count <= 0 {
		count = 1
	}
	resp, err := b.client.Models.GenerateImages(ctx, b.imageModel, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: req.MIMEType,
		AspectRatio:    req.AspectRatio,
	})
	if err != nil {
		return nil, err
	}

	var out [][]byte
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil {
			continue
		}
		out = append(out, img.Image.ImageBytes)
	}
	return out, nil
}

// ContentConfig translates a text request into the SDK's generation config.
func ContentConfig(req generation.TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   Schema(req.Shape),
		Temperature:      genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

// Schema returns the response schema for a GeneratedPrompt object or a list of them.
func Schema(shape generation.Shape) *genai.Schema {
	obj := &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       make(map[string]*genai.Schema, len(generation.PromptFields)),
		Required:         generation.PromptFieldNames(),
		PropertyOrdering: generation.PromptFieldNames(),
	}
	for _, f := range generation.PromptFields {
		obj.Properties[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
	if shape == generation.ShapeList {
		return &genai.Schema{Type: genai.TypeArray, Items: obj}
	}
	return obj
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
