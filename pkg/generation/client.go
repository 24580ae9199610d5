package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/tidwall/gjson"
)

const (
	// RegenerateTemperature is used for single-category regeneration regardless of settings.
	RegenerateTemperature = 0.8

	imageAspectRatio = "1:1"
	imageMIMEType    = "image/jpeg"
)

// Client is the Prompt Generation Client. It never touches local state.
type Client struct {
	backend Backend
}

// New returns a client that talks to b.
func New(b Backend) *Client {
	return &Client{backend: b}
}

// Backend returns the backend the client was built with.
func (c *Client) Backend() Backend { return c.backend }

// ValidateBulk checks the preconditions of GenerateBulk without contacting anything.
func ValidateBulk(idea string, settings prompts.Settings) error {
	if strings.TrimSpace(idea) == "" {
		return errEmptyIdea
	}
	if len(settings.SelectedCategories) == 0 {
		return errNoCategories
	}
	for _, cat := range settings.SelectedCategories {
		if !cat.Valid() {
			return invalidCategory(cat)
		}
	}
	if !prompts.ValidTemperature(settings.Temperature) {
		return invalidTemperature(settings.Temperature)
	}
	return nil
}

// ValidateSingle checks the preconditions of GenerateSingle.
func ValidateSingle(idea string, category prompts.Category) error {
	if strings.TrimSpace(idea) == "" {
		return errEmptyIdea
	}
	if !category.Valid() {
		return invalidCategory(category)
	}
	return nil
}

// GenerateBulk asks for one prompt per selected category. A single selected category is requested
// as an object and returned as a one-element list.
func (c *Client) GenerateBulk(ctx context.Context, idea string, settings prompts.Settings) ([]prompts.GeneratedPrompt, error) {
	if err := ValidateBulk(idea, settings); err != nil {
		return nil, err
	}
	categories := prompts.UniqueCategories(settings.SelectedCategories)

	shape := ShapeList
	if len(categories) == 1 {
		shape = ShapeObject
	}

	utils.Log.Debugf("[generation] bulk request via %s: %d categories, temperature %.2f", c.backend.Name(), len(categories), settings.Temperature)
	raw, err := c.backend.GenerateText(ctx, TextRequest{
		SystemInstruction: bulkInstruction(categories),
		Contents:          ideaContents(strings.TrimSpace(idea)),
		Shape:             shape,
		Temperature:       settings.Temperature,
	})
	if err != nil {
		utils.Log.Errorf("[generation] bulk request failed: %v", err)
		return nil, &CommunicationError{Op: OpBulk, Err: err}
	}

	out, err := parsePromptList(raw, len(categories) == 1)
	if err != nil {
		return nil, classify(OpBulk, "", err)
	}
	return out, nil
}

// GenerateSingle asks for a fresh prompt of one category at RegenerateTemperature.
func (c *Client) GenerateSingle(ctx context.Context, idea string, category prompts.Category) (prompts.GeneratedPrompt, error) {
	if err := ValidateSingle(idea, category); err != nil {
		return prompts.GeneratedPrompt{}, err
	}

	utils.Log.Debugf("[generation] regenerating %s via %s", category, c.backend.Name())
	raw, err := c.backend.GenerateText(ctx, TextRequest{
		SystemInstruction: singleInstruction(category),
		Contents:          ideaContents(strings.TrimSpace(idea)),
		Shape:             ShapeObject,
		Temperature:       RegenerateTemperature,
	})
	if err != nil {
		utils.Log.Errorf("[generation] regeneration of %s failed: %v", category, err)
		return prompts.GeneratedPrompt{}, &CommunicationError{Op: OpSingle, Category: category, Err: err}
	}

	p, err := parseSinglePrompt(raw, category)
	if err != nil {
		return prompts.GeneratedPrompt{}, classify(OpSingle, category, err)
	}
	return p, nil
}

// GenerateImage renders one square image from promptText.
func (c *Client) GenerateImage(ctx context.Context, promptText string) (Image, error) {
	if strings.TrimSpace(promptText) == "" {
		return Image{}, errEmptyImagePrompt
	}

	utils.Log.Debugf("[generation] image request via %s: %s", c.backend.Name(), utils.Truncate(promptText, 60))
	images, err := c.backend.GenerateImage(ctx, ImageRequest{
		Prompt:      promptText,
		Count:       1,
		AspectRatio: imageAspectRatio,
		MIMEType:    imageMIMEType,
	})
	if err != nil {
		utils.Log.Errorf("[generation] image request failed: %v", err)
		return Image{}, &CommunicationError{Op: OpImage, Err: err}
	}
	if len(images) == 0 || len(images[0]) == 0 {
		utils.Log.Errorf("[generation] image request returned no image data")
		return Image{}, &CommunicationError{Op: OpImage, Reason: "no image was returned"}
	}
	return Image{MIMEType: imageMIMEType, Data: images[0]}, nil
}

// errEmptyBody and shapeError separate the two response failure classes before they get an Op.
var errEmptyBody = errors.New("empty response body")

type shapeError struct {
	reason string
	err    error
}

func (e *shapeError) Error() string { return e.reason }

func classify(op Op, category prompts.Category, err error) error {
	utils.Log.Errorf("[generation] %s response rejected: %v", op, err)
	var se *shapeError
	if errors.As(err, &se) {
		return &MalformedResponseError{Op: op, Category: category, Reason: se.reason, Err: se.err}
	}
	return &CommunicationError{Op: op, Category: category, Reason: "empty response", Err: err}
}

func malformed(format string, args ...interface{}) error {
	return &shapeError{reason: fmt.Sprintf(format, args...)}
}

// cleanBody strips surrounding whitespace and a markdown code fence some models wrap JSON in.
func cleanBody(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parsePromptList(raw string, allowObject bool) ([]prompts.GeneratedPrompt, error) {
	body := cleanBody(raw)
	if body == "" {
		return nil, errEmptyBody
	}
	if !gjson.Valid(body) {
		return nil, malformed("response is not valid JSON")
	}

	root := gjson.Parse(body)
	var elems []gjson.Result
	switch {
	case root.IsArray():
		elems = root.Array()
	case root.IsObject() && allowObject:
		elems = []gjson.Result{root}
	case root.IsObject():
		return nil, malformed("expected a list of prompts, got a single object")
	default:
		return nil, malformed("expected a list of prompts")
	}
	if len(elems) == 0 {
		return nil, malformed("no prompts were returned")
	}

	out := make([]prompts.GeneratedPrompt, 0, len(elems))
	for i, el := range elems {
		p, err := decodePrompt(el, "")
		if err != nil {
			return nil, malformed("prompt %d: %v", i, err)
		}
		out = append(out, p)
	}
	return prompts.DedupeByCategory(out), nil
}

func parseSinglePrompt(raw string, category prompts.Category) (prompts.GeneratedPrompt, error) {
	body := cleanBody(raw)
	if body == "" {
		return prompts.GeneratedPrompt{}, errEmptyBody
	}
	if !gjson.Valid(body) {
		return prompts.GeneratedPrompt{}, malformed("response is not valid JSON")
	}

	root := gjson.Parse(body)
	// A one-element list is tolerated for single-object requests.
	if root.IsArray() {
		elems := root.Array()
		if len(elems) != 1 {
			return prompts.GeneratedPrompt{}, malformed("expected a single prompt, got %d", len(elems))
		}
		root = elems[0]
	}
	p, err := decodePrompt(root, category)
	if err != nil {
		return prompts.GeneratedPrompt{}, malformed("%v", err)
	}
	return p, nil
}

// decodePrompt validates the field types of one record before decoding it. A non-empty force
// replaces whatever category the record carries.
func decodePrompt(el gjson.Result, force prompts.Category) (prompts.GeneratedPrompt, error) {
	if !el.IsObject() {
		return prompts.GeneratedPrompt{}, errors.New("not an object")
	}
	for _, name := range PromptFieldNames() {
		f := el.Get(name)
		if f.Exists() && f.Type != gjson.String && f.Type != gjson.Null {
			return prompts.GeneratedPrompt{}, fmt.Errorf("field %q is not text", name)
		}
	}
	if strings.TrimSpace(el.Get("prompt").String()) == "" {
		return prompts.GeneratedPrompt{}, errors.New("missing prompt text")
	}

	var p prompts.GeneratedPrompt
	if err := json.Unmarshal([]byte(el.Raw), &p); err != nil {
		return prompts.GeneratedPrompt{}, err
	}
	if force != "" {
		p.Category = force
		return p, nil
	}
	cat, err := prompts.ParseCategory(string(p.Category))
	if err != nil {
		return prompts.GeneratedPrompt{}, err
	}
	p.Category = cat
	return p, nil
}
