package generation

import (
	"context"
	"encoding/base64"
)

// Shape is the JSON shape requested from the backend.
type Shape int

const (
	// ShapeObject asks for a single GeneratedPrompt object.
	ShapeObject Shape = iota
	// ShapeList asks for a list of GeneratedPrompt objects.
	ShapeList
)

// TextRequest is a structured-output request for prompt records.
type TextRequest struct {
	SystemInstruction string
	Contents          string
	Shape             Shape
	Temperature       float64
}

// ImageRequest asks for rendered images of a prompt.
type ImageRequest struct {
	Prompt      string
	Count       int
	AspectRatio string
	MIMEType    string
}

// Image is an encoded image payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the payload in standard base64.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the payload as a data: URL suitable for direct display.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// Backend is the remote generative model. GenerateText returns the raw JSON text of the
// answer; GenerateImage returns the encoded bytes of each produced image.
type Backend interface {
	Name() string
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) ([][]byte, error)
}

// Field describes one property of the GeneratedPrompt record for structured output.
type Field struct {
	Name        string
	Description string
}

// PromptFields lists the required properties of every generated record, in order.
var PromptFields = []Field{
	{Name: "category", Description: "The category of the prompt. Must be one of: Strategy, Creative Copy, Technical Spec, Social Hooks, Image Prompt, Video Prompt."},
	{Name: "purpose", Description: "A brief, one-sentence explanation of what this specific prompt is designed to achieve."},
	{Name: "tokensHint", Description: `A technical hint for the model about the desired token count for the *input* prompt itself, e.g., "Tokens: ~150".`},
	{Name: "expectedOutputSize", Description: `A hint about the expected size of the *output* from the target model, e.g., "Output: Medium (2-3 paragraphs)".`},
	{Name: "prompt", Description: "The full, meticulously crafted prompt text for the target model, formatted within a code block."},
}

// PromptFieldNames returns the names from PromptFields.
func PromptFieldNames() []string {
	names := make([]string, len(PromptFields))
	for i, f := range PromptFields {
		names[i] = f.Name
	}
	return names
}
