package generation

import (
	"fmt"

	"github.com/marketerz/marketerz/pkg/prompts"
)

// Op names the client operation an error belongs to.
type Op string

const (
	OpBulk   Op = "bulk"
	OpSingle Op = "single"
	OpImage  Op = "image"
)

// ValidationError is raised before any backend call when the input is unusable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// CommunicationError means the backend could not be reached, failed, or answered with nothing.
type CommunicationError struct {
	Op       Op
	Category prompts.Category
	Reason   string
	Err      error
}

func (e *CommunicationError) Error() string {
	var msg string
	switch e.Op {
	case OpImage:
		msg = "failed to communicate with the image generation model"
	case OpSingle:
		msg = fmt.Sprintf("failed to regenerate prompt for %s: could not reach the generation service", e.Category)
	default:
		msg = "could not reach the generation service, please check your connection or API key"
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// MalformedResponseError means the backend answered but the payload was unusable.
type MalformedResponseError struct {
	Op       Op
	Category prompts.Category
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	msg := "the generation service returned a malformed response: " + e.Reason
	if e.Op == OpSingle {
		return fmt.Sprintf("failed to regenerate prompt for %s: %s", e.Category, msg)
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

var (
	errEmptyIdea        = &ValidationError{Reason: "Please enter an idea before generating prompts."}
	errNoCategories     = &ValidationError{Reason: "Please select at least one prompt category in the settings panel."}
	errEmptyImagePrompt = &ValidationError{Reason: "Please provide a prompt to generate an image from."}
)

func invalidCategory(c prompts.Category) error {
	return &ValidationError{Reason: fmt.Sprintf("%q is not a valid prompt category.", c)}
}

func invalidTemperature(t float64) error {
	return &ValidationError{Reason: fmt.Sprintf("Temperature %.2f is outside the accepted range 0.0-1.0.", t)}
}
