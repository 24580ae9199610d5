package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/tidwall/gjson"
)

// Marker prefixes every share fragment.
const Marker = "#share="

// DecodeError reports a share fragment that cannot be turned back into a payload.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid share link: %s: %v", e.Reason, e.Err)
	}
	return "invalid share link: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode serializes data into a fragment ("#share=<base64 JSON>"). Standard base64 only uses
// characters that are legal inside a URL fragment.
func Encode(data prompts.SharedPromptData) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode share payload: %w", err)
	}
	return Marker + base64.StdEncoding.EncodeToString(payload), nil
}

// Decode is the inverse of Encode. The leading "#" is optional.
func Decode(fragment string) (prompts.SharedPromptData, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "no fragment"}
	}
	if !strings.HasPrefix(fragment, "#") {
		fragment = "#" + fragment
	}
	if !strings.HasPrefix(fragment, Marker) {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "missing share marker"}
	}

	payload, err := decodeBase64(strings.TrimPrefix(fragment, Marker))
	if err != nil {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "payload is not base64", Err: err}
	}
	if !gjson.ValidBytes(payload) {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "payload is not JSON"}
	}
	root := gjson.ParseBytes(payload)
	idea := root.Get("idea")
	if idea.Type != gjson.String || idea.Str == "" || !root.Get("prompt").IsObject() {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "payload lacks an idea and a prompt"}
	}

	var data prompts.SharedPromptData
	if err := json.Unmarshal(payload, &data); err != nil {
		return prompts.SharedPromptData{}, &DecodeError{Reason: "payload has an unexpected shape", Err: err}
	}
	return data, nil
}

// Link builds a shareable URL by replacing the fragment of base.
func Link(base string, data prompts.SharedPromptData) (string, error) {
	fragment, err := Encode(data)
	if err != nil {
		return "", err
	}
	return StripFragment(base) + fragment, nil
}

// FromAddress extracts the share payload from a full address. It always returns the address
// with its fragment removed, whether or not decoding succeeded. ok is false when the address
// carries no share fragment at all.
func FromAddress(address string) (data prompts.SharedPromptData, cleaned string, ok bool, err error) {
	cleaned = StripFragment(address)
	idx := strings.Index(address, "#")
	if idx < 0 {
		return prompts.SharedPromptData{}, cleaned, false, nil
	}
	fragment := address[idx:]
	if !strings.HasPrefix(fragment, Marker) {
		return prompts.SharedPromptData{}, cleaned, false, nil
	}
	data, err = Decode(fragment)
	return data, cleaned, true, err
}

// StripFragment removes everything from the first "#" on.
func StripFragment(address string) string {
	if idx := strings.Index(address, "#"); idx >= 0 {
		return address[:idx]
	}
	return address
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not, and tolerates a
// percent-encoded payload as produced by some chat clients.
func decodeBase64(s string) ([]byte, error) {
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	s = strings.TrimSpace(s)
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
