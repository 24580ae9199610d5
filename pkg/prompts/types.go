package prompts

import "time"

// GeneratedPrompt is a single AI-crafted prompt for one output category.
type GeneratedPrompt struct {
	Category           Category `json:"category"`
	Purpose            string   `json:"purpose"`
	TokensHint         string   `json:"tokensHint"`
	ExpectedOutputSize string   `json:"expectedOutputSize"`
	Prompt             string   `json:"prompt"`
}

// HistoryItem captures one completed bulk generation run.
type HistoryItem struct {
	ID        string            `json:"id"`
	Idea      string            `json:"idea"`
	Prompts   []GeneratedPrompt `json:"prompts"`
	Timestamp time.Time         `json:"timestamp"`
}

// SessionData is the single "current work" draft.
type SessionData struct {
	Idea    string            `json:"idea"`
	Prompts []GeneratedPrompt `json:"prompts"`
}

// Settings controls bulk generation.
type Settings struct {
	Temperature        float64    `json:"temperature"`
	SelectedCategories []Category `json:"selectedCategories"`
}

// SharedPromptData is the payload carried by a share link.
type SharedPromptData struct {
	Idea   string          `json:"idea"`
	Prompt GeneratedPrompt `json:"prompt"`
}

const (
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 1.0
)

// DefaultSettings returns a fresh copy of the default configuration.
func DefaultSettings() Settings {
	return Settings{
		Temperature:        DefaultTemperature,
		SelectedCategories: AllCategories(),
	}
}

// ValidTemperature reports whether t is inside the accepted range.
func ValidTemperature(t float64) bool {
	return t >= MinTemperature && t <= MaxTemperature
}

// ClonePrompts returns a copy of ps so callers never share backing arrays.
func ClonePrompts(ps []GeneratedPrompt) []GeneratedPrompt {
	if ps == nil {
		return nil
	}
	out := make([]GeneratedPrompt, len(ps))
	copy(out, ps)
	return out
}

// ReplaceByCategory returns a copy of ps where every entry matching p.Category is replaced by p.
// The second return value reports whether anything was replaced.
func ReplaceByCategory(ps []GeneratedPrompt, p GeneratedPrompt) ([]GeneratedPrompt, bool) {
	out := ClonePrompts(ps)
	replaced := false
	for i := range out {
		if out[i].Category == p.Category {
			out[i] = p
			replaced = true
		}
	}
	return out, replaced
}

// FindByCategory returns the first prompt with the given category.
func FindByCategory(ps []GeneratedPrompt, c Category) (GeneratedPrompt, bool) {
	for _, p := range ps {
		if p.Category == c {
			return p, true
		}
	}
	return GeneratedPrompt{}, false
}

// DedupeByCategory keeps the first entry of each category and preserves order.
func DedupeByCategory(ps []GeneratedPrompt) []GeneratedPrompt {
	if len(ps) == 0 {
		return ps
	}
	out := make([]GeneratedPrompt, 0, len(ps))
	seen := make(map[Category]struct{}, len(ps))
	for _, p := range ps {
		if _, exists := seen[p.Category]; exists {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p)
	}
	return out
}
