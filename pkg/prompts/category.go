package prompts

import (
	"fmt"
	"strings"
)

// Category is one of the fixed prompt output categories.
type Category string

const (
	CategoryStrategy      Category = "Strategy"
	CategoryCreativeCopy  Category = "Creative Copy"
	CategoryTechnicalSpec Category = "Technical Spec"
	CategorySocialHooks   Category = "Social Hooks"
	CategoryImagePrompt   Category = "Image Prompt"
	CategoryVideoPrompt   Category = "Video Prompt"
)

var allCategories = []Category{
	CategoryStrategy,
	CategoryCreativeCopy,
	CategoryTechnicalSpec,
	CategorySocialHooks,
	CategoryImagePrompt,
	CategoryVideoPrompt,
}

var categoryDescriptions = map[Category]string{
	CategoryStrategy:      "For generating a high-level marketing plan or strategic document.",
	CategoryCreativeCopy:  "For generating advertising copy, headlines, or brand messaging.",
	CategoryTechnicalSpec: "For outlining the technical requirements of a digital asset, like a landing page or app feature.",
	CategorySocialHooks:   "For creating short, engaging social media posts or video hooks.",
	CategoryImagePrompt:   "For generating a detailed prompt for an image generation model (e.g., Midjourney, DALL-E).",
	CategoryVideoPrompt:   "For generating a scene-by-scene prompt for a video generation model or a short video ad.",
}

// AllCategories returns every category in canonical order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	_, ok := categoryDescriptions[c]
	return ok
}

// Description is the one-line explanation handed to the model.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

// ParseCategory matches s against the enumerated set, ignoring case, surrounding spaces and
// the "-"/"_" separators accepted on the command line ("creative-copy").
func ParseCategory(s string) (Category, error) {
	key := normalizeCategoryKey(s)
	for _, c := range allCategories {
		if normalizeCategoryKey(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown prompt category %q", s)
}

// ParseCategories parses a comma separated list, dropping duplicates.
func ParseCategories(s string) ([]Category, error) {
	var out []Category
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return UniqueCategories(out), nil
}

// UniqueCategories drops duplicates and invalid values, keeping the first occurrence order.
func UniqueCategories(cs []Category) []Category {
	out := make([]Category, 0, len(cs))
	seen := make(map[Category]struct{}, len(cs))
	for _, c := range cs {
		if !c.Valid() {
			continue
		}
		if _, exists := seen[c]; exists {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// JoinCategories renders cs as "A, B, C".
func JoinCategories(cs []Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// ContainsCategory reports whether c is in cs.
func ContainsCategory(cs []Category, c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

func normalizeCategoryKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
