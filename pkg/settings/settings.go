package settings

import (
	"context"
	"encoding/json"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/storage"
	"github.com/tidwall/gjson"
)

// Key is the storage slot holding the serialized settings.
const Key = "marketerz_prompt_settings"

// Store loads and saves generation settings. I/O failures are logged, never returned.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load returns the persisted settings merged over the defaults. Each field that is
// missing or fails validation falls back to its default on its own.
func (s *Store) Load() prompts.Settings {
	defaults := prompts.DefaultSettings()

	raw, ok, err := s.kv.Get(context.Background(), Key)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read settings from storage")
		return defaults
	}
	if !ok || raw == "" {
		return defaults
	}
	if !gjson.Valid(raw) {
		utils.Log.Error("Failed to parse settings from storage: invalid JSON")
		return defaults
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		utils.Log.Error("Failed to parse settings from storage: not an object")
		return defaults
	}

	out := defaults
	if t := root.Get("temperature"); t.Type == gjson.Number && prompts.ValidTemperature(t.Float()) {
		out.Temperature = t.Float()
	}

	if cats := root.Get("selectedCategories"); cats.IsArray() {
		var parsed []prompts.Category
		for _, c := range cats.Array() {
			if c.Type != gjson.String {
				continue
			}
			parsed = append(parsed, prompts.Category(c.Str))
		}
		// An empty (or fully invalid) list is treated like a missing one.
		if parsed = prompts.UniqueCategories(parsed); len(parsed) > 0 {
			out.SelectedCategories = parsed
		}
	}
	return out
}

// Save persists settings on a best-effort basis.
func (s *Store) Save(settings prompts.Settings) {
	data, err := json.Marshal(settings)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to encode settings")
		return
	}
	if err := s.kv.Set(context.Background(), Key, string(data)); err != nil {
		utils.Log.WithError(err).Error("Failed to save settings to storage")
	}
}
