package session

import (
	"context"
	"encoding/json"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/storage"
	"github.com/tidwall/gjson"
)

// Key is the storage slot holding the current draft.
const Key = "marketerz_prompt_session"

// Store persists the single "current work" slot.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load returns the persisted draft. Anything that does not carry a text idea and a list of
// prompts is discarded rather than repaired.
func (s *Store) Load() (prompts.SessionData, bool) {
	raw, ok, err := s.kv.Get(context.Background(), Key)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read session from storage")
		return prompts.SessionData{}, false
	}
	if !ok || raw == "" {
		return prompts.SessionData{}, false
	}
	if !gjson.Valid(raw) {
		utils.Log.Error("Failed to parse session from storage: invalid JSON")
		return prompts.SessionData{}, false
	}
	root := gjson.Parse(raw)
	if root.Get("idea").Type != gjson.String || !root.Get("prompts").IsArray() {
		utils.Log.Debug("Discarding stored session with unexpected shape")
		return prompts.SessionData{}, false
	}

	var data prompts.SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		utils.Log.WithError(err).Error("Failed to decode session from storage")
		return prompts.SessionData{}, false
	}
	if data.Prompts == nil {
		data.Prompts = []prompts.GeneratedPrompt{}
	}
	return data, true
}

// Save overwrites the slot on a best-effort basis.
func (s *Store) Save(data prompts.SessionData) {
	if data.Prompts == nil {
		data.Prompts = []prompts.GeneratedPrompt{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to encode session")
		return
	}
	if err := s.kv.Set(context.Background(), Key, string(encoded)); err != nil {
		utils.Log.WithError(err).Error("Failed to save session to storage")
	}
}

// Clear removes the slot on a best-effort basis.
func (s *Store) Clear() {
	if err := s.kv.Delete(context.Background(), Key); err != nil {
		utils.Log.WithError(err).Error("Failed to clear session from storage")
	}
}
