package history

import (
	"context"
	"encoding/json"

	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/storage"
	"github.com/tidwall/gjson"
)

// Key is the storage slot holding the run log.
const Key = "marketerz_prompt_history"

// Store is an append/replace-only log of generation runs, most recent first.
// There is no per-item deletion or reordering.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// GetAll returns every run, most recent first. Missing or malformed data yields an empty list.
func (s *Store) GetAll() []prompts.HistoryItem {
	items, err := s.load()
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read history from storage")
		return []prompts.HistoryItem{}
	}
	return items
}

// load separates a storage read error from missing or malformed data. Only the former is
// returned as an error: writing over a log that could not be read would erase it.
func (s *Store) load() ([]prompts.HistoryItem, error) {
	raw, ok, err := s.kv.Get(context.Background(), Key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []prompts.HistoryItem{}, nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsArray() {
		utils.Log.Error("Failed to parse history from storage: not a JSON list")
		return []prompts.HistoryItem{}, nil
	}

	var items []prompts.HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		utils.Log.WithError(err).Error("Failed to decode history from storage")
		return []prompts.HistoryItem{}, nil
	}
	if items == nil {
		items = []prompts.HistoryItem{}
	}
	return items, nil
}

// Find returns the run with the given id.
func (s *Store) Find(id string) (prompts.HistoryItem, bool) {
	for _, item := range s.GetAll() {
		if item.ID == id {
			return item, true
		}
	}
	return prompts.HistoryItem{}, false
}

// Add prepends item and persists the whole log. When the log cannot be read or the write
// fails, item is dropped and the stored log is left as it was.
func (s *Store) Add(item prompts.HistoryItem) []prompts.HistoryItem {
	current, err := s.load()
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read history from storage, dropping new run")
		return []prompts.HistoryItem{}
	}

	item.Prompts = prompts.ClonePrompts(item.Prompts)
	updated := make([]prompts.HistoryItem, 0, len(current)+1)
	updated = append(updated, item)
	updated = append(updated, current...)

	if err := s.persist(updated); err != nil {
		utils.Log.WithError(err).Error("Failed to save history to storage")
		return current
	}
	return updated
}

// UpdateLatestPrompts replaces the prompts of the most recent run. It is a no-op on an empty log.
func (s *Store) UpdateLatestPrompts(newPrompts []prompts.GeneratedPrompt) []prompts.HistoryItem {
	current, err := s.load()
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read history from storage, skipping update")
		return []prompts.HistoryItem{}
	}
	if len(current) == 0 {
		return current
	}
	current[0].Prompts = prompts.ClonePrompts(newPrompts)
	if err := s.persist(current); err != nil {
		utils.Log.WithError(err).Error("Failed to update history in storage")
	}
	return current
}

// UpdatePrompts replaces the prompts of the run with the given id. When no run matches,
// nothing is written and the second return value is false.
func (s *Store) UpdatePrompts(id string, newPrompts []prompts.GeneratedPrompt) ([]prompts.HistoryItem, bool) {
	current, err := s.load()
	if err != nil {
		utils.Log.WithError(err).Error("Failed to read history from storage, skipping update")
		return []prompts.HistoryItem{}, false
	}
	if id == "" {
		return current, false
	}
	for i := range current {
		if current[i].ID != id {
			continue
		}
		current[i].Prompts = prompts.ClonePrompts(newPrompts)
		if err := s.persist(current); err != nil {
			utils.Log.WithError(err).Error("Failed to update history in storage")
		}
		return current, true
	}
	utils.Log.Debugf("No history item with id %s, skipping update", id)
	return current, false
}

// Clear removes every run on a best-effort basis.
func (s *Store) Clear() {
	if err := s.kv.Delete(context.Background(), Key); err != nil {
		utils.Log.WithError(err).Error("Failed to clear history from storage")
	}
}

func (s *Store) persist(items []prompts.HistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(context.Background(), Key, string(data))
}
