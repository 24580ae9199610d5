package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marketerz/marketerz/internal/autosave"
	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/marketerz/marketerz/pkg/history"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/session"
	"github.com/marketerz/marketerz/pkg/settings"
	"github.com/marketerz/marketerz/pkg/share"
)

// ClearSessionQuestion is asked before the current session is discarded.
const ClearSessionQuestion = "Are you sure you want to clear your current session? This will remove your unsaved idea and generated prompts."

const (
	DefaultSaveDelay     = time.Second
	DefaultStatusDisplay = 2 * time.Second
)

var (
	// ErrBusy is returned while a bulk generation or a regeneration is in flight.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrEmptyCategories is returned for settings changes that would deselect every category.
	ErrEmptyCategories = errors.New("at least one prompt category must stay selected")
	// ErrNotStarted is returned by actions issued before Start.
	ErrNotStarted = errors.New("controller has not been started")
	// ErrStale is returned when the session was replaced or cleared while a result was in flight.
	// The result was not applied.
	ErrStale = errors.New("the session changed while generating, result discarded")
)

// Generator is the subset of the generation client the controller drives.
type Generator interface {
	GenerateBulk(ctx context.Context, idea string, settings prompts.Settings) ([]prompts.GeneratedPrompt, error)
	GenerateSingle(ctx context.Context, idea string, category prompts.Category) (prompts.GeneratedPrompt, error)
	GenerateImage(ctx context.Context, promptText string) (generation.Image, error)
}

// Confirmer answers a yes/no question put to the user.
type Confirmer func(question string) bool

// Config wires the controller to its collaborators.
type Config struct {
	Generator Generator
	Settings  *settings.Store
	Session   *session.Store
	History   *history.Store

	// SaveDelay is the autosave quiet period.
	SaveDelay time.Duration
	// StatusDisplay is how long the "saved" indicator stays up.
	StatusDisplay time.Duration
	ShareBaseURL  string
	// OnSaveStatus is called on every save indicator change. May be nil.
	OnSaveStatus func(autosave.Status)

	Now   func() time.Time
	NewID func() string
}

// State is a snapshot of everything a view renders.
type State struct {
	Idea            string
	Prompts         []prompts.GeneratedPrompt
	Error           string
	History         []prompts.HistoryItem
	Settings        prompts.Settings
	ActiveHistoryID string
	Images          map[prompts.Category]generation.Image

	Generating   bool
	Regenerating prompts.Category
	ShowHistory  bool
	ShowSettings bool
	SaveStatus   autosave.Status

	// FromShareLink is set when startup adopted a shared prompt.
	FromShareLink bool
}

// Controller orchestrates user actions over the stores and the generation client.
type Controller struct {
	cfg Config

	saver     *autosave.Debouncer
	indicator *autosave.Indicator

	// saveMu serializes session writes with ClearSession so a save in flight cannot land after a clear.
	saveMu sync.Mutex

	mu              sync.Mutex
	started         bool
	closed          bool
	idea            string
	prompts         []prompts.GeneratedPrompt
	errMsg          string
	history         []prompts.HistoryItem
	settings        prompts.Settings
	activeHistoryID string
	images          map[prompts.Category]generation.Image
	imagesLoading   map[prompts.Category]bool
	generating      bool
	regenerating    prompts.Category
	showHistory     bool
	showSettings    bool
	fromShare       bool
	dirty           bool

	// epoch is bumped whenever the session is replaced so late results can be discarded.
	epoch uint64
}

// New builds a controller. Start must be called before any action.
func New(cfg Config) *Controller {
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = DefaultSaveDelay
	}
	if cfg.StatusDisplay <= 0 {
		cfg.StatusDisplay = DefaultStatusDisplay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	c := &Controller{
		cfg:           cfg,
		settings:      prompts.DefaultSettings(),
		history:       []prompts.HistoryItem{},
		images:        make(map[prompts.Category]generation.Image),
		imagesLoading: make(map[prompts.Category]bool),
	}
	c.indicator = autosave.NewIndicator(cfg.StatusDisplay, cfg.OnSaveStatus)
	c.saver = autosave.NewDebouncer(cfg.SaveDelay, c.saveSession)
	return c
}

// Start performs the startup sequence for address, which may carry a share fragment, and
// enables autosave. It returns address with any fragment removed.
//
// A share fragment that decodes wins over the persisted session. History and settings are
// loaded either way.
func (c *Controller) Start(address string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return share.StripFragment(address)
	}

	data, cleaned, hasShare, err := share.FromAddress(address)
	if hasShare && err != nil {
		utils.Log.WithError(err).Warn("Failed to parse shared link data, ignoring it")
	}

	c.history = c.cfg.History.GetAll()
	c.settings = c.cfg.Settings.Load()

	if hasShare && err == nil {
		c.idea = data.Idea
		c.prompts = []prompts.GeneratedPrompt{data.Prompt}
		c.fromShare = true
		c.epoch++
		c.started = true
		utils.Log.Debugf("Adopted shared prompt for %s", data.Prompt.Category)
		c.changedLocked()
		return cleaned
	}

	if saved, ok := c.cfg.Session.Load(); ok {
		c.idea = saved.Idea
		c.prompts = saved.Prompts
		c.activeHistoryID = c.matchHistoryLocked(saved.Idea, saved.Prompts)
	}
	c.started = true
	return cleaned
}

// matchHistoryLocked finds the run the restored draft came from, if it is unchanged.
func (c *Controller) matchHistoryLocked(idea string, ps []prompts.GeneratedPrompt) string {
	if len(ps) == 0 {
		return ""
	}
	for _, item := range c.history {
		if item.Idea == idea && reflect.DeepEqual(item.Prompts, ps) {
			return item.ID
		}
	}
	return ""
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	images := make(map[prompts.Category]generation.Image, len(c.images))
	for k, v := range c.images {
		images[k] = v
	}
	hist := make([]prompts.HistoryItem, len(c.history))
	copy(hist, c.history)

	return State{
		Idea:            c.idea,
		Prompts:         prompts.ClonePrompts(c.prompts),
		Error:           c.errMsg,
		History:         hist,
		Settings:        cloneSettings(c.settings),
		ActiveHistoryID: c.activeHistoryID,
		Images:          images,
		Generating:      c.generating,
		Regenerating:    c.regenerating,
		ShowHistory:     c.showHistory,
		ShowSettings:    c.showSettings,
		SaveStatus:      c.indicator.Status(),
		FromShareLink:   c.fromShare,
	}
}

// SetIdea replaces the idea text.
func (c *Controller) SetIdea(idea string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == idea {
		return
	}
	c.idea = idea
	c.changedLocked()
}

// SelectExample adopts an example idea, dropping current prompts and error.
func (c *Controller) SelectExample(ex prompts.ExampleIdea) {
	c.replaceSession(ex.Description, nil, "")
}

// SelectTemplate adopts a template as the idea, dropping current prompts and error.
func (c *Controller) SelectTemplate(t prompts.Template) {
	c.replaceSession(t.Template, nil, "")
}

// SelectHistoryItem restores a past run and makes it the active history record.
func (c *Controller) SelectHistoryItem(id string) (prompts.HistoryItem, bool) {
	c.mu.Lock()
	var item prompts.HistoryItem
	found := false
	for _, it := range c.history {
		if it.ID == id {
			item, found = it, true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return prompts.HistoryItem{}, false
	}
	c.replaceSession(item.Idea, item.Prompts, item.ID)
	return item, true
}

func (c *Controller) replaceSession(idea string, ps []prompts.GeneratedPrompt, historyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.idea = idea
	c.prompts = prompts.ClonePrompts(ps)
	c.errMsg = ""
	c.activeHistoryID = historyID
	c.fromShare = false
	c.images = make(map[prompts.Category]generation.Image)
	c.changedLocked()
}

// Generate runs a bulk generation for the current idea and settings. On success the prompts
// replace the current list and a new history run is recorded.
func (c *Controller) Generate(ctx context.Context) ([]prompts.GeneratedPrompt, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil, ErrNotStarted
	}
	if c.generating || c.regenerating != "" {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	idea := c.idea
	cfg := cloneSettings(c.settings)
	if err := generation.ValidateBulk(idea, cfg); err != nil {
		c.errMsg = err.Error()
		c.mu.Unlock()
		return nil, err
	}

	c.generating = true
	c.errMsg = ""
	c.epoch++
	epoch := c.epoch
	if len(c.prompts) > 0 {
		c.prompts = []prompts.GeneratedPrompt{}
		c.changedLocked()
	}
	c.images = make(map[prompts.Category]generation.Image)
	c.mu.Unlock()

	result, err := c.cfg.Generator.GenerateBulk(ctx, idea, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false

	if epoch != c.epoch {
		utils.Log.Debug("Discarding stale bulk generation result")
		if err != nil {
			return nil, err
		}
		return nil, ErrStale
	}

	if err != nil {
		utils.Log.WithError(err).Error("Bulk generation failed")
		c.prompts = []prompts.GeneratedPrompt{}
		c.errMsg = "Failed to generate prompts: " + err.Error()
		return nil, err
	}

	item := prompts.HistoryItem{
		ID:        c.cfg.NewID(),
		Idea:      idea,
		Prompts:   prompts.ClonePrompts(result),
		Timestamp: c.cfg.Now().UTC(),
	}
	c.history = c.cfg.History.Add(item)
	if len(c.history) > 0 && c.history[0].ID == item.ID {
		c.activeHistoryID = item.ID
	} else {
		c.activeHistoryID = ""
	}

	c.prompts = prompts.ClonePrompts(result)
	c.errMsg = ""
	c.fromShare = false
	c.changedLocked()
	return prompts.ClonePrompts(result), nil
}

// Regenerate replaces the prompt of one category. On failure the current prompts are kept.
func (c *Controller) Regenerate(ctx context.Context, category prompts.Category) (prompts.GeneratedPrompt, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return prompts.GeneratedPrompt{}, ErrNotStarted
	}
	if c.generating || c.regenerating != "" {
		c.mu.Unlock()
		return prompts.GeneratedPrompt{}, ErrBusy
	}
	idea := c.idea
	if err := generation.ValidateSingle(idea, category); err != nil {
		c.errMsg = err.Error()
		c.mu.Unlock()
		return prompts.GeneratedPrompt{}, err
	}
	if _, ok := prompts.FindByCategory(c.prompts, category); !ok {
		c.mu.Unlock()
		return prompts.GeneratedPrompt{}, noPrompt(category)
	}

	c.regenerating = category
	c.errMsg = ""
	epoch := c.epoch
	c.mu.Unlock()

	p, err := c.cfg.Generator.GenerateSingle(ctx, idea, category)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.regenerating = ""

	if epoch != c.epoch {
		utils.Log.Debugf("Discarding stale regeneration result for %s", category)
		if err != nil {
			return prompts.GeneratedPrompt{}, err
		}
		return prompts.GeneratedPrompt{}, ErrStale
	}

	if err != nil {
		utils.Log.WithError(err).Errorf("Regeneration of %s failed", category)
		c.errMsg = err.Error()
		return prompts.GeneratedPrompt{}, err
	}

	updated, replaced := prompts.ReplaceByCategory(c.prompts, p)
	if !replaced {
		utils.Log.Debugf("Category %s is no longer in the prompt list, dropping regeneration", category)
		return p, nil
	}
	c.prompts = updated
	delete(c.images, category)

	if c.activeHistoryID != "" {
		hist, ok := c.cfg.History.UpdatePrompts(c.activeHistoryID, updated)
		c.history = hist
		if !ok {
			c.activeHistoryID = ""
		}
	}
	c.changedLocked()
	return p, nil
}

// GenerateImage renders the prompt of one category and keeps the image alongside it.
// Image failures are returned but never replace the session error.
func (c *Controller) GenerateImage(ctx context.Context, category prompts.Category) (generation.Image, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return generation.Image{}, ErrNotStarted
	}
	p, ok := prompts.FindByCategory(c.prompts, category)
	if !ok {
		c.mu.Unlock()
		return generation.Image{}, noPrompt(category)
	}
	if c.imagesLoading[category] {
		c.mu.Unlock()
		return generation.Image{}, ErrBusy
	}
	c.imagesLoading[category] = true
	epoch := c.epoch
	c.mu.Unlock()

	img, err := c.cfg.Generator.GenerateImage(ctx, p.Prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.imagesLoading, category)
	if err != nil {
		utils.Log.WithError(err).Errorf("Image generation for %s failed", category)
		return generation.Image{}, err
	}

	if cur, ok := prompts.FindByCategory(c.prompts, category); ok && epoch == c.epoch && cur.Prompt == p.Prompt {
		c.images[category] = img
	}
	return img, nil
}

// ShareLink builds a link carrying the current idea and the prompt of category.
func (c *Controller) ShareLink(category prompts.Category) (string, error) {
	c.mu.Lock()
	idea := c.idea
	p, ok := prompts.FindByCategory(c.prompts, category)
	c.mu.Unlock()

	if !ok {
		return "", noPrompt(category)
	}
	return share.Link(c.cfg.ShareBaseURL, prompts.SharedPromptData{Idea: idea, Prompt: p})
}

// ToggleHistory flips the history panel visibility.
func (c *Controller) ToggleHistory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showHistory = !c.showHistory
	return c.showHistory
}

// ToggleSettings flips the settings panel visibility.
func (c *Controller) ToggleSettings() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSettings = !c.showSettings
	return c.showSettings
}

// UpdateSettings applies and persists s. Changes that would leave no category selected are
// refused.
func (c *Controller) UpdateSettings(s prompts.Settings) error {
	s.SelectedCategories = prompts.UniqueCategories(s.SelectedCategories)
	if len(s.SelectedCategories) == 0 {
		return ErrEmptyCategories
	}
	if !prompts.ValidTemperature(s.Temperature) {
		return fmt.Errorf("temperature %.2f is outside the accepted range %.1f-%.1f", s.Temperature, prompts.MinTemperature, prompts.MaxTemperature)
	}

	c.mu.Lock()
	c.settings = cloneSettings(s)
	c.mu.Unlock()

	c.cfg.Settings.Save(s)
	return nil
}

// SetTemperature changes only the temperature.
func (c *Controller) SetTemperature(t float64) error {
	c.mu.Lock()
	s := cloneSettings(c.settings)
	c.mu.Unlock()

	s.Temperature = t
	return c.UpdateSettings(s)
}

// ToggleCategory selects or deselects one category.
func (c *Controller) ToggleCategory(category prompts.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown prompt category %q", category)
	}

	c.mu.Lock()
	s := cloneSettings(c.settings)
	c.mu.Unlock()

	if prompts.ContainsCategory(s.SelectedCategories, category) {
		kept := s.SelectedCategories[:0]
		for _, x := range s.SelectedCategories {
			if x != category {
				kept = append(kept, x)
			}
		}
		s.SelectedCategories = kept
	} else {
		// keep canonical order
		var ordered []prompts.Category
		for _, x := range prompts.AllCategories() {
			if x == category || prompts.ContainsCategory(s.SelectedCategories, x) {
				ordered = append(ordered, x)
			}
		}
		s.SelectedCategories = ordered
	}
	return c.UpdateSettings(s)
}

// ClearHistory removes every recorded run.
func (c *Controller) ClearHistory() {
	c.cfg.History.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = []prompts.HistoryItem{}
	c.activeHistoryID = ""
}

// ClearSession discards the idea, prompts and persisted draft once confirm agrees.
func (c *Controller) ClearSession(confirm Confirmer) bool {
	if confirm == nil || !confirm(ClearSessionQuestion) {
		return false
	}

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	c.saver.Cancel()
	c.dirty = false
	c.epoch++
	c.idea = ""
	c.prompts = []prompts.GeneratedPrompt{}
	c.errMsg = ""
	c.activeHistoryID = ""
	c.fromShare = false
	c.images = make(map[prompts.Category]generation.Image)
	c.mu.Unlock()

	c.cfg.Session.Clear()
	c.indicator.Reset()
	return true
}

// Flush writes a pending autosave immediately.
func (c *Controller) Flush() {
	c.saver.Flush()
}

// Close flushes the pending autosave and stops every timer. Nothing is written afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.saver.Flush()
	c.saver.Stop()
	c.indicator.Stop()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// changedLocked schedules an autosave after an idea or prompt change.
func (c *Controller) changedLocked() {
	if !c.started || c.closed {
		return
	}
	c.dirty = true
	if c.saver.Trigger() {
		c.indicator.Saving()
	}
}

func (c *Controller) saveSession() {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	data := prompts.SessionData{Idea: c.idea, Prompts: prompts.ClonePrompts(c.prompts)}
	c.mu.Unlock()

	c.cfg.Session.Save(data)
	c.indicator.Saved()
	utils.Log.Debugf("Session autosaved (%d prompts)", len(data.Prompts))
}

func noPrompt(category prompts.Category) error {
	return fmt.Errorf("there is no %s prompt in the current session", category)
}

func cloneSettings(s prompts.Settings) prompts.Settings {
	out := s
	out.SelectedCategories = append([]prompts.Category(nil), s.SelectedCategories...)
	return out
}
