package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marketerz/marketerz/internal/autosave"
	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/marketerz/marketerz/pkg/history"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/session"
	"github.com/marketerz/marketerz/pkg/settings"
	"github.com/marketerz/marketerz/pkg/share"
	"github.com/marketerz/marketerz/pkg/storage"
)

type fakeGenerator struct {
	mu        sync.Mutex
	bulk      []prompts.GeneratedPrompt
	bulkErr   error
	single    prompts.GeneratedPrompt
	singleErr error
	image     generation.Image
	imageErr  error

	// when set, calls signal entered and wait for release
	entered chan struct{}
	release chan struct{}

	bulkCalls   int
	singleCalls int
}

func (f *fakeGenerator) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeGenerator) GenerateBulk(_ context.Context, _ string, _ prompts.Settings) ([]prompts.GeneratedPrompt, error) {
	f.mu.Lock()
	f.bulkCalls++
	f.mu.Unlock()
	f.wait()
	return prompts.ClonePrompts(f.bulk), f.bulkErr
}

func (f *fakeGenerator) GenerateSingle(_ context.Context, _ string, c prompts.Category) (prompts.GeneratedPrompt, error) {
	f.mu.Lock()
	f.singleCalls++
	f.mu.Unlock()
	f.wait()
	p := f.single
	p.Category = c
	return p, f.singleErr
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _ string) (generation.Image, error) {
	return f.image, f.imageErr
}

type fixture struct {
	kv       *storage.Memory
	gen      *fakeGenerator
	settings *settings.Store
	session  *session.Store
	history  *history.Store
	onStatus func(autosave.Status)
}

func newFixture() *fixture {
	kv := storage.NewMemory()
	return &fixture{
		kv:       kv,
		gen:      &fakeGenerator{},
		settings: settings.New(kv),
		session:  session.New(kv),
		history:  history.New(kv),
	}
}

func (f *fixture) controller(t *testing.T) *Controller {
	t.Helper()
	ids := 0
	c := New(Config{
		Generator:     f.gen,
		Settings:      f.settings,
		Session:       f.session,
		History:       f.history,
		SaveDelay:     20 * time.Millisecond,
		StatusDisplay: 20 * time.Millisecond,
		ShareBaseURL:  "https://marketerz.app/",
		OnSaveStatus:  f.onStatus,
		Now:           func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var (
	strategy = prompts.GeneratedPrompt{Category: prompts.CategoryStrategy, Purpose: "p", TokensHint: "t", ExpectedOutputSize: "e", Prompt: "body"}
	image    = prompts.GeneratedPrompt{Category: prompts.CategoryImagePrompt, Purpose: "p2", TokensHint: "t2", ExpectedOutputSize: "e2", Prompt: "a photo"}
)

func TestFreshStart(t *testing.T) {
	f := newFixture()
	c := f.controller(t)
	if cleaned := c.Start("https://marketerz.app/"); cleaned != "https://marketerz.app/" {
		t.Fatalf("unexpected address %q", cleaned)
	}

	st := c.State()
	if !reflect.DeepEqual(st.Settings, prompts.DefaultSettings()) {
		t.Fatalf("expected default settings, got %+v", st.Settings)
	}
	if st.Idea != "" || len(st.Prompts) != 0 || len(st.History) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}
	if st.SaveStatus != autosave.StatusIdle {
		t.Fatalf("nothing should be saving, got %v", st.SaveStatus)
	}
	if f.kv.SetCalls() != 0 {
		t.Fatal("startup must not write")
	}
}

func TestStartWithShareLinkSkipsSession(t *testing.T) {
	f := newFixture()
	f.session.Save(prompts.SessionData{Idea: "old draft", Prompts: []prompts.GeneratedPrompt{image}})

	link, err := share.Link("https://marketerz.app/", prompts.SharedPromptData{Idea: "Eco app", Prompt: strategy})
	if err != nil {
		t.Fatal(err)
	}

	c := f.controller(t)
	if cleaned := c.Start(link); cleaned != "https://marketerz.app/" {
		t.Fatalf("fragment was not stripped: %q", cleaned)
	}

	st := c.State()
	if st.Idea != "Eco app" || !reflect.DeepEqual(st.Prompts, []prompts.GeneratedPrompt{strategy}) {
		t.Fatalf("shared data not adopted: %+v", st)
	}
	if !st.FromShareLink {
		t.Fatal("expected FromShareLink")
	}

	// the shared pair replaces the draft once autosave runs
	c.Flush()
	saved, ok := f.session.Load()
	if !ok || saved.Idea != "Eco app" {
		t.Fatalf("expected the shared pair to become the draft, got %+v", saved)
	}
}

func TestStartWithMalformedShareLinkFallsBack(t *testing.T) {
	f := newFixture()
	f.session.Save(prompts.SessionData{Idea: "old draft", Prompts: []prompts.GeneratedPrompt{image}})

	c := f.controller(t)
	if cleaned := c.Start("https://marketerz.app/?ref=x#share=%%%not-base64"); cleaned != "https://marketerz.app/?ref=x" {
		t.Fatalf("malformed fragment was not stripped: %q", cleaned)
	}
	st := c.State()
	if st.Idea != "old draft" || st.FromShareLink {
		t.Fatalf("expected the persisted session, got %+v", st)
	}
}

func TestStartRestoresActiveHistoryRecord(t *testing.T) {
	f := newFixture()
	f.history.Add(prompts.HistoryItem{ID: "older", Idea: "Eco app", Prompts: []prompts.GeneratedPrompt{strategy}})
	f.history.Add(prompts.HistoryItem{ID: "newer", Idea: "Other", Prompts: []prompts.GeneratedPrompt{image}})
	f.session.Save(prompts.SessionData{Idea: "Eco app", Prompts: []prompts.GeneratedPrompt{strategy}})

	c := f.controller(t)
	c.Start("")
	if got := c.State().ActiveHistoryID; got != "older" {
		t.Fatalf("expected the matching run to be active, got %q", got)
	}
}

func TestGenerateRecordsHistory(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy, image}
	c := f.controller(t)
	c.Start("")

	c.SetIdea("Eco app")
	if err := c.UpdateSettings(prompts.Settings{Temperature: 0.7, SelectedCategories: []prompts.Category{prompts.CategoryStrategy, prompts.CategoryImagePrompt}}); err != nil {
		t.Fatal(err)
	}

	got, err := c.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []prompts.GeneratedPrompt{strategy, image}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}

	st := c.State()
	if !reflect.DeepEqual(st.Prompts, want) || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.History) != 1 || st.History[0].Idea != "Eco app" || !reflect.DeepEqual(st.History[0].Prompts, want) {
		t.Fatalf("unexpected history %+v", st.History)
	}
	if st.ActiveHistoryID != "id-1" {
		t.Fatalf("expected id-1 to be active, got %q", st.ActiveHistoryID)
	}

	stored := f.history.GetAll()
	if len(stored) != 1 || stored[0].ID != "id-1" {
		t.Fatalf("history not persisted: %+v", stored)
	}
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture()
	c := f.controller(t)
	c.Start("")

	c.SetIdea("   ")
	_, err := c.Generate(context.Background())
	var verr *generation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if c.State().Error != "Please enter an idea before generating prompts." {
		t.Fatalf("unexpected error message %q", c.State().Error)
	}
	if f.gen.bulkCalls != 0 {
		t.Fatal("the backend must not be contacted")
	}
}

func TestGenerateFailureClearsPrompts(t *testing.T) {
	f := newFixture()
	f.session.Save(prompts.SessionData{Idea: "Eco app", Prompts: []prompts.GeneratedPrompt{strategy}})
	f.gen.bulkErr = &generation.CommunicationError{Op: generation.OpBulk, Err: errors.New("offline")}

	c := f.controller(t)
	c.Start("")
	if _, err := c.Generate(context.Background()); err == nil {
		t.Fatal("expected an error")
	}

	st := c.State()
	if len(st.Prompts) != 0 {
		t.Fatalf("prompts should be cleared, got %+v", st.Prompts)
	}
	if !strings.HasPrefix(st.Error, "Failed to generate prompts: ") || !strings.Contains(st.Error, "could not reach") {
		t.Fatalf("unexpected error %q", st.Error)
	}
	if len(st.History) != 0 {
		t.Fatal("failed runs must not be recorded")
	}
}

func TestRegenerateFailureKeepsPrompts(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy, image}
	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")
	if _, err := c.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := c.State()

	f.gen.singleErr = &generation.CommunicationError{Op: generation.OpSingle, Category: prompts.CategoryStrategy, Err: errors.New("timeout")}
	if _, err := c.Regenerate(context.Background(), prompts.CategoryStrategy); err == nil {
		t.Fatal("expected an error")
	}

	after := c.State()
	if !reflect.DeepEqual(after.Prompts, before.Prompts) {
		t.Fatalf("prompts changed on failure: %+v", after.Prompts)
	}
	if !strings.Contains(after.Error, "Strategy") {
		t.Fatalf("error must name the category, got %q", after.Error)
	}
	if !reflect.DeepEqual(f.history.GetAll()[0].Prompts, before.History[0].Prompts) {
		t.Fatal("history changed on failure")
	}
	if after.Regenerating != "" {
		t.Fatal("regenerating flag left set")
	}
}

func TestRegenerateUpdatesActiveHistoryRecord(t *testing.T) {
	f := newFixture()
	f.history.Add(prompts.HistoryItem{ID: "older", Idea: "Eco app", Prompts: []prompts.GeneratedPrompt{strategy, image}})
	f.history.Add(prompts.HistoryItem{ID: "newer", Idea: "Other", Prompts: []prompts.GeneratedPrompt{strategy}})
	f.gen.single = prompts.GeneratedPrompt{Purpose: "np", TokensHint: "nt", ExpectedOutputSize: "ne", Prompt: "fresh"}

	c := f.controller(t)
	c.Start("")
	if _, ok := c.SelectHistoryItem("older"); !ok {
		t.Fatal("history item not found")
	}

	p, err := c.Regenerate(context.Background(), prompts.CategoryStrategy)
	if err != nil {
		t.Fatal(err)
	}
	if p.Category != prompts.CategoryStrategy || p.Prompt != "fresh" {
		t.Fatalf("unexpected prompt %+v", p)
	}

	st := c.State()
	if st.Prompts[0].Prompt != "fresh" || st.Prompts[1] != image {
		t.Fatalf("only the Strategy entry should change: %+v", st.Prompts)
	}

	stored := f.history.GetAll()
	if stored[0].ID != "newer" || stored[0].Prompts[0] != strategy {
		t.Fatalf("the newest run must be untouched: %+v", stored[0])
	}
	if stored[1].ID != "older" || stored[1].Prompts[0].Prompt != "fresh" {
		t.Fatalf("the selected run was not updated: %+v", stored[1])
	}
}

func TestRegenerateWithoutActiveRecordLeavesHistory(t *testing.T) {
	f := newFixture()
	f.history.Add(prompts.HistoryItem{ID: "latest", Idea: "Something else", Prompts: []prompts.GeneratedPrompt{strategy}})
	f.gen.single = prompts.GeneratedPrompt{Prompt: "fresh"}

	link, _ := share.Link("https://marketerz.app/", prompts.SharedPromptData{Idea: "Eco app", Prompt: strategy})
	c := f.controller(t)
	c.Start(link)

	if _, err := c.Regenerate(context.Background(), prompts.CategoryStrategy); err != nil {
		t.Fatal(err)
	}
	if got := f.history.GetAll()[0].Prompts[0]; got != strategy {
		t.Fatalf("an unrelated run was modified: %+v", got)
	}
}

func TestBusyWhileGenerating(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy}
	f.gen.entered = make(chan struct{}, 1)
	f.gen.release = make(chan struct{})

	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background())
		done <- err
	}()
	<-f.gen.entered

	if !c.State().Generating {
		t.Fatal("expected Generating to be set")
	}
	if _, err := c.Generate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := c.Regenerate(context.Background(), prompts.CategoryStrategy); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(f.gen.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if c.State().Generating {
		t.Fatal("Generating left set")
	}
}

func TestClearDuringGenerationDiscardsResult(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy}
	f.gen.entered = make(chan struct{}, 1)
	f.gen.release = make(chan struct{})

	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")

	errc := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background())
		errc <- err
	}()
	<-f.gen.entered

	if !c.ClearSession(func(string) bool { return true }) {
		t.Fatal("clear was not applied")
	}
	close(f.gen.release)
	if err := <-errc; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	st := c.State()
	if st.Idea != "" || len(st.Prompts) != 0 || len(st.History) != 0 {
		t.Fatalf("stale result resurrected state: %+v", st)
	}
	if len(f.history.GetAll()) != 0 {
		t.Fatal("stale result was recorded in history")
	}
}

func TestClearDuringRegenerationDiscardsResult(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy, image}
	f.gen.single = prompts.GeneratedPrompt{Purpose: "new", TokensHint: "t", ExpectedOutputSize: "e", Prompt: "fresh"}

	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")
	if _, err := c.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	recorded := f.history.GetAll()

	f.gen.entered = make(chan struct{}, 1)
	f.gen.release = make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := c.Regenerate(context.Background(), prompts.CategoryStrategy)
		errc <- err
	}()
	<-f.gen.entered

	if !c.ClearSession(func(string) bool { return true }) {
		t.Fatal("clear was not applied")
	}
	close(f.gen.release)
	if err := <-errc; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	st := c.State()
	if st.Idea != "" || len(st.Prompts) != 0 || st.Error != "" {
		t.Fatalf("stale regeneration resurrected state: %+v", st)
	}
	if got := f.history.GetAll(); !reflect.DeepEqual(got, recorded) {
		t.Fatalf("stale regeneration touched history: want %+v, got %+v", recorded, got)
	}
}

// blockingKV holds the first write of key open until release is closed.
type blockingKV struct {
	*storage.Memory
	key     string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingKV) Set(ctx context.Context, key, value string) error {
	if key == b.key {
		b.once.Do(func() {
			b.entered <- struct{}{}
			<-b.release
		})
	}
	return b.Memory.Set(ctx, key, value)
}

func TestClearWaitsForSaveInFlight(t *testing.T) {
	kv := &blockingKV{
		Memory:  storage.NewMemory(),
		key:     session.Key,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	f := &fixture{
		kv:       kv.Memory,
		gen:      &fakeGenerator{},
		settings: settings.New(kv),
		session:  session.New(kv),
		history:  history.New(kv),
	}
	c := f.controller(t)
	c.Start("")
	c.SetIdea("draft to discard")
	<-kv.entered

	cleared := make(chan bool, 1)
	go func() { cleared <- c.ClearSession(func(string) bool { return true }) }()
	select {
	case <-cleared:
		t.Fatal("clear finished while a save was still being written")
	case <-time.After(30 * time.Millisecond):
	}

	close(kv.release)
	if !<-cleared {
		t.Fatal("clear was not applied")
	}
	if saved, ok := f.session.Load(); ok {
		t.Fatalf("cleared draft is back in storage: %+v", saved)
	}
	st := c.State()
	if st.Idea != "" || st.SaveStatus != autosave.StatusIdle {
		t.Fatalf("unexpected state after clear %+v", st)
	}
}

func TestSaveStatusIsReported(t *testing.T) {
	f := newFixture()
	var mu sync.Mutex
	var seen []autosave.Status
	f.onStatus = func(s autosave.Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}
	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")

	want := []autosave.Status{autosave.StatusSaving, autosave.StatusSaved, autosave.StatusIdle}
	waitFor(t, "indicator cycle", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reflect.DeepEqual(seen, want)
	})
}

func TestClearSessionNeedsConfirmation(t *testing.T) {
	f := newFixture()
	f.session.Save(prompts.SessionData{Idea: "Eco app", Prompts: []prompts.GeneratedPrompt{strategy}})
	c := f.controller(t)
	c.Start("")

	var asked string
	if c.ClearSession(func(q string) bool { asked = q; return false }) {
		t.Fatal("declined clear must not apply")
	}
	if asked != ClearSessionQuestion {
		t.Fatalf("unexpected question %q", asked)
	}
	if c.State().Idea != "Eco app" {
		t.Fatal("state changed without confirmation")
	}

	if !c.ClearSession(func(string) bool { return true }) {
		t.Fatal("confirmed clear must apply")
	}
	if _, ok := f.session.Load(); ok {
		t.Fatal("persisted session was not removed")
	}
	st := c.State()
	if st.Idea != "" || len(st.Prompts) != 0 || st.SaveStatus != autosave.StatusIdle {
		t.Fatalf("unexpected state after clear %+v", st)
	}
}

func TestAutosaveDebounces(t *testing.T) {
	f := newFixture()
	c := f.controller(t)
	c.Start("")

	c.SetIdea("E")
	c.SetIdea("Ec")
	c.SetIdea("Eco app")
	if c.State().SaveStatus != autosave.StatusSaving {
		t.Fatalf("expected saving status, got %v", c.State().SaveStatus)
	}

	waitFor(t, "autosave", func() bool {
		saved, ok := f.session.Load()
		return ok && saved.Idea == "Eco app"
	})
	if n := f.kv.SetCalls(); n != 1 {
		t.Fatalf("expected a single debounced write, got %d", n)
	}
	waitFor(t, "indicator reset", func() bool { return c.State().SaveStatus == autosave.StatusIdle })
}

func TestNoWritesAfterClose(t *testing.T) {
	f := newFixture()
	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")
	c.Close()

	if saved, ok := f.session.Load(); !ok || saved.Idea != "Eco app" {
		t.Fatalf("close must flush the pending save, got %+v", saved)
	}
	writes := f.kv.SetCalls()
	c.SetIdea("after close")
	time.Sleep(60 * time.Millisecond)
	if f.kv.SetCalls() != writes {
		t.Fatal("wrote after close")
	}
}

func TestSelectExampleAndTemplate(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy}
	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")
	c.Generate(context.Background())

	ex := prompts.ExampleIdeas()[0]
	c.SelectExample(ex)
	st := c.State()
	if st.Idea != ex.Description || len(st.Prompts) != 0 || st.ActiveHistoryID != "" {
		t.Fatalf("unexpected state after example %+v", st)
	}

	tpl := prompts.Templates()[1]
	c.SelectTemplate(tpl)
	if c.State().Idea != tpl.Template {
		t.Fatal("template text was not adopted")
	}
}

func TestSettingsChanges(t *testing.T) {
	f := newFixture()
	c := f.controller(t)
	c.Start("")

	for _, cat := range prompts.AllCategories()[1:] {
		if err := c.ToggleCategory(cat); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.ToggleCategory(prompts.CategoryStrategy); !errors.Is(err, ErrEmptyCategories) {
		t.Fatalf("expected ErrEmptyCategories, got %v", err)
	}
	if err := c.ToggleCategory(prompts.CategoryVideoPrompt); err != nil {
		t.Fatal(err)
	}
	if err := c.SetTemperature(1.2); err == nil {
		t.Fatal("out of range temperature accepted")
	}
	if err := c.SetTemperature(0.3); err != nil {
		t.Fatal(err)
	}

	want := prompts.Settings{Temperature: 0.3, SelectedCategories: []prompts.Category{prompts.CategoryStrategy, prompts.CategoryVideoPrompt}}
	if got := c.State().Settings; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if got := f.settings.Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("settings not persisted: %+v", got)
	}
}

func TestPanelsAndClearHistory(t *testing.T) {
	f := newFixture()
	f.history.Add(prompts.HistoryItem{ID: "a", Idea: "x"})
	c := f.controller(t)
	c.Start("")

	if !c.ToggleHistory() || !c.State().ShowHistory {
		t.Fatal("history panel should open")
	}
	if !c.ToggleSettings() || c.ToggleSettings() {
		t.Fatal("settings panel should toggle")
	}

	c.ClearHistory()
	if len(c.State().History) != 0 || len(f.history.GetAll()) != 0 {
		t.Fatal("history not cleared")
	}
}

func TestShareLinkAndImage(t *testing.T) {
	f := newFixture()
	f.gen.bulk = []prompts.GeneratedPrompt{strategy, image}
	f.gen.image = generation.Image{MIMEType: "image/jpeg", Data: []byte("img")}
	c := f.controller(t)
	c.Start("")
	c.SetIdea("Eco app")
	c.Generate(context.Background())

	link, err := c.ShareLink(prompts.CategoryImagePrompt)
	if err != nil {
		t.Fatal(err)
	}
	data, _, ok, err := share.FromAddress(link)
	if !ok || err != nil {
		t.Fatalf("link does not decode: %v", err)
	}
	if data.Idea != "Eco app" || data.Prompt != image {
		t.Fatalf("unexpected shared data %+v", data)
	}

	if _, err := c.ShareLink(prompts.CategoryVideoPrompt); err == nil {
		t.Fatal("expected an error for a missing category")
	}

	img, err := c.GenerateImage(context.Background(), prompts.CategoryImagePrompt)
	if err != nil {
		t.Fatal(err)
	}
	if string(c.State().Images[prompts.CategoryImagePrompt].Data) != "img" || string(img.Data) != "img" {
		t.Fatal("image not kept with its prompt")
	}

	f.gen.imageErr = &generation.CommunicationError{Op: generation.OpImage}
	if _, err := c.GenerateImage(context.Background(), prompts.CategoryStrategy); err == nil {
		t.Fatal("expected an image error")
	}
	if c.State().Error != "" {
		t.Fatal("image failures must not replace the session error")
	}
}
