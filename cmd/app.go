package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/marketerz/marketerz/internal/autosave"
	"github.com/marketerz/marketerz/internal/controller"
	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/marketerz/marketerz/pkg/generation/gemini"
	"github.com/marketerz/marketerz/pkg/generation/openai"
	"github.com/marketerz/marketerz/pkg/history"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/marketerz/marketerz/pkg/session"
	"github.com/marketerz/marketerz/pkg/settings"
	"github.com/marketerz/marketerz/pkg/storage"
	"github.com/spf13/viper"
)

// app bundles the storage, stores and controller used by one invocation. The storage lock is
// held until close.
type app struct {
	db       *storage.DB
	lock     *utils.StorageLock
	settings *settings.Store
	session  *session.Store
	history  *history.Store
	ctrl     *controller.Controller
}

// openApp opens storage and builds the controller. The backend is only built when
// withBackend is set so that offline commands work without an API key.
func openApp(ctx context.Context, withBackend bool) (*app, error) {
	dbPath, err := utils.StoragePath(viper.GetString("storage.path"))
	if err != nil {
		return nil, err
	}

	lock, err := utils.NewStorageLock(dbPath)
	if err != nil {
		return nil, err
	}
	if err := lock.Acquire(ctx); err != nil {
		return nil, err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		lock.Release()
		return nil, err
	}
	utils.Log.Debugf("Using storage at %s", dbPath)

	a := &app{
		db:       db,
		lock:     lock,
		settings: settings.New(db),
		session:  session.New(db),
		history:  history.New(db),
	}

	var gen controller.Generator = offlineGenerator{}
	if withBackend {
		backend, err := newBackend(ctx)
		if err != nil {
			a.closeStorage()
			return nil, err
		}
		client := generation.New(backend)
		utils.Log.Debugf("Using %s generation backend", client.Backend().Name())
		gen = client
	}

	a.ctrl = controller.New(controller.Config{
		Generator:     gen,
		Settings:      a.settings,
		Session:       a.session,
		History:       a.history,
		SaveDelay:     viper.GetDuration("autosave.delay"),
		StatusDisplay: viper.GetDuration("autosave.status_display"),
		ShareBaseURL:  viper.GetString("share.base_url"),
		OnSaveStatus: func(s autosave.Status) {
			utils.Log.Debugf("Draft %s", s)
		},
	})
	return a, nil
}

// close flushes pending autosaves before releasing storage.
func (a *app) close() {
	a.ctrl.Close()
	a.closeStorage()
}

func (a *app) closeStorage() {
	if err := a.db.Close(); err != nil {
		utils.Log.Warnf("Failed to close storage: %v", err)
	}
	if err := a.lock.Release(); err != nil {
		utils.Log.Warnf("Failed to release storage lock: %v", err)
	}
}

func newBackend(ctx context.Context) (generation.Backend, error) {
	provider := strings.ToLower(strings.TrimSpace(viper.GetString("backend.provider")))
	timeout := viper.GetDuration("backend.timeout")

	switch provider {
	case "", "gemini":
		b, err := gemini.New(ctx, gemini.Config{
			APIKey:     apiKey("GEMINI_API_KEY"),
			Model:      viper.GetString("backend.model"),
			ImageModel: viper.GetString("backend.image_model"),
			Endpoint:   viper.GetString("backend.endpoint"),
			Timeout:    timeout,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "openai":
		b, err := openai.New(openai.Config{
			APIKey:     apiKey("OPENAI_API_KEY"),
			Model:      viper.GetString("backend.model"),
			ImageModel: viper.GetString("backend.image_model"),
			Endpoint:   viper.GetString("backend.endpoint"),
			Timeout:    timeout,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported generation backend: %s", provider)
	}
}

// apiKey prefers the configured key, then API_KEY, then the provider specific variable.
func apiKey(providerEnv string) string {
	if k := strings.TrimSpace(viper.GetString("backend.api_key")); k != "" {
		return k
	}
	for _, env := range []string{"API_KEY", providerEnv} {
		if k := strings.TrimSpace(os.Getenv(env)); k != "" {
			return k
		}
	}
	return ""
}

// offlineGenerator backs commands that never reach the backend.
type offlineGenerator struct{}

var errOffline = errors.New("this command does not talk to the generation backend")

func (offlineGenerator) GenerateBulk(context.Context, string, prompts.Settings) ([]prompts.GeneratedPrompt, error) {
	return nil, errOffline
}

func (offlineGenerator) GenerateSingle(context.Context, string, prompts.Category) (prompts.GeneratedPrompt, error) {
	return prompts.GeneratedPrompt{}, errOffline
}

func (offlineGenerator) GenerateImage(context.Context, string) (generation.Image, error) {
	return generation.Image{}, errOffline
}
