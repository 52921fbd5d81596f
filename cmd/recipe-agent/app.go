package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jingkaihe/recipe-agent/pkg/agent"
	"github.com/jingkaihe/recipe-agent/pkg/config"
	"github.com/jingkaihe/recipe-agent/pkg/llm"
	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// app holds everything a command needs to talk to the agent or the store.
type app struct {
	config    config.Config
	backend   *llm.Backend
	store     *recipes.Store
	persister recipes.Persister
	renderer  *prompts.Renderer
}

// loadApp builds the app from the global viper instance with a real API client.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	backend, err := llm.NewBackendFromConfig(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, backend)
}

// newApp wires the prompt renderer and store around backend, and loads the
// store.
func newApp(ctx context.Context, cfg config.Config, backend *llm.Backend) (*app, error) {
	renderer, err := prompts.NewDefaultRenderer(cfg.Prompts.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load prompt templates")
	}

	persister, err := newPersister(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	a := &app{
		config:    cfg,
		backend:   backend,
		store:     recipes.NewStore(backend, persister),
		persister: persister,
		renderer:  renderer,
	}

	logger.G(ctx).WithFields(logrus.Fields{
		"backend": cfg.Store.Backend,
		"path":    cfg.Store.Path,
	}).Debug("loading recipe store")
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to load recipes")
	}
	return a, nil
}

func newPersister(ctx context.Context, cfg config.StoreConfig) (recipes.Persister, error) {
	switch cfg.Backend {
	case config.StoreBackendJSON, "":
		return recipes.NewJSONFilePersister(cfg.Path), nil
	case config.StoreBackendBolt:
		return recipes.NewBoltPersister(cfg.Path), nil
	case config.StoreBackendSQLite:
		persister, err := recipes.NewSQLitePersister(ctx, cfg.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open sqlite store %s", cfg.Path)
		}
		return persister, nil
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Close releases the persister if it holds resources.
func (a *app) Close() error {
	if closer, ok := a.persister.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// agent creates the recipe agent reporting events to handler.
func (a *app) agent(handler llmtypes.MessageHandler) (*agent.Agent, error) {
	return agent.NewRecipeAgent(a.backend, a.store, agent.RecipeOptions{
		Renderer:           a.renderer,
		Handler:            handler,
		KitchenIngredients: a.config.Kitchen.Ingredients,
	})
}
