package app

import (
	"context"
	"fmt"

	"codecanvas/internal/gateway/config"
	"codecanvas/internal/gateway/handler"
	"codecanvas/internal/gateway/server"
	"codecanvas/internal/generate"
	"codecanvas/internal/livepreview"
	"codecanvas/internal/llm"
	"codecanvas/internal/sandbox"
)

type App struct {
	server *server.Server
	llm    llm.Client
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := llm.FromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	snapshots, err := initSnapshotStore(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator := generate.New(client)
	driver := sandbox.NewDriver(sandbox.NewHTTPClient(cfg.Sandbox.Endpoint, cfg.Sandbox.APIKey))
	runtime := livepreview.NewRuntime(livepreview.NewExecRunner(cfg.LivePreview.Port))

	h := handler.New(orchestrator, driver, runtime, snapshots)
	srv := server.New(cfg.Port, server.NewMux(h))

	return &App{server: srv, llm: client}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	_ = a.llm.Close()
	return a.server.Shutdown(ctx)
}
