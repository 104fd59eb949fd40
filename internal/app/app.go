package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/compiler"
	"github.com/vk/facegraph/internal/config"
	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/facegraph"
	"github.com/vk/facegraph/internal/linkfunc"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	registry *linkfunc.Registry
	compiler *compiler.Compiler

	graph *facegraph.Graph
	asset compiler.Asset

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and link function registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := linkfunc.NewStarted()
	logger.Debug("Link function registry started.", "functions", len(reg.Functions()))

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		loader:   loader,
		registry: reg,
		compiler: compiler.New(reg, compiler.DefaultNodeTypes()),
	}
}

// Registry returns the application's link function registry.
func (a *App) Registry() *linkfunc.Registry {
	return a.registry
}

// Graph returns the editable graph, or nil before Load.
func (a *App) Graph() *facegraph.Graph {
	return a.graph
}

// Compiled returns the compiled graph in use, or nil before Load.
func (a *App) Compiled() *compiled.Graph {
	return a.asset.Graph()
}
