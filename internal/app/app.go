package app

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/askline/askline/internal/api"
	"github.com/askline/askline/internal/config"
	"github.com/askline/askline/internal/coordinator"
	"github.com/askline/askline/internal/events"
	"github.com/askline/askline/internal/history"
	"github.com/askline/askline/internal/logx"
	"github.com/askline/askline/internal/provider"
	"github.com/askline/askline/internal/runtime"
	"github.com/askline/askline/internal/transport"
)

type App struct {
	env     *config.EnvVars
	cfg     provider.Config
	loop    *events.Loop
	coord   *coordinator.Coordinator
	host    *api.Host
	history *history.Store
	http    *HTTPServer
}

// Options tweak construction without touching the environment.
type Options struct {
	Profile string
	// Transport overrides the env-selected transport, mainly for tests.
	Transport transport.Transport
}

func New() (*App, error) {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(env, opts.Profile)
	if err != nil {
		return nil, err
	}

	tr := opts.Transport
	if tr == nil {
		tr, err = pickTransport(env.Transport)
		if err != nil {
			return nil, err
		}
	}

	loop := events.New(env.EventBuffer)

	coord, err := coordinator.New(cfg, tr, loop)
	if err != nil {
		return nil, err
	}

	store := api.NewResultStore()
	host := api.NewHost(coord, store)
	hist := history.NewStore()

	loop.Subscribe(host.HandleEvent)
	loop.Subscribe(hist.HandleEvent)

	healthURL, err := provider.HealthURL(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime.Runtime{
		ConfigLoaded: true,
		Coordinator:  coord,
		Pinger:       transport.NewPinger(healthURL),
	}

	httpServer := NewHTTPServer(host, hist, rt)

	return &App{
		env:     env,
		cfg:     cfg,
		loop:    loop,
		coord:   coord,
		host:    host,
		history: hist,
		http:    httpServer,
	}, nil
}

func pickTransport(name string) (transport.Transport, error) {
	switch name {
	case "", "curl":
		return transport.NewCurlTransport(), nil
	case "http":
		return transport.NewHTTPTransport(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want curl or http)", name)
	}
}

// Coordinator exposes the request coordinator for hosts embedding the app.
func (a *App) Coordinator() *coordinator.Coordinator { return a.coord }

// Handler exposes the full HTTP surface, mainly for tests.
func (a *App) Handler() http.Handler { return a.http.Handler() }

// RunLoop runs only the event dispatch loop, leaving the HTTP listener to
// the caller. Embedders that mount Handler on their own server use this.
func (a *App) RunLoop(ctx context.Context) error { return a.loop.Start(ctx) }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Start(gctx)
	})

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	logx.Info("App", "askline started (provider=%s model=%s)", a.coord.Kind(), a.cfg.Model)

	return g.Wait()
}
