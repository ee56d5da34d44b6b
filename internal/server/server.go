// Package server assembles the HTTP application and owns its listening socket.
//
// Start returns two independent handles: the App, which routes requests and
// can be driven in-process, and the Listener, which holds the bound socket
// until Stop releases it.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/hello-server/internal/config"
	"github.com/janisto/hello-server/internal/http/hello"
	applog "github.com/janisto/hello-server/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-server/internal/platform/middleware"
	"github.com/janisto/hello-server/internal/platform/respond"
)

// Version can be overridden at build time:
// -ldflags "-X github.com/janisto/hello-server/internal/server.Version=1.2.3"
var Version = "dev"

const apiTitle = "Hello Server"

// App is the routed application. It serves requests without a socket.
type App struct {
	cfg    config.Config
	router chi.Router
	api    huma.API
}

// NewApp builds the router, its middleware stack and the greeting route.
func NewApp(cfg config.Config) *App {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB
		// HEAD / is answered by the GET handler; net/http drops the body.
		chimiddleware.GetHead,
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	humaCfg := huma.DefaultConfig(apiTitle, Version)
	// GET / is the only route; no OpenAPI document, docs or schema endpoints.
	humaCfg.OpenAPIPath = ""
	humaCfg.DocsPath = ""
	humaCfg.SchemasPath = ""
	api := humachi.New(router, humaCfg)

	hello.Register(api)

	return &App{cfg: cfg, router: router, api: api}
}

// Router returns the root handler.
func (a *App) Router() http.Handler { return a.router }

// API returns the huma API the routes are registered on.
func (a *App) API() huma.API { return a.api }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Listen binds port on the configured host (all interfaces when empty) and
// serves the App on it in a new goroutine. Port 0 selects a free port. Any
// failure to bind is returned as a *BindError.
func (a *App) Listen(port int) (*Listener, error) {
	cfg := a.cfg
	cfg.Port = port
	addr := cfg.Addr()
	if port < 0 || port > 65535 {
		return nil, &BindError{Addr: addr, Err: errPortRange}
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}

	l := &Listener{
		ln: ln,
		srv: &http.Server{
			Handler:           a.router,
			ReadTimeout:       a.cfg.ReadTimeout,
			ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
			WriteTimeout:      a.cfg.WriteTimeout,
			IdleTimeout:       a.cfg.IdleTimeout,
			MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(applog.Logger()),
		},
		done: make(chan struct{}),
	}
	applog.LogInfo(context.Background(), "App running on port",
		zap.Int("port", l.Port()),
		zap.String("addr", ln.Addr().String()),
	)
	go l.serve()
	return l, nil
}

// Start builds an App from cfg and binds it to cfg.Port.
func Start(cfg config.Config) (*App, *Listener, error) {
	app := NewApp(cfg)
	ln, err := app.Listen(cfg.Port)
	if err != nil {
		return nil, nil, err
	}
	return app, ln, nil
}

// Listener owns a bound socket from Listen until Stop.
type Listener struct {
	ln   net.Listener
	srv  *http.Server
	done chan struct{}

	// serveErr is written before done is closed.
	serveErr error

	stopOnce sync.Once
	stopErr  error
}

func (l *Listener) serve() {
	defer close(l.done)
	if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.serveErr = err
	}
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Port returns the bound TCP port, which differs from the requested one
// when 0 was requested.
func (l *Listener) Port() int {
	if tcp, ok := l.ln.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Done is closed once the listener stops serving.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Wait blocks until serving ends. It returns nil after Stop and the accept
// error otherwise.
func (l *Listener) Wait() error {
	<-l.done
	return l.serveErr
}

// Stop closes the socket and waits for in-flight requests until ctx expires,
// after which remaining connections are closed. Only the first call acts;
// later calls return its result.
func (l *Listener) Stop(ctx context.Context) error {
	l.stopOnce.Do(func() {
		if err := l.srv.Shutdown(ctx); err != nil {
			l.stopErr = errors.Join(err, l.srv.Close())
		}
		<-l.done
		applog.LogInfo(ctx, "listener stopped", zap.String("addr", l.ln.Addr().String()))
	})
	return l.stopErr
}
