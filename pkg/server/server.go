package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/voodoo/internal/ports"
	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/resolver"
	"github.com/getmockd/voodoo/pkg/router"
	"github.com/getmockd/voodoo/pkg/script"
	"github.com/getmockd/voodoo/pkg/template"
)

// PortRange is an inclusive range of ports scanned for a free one.
type PortRange = ports.Range

// ErrNoFreePort is returned by Listen when every port in the range is taken.
var ErrNoFreePort = ports.ErrNoFreePort

// ParsePortRange parses "8080" or "8080-8090". Port 0 asks the system
// for any free port.
func ParsePortRange(s string) (PortRange, error) {
	return ports.ParseRange(s)
}

// SinglePort returns a range holding one port.
func SinglePort(port int) PortRange {
	return ports.Single(port)
}

// DefaultPortRange is scanned when Options.PortRange is zero.
var DefaultPortRange = PortRange{Lower: 8080, Upper: 8090}

// Timeouts applied to the HTTP server.
const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// PortRange is scanned in order for the first free port.
	PortRange PortRange

	// UseAnyAddr listens on all interfaces instead of loopback.
	UseAnyAddr bool

	// GraphQLPath is the path GraphQL requests are served on.
	GraphQLPath string

	// FileDirs are searched in order for static files, and the first one
	// is the base for relative file bodies.
	FileDirs []string

	// TemplateDir is loaded into the template engine when set.
	TemplateDir string

	// ScriptTimeout bounds each script run. Zero means script.DefaultTimeout.
	ScriptTimeout time.Duration

	// Seed holds initial cache values. The base URL is added on Listen.
	Seed map[string]any

	Logger *slog.Logger
}

// Server serves a set of endpoints over HTTP.
type Server struct {
	opts    Options
	log     *slog.Logger
	cache   *cache.Cache
	router  *router.Router
	handler *Handler

	mu       sync.Mutex
	listener net.Listener
	port     int
}

// New builds a server for endpoints. Templates are loaded from
// opts.TemplateDir here so that a bad directory fails before binding.
func New(endpoints []*endpoint.Endpoint, opts Options) (*Server, error) {
	log := logging.OrNop(opts.Logger)
	if opts.PortRange == (PortRange{}) {
		opts.PortRange = DefaultPortRange
	}

	templates := template.New()
	if opts.TemplateDir != "" {
		n, err := templates.LoadDir(opts.TemplateDir)
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
		log.Info("templates loaded", "dir", opts.TemplateDir, "count", n)
	}

	var fileDir string
	if len(opts.FileDirs) > 0 {
		fileDir = opts.FileDirs[0]
	}

	c := cache.New(opts.Seed)
	res := resolver.New(c,
		resolver.WithTemplates(templates),
		resolver.WithScripts(script.New(script.WithTimeout(opts.ScriptTimeout), script.WithLogger(log))),
		resolver.WithFileDir(fileDir),
		resolver.WithLogger(log),
	)
	rt := router.New(res, log)
	rt.Add(endpoints...)

	return &Server{
		opts:    opts,
		log:     log,
		cache:   c,
		router:  rt,
		handler: NewHandler(rt, opts.GraphQLPath, opts.FileDirs, log),
	}, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Cache returns the cache shared by every request.
func (s *Server) Cache() *cache.Cache { return s.cache }

// Router returns the server's router.
func (s *Server) Router() *router.Router { return s.router }

// Listen binds the first free port of the range and seeds the cache with
// the base URL. Calling it again is a no-op.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	host := "127.0.0.1"
	if s.opts.UseAnyAddr {
		host = ""
	}
	ln, port, err := ports.Listen(host, s.opts.PortRange)
	if err != nil {
		return err
	}
	s.listener = ln
	s.port = port
	s.cache.Set(cache.MockServerKey, s.urlLocked())
	return nil
}

// Port returns the bound port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// URL returns the base URL, or "" before Listen.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

func (s *Server) urlLocked() string {
	if s.listener == nil {
		return ""
	}
	host := "127.0.0.1"
	if s.opts.UseAnyAddr {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.port))
}

// Run listens if needed and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(s.listener)
	}()

	s.log.Info("mock server started",
		"url", s.URL(),
		"rest_endpoints", s.router.REST().Len(),
		"graphql_endpoints", s.router.GraphQL().Len(),
		"graphql_path", s.handler.graphQLPath,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	s.log.Info("mock server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}
