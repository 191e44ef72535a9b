package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/getmockd/voodoo/pkg/httputil"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/router"
)

// DefaultGraphQLPath is the path GraphQL requests are served on.
const DefaultGraphQLPath = "/graphql"

// Error codes written in JSON error bodies.
const (
	codeNotFound         = "not_found"
	codeMalformedGraphQL = "malformed_graphql"
	codeTooLarge         = "request_too_large"
	codeBadRequest       = "bad_request"
	codeInternal         = "internal_error"
)

// Handler serves mock responses over HTTP.
type Handler struct {
	router      *router.Router
	graphQLPath string
	fileDirs    []string
	maxBody     int64
	log         *slog.Logger
}

// NewHandler creates a handler for rt. An empty graphQLPath means
// DefaultGraphQLPath.
func NewHandler(rt *router.Router, graphQLPath string, fileDirs []string, log *slog.Logger) *Handler {
	if graphQLPath == "" {
		graphQLPath = DefaultGraphQLPath
	}
	return &Handler{
		router:      rt,
		graphQLPath: graphQLPath,
		fileDirs:    fileDirs,
		maxBody:     request.DefaultMaxBodySize,
		log:         logging.OrNop(log),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	// One byte past the limit so oversized bodies surface as MaxBytesError.
	req, err := request.FromHTTP(r, h.maxBody+1)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
			return
		}
		httputil.WriteBadRequest(w, codeBadRequest, "failed to read request body")
		return
	}

	if r.URL.Path == h.graphQLPath {
		out, err := h.router.ServeGraphQL(r.Context(), req)
		if err != nil {
			h.writeError(w, req, err)
			return
		}
		out.Write(w)
		return
	}

	out, err := h.router.ServeREST(r.Context(), req)
	if err != nil {
		if errors.Is(err, router.ErrNoMatchingEndpoint) && h.serveFile(w, r) {
			return
		}
		h.writeError(w, req, err)
		return
	}
	out.Write(w)
}

func (h *Handler) writeError(w http.ResponseWriter, req *request.Request, err error) {
	switch router.StatusFor(err) {
	case http.StatusNotFound:
		h.log.Info("no endpoint matched", "method", req.Method, "path", req.Path, "body", logging.Body(req.Body))
		httputil.WriteNotFound(w, codeNotFound, err.Error())
	case http.StatusBadRequest:
		httputil.WriteBadRequest(w, codeMalformedGraphQL, err.Error())
	default:
		h.log.Error("request failed", "method", req.Method, "path", req.Path, "error", err)
		httputil.WriteInternalError(w, codeInternal, "the mock response could not be produced")
	}
}

// serveFile writes the first file under the file directories matching the
// request path. Only GET and HEAD are served.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	rel := filepath.FromSlash(path.Clean("/" + r.URL.Path))
	for _, dir := range h.fileDirs {
		name := filepath.Join(dir, rel)
		info, err := os.Stat(name)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		h.log.Debug("serving static file", "path", r.URL.Path, "file", name)
		http.ServeFile(w, r, name)
		return true
	}
	return false
}
