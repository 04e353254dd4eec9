// Package server exposes the layout pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/layout   body: graph document, response: laid-out document
//	POST /v1/render   body: laid-out document, response: artifact
//	GET  /healthz     liveness and build information
//	GET  /metrics     Prometheus exposition (when a registry is configured)
//
// Layout options are passed as query parameters named like the config file
// keys (link_distance, charge_strength, iterations, ...); anything omitted
// falls back to the server defaults. Run metadata is returned in headers:
// X-Run-ID, X-Layout-State, X-Layout-Ticks and X-Cache (HIT or MISS).
//
// Errors use the JSON shape of [httputil.WriteError] with the status from
// [errors.HTTPStatus].
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/forcelayout/pkg/buildinfo"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/httputil"
	"github.com/matzehuels/forcelayout/pkg/metrics"
	"github.com/matzehuels/forcelayout/pkg/observability"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// Defaults for [Config].
const (
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 2 * time.Minute
)

// Response headers.
const (
	HeaderRunID = "X-Run-ID"
	HeaderState = "X-Layout-State"
	HeaderTicks = "X-Layout-Ticks"
	HeaderCache = "X-Cache"
)

// Config configures a Server.
type Config struct {
	// Defaults are the options applied when a request omits a parameter.
	Defaults pipeline.Options

	// Metrics, when set, is served on /metrics.
	Metrics *metrics.Registry

	Logger       *log.Logger
	MaxBodyBytes int64
	Timeout      time.Duration
}

// Server handles layout requests.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	router chi.Router
}

// New returns a server running requests through runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = runner.Logger
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Server{runner: runner, cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports every request to the HTTP hooks and the log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, duration)
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// fail writes err and reports it to the HTTP hooks.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "route", routePattern(r), "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	httputil.LimitBody(w, r, s.cfg.MaxBodyBytes)
	g, err := graph.Decode(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	h := w.Header()
	h.Set(HeaderRunID, res.RunID)
	h.Set(HeaderState, res.State)
	h.Set(HeaderTicks, strconv.Itoa(res.Ticks))
	h.Set(HeaderCache, cacheStatus(res.CacheHit))
	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = graph.Write(w, g, "")
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	httputil.LimitBody(w, r, s.cfg.MaxBodyBytes)
	g, err := graph.Decode(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(opts.Render.Format))
	w.Header().Set(HeaderCache, cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	case render.FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz"
	}
}
