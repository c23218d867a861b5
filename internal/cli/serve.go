package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/telemetry-lab/stackdiagrams/pkg/buildinfo"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	diagramio "github.com/telemetry-lab/stackdiagrams/pkg/io"
	"github.com/telemetry-lab/stackdiagrams/pkg/observability"
	"github.com/telemetry-lab/stackdiagrams/pkg/pipeline"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
)

const (
	headerRequestID = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, iconsDir string
	var flags cacheFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered diagrams over HTTP for preview",
		Long: `Start a preview server.

Routes:
  GET /healthz                     liveness check
  GET /api/v1/diagrams             built-in diagrams with counts
  GET /api/v1/diagrams/{name}      definition (?format=json|toml|yaml)
  GET /diagrams/{name}.{format}    rendered artifact (?direction=LR&refresh=1)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.SetHTTPHooks(observability.NewLogHTTPHooks(c.Logger))

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(runner, c.Logger, iconsDir).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			p := newPrinter(cmd.OutOrStdout())
			p.info("Serving diagrams on %s", StyleLink.Render("http://"+displayAddr(addr)))
			return listenUntilDone(ctx, srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&iconsDir, "icons-dir", defaultIconsDir(), "directory of icon PNGs (env "+envIconsDir+")")
	flags.register(cmd)
	return cmd
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// listenUntilDone serves until ctx is cancelled, then shuts down gracefully.
func listenUntilDone(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	iconsDir string
}

func newServer(runner *pipeline.Runner, logger *log.Logger, iconsDir string) *server {
	return &server{runner: runner, logger: logger, iconsDir: iconsDir}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestContext)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/diagrams", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{name}", s.handleDefinition)
	})
	r.Get("/diagrams/{file}", s.handleArtifact)
	return r
}

type requestIDKey struct{}

// requestContext assigns a request ID, attaches a request-scoped logger and
// reports the request to the HTTP hooks.
func (s *server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = withLogger(ctx, s.logger.With("request_id", id))
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, time.Since(start))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Current()})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	rows, err := summarize()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": rows})
}

func (s *server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := s.build(r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = diagramio.FormatJSON
	}
	contentType, ok := definitionContentTypes[format]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported definition format: %s (must be json, toml or yaml)", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	if err := diagramio.Write(d, w, format); err != nil {
		loggerFromContext(r.Context()).Error("write definition", "diagram", name, "error", err)
	}
}

var definitionContentTypes = map[string]string{
	diagramio.FormatJSON: "application/json",
	diagramio.FormatTOML: "application/toml",
	diagramio.FormatYAML: "application/yaml",
}

func (s *server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name, format, ok := splitArtifactName(chi.URLParam(r, "file"))
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "expected /diagrams/{name}.{format}"))
		return
	}

	d, err := s.build(r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	refresh, _ := strconv.ParseBool(q.Get("refresh"))
	result, err := s.runner.Render(r.Context(), d, pipeline.Options{
		Formats:   []string{format},
		Direction: q.Get("direction"),
		IconsDir:  s.iconsDir,
		Refresh:   refresh,
		Logger:    loggerFromContext(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentTypes[format])
	w.Header().Set("X-Cache", cacheStatus(result.CacheHits))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format]) //nolint:errcheck
}

func (s *server) build(r *http.Request, name string) (*diagram.Diagram, error) {
	if err := errors.ValidateDiagramName(name); err != nil {
		return nil, err
	}
	return s.runner.Build(r.Context(), pipeline.Source{Name: name})
}

func cacheStatus(hits int) string {
	if hits > 0 {
		return "HIT"
	}
	return "MISS"
}

// splitArtifactName splits "otlp-flow.svg" into name and lower-cased format.
func splitArtifactName(file string) (name, format string, ok bool) {
	i := strings.LastIndexByte(file, '.')
	if i <= 0 || i == len(file)-1 {
		return "", "", false
	}
	name, format = file[:i], strings.ToLower(file[i+1:])
	if format == "jpeg" {
		format = render.FormatJPG
	}
	return name, format, true
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	id := requestID(ctx)
	observability.HTTP().OnError(ctx, id, r.Method, r.URL.Path, err)

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err), RequestID: id},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":{"code":%q}}`, errors.ErrCodeInternal)
	}
}
