package transport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/mcp"
)

// Config wires the HTTP surface.
type Config struct {
	// MCP serves /mcp; nil leaves the route out.
	MCP    http.Handler
	Engine mcp.Engine
	// Auth guards the /api routes; nil acts as DefaultViewer.
	Auth          func(http.Handler) http.Handler
	DefaultViewer string
	Now           func() time.Time
	Logger        *slog.Logger
}

// Server serves the JSON report endpoints.
type Server struct {
	engine mcp.Engine
	now    func() time.Time
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	srv := &Server{engine: cfg.Engine, now: cfg.Now, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	r.Get("/health", srv.handleHealth)
	if cfg.MCP != nil {
		// The MCP handler checks bearer tokens itself.
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		} else {
			r.Use(DefaultViewerMiddleware(cfg.DefaultViewer))
		}
		r.Get("/reports", srv.handleListReports)
		r.Get("/reports/{kind}", srv.handleReport)
		r.Get("/people/{id}/productivity", srv.handlePersonProductivity)
		r.Get("/services/{id}/projection", srv.handleProjection)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListReports(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, profitability.Kinds())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := profitability.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		WriteError(w, err)
		return
	}
	period, err := s.period(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		WriteError(w, err)
		return
	}

	viewerID, _ := ViewerFromContext(r.Context())
	scope, err := s.engine.Scope(r.Context(), viewerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	data, err := s.engine.Report(r.Context(), scope, kind, profitability.Query{Period: period, Limit: limit})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, mcp.ReportResponse{Kind: kind, Period: period.String(), Data: data})
}

func (s *Server) handlePersonProductivity(w http.ResponseWriter, r *http.Request) {
	period, err := s.period(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	viewerID, _ := ViewerFromContext(r.Context())
	scope, err := s.engine.Scope(r.Context(), viewerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	rec, err := s.engine.PersonProductivity(r.Context(), scope, chi.URLParam(r, "id"), period)
	if err != nil {
		WriteError(w, err)
		return
	}
	if rec == nil {
		WriteError(w, ledger.ErrPersonNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteError(w, err)
		return
	}
	if year == 0 {
		year = s.now().Year()
	}
	proj, err := s.engine.ProjectAnnualRevenue(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		WriteError(w, err)
		return
	}
	if proj == nil {
		WriteError(w, ledger.ErrServiceNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, proj)
}

// period reads year, month, from and to query parameters.
func (s *Server) period(r *http.Request) (ledger.Period, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return ledger.Period{}, err
	}
	month, err := intParam(r, "month")
	if err != nil {
		return ledger.Period{}, err
	}
	q := r.URL.Query()
	return ledger.ParsePeriod(year, month, q.Get("from"), q.Get("to"), s.now())
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &mcp.APIError{Code: "INVALID_INPUT", Message: name + " must be an integer"}
	}
	return n, nil
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
