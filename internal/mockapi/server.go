package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/api"
)

// Server is a local stand-in for the scope API, driven by a Fixture.
type Server struct {
	Logger    *zap.Logger
	Store     *Store
	Tokens    []string
	RateLimit RateLimit

	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewServer(l *zap.Logger, f Fixture) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	fac := promauto.With(reg)
	return &Server{
		Logger:    l,
		Store:     NewStore(f),
		Tokens:    f.Tokens,
		RateLimit: f.RateLimit,
		reg:       reg,
		requests: fac.NewCounterVec(prometheus.CounterOpts{
			Name: "mockapi_requests_total",
			Help: "Requests served by the mock scope API",
		}, []string{"method", "path", "status"}),
		latency: fac.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mockapi_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(RequireToken(s.Tokens))
		r.Use(Throttle(s.RateLimit, nil))
		r.Get("/api/groups/{id}/programs/", s.handleGroupPrograms)
		r.Get("/api/programs/{id}/scopes/", s.handleProgramScopes)
		r.Post("/api/scans/upload-results/", s.handleUpload)
		r.Get("/api/scans/uploads/", s.handleListUploads)
	})
	return r
}

func (s *Server) handleGroupPrograms(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.Store.Group(r.Context(), id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if g.Status != 0 {
		writeJSON(w, g.Status, map[string]string{"detail": http.StatusText(g.Status)})
		return
	}
	out := make([]api.Program, 0, len(g.Programs))
	for _, p := range g.Programs {
		out = append(out, api.Program{ID: api.ID(p.ID), Name: p.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProgramScopes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.Store.Program(r.Context(), id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if p.Status != 0 {
		writeJSON(w, p.Status, map[string]string{"detail": http.StatusText(p.Status)})
		return
	}
	scopes := p.Scopes
	if scopes == nil {
		scopes = []api.Scope{}
	}
	writeJSON(w, http.StatusOK, scopes)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var u api.Upload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad payload"})
		return
	}
	if u.ScanType == "" || u.FileName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "scan_type and file_name are required"})
		return
	}
	su := s.Store.AddUpload(r.Context(), u)

	s.Logger.Info("upload_received",
		zap.String("id", su.ID),
		zap.String("scan_type", u.ScanType),
		zap.String("file_name", u.FileName),
		zap.String("device_id", u.DeviceID),
		zap.Int("bytes", len(u.Results)),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": su.ID, "file_name": u.FileName})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Uploads(r.Context()))
}

// observe records request metrics by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		s.latency.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
