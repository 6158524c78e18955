package viewer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/aviationcerts/internal/batch"
	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/export"
)

// Certificates is the part of the remote API the server proxies.
type Certificates interface {
	ListCertificates(ctx context.Context) ([]cert.Certificate, error)
	CreateCertificate(ctx context.Context, draft cert.Draft) (cert.Certificate, error)
	UpdateCertificate(ctx context.Context, id string, draft cert.Draft) (cert.Certificate, error)
	DeleteCertificate(ctx context.Context, id string) error
}

// Server exposes the batch pipeline over HTTP for a browser.
type Server struct {
	api       Certificates
	registry  *batch.Registry
	driver    *export.Driver
	validator cert.Validator
	limiter   *RateLimiter
	artifacts export.Storage
	logger    *slog.Logger
}

type Option func(*Server)

func WithValidator(v cert.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithBatchRate limits batch creation per session and minute.
func WithBatchRate(perMinute int) Option {
	return func(s *Server) { s.limiter = NewRateLimiter(perMinute, time.Minute) }
}

// WithArtifacts keeps every downloaded PDF in store and serves it again
// under /artifacts/{name}.
func WithArtifacts(store export.Storage) Option {
	return func(s *Server) { s.artifacts = store }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewServer(api Certificates, registry *batch.Registry, driver *export.Driver, opts ...Option) *Server {
	s := &Server{
		api:       api,
		registry:  registry,
		driver:    driver,
		validator: cert.Validator{MaxItems: 100, MaxDescription: 240},
		limiter:   NewRateLimiter(30, time.Minute),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(correlation)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireSession(s.logger))

		r.Route("/certificates", func(r chi.Router) {
			r.Get("/", s.listCertificates)
			r.Post("/", s.createCertificate)
			r.Put("/{id}", s.updateCertificate)
			r.Delete("/{id}", s.deleteCertificate)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", s.startBatch)
			r.Get("/{jobID}", s.getBatch)
			r.Get("/{jobID}/print", s.printBatch)
			r.Get("/{jobID}/certificates/{certID}/pdf", s.downloadPDF)
		})

		r.Get("/artifacts/{name}", s.getArtifact)
		r.Head("/artifacts/{name}", s.headArtifact)
	})
	return r
}
