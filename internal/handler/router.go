package handler

import (
	"log/slog"
	"net/http"

	"github.com/mesocyclon/docxpipeline/internal/middleware"
	"github.com/mesocyclon/docxpipeline/internal/service"
	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

// NewRouter builds the HTTP mux with all routes and middleware. pipelineOpts
// configures every /api/v1/pipeline request's language model and run config;
// the packaging test endpoints under /api/v1/documents are unrelated to it.
func NewRouter(logger *slog.Logger, svc service.PackagingService, pipelineOpts pipeline.Options, maxBodyBytes int64) http.Handler {
	mux := http.NewServeMux()

	pkg := NewPackagingHandler(svc)
	pl := NewPipelineHandler(pipelineOpts)

	// Health endpoints
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("GET /ready", Health)

	// Packaging test endpoints
	mux.HandleFunc("POST /api/v1/documents/open", pkg.Open)
	mux.HandleFunc("POST /api/v1/documents/roundtrip", pkg.RoundTrip)
	mux.HandleFunc("POST /api/v1/documents/validate", pkg.Validate)

	// Pipeline endpoints
	mux.HandleFunc("POST /api/v1/pipeline/process", pl.Process)
	mux.HandleFunc("POST /api/v1/pipeline/dry-run", pl.DryRun)

	// Apply middleware chain (innermost first; Logging ends up outermost)
	var h http.Handler = mux
	h = middleware.MaxBodySize(maxBodyBytes)(h)
	h = middleware.CORS(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)

	return h
}
