package handler

import (
	"net/http"

	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
	"github.com/mesocyclon/docxpipeline/pkg/response"
)

// PipelineHandler exposes the library entry point, pkg/pipeline, over
// HTTP for callers that prefer a REST boundary to a CLI invocation. Every
// request runs its own process/dry-run against opts, each writing into
// its own timestamped subdirectory of opts.Config.AuditDir.
type PipelineHandler struct {
	opts pipeline.Options
}

// NewPipelineHandler creates a handler that runs every request against
// the same pipeline.Options (language model, run config, logger).
func NewPipelineHandler(opts pipeline.Options) *PipelineHandler {
	return &PipelineHandler{opts: opts}
}

// Process handles POST /api/v1/pipeline/process. Accepts a multipart
// form with a "file" field containing a .docx and an "intent" field
// holding the natural-language instruction, and returns the run's
// pipeline.Result as JSON.
func (h *PipelineHandler) Process(w http.ResponseWriter, r *http.Request) {
	docxPath, intent, err := h.stageUpload(r)
	if docxPath != "" {
		defer removeTempUpload(docxPath)
	}
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pipeline.ProcessDocument(r.Context(), docxPath, intent, h.opts)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// DryRun handles POST /api/v1/pipeline/dry-run, running Extractor and
// Planner only and returning the generated plan without ever executing
// it against the document.
func (h *PipelineHandler) DryRun(w http.ResponseWriter, r *http.Request) {
	docxPath, intent, err := h.stageUpload(r)
	if docxPath != "" {
		defer removeTempUpload(docxPath)
	}
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pipeline.DryRunDocument(r.Context(), docxPath, intent, h.opts)
	if err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"audit_directory": result.AuditDirectory,
			"error":           err.Error(),
		})
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// stageUpload reads the uploaded .docx into a temp file, since
// pkg/pipeline's entry points read from a path rather than a byte slice,
// mirroring cmd/docxpipeline's own file-based invocation. It returns the
// temp file path (to be removed by the caller) and the "intent" form
// field.
func (h *PipelineHandler) stageUpload(r *http.Request) (path, intent string, err error) {
	data, err := readUploadedFile(r)
	if err != nil {
		return "", "", err
	}
	intent = r.FormValue("intent")
	if intent == "" {
		return "", "", errMissingIntent
	}

	f, err := stageTempDocx(data)
	if err != nil {
		return "", "", err
	}
	return f, intent, nil
}
