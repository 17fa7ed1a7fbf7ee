package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ayusingh-54/supply-chain-analytics/internal/pipeline"
)

// UploadHandler handles POST /v1/files/upload requests. Uploads are
// multipart forms with a "file" part and category/mode/uploaded_by
// fields.
type UploadHandler struct {
	orchestrator *pipeline.Orchestrator
	maxBytes     int64
}

// NewUploadHandler creates a new upload handler. maxBytes caps the
// accepted request body size.
func NewUploadHandler(orchestrator *pipeline.Orchestrator, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		orchestrator: orchestrator,
		maxBytes:     maxBytes,
	}
}

// ServeHTTP handles the upload HTTP request.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	req, err := parseUploadForm(w, r, h.maxBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	resp, err := h.orchestrator.ProcessUpload(r.Context(), req)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ValidateHandler handles POST /v1/files/validate requests: the same
// checks as an upload with no side effects.
type ValidateHandler struct {
	orchestrator *pipeline.Orchestrator
	maxBytes     int64
}

// NewValidateHandler creates a new validation handler.
func NewValidateHandler(orchestrator *pipeline.Orchestrator, maxBytes int64) *ValidateHandler {
	return &ValidateHandler{
		orchestrator: orchestrator,
		maxBytes:     maxBytes,
	}
}

// ServeHTTP handles the validation HTTP request.
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	req, err := parseUploadForm(w, r, h.maxBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	resp, err := h.orchestrator.Validate(r.Context(), req)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseUploadForm extracts the upload request from a multipart form.
func parseUploadForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (pipeline.UploadRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return pipeline.UploadRequest{}, fmt.Errorf("invalid multipart form: %v", err)
	}

	category := r.FormValue("category")
	if category == "" {
		return pipeline.UploadRequest{}, fmt.Errorf("category is required")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.UploadRequest{}, fmt.Errorf("file is required: %v", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return pipeline.UploadRequest{}, fmt.Errorf("failed to read file: %v", err)
	}

	return pipeline.UploadRequest{
		Category:   category,
		Filename:   header.Filename,
		Content:    content,
		UploadedBy: r.FormValue("uploaded_by"),
		Mode:       r.FormValue("mode"),
	}, nil
}
