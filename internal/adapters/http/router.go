package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
	"github.com/meridiancde/nmtc-backend/internal/core/ports"
	"github.com/meridiancde/nmtc-backend/internal/core/usecase"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/detection"
	"github.com/meridiancde/nmtc-backend/internal/observability/metrics"
)

type Router struct {
	ingestUC *usecase.IngestDocumentUseCase
	statusUC *usecase.DetectionStatusUseCase
	repo     ports.DocumentRepository
	registry *detection.Registry
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(
	ingestUC *usecase.IngestDocumentUseCase,
	statusUC *usecase.DetectionStatusUseCase,
	repo ports.DocumentRepository,
	registry *detection.Registry,
	m *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		ingestUC: ingestUC,
		statusUC: statusUC,
		repo:     repo,
		registry: registry,
		metrics:  m,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubroutes)
	mux.HandleFunc("/v1/document-types", rt.listDocumentTypes)

	var handler http.Handler = mux
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(rt.service, doc.MimeType)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// documentSubroutes dispatches /v1/documents/{id}[/detection[/confirm]|/reprocess].
func (rt *Router) documentSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch sub {
	case "":
		rt.getDocumentByID(w, r, id)
	case "detection":
		rt.getDetectionStatus(w, r, id)
	case "detection/confirm":
		rt.confirmDetection(w, r, id)
	case "reprocess":
		rt.reprocessDocument(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getDetectionStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	status, err := rt.statusUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordWorkflowTier(rt.service, string(status.Decision.Tier))
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) confirmDetection(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentType string `json:"document_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentType) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_type is required"})
		return
	}

	if err := rt.statusUC.Confirm(r.Context(), id, domain.DocumentType(req.DocumentType), time.Now().UTC()); err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordConfirmation(rt.service, req.DocumentType)
	}

	status, err := rt.statusUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.statusUC.Reprocess(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"document_id": id, "status": "queued"})
}

func (rt *Router) listDocumentTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_types": rt.registry.SupportedTypes(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
