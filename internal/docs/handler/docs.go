// Package handler provides HTTP handlers for the document service.
package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chopper-ai/chopper-docs/internal/docs/biz"
	"github.com/chopper-ai/chopper-docs/internal/docs/metrics"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/internal/pkg/httputils"
	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// DocsHandler handles document HTTP requests.
type DocsHandler struct {
	service        biz.Service
	maxUploadBytes int64
}

// NewDocsHandler creates a new DocsHandler.
func NewDocsHandler(service biz.Service, maxUploadBytes int64) *DocsHandler {
	return &DocsHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Ingest handles a multipart document upload. Multiple "file" parts are
// processed as one batch: individual files fail independently and the
// per-file outcomes are reported back. A single-file upload keeps plain
// result-or-error semantics.
func (h *DocsHandler) Ingest(c *gin.Context) {
	ownerID := c.PostForm("owner_id")
	if ownerID == "" {
		httputils.WriteResponse(c, errors.ErrDocInvalidRequest.WithMessage("owner_id is required"), nil)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDocInvalidRequest.WithMessage("multipart form is required"), nil)
		return
	}
	fileHeaders := form.File["file"]
	if len(fileHeaders) == 0 {
		httputils.WriteResponse(c, errors.ErrDocInvalidRequest.WithMessage("file is required"), nil)
		return
	}

	sessionID := c.PostForm("session_id")
	documentID := c.PostForm("document_id")
	replaceSession := c.PostForm("replace_session") == "true"
	if documentID != "" && len(fileHeaders) > 1 {
		httputils.WriteResponse(c, errors.ErrDocInvalidRequest.WithMessage("document_id cannot be combined with a multi-file upload"), nil)
		return
	}

	reqs := make([]*biz.IngestRequest, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
			httputils.WriteResponse(c, errors.ErrDocTooLarge.WithMessagef("file %q exceeds the upload size limit", fileHeader.Filename), nil)
			return
		}

		content, err := readUpload(fileHeader)
		if err != nil {
			httputils.WriteResponse(c, errors.ErrDocIngestFailed.WithCause(err), nil)
			return
		}

		reqs = append(reqs, &biz.IngestRequest{
			OwnerID:    ownerID,
			SessionID:  sessionID,
			DocumentID: documentID,
			Filename:   fileHeader.Filename,
			MimeType:   fileHeader.Header.Get("Content-Type"),
			Content:    content,
		})
	}

	if len(reqs) == 1 && !replaceSession {
		result, err := h.service.Ingest(c.Request.Context(), reqs[0])
		httputils.WriteResponse(c, err, result)
		return
	}

	batch, err := h.service.IngestBatch(c.Request.Context(), reqs, replaceSession)
	httputils.WriteResponse(c, err, batch)
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// QueryRequest represents a query request.
type QueryRequest struct {
	OwnerID    string `json:"owner_id" binding:"required"`
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Query      string `json:"query" binding:"required"`
}

// Query retrieves relevant chunks and assembles a context prompt.
func (h *DocsHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	scope := store.Scope{
		OwnerID:    req.OwnerID,
		SessionID:  req.SessionID,
		DocumentID: req.DocumentID,
	}
	result, err := h.service.Query(c.Request.Context(), scope, req.Query)
	httputils.WriteResponse(c, err, result)
}

// DeleteResult is the payload returned by deletion endpoints.
type DeleteResult struct {
	ChunksDeleted int64 `json:"chunks_deleted"`
}

// DeleteDocument removes all chunks of a document.
func (h *DocsHandler) DeleteDocument(c *gin.Context) {
	ownerID := c.Query("owner_id")
	documentID := c.Param("id")

	deleted, err := h.service.DeleteDocument(c.Request.Context(), ownerID, documentID)
	httputils.WriteResponse(c, err, &DeleteResult{ChunksDeleted: deleted})
}

// DeleteSession removes all document chunks of a session.
func (h *DocsHandler) DeleteSession(c *gin.Context) {
	ownerID := c.Query("owner_id")
	sessionID := c.Param("session_id")

	deleted, err := h.service.DeleteSession(c.Request.Context(), ownerID, sessionID)
	httputils.WriteResponse(c, err, &DeleteResult{ChunksDeleted: deleted})
}

// CountResult is the payload returned by the count endpoint.
type CountResult struct {
	ChunkCount int64 `json:"chunk_count"`
}

// Count returns the number of chunks within a tenant scope.
func (h *DocsHandler) Count(c *gin.Context) {
	scope := store.Scope{
		OwnerID:    c.Query("owner_id"),
		SessionID:  c.Query("session_id"),
		DocumentID: c.Query("document_id"),
	}

	count, err := h.service.CountChunks(c.Request.Context(), scope)
	httputils.WriteResponse(c, err, &CountResult{ChunkCount: count})
}

// Stats returns service statistics.
func (h *DocsHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	httputils.WriteResponse(c, err, stats)
}

// Metrics exposes business metrics in Prometheus text format.
func (h *DocsHandler) Metrics(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8",
		[]byte(metrics.GetDocsMetrics().Export("chopper", "docs")))
}

// Healthz reports service liveness.
func (h *DocsHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
