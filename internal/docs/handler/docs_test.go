package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chopper-ai/chopper-docs/internal/docs/biz"
	"github.com/chopper-ai/chopper-docs/internal/docs/handler"
	"github.com/chopper-ai/chopper-docs/internal/docs/router"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectorOf(text)
	}
	return out, nil
}

func (stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return vectorOf(text), nil
}

func (stubEmbedder) Name() string { return "stub" }

func vectorOf(text string) []float32 {
	vec := make([]float32, 4)
	for i, r := range text {
		vec[i%4] += float32(r % 17)
	}
	return vec
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := biz.NewDocsService(store.NewMemoryStore(), stubEmbedder{}, nil, nil)
	h := handler.NewDocsHandler(svc, 1<<20)

	engine := gin.New()
	router.Register(engine, h)
	return engine
}

func uploadRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, engine *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

func ingestDocument(t *testing.T, engine *gin.Engine, ownerID, sessionID, filename, content string) string {
	t.Helper()

	fields := map[string]string{"owner_id": ownerID}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	w, resp := doRequest(t, engine, uploadRequest(t, fields, filename, content))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result biz.IngestResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.NotEmpty(t, result.DocumentID)
	return result.DocumentID
}

func TestIngestEndpoint(t *testing.T) {
	engine := newTestServer(t)

	w, resp := doRequest(t, engine, uploadRequest(t,
		map[string]string{"owner_id": "alice"}, "notes.txt", "Hello chunked world. This is a document."))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	var result biz.IngestResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Equal(t, 1, result.ChunkCount)
}

func TestIngestMissingOwner(t *testing.T) {
	engine := newTestServer(t)

	w, resp := doRequest(t, engine, uploadRequest(t, nil, "notes.txt", "content"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotZero(t, resp.Code)
}

func TestIngestMissingFile(t *testing.T) {
	engine := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("owner_id", "alice"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w, _ := doRequest(t, engine, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestUnsupportedFormat(t *testing.T) {
	engine := newTestServer(t)

	w, _ := doRequest(t, engine, uploadRequest(t,
		map[string]string{"owner_id": "alice"}, "legacy.doc", "old word file"))

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestQueryEndpoint(t *testing.T) {
	engine := newTestServer(t)
	ingestDocument(t, engine, "alice", "", "notes.txt", "Queries are answered from document chunks.")

	body, _ := json.Marshal(map[string]string{
		"owner_id": "alice",
		"query":    "how are queries answered?",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w, resp := doRequest(t, engine, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result biz.QueryResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.NotEmpty(t, result.Sources)
	assert.Contains(t, result.Prompt, "--- DOCUMENT CONTENT ---")
}

func TestQueryValidation(t *testing.T) {
	engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"no owner"}`))
	req.Header.Set("Content-Type", "application/json")

	w, _ := doRequest(t, engine, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDocumentEndpoint(t *testing.T) {
	engine := newTestServer(t)
	docID := ingestDocument(t, engine, "alice", "", "doc.txt", "document to delete")

	req := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/v1/documents/%s?owner_id=alice", docID), nil)
	w, resp := doRequest(t, engine, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result handler.DeleteResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, int64(1), result.ChunksDeleted)

	// Deleting again returns not found
	w, _ = doRequest(t, engine, httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/v1/documents/%s?owner_id=alice", docID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	engine := newTestServer(t)
	ingestDocument(t, engine, "alice", "sess1", "a.txt", "first document")
	ingestDocument(t, engine, "alice", "sess1", "b.txt", "second document")

	req := httptest.NewRequest(http.MethodDelete,
		"/v1/sessions/sess1/documents?owner_id=alice", nil)
	w, resp := doRequest(t, engine, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result handler.DeleteResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, int64(2), result.ChunksDeleted)
}

func TestCountEndpoint(t *testing.T) {
	engine := newTestServer(t)
	ingestDocument(t, engine, "alice", "sess1", "a.txt", "first document")

	w, resp := doRequest(t, engine, httptest.NewRequest(http.MethodGet,
		"/v1/documents/count?owner_id=alice&session_id=sess1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var result handler.CountResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, int64(1), result.ChunkCount)

	// Other tenants see nothing
	w, resp = doRequest(t, engine, httptest.NewRequest(http.MethodGet,
		"/v1/documents/count?owner_id=bob", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, int64(0), result.ChunkCount)
}

func TestStatsEndpoint(t *testing.T) {
	engine := newTestServer(t)
	ingestDocument(t, engine, "alice", "", "doc.txt", "stats document")

	w, resp := doRequest(t, engine, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, float64(1), stats["chunk_count"])
	assert.Equal(t, "stub", stats["embed_provider"])
}

func TestHealthzEndpoint(t *testing.T) {
	engine := newTestServer(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestServer(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chopper_docs_queries_total")
}

func TestRequestIDPropagated(t *testing.T) {
	engine := newTestServer(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func batchUploadRequest(t *testing.T, fields map[string]string, files [][2]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile("file", f[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestIngestBatchEndpoint(t *testing.T) {
	engine := newTestServer(t)

	w, resp := doRequest(t, engine, batchUploadRequest(t,
		map[string]string{"owner_id": "alice", "session_id": "s1"},
		[][2]string{
			{"good.txt", "First uploaded document with text."},
			{"legacy.doc", "unsupported binary"},
			{"more.txt", "Second uploaded document with text."},
		}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch biz.BatchIngestResult
	require.NoError(t, json.Unmarshal(resp.Data, &batch))
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Items, 3)
	assert.Equal(t, "legacy.doc", batch.Items[1].Filename)
	assert.NotEmpty(t, batch.Items[1].Error)
	assert.NotNil(t, batch.Items[0].Result)
}

func TestIngestBatchReplaceSessionEndpoint(t *testing.T) {
	engine := newTestServer(t)

	ingestDocument(t, engine, "alice", "s1", "old.txt", "Stale session content.")

	w, resp := doRequest(t, engine, batchUploadRequest(t,
		map[string]string{"owner_id": "alice", "session_id": "s1", "replace_session": "true"},
		[][2]string{{"fresh.txt", "Fresh session content."}}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch biz.BatchIngestResult
	require.NoError(t, json.Unmarshal(resp.Data, &batch))
	require.Equal(t, 1, batch.Succeeded)

	countReq := httptest.NewRequest(http.MethodGet, "/v1/documents/count?owner_id=alice&session_id=s1", nil)
	w, resp = doRequest(t, engine, countReq)
	require.Equal(t, http.StatusOK, w.Code)

	var count handler.CountResult
	require.NoError(t, json.Unmarshal(resp.Data, &count))
	assert.Equal(t, int64(1), count.ChunkCount)
}

func TestIngestBatchRejectsDocumentID(t *testing.T) {
	engine := newTestServer(t)

	w, _ := doRequest(t, engine, batchUploadRequest(t,
		map[string]string{"owner_id": "alice", "document_id": "doc-1"},
		[][2]string{{"a.txt", "one"}, {"b.txt", "two"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
