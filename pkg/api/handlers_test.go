package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/storage"
)

// newTestRouter wires a handler to a storage engine in a temporary directory.
func newTestRouter(t *testing.T, options ...HandlerOption) (*mux.Router, *storage.StorageEngine) {
	t.Helper()
	engine, err := storage.NewStorageEngine(storage.WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	handler := NewHandler(engine, engine, options...)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, engine
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHandler_HandleInsert(t *testing.T) {
	tests := []struct {
		name           string
		collection     string
		body           interface{}
		expectedStatus int
	}{
		{"valid document", "users", map[string]interface{}{"name": "Alice", "age": 30}, http.StatusCreated},
		{"document with existing ID", "users", map[string]interface{}{"_id": "123", "name": "Bob"}, http.StatusCreated},
		{"numeric ID", "users", map[string]interface{}{"_id": 5}, http.StatusBadRequest},
		{"empty ID", "users", map[string]interface{}{"_id": ""}, http.StatusBadRequest},
		{"malformed body", "users", `{"name":`, http.StatusBadRequest},
		{"array body", "users", `[1,2]`, http.StatusBadRequest},
		{"invalid collection name", "_hidden", map[string]interface{}{"name": "x"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			w := doRequest(t, router, "POST", "/collections/"+tt.collection+"/documents", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.expectedStatus == http.StatusCreated {
				var doc map[string]interface{}
				decodeBody(t, w, &doc)
				assert.NotEmpty(t, doc["_id"])
			} else {
				var errResp ErrorResponse
				decodeBody(t, w, &errResp)
				assert.Equal(t, tt.expectedStatus, errResp.Code)
				assert.NotEmpty(t, errResp.Message)
			}
		})
	}
}

func TestHandler_DuplicateID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "POST", "/collections/users/documents", map[string]interface{}{"_id": "a"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, "POST", "/collections/users/documents", map[string]interface{}{"_id": "a"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_DocumentLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "POST", "/collections/users/documents",
		map[string]interface{}{"_id": "u1", "name": "Alice", "age": 30, "city": "Oslo"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Get
	w = doRequest(t, router, "GET", "/collections/users/documents/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	decodeBody(t, w, &doc)
	assert.Equal(t, "Alice", doc["name"])

	// Exists
	w = doRequest(t, router, "GET", "/collections/users/documents/u1/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exists map[string]interface{}
	decodeBody(t, w, &exists)
	assert.Equal(t, true, exists["exists"])

	// Partial update keeps the other fields
	w = doRequest(t, router, "PATCH", "/collections/users/documents/u1", map[string]interface{}{"age": 31})
	require.Equal(t, http.StatusOK, w.Code)
	doc = nil
	decodeBody(t, w, &doc)
	assert.Equal(t, map[string]interface{}{"_id": "u1", "name": "Alice", "age": float64(31), "city": "Oslo"}, doc)

	// Replacement drops them
	w = doRequest(t, router, "PUT", "/collections/users/documents/u1", map[string]interface{}{"name": "Alicia"})
	require.Equal(t, http.StatusOK, w.Code)
	doc = nil
	decodeBody(t, w, &doc)
	assert.Equal(t, map[string]interface{}{"_id": "u1", "name": "Alicia"}, doc)

	w = doRequest(t, router, "POST", "/collections/users/documents", map[string]interface{}{"_id": "u2"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(t, router, "GET", "/collections/users/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed DocumentListResponse
	decodeBody(t, w, &listed)
	assert.Equal(t, DocumentListResponse{Collection: "users", IDs: []string{"u1", "u2"}, Count: 2}, listed)

	// Delete returns what was removed
	w = doRequest(t, router, "DELETE", "/collections/users/documents/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc = nil
	decodeBody(t, w, &doc)
	assert.Equal(t, map[string]interface{}{"_id": "u1", "name": "Alicia"}, doc)

	w = doRequest(t, router, "GET", "/collections/users/documents", nil)
	listed = DocumentListResponse{}
	decodeBody(t, w, &listed)
	assert.Equal(t, []string{"u2"}, listed.IDs)

	w = doRequest(t, router, "GET", "/collections/users/documents/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, router, "DELETE", "/collections/users/documents/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, router, "PATCH", "/collections/users/documents/u1", map[string]interface{}{"age": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, router, "PUT", "/collections/users/documents/u1", map[string]interface{}{"age": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, "GET", "/collections/users/documents/u1/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exists = nil
	decodeBody(t, w, &exists)
	assert.Equal(t, false, exists["exists"])
}

func TestHandler_UnknownCollection(t *testing.T) {
	router, _ := newTestRouter(t)

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{"GET", "/collections/ghost/documents/x", nil},
		{"GET", "/collections/ghost/documents/x/exists", nil},
		{"PATCH", "/collections/ghost/documents/x", map[string]interface{}{"a": 1}},
		{"PUT", "/collections/ghost/documents/x", map[string]interface{}{"a": 1}},
		{"DELETE", "/collections/ghost/documents/x", nil},
		{"GET", "/collections/ghost/documents", nil},
		{"GET", "/collections/ghost/find", nil},
		{"POST", "/collections/ghost/query", nil},
		{"GET", "/collections/ghost/find_with_stream", nil},
		{"GET", "/collections/ghost/indexes", nil},
		{"POST", "/collections/ghost/indexes/name", nil},
		{"DELETE", "/collections/ghost", nil},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := doRequest(t, router, r.method, r.path, r.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}

	// None of the reads created the collection
	w := doRequest(t, router, "GET", "/collections", nil)
	var list map[string]interface{}
	decodeBody(t, w, &list)
	assert.Equal(t, float64(0), list["count"])
}

func TestHandler_Collections(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "PUT", "/collections/orders", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(t, router, "PUT", "/collections/orders", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doRequest(t, router, "PUT", "/collections/-bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, "POST", "/collections/users/documents", map[string]interface{}{"name": "x"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, "GET", "/collections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Collections []string `json:"collections"`
		Count       int      `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, []string{"orders", "users"}, list.Collections)
	assert.Equal(t, 2, list.Count)

	w = doRequest(t, router, "DELETE", "/collections/orders", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, router, "DELETE", "/collections/orders", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	decodeBody(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Collections)

	w = doRequest(t, router, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	decodeBody(t, w, &stats)
	assert.Equal(t, float64(1), stats["collections"])
	assert.Equal(t, float64(1), stats["documents"])
}

func TestHandler_HandleBatchInsert(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "valid batch",
			body: BatchInsertRequest{Documents: []map[string]interface{}{
				{"name": "Alice"}, {"name": "Bob"},
			}},
			expectedStatus: http.StatusCreated,
			expectedCount:  2,
		},
		{"empty batch", BatchInsertRequest{}, http.StatusBadRequest, 0},
		{
			name: "over the limit",
			body: BatchInsertRequest{Documents: []map[string]interface{}{
				{"n": 1}, {"n": 2}, {"n": 3},
			}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate ids in batch",
			body: BatchInsertRequest{Documents: []map[string]interface{}{
				{"_id": "a"}, {"_id": "a"},
			}},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "one invalid document",
			body: BatchInsertRequest{Documents: []map[string]interface{}{
				{"_id": "a"}, {"_id": 7},
			}},
			expectedStatus: http.StatusBadRequest,
		},
		{"malformed body", `{"documents": [`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, engine := newTestRouter(t, WithBatchLimit(2))

			w := doRequest(t, router, "POST", "/collections/users/batch", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp BatchInsertResponse
				decodeBody(t, w, &resp)
				assert.True(t, resp.Success)
				assert.Equal(t, tt.expectedCount, resp.InsertedCount)
				assert.Len(t, resp.IDs, tt.expectedCount)
				for _, id := range resp.IDs {
					exists, err := engine.Exists("users", id)
					require.NoError(t, err)
					assert.True(t, exists)
				}
				return
			}

			// Nothing from a rejected batch is stored
			docs, err := engine.Query("users", nil)
			if err == nil {
				assert.Empty(t, docs)
			} else {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}
}

func seedHandlerUsers(t *testing.T, router http.Handler) {
	t.Helper()
	users := []map[string]interface{}{
		{"_id": "u1", "name": "Alice", "age": 30, "active": true, "address": map[string]interface{}{"city": "Oslo"}},
		{"_id": "u2", "name": "Bob", "age": 25, "active": false, "address": map[string]interface{}{"city": "Bergen"}},
		{"_id": "u3", "name": "Charlie", "age": 35, "active": true, "address": map[string]interface{}{"city": "Oslo"}},
		{"_id": "u4", "name": "Dana", "age": 28, "active": true, "address": map[string]interface{}{"city": "Tromsø"}},
	}
	w := doRequest(t, router, "POST", "/collections/users/batch", BatchInsertRequest{Documents: users})
	require.Equal(t, http.StatusCreated, w.Code)
}

func resultIDs(result domain.PaginationResult) []string {
	out := make([]string, len(result.Documents))
	for i, doc := range result.Documents {
		out[i], _ = doc.ID()
	}
	return out
}

func TestHandler_HandleFindAll(t *testing.T) {
	router, _ := newTestRouter(t)
	seedHandlerUsers(t, router)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    int64
		hasNext  bool
	}{
		{"no filter", "", []string{"u1", "u2", "u3", "u4"}, 4, false},
		{"bool filter", "?active=true", []string{"u1", "u3", "u4"}, 3, false},
		{"number filter", "?age=25", []string{"u2"}, 1, false},
		{"nested path", "?address.city=Oslo", []string{"u1", "u3"}, 2, false},
		{"combined", "?address.city=Oslo&age=35", []string{"u3"}, 1, false},
		{"no match", "?name=Zed", []string{}, 0, false},
		{"limit", "?limit=2", []string{"u1", "u2"}, 4, true},
		{"offset", "?limit=2&offset=2", []string{"u3", "u4"}, 4, false},
		{"filter and limit", "?active=true&limit=1&offset=1", []string{"u3"}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, "GET", "/collections/users/find"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var result domain.PaginationResult
			decodeBody(t, w, &result)
			assert.Equal(t, tt.expected, resultIDs(result))
			assert.Equal(t, tt.total, result.Total)
			assert.Equal(t, tt.hasNext, result.HasNext)
		})
	}
}

func TestHandler_HandleFindAll_Cursor(t *testing.T) {
	router, _ := newTestRouter(t)
	seedHandlerUsers(t, router)

	var seen []string
	path := "/collections/users/find?limit=3"
	for {
		w := doRequest(t, router, "GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var result domain.PaginationResult
		decodeBody(t, w, &result)
		seen = append(seen, resultIDs(result)...)
		if !result.HasNext {
			break
		}
		path = "/collections/users/find?limit=3&after=" + result.NextCursor
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, seen)
}

func TestHandler_HandleFindAll_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)
	seedHandlerUsers(t, router)

	queries := []string{
		"?limit=abc",
		"?offset=-1",
		"?limit=-5",
		fmt.Sprintf("?limit=%d", domain.DefaultPaginationOptions().MaxLimit+1),
		"?after=not-a-cursor",
		"?after=abc&offset=2",
		"?a..b=1",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			w := doRequest(t, router, "GET", "/collections/users/find"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_HandleFindWithFilter(t *testing.T) {
	router, _ := newTestRouter(t)
	seedHandlerUsers(t, router)

	tests := []struct {
		name           string
		path           string
		body           interface{}
		expectedStatus int
		expected       []string
	}{
		{"empty body", "/collections/users/query", nil, http.StatusOK, []string{"u1", "u2", "u3", "u4"}},
		{
			name:           "comparison",
			path:           "/collections/users/query",
			body:           `{"field_path":"age","operator":"gte","value":30}`,
			expectedStatus: http.StatusOK,
			expected:       []string{"u1", "u3"},
		},
		{
			name:           "or with not",
			path:           "/collections/users/query",
			body:           `{"or":[{"field_path":"name","operator":"eq","value":"Bob"},{"not":{"field_path":"active","operator":"eq","value":true}}]}`,
			expectedStatus: http.StatusOK,
			expected:       []string{"u2"},
		},
		{
			name:           "and with pagination",
			path:           "/collections/users/query?limit=1",
			body:           `{"and":[{"field_path":"address.city","operator":"eq","value":"Oslo"},{"field_path":"active","operator":"exists"}]}`,
			expectedStatus: http.StatusOK,
			expected:       []string{"u1"},
		},
		{"unknown operator", "/collections/users/query", `{"field_path":"age","operator":"like","value":1}`, http.StatusBadRequest, nil},
		{"not an object", "/collections/users/query", `[1]`, http.StatusBadRequest, nil},
		{"malformed json", "/collections/users/query", `{"field_path":`, http.StatusBadRequest, nil},
		{"bad limit", "/collections/users/query?limit=x", nil, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, "POST", tt.path, tt.body)
			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var result domain.PaginationResult
			decodeBody(t, w, &result)
			assert.Equal(t, tt.expected, resultIDs(result))
		})
	}
}

func TestHandler_HandleFindAllWithStream(t *testing.T) {
	router, _ := newTestRouter(t)
	seedHandlerUsers(t, router)

	w := doRequest(t, router, "GET", "/collections/users/find_with_stream?active=true&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	// Pagination parameters are ignored
	var docs []domain.Document
	decodeBody(t, w, &docs)
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i], _ = doc.ID()
	}
	assert.Equal(t, []string{"u1", "u3", "u4"}, ids)

	w = doRequest(t, router, "GET", "/collections/users/find_with_stream?name=Nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs = nil
	decodeBody(t, w, &docs)
	assert.Empty(t, docs)
}

func TestHandler_FindNonFiniteWords(t *testing.T) {
	router, _ := newTestRouter(t)
	docs := []map[string]interface{}{
		{"_id": "w1", "word": "Inf"},
		{"_id": "w2", "word": "nan"},
		{"_id": "w3", "word": "Infinity"},
		{"_id": "w4", "word": "-inf"},
		{"_id": "w5", "word": "plain"},
	}
	w := doRequest(t, router, "POST", "/collections/words/batch", BatchInsertRequest{Documents: docs})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		word     string
		expected string
	}{
		{"Inf", "w1"},
		{"nan", "w2"},
		{"Infinity", "w3"},
		{"-inf", "w4"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			w := doRequest(t, router, "GET", "/collections/words/find?word="+tt.word, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var result domain.PaginationResult
			decodeBody(t, w, &result)
			assert.Equal(t, []string{tt.expected}, resultIDs(result))

			w = doRequest(t, router, "GET", "/collections/words/find_with_stream?word="+tt.word, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var streamed []domain.Document
			decodeBody(t, w, &streamed)
			require.Len(t, streamed, 1)
			id, _ := streamed[0].ID()
			assert.Equal(t, tt.expected, id)
		})
	}

	assert.Equal(t, "1.5", fmt.Sprint(parseQueryValue("1.5")))
	assert.Equal(t, "NaN", parseQueryValue("NaN"))
	assert.Equal(t, "+Inf", parseQueryValue("+Inf"))
}

func TestHandler_Indexes(t *testing.T) {
	router, engine := newTestRouter(t)
	seedHandlerUsers(t, router)

	w := doRequest(t, router, "POST", "/collections/users/indexes/address.city", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IndexResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "address.city", resp.Field)

	w = doRequest(t, router, "POST", "/collections/users/indexes/address.city", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doRequest(t, router, "POST", "/collections/users/indexes/_id", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doRequest(t, router, "POST", "/collections/users/indexes/name", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, "GET", "/collections/users/indexes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Indexes    []string `json:"indexes"`
		IndexCount int      `json:"index_count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, []string{"address.city", "name"}, list.Indexes)
	assert.Equal(t, 2, list.IndexCount)

	// Indexed lookups return the same documents as a scan
	w = doRequest(t, router, "GET", "/collections/users/find?address.city=Oslo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.PaginationResult
	decodeBody(t, w, &result)
	assert.Equal(t, []string{"u1", "u3"}, resultIDs(result))

	w = doRequest(t, router, "DELETE", "/collections/users/indexes/name", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, router, "DELETE", "/collections/users/indexes/name", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	indexes, err := engine.GetIndexes("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"address.city"}, indexes)
}

func TestHandler_Info(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info InfoResponse
	decodeBody(t, w, &info)
	assert.Equal(t, "hippodb", info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Contains(t, info.Features, "indexes")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{domain.ErrInvalidDocument, http.StatusBadRequest},
		{domain.ErrInvalidFilter, http.StatusBadRequest},
		{domain.ErrInvalidName, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrDuplicateID, http.StatusConflict},
		{domain.ErrDiskFull, http.StatusInsufficientStorage},
		{domain.ErrPermissionDenied, http.StatusInternalServerError},
		{domain.ErrIO, http.StatusInternalServerError},
		{domain.ErrCorrupt, http.StatusInternalServerError},
		{fmt.Errorf("%w: flush users: %w", domain.ErrDiskFull, fmt.Errorf("no space left on device")), http.StatusInsufficientStorage},
		{fmt.Errorf("document 3: %w", domain.ErrDuplicateID), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}
