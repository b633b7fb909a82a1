package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pagegrid/storelens/internal/catalog"
	"github.com/pagegrid/storelens/internal/db"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	healthuc "github.com/pagegrid/storelens/internal/usecase/health"
	queryuc "github.com/pagegrid/storelens/internal/usecase/query"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
)

// --- Mocks ---

type mockStore struct {
	docs  []db.Document
	err   error
	calls int
}

func (m *mockStore) Find(_ context.Context, _ string, _ db.FindQuery) ([]db.Document, error) {
	m.calls++
	return m.docs, m.err
}

func (m *mockStore) FindOne(_ context.Context, _ string, _ db.FindQuery) (db.Document, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) == 0 {
		return nil, nil
	}
	return m.docs[0], nil
}

func (m *mockStore) Aggregate(_ context.Context, _ string, _ db.AggregateQuery) ([]db.Document, error) {
	m.calls++
	return m.docs, m.err
}

func (m *mockStore) Count(_ context.Context, _ string, _ db.CountQuery) (int64, error) {
	m.calls++
	return int64(len(m.docs)), m.err
}

func (m *mockStore) Distinct(_ context.Context, _ string, _ db.DistinctQuery) ([]any, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	values := make([]any, 0, len(m.docs))
	for _, d := range m.docs {
		for _, v := range d {
			values = append(values, v)
		}
	}
	return values, m.err
}

type mockCounter struct {
	count int64
	err   error
}

func (m *mockCounter) EstimatedCount(_ context.Context, _ string) (int64, error) {
	return m.count, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(t *testing.T, store *mockStore, pingErr error) http.Handler {
	t.Helper()

	reg, err := catalog.New()
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	srv := NewServer(
		schemauc.New(reg, &mockCounter{count: 42}),
		queryuc.New(reg, store, request.DefaultLimits()),
		healthuc.New(&mockPinger{err: pingErr}),
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Mount(r)
	return r
}

func postQuery(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestExecuteQuery_Find(t *testing.T) {
	store := &mockStore{docs: []db.Document{
		{"_id": "a1", "title": "Hello", "status": "published"},
		{"_id": "a2", "title": "World", "status": "draft"},
	}}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles", "filter": {"status": "published"}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp queryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Count != 2 || len(resp.Rows) != 2 {
		t.Errorf("expected 2 rows, got count=%d rows=%d", resp.Count, len(resp.Rows))
	}
	if len(resp.Columns) == 0 || resp.Columns[0] != "_id" {
		t.Errorf("expected _id first in columns, got %v", resp.Columns)
	}
	if resp.ExecutionTimeMS < 0 {
		t.Errorf("expected non-negative execution time, got %v", resp.ExecutionTimeMS)
	}
}

func TestExecuteQuery_Count(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "tags", "operation": "count"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp queryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected count=1, got %d", resp.Count)
	}
	if len(resp.Columns) != 1 || resp.Columns[0] != "count" {
		t.Errorf("expected columns [count], got %v", resp.Columns)
	}
	if got := resp.Rows[0]["count"]; got != float64(0) {
		t.Errorf("expected rows[0].count=0, got %v", got)
	}
}

func TestExecuteQuery_InvalidBody(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": `)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeInvalidBody {
		t.Errorf("expected code %s, got %s", codeInvalidBody, resp.Code)
	}
	if store.calls != 0 {
		t.Errorf("expected no store calls, got %d", store.calls)
	}
}

func TestExecuteQuery_CollectionNotAllowed(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "system.users"}`)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeCollectionNotAllowed {
		t.Errorf("expected code %s, got %s", codeCollectionNotAllowed, resp.Code)
	}
	if store.calls != 0 {
		t.Errorf("expected no store calls, got %d", store.calls)
	}
}

func TestExecuteQuery_OperatorNotAllowed(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles", "filter": {"$where": "this.x == 1"}}`)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeOperatorNotAllowed {
		t.Errorf("expected code %s, got %s", codeOperatorNotAllowed, resp.Code)
	}
	if store.calls != 0 {
		t.Errorf("expected no store calls, got %d", store.calls)
	}
}

func TestExecuteQuery_MissingPipeline(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles", "operation": "aggregate"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeMissingField {
		t.Errorf("expected code %s, got %s", codeMissingField, resp.Code)
	}
}

func TestExecuteQuery_InvalidRange(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles", "limit": 0}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeInvalidRange {
		t.Errorf("expected code %s, got %s", codeInvalidRange, resp.Code)
	}
}

func TestExecuteQuery_InvalidOperation(t *testing.T) {
	store := &mockStore{}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles", "operation": "mapReduce"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeInvalidOperation {
		t.Errorf("expected code %s, got %s", codeInvalidOperation, resp.Code)
	}
}

func TestExecuteQuery_StoreTimeout(t *testing.T) {
	store := &mockStore{err: &db.Error{
		Op:   db.OpFind,
		Kind: db.ErrTimeout,
		Err:  errors.New("operation exceeded time limit 10000ms"),
	}}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles"}`)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Code != codeStoreTimeout {
		t.Errorf("expected code %s, got %s", codeStoreTimeout, resp.Code)
	}
	if !bytes.Contains([]byte(resp.Message), []byte("operation exceeded time limit")) {
		t.Errorf("expected driver message passed through, got %q", resp.Message)
	}
}

func TestExecuteQuery_StoreUnavailable(t *testing.T) {
	store := &mockStore{err: &db.Error{
		Op:   db.OpFind,
		Kind: db.ErrUnavailable,
		Err:  errors.New("server selection error: context deadline exceeded"),
	}}
	handler := newTestRouter(t, store, nil)

	rr := postQuery(t, handler, `{"collection": "articles"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeStoreUnavailable {
		t.Errorf("expected code %s, got %s", codeStoreUnavailable, resp.Code)
	}
}

func TestListCollections(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/collections", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp collectionListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected collection items")
	}
	if resp.Items[0].Name != "articles" {
		t.Errorf("expected articles first, got %s", resp.Items[0].Name)
	}
	if resp.Items[0].RowCount == nil || *resp.Items[0].RowCount != 42 {
		t.Errorf("expected row_count=42, got %v", resp.Items[0].RowCount)
	}
}

func TestGetCollection(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/collections/articles", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp collectionDetailResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "articles" {
		t.Errorf("expected articles, got %s", resp.Name)
	}
	if len(resp.Fields) == 0 {
		t.Fatal("expected field descriptors")
	}
	if resp.Fields[0].Name != "_id" || !resp.Fields[0].PrimaryKey {
		t.Errorf("expected _id primary key first, got %+v", resp.Fields[0])
	}
	if len(resp.Relationships) == 0 {
		t.Error("expected relationships for articles")
	}
	if len(resp.Indexes) == 0 || resp.Indexes[0].Name != "index_0" {
		t.Errorf("expected synthetic index names, got %+v", resp.Indexes)
	}
}

func TestGetCollection_Unknown(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/collections/secrets", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeCollectionNotFound {
		t.Errorf("expected code %s, got %s", codeCollectionNotFound, resp.Code)
	}
}

func TestGetCollection_NoModel(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/collections/activity_log", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeModelNotFound {
		t.Errorf("expected code %s, got %s", codeModelNotFound, resp.Code)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, errors.New("connection refused"))

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(healthuc.Degraded) {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
	if resp.Checks["store"] != string(healthuc.CheckError) {
		t.Errorf("expected store check error, got %s", resp.Checks["store"])
	}
}

func TestHealthCheck_OK(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestNotFoundRoute(t *testing.T) {
	handler := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v2/nope", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != codeNotFound {
		t.Errorf("expected code %s, got %s", codeNotFound, resp.Code)
	}
}
