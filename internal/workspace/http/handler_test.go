package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
)

type memPersister struct{ saveErr error }

func (m *memPersister) Load(context.Context) (*domain.State, error) { return &domain.State{}, nil }
func (m *memPersister) Save(context.Context, *domain.State) error   { return m.saveErr }

func newRouter(t *testing.T, p *memPersister) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.New(service.Deps{Store: state.New(p)})
	r := gin.New()
	New(svc).Register(r.Group("/api/v1/workspace"))
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createProject(t *testing.T, r http.Handler, body any) map[string]any {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/workspace/projects", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["project"].(map[string]any)
}

func TestProjectLifecycle(t *testing.T) {
	r := newRouter(t, &memPersister{})

	p := createProject(t, r, map[string]any{"name": "Villa", "amount": 1000, "sections": []string{"АР"}})
	pid := fmt.Sprint(p["id"])

	w := do(r, http.MethodGet, "/api/v1/workspace/projects/"+pid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["project"].(map[string]any)
	assert.Equal(t, "Villa", got["name"])
	assert.EqualValues(t, 25, got["progress"])

	w = do(r, http.MethodPatch, "/api/v1/workspace/projects/"+pid, map[string]any{"address": "Tashkent"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tashkent", decode(t, w)["project"].(map[string]any)["address"])

	w = do(r, http.MethodDelete, "/api/v1/workspace/projects/"+pid, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/v1/workspace/projects/"+pid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProjectValidation(t *testing.T) {
	r := newRouter(t, &memPersister{})

	w := do(r, http.MethodPost, "/api/v1/workspace/projects", map[string]any{"name": "A", "currency": "EUR"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/projects", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeStatus(t *testing.T) {
	r := newRouter(t, &memPersister{})
	p := createProject(t, r, map[string]any{"name": "Villa", "sections": []string{"АР"}})
	pid := fmt.Sprint(p["id"])
	sid := fmt.Sprint(p["sections"].([]any)[0].(map[string]any)["id"])

	w := do(r, http.MethodPost, "/api/v1/workspace/projects/"+pid+"/status", map[string]any{"status": "correction"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/workspace/projects/"+pid+"/status", map[string]any{"status": "correction", "comment": "fix"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)["result"].(map[string]any)
	assert.Equal(t, true, res["changed"])
	assert.Equal(t, "correction", res["new_status"])

	w = do(r, http.MethodPost, "/api/v1/workspace/projects/"+pid+"/sections/"+sid+"/status", map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode(t, w)["result"].(map[string]any)
	assert.Equal(t, sid, res["section_id"])

	w = do(r, http.MethodPost, "/api/v1/workspace/projects/"+pid+"/status", map[string]any{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryConflict(t *testing.T) {
	r := newRouter(t, &memPersister{})

	w := do(r, http.MethodPost, "/api/v1/workspace/employees", map[string]any{"name": "Ivan"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodPost, "/api/v1/workspace/employees", map[string]any{"name": "ivan "})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/api/v1/workspace/workload/best", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ivan", decode(t, w)["engineer"].(map[string]any)["name"])

	w = do(r, http.MethodGet, "/api/v1/workspace/workload/best?exclude=Ivan", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransactions(t *testing.T) {
	r := newRouter(t, &memPersister{})

	w := do(r, http.MethodPost, "/api/v1/workspace/transactions", map[string]any{"type": "income", "amount": "150.50", "currency": "USD"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/v1/workspace/transactions", map[string]any{"type": "income", "amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/workspace/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["transactions"], 1)

	w = do(r, http.MethodDelete, "/api/v1/workspace/transactions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotaExceeded(t *testing.T) {
	r := newRouter(t, &memPersister{saveErr: domain.ErrStorageQuota})

	w := do(r, http.MethodPost, "/api/v1/workspace/projects", map[string]any{"name": "Villa"})
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
}

func TestUploadWithoutRemote(t *testing.T) {
	r := newRouter(t, &memPersister{})
	p := createProject(t, r, map[string]any{"name": "Villa"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "a.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("img"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/workspace/projects/%v/photos", p["id"]), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPullWithoutRemoteWarns(t *testing.T) {
	r := newRouter(t, &memPersister{})

	w := do(r, http.MethodPost, "/api/v1/workspace/sync/pull", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["warning"])
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrProjectNotFound:                                      http.StatusNotFound,
		fmt.Errorf("x: %w", domain.ErrNotFound):                        http.StatusNotFound,
		domain.ErrCommentRequired:                                      http.StatusBadRequest,
		domain.ErrAlreadyExists:                                        http.StatusConflict,
		fmt.Errorf("%w: %w", state.ErrPersist, domain.ErrStorageQuota): http.StatusInsufficientStorage,
		domain.ErrRemoteUnavailable:                                    http.StatusBadGateway,
		state.ErrPersist:                                               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}
