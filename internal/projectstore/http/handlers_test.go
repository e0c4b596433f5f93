package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/archive"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	wsync "github.com/studiodesk/studio-backend/internal/workspace/sync"
)

type memDocs struct {
	mu      gosync.Mutex
	docs    []domain.Project
	folders map[string]string
}

func newMemDocs() *memDocs { return &memDocs{folders: map[string]string{}} }

func (m *memDocs) List(context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, len(m.docs))
	for i := range m.docs {
		out[len(m.docs)-1-i] = m.docs[i]
	}
	return out, nil
}

func (m *memDocs) Get(_ context.Context, id domain.ID) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID.Equal(id) {
			p := m.docs[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (m *memDocs) Upsert(_ context.Context, p domain.Project) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[p.ID.String()]
	if !ok {
		folder = p.Name
		m.folders[p.ID.String()] = folder
	}
	for i := range m.docs {
		if m.docs[i].ID.Equal(p.ID) {
			m.docs[i] = p
			return folder, nil
		}
	}
	m.docs = append(m.docs, p)
	return folder, nil
}

func (m *memDocs) Delete(_ context.Context, id domain.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID.Equal(id) {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memDocs) DeleteByFolder(_ context.Context, folder string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.folders {
		if f == folder {
			delete(m.folders, id)
			for i := range m.docs {
				if m.docs[i].ID.String() == id {
					m.docs = append(m.docs[:i], m.docs[i+1:]...)
					return true, nil
				}
			}
		}
	}
	return false, nil
}

type memFiles struct{ keys []string }

func (f *memFiles) Put(_ context.Context, key string, body io.ReadSeeker, _ int64, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://files.example.com/" + key, nil
}

type memUploader struct{ names []string }

func (u *memUploader) Upload(_ context.Context, name string, _ []byte) (string, error) {
	u.names = append(u.names, name)
	return "https://drive.example.com/" + name, nil
}

func newServer(t *testing.T) (*httptest.Server, *memDocs, *memFiles, *memUploader) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	docs, store, up := newMemDocs(), &memFiles{}, &memUploader{}
	r := gin.New()
	New(docs, store, archive.NewService(up, nil)).Register(r.Group("/api"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, docs, store, up
}

func TestRemoteClientRoundTrip(t *testing.T) {
	srv, docs, store, up := newServer(t)
	client := wsync.NewRemoteClient(srv.URL+"/api", 0)
	ctx := context.Background()

	folder, err := client.SaveProject(ctx, domain.Project{ID: "1", Name: "Villa", Sections: []domain.Section{{Name: "АР"}}})
	require.NoError(t, err)
	assert.Equal(t, "Villa", folder)

	folder, err = client.SaveProject(ctx, domain.Project{ID: "1", Name: "Villa renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Villa", folder, "folder stays stable across renames")

	_, err = client.SaveProject(ctx, domain.Project{ID: "2", Name: "House"})
	require.NoError(t, err)

	list, err := client.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "House", list[0].Name, "newest first")

	res, err := client.UploadFile(ctx, "Villa", "АР", "plan.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/Villa/АР/plan.pdf", res.URL)
	assert.Equal(t, []string{"Villa/АР/plan.pdf"}, store.keys)

	require.NoError(t, client.ArchiveProject(ctx, "1"))
	assert.Equal(t, []string{"Villa renamed.json"}, up.names)

	require.NoError(t, client.DeleteProject(ctx, "2", ""))
	require.NoError(t, client.DeleteProject(ctx, "", "Villa"))
	assert.Empty(t, docs.docs)
}

func TestSaveAssignsIDs(t *testing.T) {
	srv, docs, _, _ := newServer(t)

	body := `{"name":"Villa","sections":[{"name":"АР"},{"id":"keep","name":"КР"}]}`
	resp, err := http.Post(srv.URL+"/api/save-project", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, docs.docs, 1)
	p := docs.docs[0]
	assert.False(t, p.ID.IsZero())
	assert.False(t, p.Sections[0].ID.IsZero())
	assert.Equal(t, domain.ID("keep"), p.Sections[1].ID)
}

func TestSaveRejectsEmpty(t *testing.T) {
	srv, _, _, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/api/save-project", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, false, out["success"])
}

func TestArchiveUnknownProject(t *testing.T) {
	srv, _, _, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/api/archive-project", "application/json", bytes.NewBufferString(`{"projectId":"nope"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(newMemDocs(), nil, nil).Register(r.Group("/api"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, err := wsync.NewRemoteClient(srv.URL+"/api", 0).UploadFile(context.Background(), "Villa", "", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}
