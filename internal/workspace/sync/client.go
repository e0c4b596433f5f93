// Package sync keeps the local workspace and the remote project server in
// step.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/studiodesk/studio-backend/internal/metrics"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// RemoteClient talks to the project document server.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteClient creates a client for baseURL, e.g. http://host:8080/api.
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type saveResponse struct {
	Success    bool   `json:"success"`
	FolderName string `json:"folderName"`
	Message    string `json:"message,omitempty"`
}

// UploadResult is the server's answer to a file upload.
type UploadResult struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ArchiveResult reports the outcome of a server-side archive.
type ArchiveResult struct {
	Success     bool          `json:"success"`
	GoogleDrive ChannelResult `json:"googleDrive"`
	Telegram    ChannelResult `json:"telegram"`
	Message     string        `json:"message,omitempty"`
}

type ChannelResult struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Error   string `json:"error,omitempty"`
}

// remoteProject is a stored document. Older documents carry the title under
// "project" instead of "name".
type remoteProject struct {
	domain.Project
	LegacyName string `json:"project,omitempty"`
}

// ListProjects returns every project document on the server.
func (c *RemoteClient) ListProjects(ctx context.Context) (projects []domain.Project, err error) {
	defer observe("list", time.Now(), &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var docs []remoteProject
	if err := c.do(req, &docs); err != nil {
		return nil, err
	}
	projects = make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		p := d.Project
		if strings.TrimSpace(p.Name) == "" {
			p.Name = strings.TrimSpace(d.LegacyName)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// SaveProject upserts p and returns the folder name the server assigned.
func (c *RemoteClient) SaveProject(ctx context.Context, p domain.Project) (folder string, err error) {
	defer observe("save", time.Now(), &err)

	var resp saveResponse
	if err := c.postJSON(ctx, "/save-project", p, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("save project rejected: %s", resp.Message)
	}
	return resp.FolderName, nil
}

// DeleteProject removes a project by id, falling back to the folder name.
func (c *RemoteClient) DeleteProject(ctx context.Context, id domain.ID, folderName string) (err error) {
	defer observe("delete", time.Now(), &err)

	body := map[string]string{}
	if !id.IsZero() {
		body["id"] = id.String()
	}
	if folderName != "" {
		body["folderName"] = folderName
	}
	var resp saveResponse
	if err := c.postJSON(ctx, "/delete-project", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete project rejected: %s", resp.Message)
	}
	return nil
}

// UploadFile sends one file as multipart form data.
func (c *RemoteClient) UploadFile(ctx context.Context, folderName, sectionName, filename string, r io.Reader) (res *UploadResult, err error) {
	defer observe("upload", time.Now(), &err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("folderName", folderName)
	_ = w.WriteField("sectionName", sectionName)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("upload rejected: %s", out.Message)
	}
	return &out, nil
}

// Archive asks the server to archive a project.
func (c *RemoteClient) Archive(ctx context.Context, id domain.ID) (res *ArchiveResult, err error) {
	defer observe("archive", time.Now(), &err)

	var out ArchiveResult
	if err := c.postJSON(ctx, "/archive-project", map[string]string{"projectId": id.String()}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return &out, fmt.Errorf("archive rejected: %s", out.Message)
	}
	return &out, nil
}

// ArchiveProject satisfies workflow.Archiver. A Drive failure reported by
// the server counts as a failed archive.
func (c *RemoteClient) ArchiveProject(ctx context.Context, id domain.ID) error {
	res, err := c.Archive(ctx, id)
	if err != nil {
		return err
	}
	if !res.GoogleDrive.Success {
		return fmt.Errorf("archive upload failed: %s", res.GoogleDrive.Error)
	}
	return nil
}

func (c *RemoteClient) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *RemoteClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("project server returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveSync(op, start, *err)
}
