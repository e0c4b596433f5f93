// Package archive uploads project snapshots to Google Drive.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned by the no-op uploader. Its text is what
// clients display.
var ErrNotConfigured = errors.New("Not configured")

// Uploader stores one named document and returns a link to it.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Drive uploads files into one folder.
type Drive struct {
	files    *drive.FilesService
	folderID string
}

// NewDrive creates a Drive uploader from a service account key file.
func NewDrive(ctx context.Context, credentialsPath, folderID string) (*Drive, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drive credentials: %w", err)
	}
	return NewDriveWithOptions(ctx, folderID, option.WithCredentials(creds))
}

// NewDriveWithOptions creates a Drive uploader with explicit client options.
func NewDriveWithOptions(ctx context.Context, folderID string, opts ...option.ClientOption) (*Drive, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Drive{files: srv.Files, folderID: folderID}, nil
}

func (d *Drive) Upload(ctx context.Context, name string, data []byte) (string, error) {
	meta := &drive.File{Name: name, MimeType: "application/json"}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	f, err := d.files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload %s: %w", name, err)
	}
	if f.WebViewLink != "" {
		return f.WebViewLink, nil
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view", nil
}

// Nop is used when Drive is not configured.
type Nop struct{}

func (Nop) Upload(context.Context, string, []byte) (string, error) {
	return "", ErrNotConfigured
}
