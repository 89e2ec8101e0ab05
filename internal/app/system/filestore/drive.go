package filestore

import (
	"context"
	"fmt"
	"io"
	"path"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Drive uploads objects into a Google Drive folder and shares each file with
// anyone holding the link.
type Drive struct {
	svc      *drive.Service
	folderID string
}

// NewDrive builds a Drive store from a service-account credentials file.
func NewDrive(ctx context.Context, credentialsFile, folderID string) (*Drive, error) {
	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile), option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}
	return &Drive{svc: svc, folderID: folderID}, nil
}

func (d *Drive) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	meta := &drive.File{Name: path.Base(name), MimeType: contentType}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	f, err := d.svc.Files.Create(meta).Media(r).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}
	perm := &drive.Permission{Role: "reader", Type: "anyone"}
	if _, err := d.svc.Permissions.Create(f.Id, perm).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("drive share %s: %w", f.Id, err)
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view", nil
}
