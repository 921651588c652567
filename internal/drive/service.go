// Package drive fetches POS export files from a Google Drive folder.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/ingest"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Service struct {
	srv *drive.Service
}

// NewService authenticates with a service account JSON key.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("google credentials are not configured")
	}
	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		OrderBy("name")
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}
	return files, nil
}

func (s *Service) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download file %s: %w", fileID, err)
	}
	return resp.Body, nil
}

// FindFolderByPath resolves a slash separated folder path from the drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}
		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				currentID, escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}
		currentID = result.Files[0].Id
	}
	return currentID, nil
}

// ExportSources lists the CSV and XLSX files in a folder as ingest sources.
func (s *Service) ExportSources(ctx context.Context, folderPath string) ([]ingest.Source, error) {
	folderID, err := s.FindFolderByPath(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	files, err := s.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var sources []ingest.Source
	for _, f := range files {
		if !ingest.IsExport(f.Name) {
			continue
		}
		id := f.ID
		sources = append(sources, ingest.Source{
			Name: f.Name,
			Open: func(ctx context.Context) (io.ReadCloser, error) { return s.Open(ctx, id) },
		})
	}
	return sources, nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
