package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aetas/aetas/internal/config"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrTooLarge               = errors.New("object too large")
)

// Uploader stores an object and returns the URL it is publicly served at.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// FileStore keeps objects below a directory that the application serves under /media/.
type FileStore struct {
	dir       string
	publicURL string
	maxBytes  int64
}

func NewFileStore(cfg config.Storage) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Dir, "notes"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{
		dir:       cfg.Dir,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		maxBytes:  cfg.MaxBytes,
	}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Upload accepts images only and stores them as notes/<uuid><ext>.
func (s *FileStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(data), s.maxBytes)
	}

	name := path.Join("notes", uuid.NewString()+extension(mediaType))
	if err := os.WriteFile(filepath.Join(s.dir, filepath.FromSlash(name)), data, 0o644); err != nil {
		err := fmt.Errorf("could not write object %s: %w", name, err)
		log.Error(err)
		return "", err
	}
	log.Debugf("stored object %s (%d bytes)", name, len(data))
	return s.publicURL + "/" + name, nil
}

func extension(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
