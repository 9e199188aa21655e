package core

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gwi.com/chat-assistant/internal/metrics"
	"gwi.com/chat-assistant/internal/utils"
)

type UploadedFile struct {
	Filename     string // generated storage name
	OriginalName string
	ContentType  string
	Size         int64
}

// UploadService writes uploaded payloads under a fixed directory. Files are
// not tracked after they are written.
type UploadService struct {
	dir    string
	logger zerolog.Logger
}

func NewUploadService(dir string, logger zerolog.Logger) *UploadService {
	return &UploadService{dir: dir, logger: logger}
}

// Store writes r in full before returning. Failures are *StorageError.
func (s *UploadService) Store(ctx context.Context, filename, contentType string, r io.Reader) (*UploadedFile, error) {
	file, err := s.store(ctx, filename, contentType, r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.UploadedBytes.Add(float64(file.Size))
	return file, nil
}

func (s *UploadService) store(ctx context.Context, filename, contentType string, r io.Reader) (*UploadedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: s.dir, Err: err}
	}

	// ULID tokens sort by upload time.
	name := utils.StorageName(ulid.Make().String(), filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, &StorageError{Op: "create", Path: path, Err: err}
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		s.removePartial(path)
		return nil, &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		s.removePartial(path)
		return nil, &StorageError{Op: "close", Path: path, Err: err}
	}

	s.logger.Info().
		Str("filename", name).
		Str("original_name", filename).
		Int64("size", n).
		Msg("file uploaded")

	return &UploadedFile{
		Filename:     name,
		OriginalName: filename,
		ContentType:  contentType,
		Size:         n,
	}, nil
}

func (s *UploadService) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", path).Msg("could not remove partial upload")
	}
}
