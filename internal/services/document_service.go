package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"declaration-service/internal/database/minio"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrInvalidDocument = errors.New("invalid document")

// ObjectStorage is the subset of the MinIO client used for uploads.
type ObjectStorage interface {
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	DeleteFile(ctx context.Context, bucketName, objectName string) error
}

var evidenceContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentService validates and stores evidence documents and GeoJSON plot
// files.
type DocumentService struct {
	storage   ObjectStorage
	maxSize   int64
	pdfConfig *model.Configuration
}

func NewDocumentService(storage ObjectStorage, maxSize int64) *DocumentService {
	api.DisableConfigDir()
	return &DocumentService{
		storage:   storage,
		maxSize:   maxSize,
		pdfConfig: model.NewDefaultConfiguration(),
	}
}

// StoreEvidence checks an evidence upload and stores it. The returned object
// name identifies the document in the declaration payload.
func (s *DocumentService) StoreEvidence(ctx context.Context, sessionID, fileName string, data []byte) (string, error) {
	if err := s.checkSize(data); err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !evidenceContentTypes[contentType] {
		return "", fmt.Errorf("%w: unsupported file type %s, upload a PDF, PNG or JPEG", ErrInvalidDocument, contentType)
	}

	if contentType == "application/pdf" {
		if err := api.Validate(bytes.NewReader(data), s.pdfConfig); err != nil {
			slog.Info("evidence pdf rejected", "session_id", sessionID, "file_name", fileName, "error", err)
			return "", fmt.Errorf("%w: %s is not a valid PDF", ErrInvalidDocument, fileName)
		}
	}

	objectName := objectNameFor(sessionID, fileName)
	if err := s.storage.UploadBytes(ctx, minio.Storage.Evidence, objectName, data, contentType); err != nil {
		return "", fmt.Errorf("failed to store evidence document: %w", err)
	}
	return objectName, nil
}

// StoreGeoJSON stores the raw plot file. Its content is judged by the geo
// validation, not here.
func (s *DocumentService) StoreGeoJSON(ctx context.Context, sessionID, fileName string, data []byte) (string, error) {
	if err := s.checkSize(data); err != nil {
		return "", err
	}

	objectName := objectNameFor(sessionID, fileName)
	if err := s.storage.UploadBytes(ctx, minio.Storage.GeoArtifacts, objectName, data, "application/geo+json"); err != nil {
		return "", fmt.Errorf("failed to store geojson: %w", err)
	}
	return objectName, nil
}

// DeleteEvidence removes a stored evidence document.
func (s *DocumentService) DeleteEvidence(ctx context.Context, objectName string) error {
	return s.storage.DeleteFile(ctx, minio.Storage.Evidence, objectName)
}

// DeleteGeoJSON removes a stored plot file.
func (s *DocumentService) DeleteGeoJSON(ctx context.Context, objectName string) error {
	return s.storage.DeleteFile(ctx, minio.Storage.GeoArtifacts, objectName)
}

func (s *DocumentService) checkSize(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidDocument)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidDocument, s.maxSize)
	}
	return nil
}

func objectNameFor(sessionID, fileName string) string {
	base := unsafeFileChars.ReplaceAllString(filepath.Base(fileName), "_")
	if base == "" || base == "." || base == "_" {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", sessionID, uuid.NewString()[:8], base)
}
