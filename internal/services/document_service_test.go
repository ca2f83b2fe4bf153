package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declaration-service/internal/database/minio"
)

func TestDocumentService_StoreEvidence(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	svc := NewDocumentService(storage, 1024)

	objectName, err := svc.StoreEvidence(ctx, "session-1", "../Origin Certificate.png", pngBytes)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(objectName, "session-1/"))
	assert.True(t, strings.HasSuffix(objectName, "-Origin_Certificate.png"))
	assert.Contains(t, storage.objects, minio.Storage.Evidence+"/"+objectName)
}

func TestDocumentService_StoreEvidenceRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too large", append(append([]byte{}, pngBytes...), make([]byte, 2048)...)},
		{"plain text", []byte("declaration notes")},
		{"broken pdf", []byte("%PDF-1.7\nthis is not a pdf body")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemoryStorage()
			svc := NewDocumentService(storage, 1024)

			_, err := svc.StoreEvidence(context.Background(), "session-1", "file", tt.data)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Empty(t, storage.objects)
		})
	}
}

func TestDocumentService_StorageFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.err = errors.New("bucket unavailable")
	svc := NewDocumentService(storage, 0)

	_, err := svc.StoreEvidence(context.Background(), "session-1", "cert.png", pngBytes)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidDocument)
}

func TestDocumentService_StoreGeoJSON(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewDocumentService(storage, 0)

	objectName, err := svc.StoreGeoJSON(context.Background(), "session-1", "plots.geojson", []byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Contains(t, storage.objects, minio.Storage.GeoArtifacts+"/"+objectName)

	_, err = svc.StoreGeoJSON(context.Background(), "session-1", "plots.geojson", nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestObjectNameFor_Sanitizes(t *testing.T) {
	name := objectNameFor("s", "/etc/passwd")
	assert.True(t, strings.HasSuffix(name, "-passwd"))

	name = objectNameFor("s", "###")
	assert.True(t, strings.HasSuffix(name, "-upload"))
}
