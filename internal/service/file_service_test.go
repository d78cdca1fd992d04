package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

func newTestFileService(t *testing.T, maxSize int64) *FileService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewFileService(store, signer, FileServiceConfig{
		MaxSizeBytes: maxSize,
		AllowedMIMEs: []string{"application/pdf", "image/png", "image/jpeg"},
		URLPrefix:    "/api/v1/files/",
	}, nil)
}

func TestFileServiceUploadAndOpen(t *testing.T) {
	svc := newTestFileService(t, 1024)

	resp, err := svc.Upload(context.Background(), FileResume, bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.FileID, "resume/"))
	assert.True(t, strings.HasSuffix(resp.FileID, ".pdf"))
	assert.True(t, strings.HasPrefix(resp.URL, "/api/v1/files/"))

	token := strings.TrimPrefix(resp.URL, "/api/v1/files/")
	f, err := svc.Open(token)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, body)
}

func TestFileServiceRejectsDisallowedTypes(t *testing.T) {
	svc := newTestFileService(t, 1024)

	_, err := svc.Upload(context.Background(), FileResume, strings.NewReader("just some text"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Upload(context.Background(), FilePhoto, bytes.NewReader(pdfBytes))
	require.Error(t, err)

	resp, err := svc.Upload(context.Background(), FilePhoto, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.FileID, ".png"))

	_, err = svc.Upload(context.Background(), FileCategory("avatar"), bytes.NewReader(pngBytes))
	require.Error(t, err)

	_, err = svc.Upload(context.Background(), FileResume, bytes.NewReader(nil))
	require.Error(t, err)
}

func TestFileServiceEnforcesSize(t *testing.T) {
	svc := newTestFileService(t, 16)

	_, err := svc.Upload(context.Background(), FileResume, bytes.NewReader(pdfBytes))
	require.Error(t, err)
	assert.Equal(t, "file exceeds the maximum size", appErrors.FromError(err).Message)
}

func TestFileServiceOpenRejectsBadTokens(t *testing.T) {
	svc := newTestFileService(t, 1024)

	_, err := svc.Open("garbage")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resp, err := svc.Link("resume/missing.pdf")
	require.NoError(t, err)
	_, err = svc.Open(strings.TrimPrefix(resp.URL, "/api/v1/files/"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	svc.Remove(context.Background(), "../escape")
}
