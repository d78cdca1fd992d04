package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

// sniffBytes matches the default read limit of mimetype.
const sniffBytes = 3072

// fileOwner scopes file tokens; owner ids must not contain dots so emails are not used.
const fileOwner = "files"

// FileCategory names the slot a file is uploaded for.
type FileCategory string

const (
	FileResume      FileCategory = "resume"
	FilePhoto       FileCategory = "photo"
	FileLogo        FileCategory = "logo"
	FileDocument    FileCategory = "document"
	FileOfferLetter FileCategory = "offer_letter"
)

// Valid reports whether c is a known category.
func (c FileCategory) Valid() bool {
	switch c {
	case FileResume, FilePhoto, FileLogo, FileDocument, FileOfferLetter:
		return true
	}
	return false
}

func (c FileCategory) imageOnly() bool {
	return c == FilePhoto || c == FileLogo
}

type objectStore interface {
	SaveStream(key string, r io.Reader, limit int64) (int64, error)
	Open(key string) (*os.File, error)
	Delete(key string) error
}

type urlSigner interface {
	Generate(ownerID, key string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

// FileServiceConfig bounds uploads and sets the public URL prefix.
type FileServiceConfig struct {
	MaxSizeBytes int64
	AllowedMIMEs []string
	URLPrefix    string
}

// FileService stores uploads and hands out signed preview links.
type FileService struct {
	store   objectStore
	signer  urlSigner
	cfg     FileServiceConfig
	allowed map[string]struct{}
	logger  *zap.Logger
}

// NewFileService constructs a FileService.
func NewFileService(store objectStore, signer urlSigner, cfg FileServiceConfig, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	cfg.URLPrefix = strings.TrimRight(cfg.URLPrefix, "/")
	return &FileService{store: store, signer: signer, cfg: cfg, allowed: allowed, logger: logger}
}

// Upload checks type and size, then stores r under a generated key in the category prefix.
func (s *FileService) Upload(ctx context.Context, category FileCategory, r io.Reader) (*dto.FileResponse, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown file category")
	}
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}

	detected := mimetype.Detect(head)
	if !s.mimeAllowed(detected, category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file type "+detected.String()+" is not allowed")
	}

	key := string(category) + "/" + uuid.NewString() + detected.Extension()
	if _, err := s.store.SaveStream(key, io.MultiReader(bytes.NewReader(head), r), s.cfg.MaxSizeBytes); err != nil {
		if errors.Is(err, storage.ErrObjectTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum size")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	return s.Link(key)
}

// Link signs a preview URL for a stored file id.
func (s *FileService) Link(fileID string) (*dto.FileResponse, error) {
	token, expiresAt, err := s.signer.Generate(fileOwner, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign file url")
	}
	return &dto.FileResponse{FileID: fileID, URL: s.cfg.URLPrefix + "/" + token, ExpiresAt: expiresAt}, nil
}

// Open resolves a signed token to the stored file. The caller closes it.
func (s *FileService) Open(token string) (*os.File, error) {
	owner, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "file link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid file link")
	}
	if owner != fileOwner {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid file link")
	}
	file, err := s.store.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return file, nil
}

// Remove deletes a stored file. Failures are logged and swallowed.
func (s *FileService) Remove(_ context.Context, fileID string) {
	if s == nil || fileID == "" {
		return
	}
	if err := s.store.Delete(fileID); err != nil {
		s.logger.Warn("file delete failed", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (s *FileService) mimeAllowed(detected *mimetype.MIME, category FileCategory) bool {
	if category.imageOnly() && !strings.HasPrefix(detected.String(), "image/") {
		return false
	}
	if len(s.allowed) == 0 {
		return true
	}
	for m := detected; m != nil; m = m.Parent() {
		base := strings.ToLower(strings.SplitN(m.String(), ";", 2)[0])
		if _, ok := s.allowed[base]; ok {
			return true
		}
	}
	return false
}
