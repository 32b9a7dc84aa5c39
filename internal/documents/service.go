package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrStorageFailed wraps blob store write failures during upload.
	ErrStorageFailed = errors.New("documents: storage failed")

	errMissingDatabase  = errors.New("database handle is required")
	errMissingBlobStore = errors.New("blob store is required")
)

// ServiceConfig describes the dependencies of the documents service.
type ServiceConfig struct {
	Database   *gorm.DB
	Blobs      storage.BlobStore
	Clock      func() time.Time
	IDProvider legal.IDProvider
	Logger     *zap.Logger
	// Random feeds generated blob names; nil uses crypto/rand.
	Random io.Reader
}

// Service manages folders, document metadata and their stored bytes.
type Service struct {
	folders *legal.Repository[Folder, *Folder]
	files   *legal.Repository[Document, *Document]
	blobs   storage.BlobStore
	clock   func() time.Time
	random  io.Reader
	logger  *zap.Logger
}

// Upload is one incoming file.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// NewService constructs the documents service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("documents.service.new: %w", errMissingDatabase)
	}
	if cfg.Blobs == nil {
		return nil, fmt.Errorf("documents.service.new: %w", errMissingBlobStore)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	folders, err := legal.NewRepository[Folder](legal.RepositoryConfig{
		Database:   cfg.Database,
		Clock:      clock,
		IDProvider: cfg.IDProvider,
		Logger:     logger,
		Resource:   "folders",
		Filters:    map[string]string{"parentId": "parent_id"},
	})
	if err != nil {
		return nil, err
	}
	files, err := legal.NewRepository[Document](legal.RepositoryConfig{
		Database:   cfg.Database,
		Clock:      clock,
		IDProvider: cfg.IDProvider,
		Logger:     logger,
		Resource:   "documents",
		Filters:    map[string]string{"folderId": "folder_id"},
	})
	if err != nil {
		return nil, err
	}
	return &Service{
		folders: folders,
		files:   files,
		blobs:   cfg.Blobs,
		clock:   clock,
		random:  cfg.Random,
		logger:  logger,
	}, nil
}

// ListFolders returns the owner's folders, newest first.
func (s *Service) ListFolders(ctx context.Context, ownerID string) ([]Folder, error) {
	return s.folders.List(ctx, ownerID, nil)
}

// CreateFolder stores a new folder.
func (s *Service) CreateFolder(ctx context.Context, ownerID string, input FolderInput) (Folder, error) {
	return s.folders.Create(ctx, ownerID, input)
}

// RenameFolder changes the folder name. Only the name is taken from the input.
func (s *Service) RenameFolder(ctx context.Context, ownerID, folderID string, input FolderInput) (Folder, error) {
	return s.folders.Update(ctx, ownerID, folderID, FolderInput{VersionGuard: input.VersionGuard, Name: input.Name})
}

// DeleteFolder removes the folder and every document filed in it. Child folders are left in place.
func (s *Service) DeleteFolder(ctx context.Context, ownerID, folderID string) error {
	if _, err := s.folders.Get(ctx, ownerID, folderID); err != nil {
		return err
	}
	removed, err := s.files.DeleteWhere(ctx, ownerID, "folder_id", folderID)
	if err != nil {
		return err
	}
	for _, document := range removed {
		s.removeBlob(ctx, "documents.folder.delete", document)
	}
	_, err = s.folders.Delete(ctx, ownerID, folderID)
	return err
}

// ListFiles returns the owner's documents, optionally limited to one folder.
func (s *Service) ListFiles(ctx context.Context, ownerID, folderID string) ([]Document, error) {
	return s.files.List(ctx, ownerID, map[string]string{"folderId": folderID})
}

// GetFile loads one owned document.
func (s *Service) GetFile(ctx context.Context, ownerID, fileID string) (Document, error) {
	return s.files.Get(ctx, ownerID, fileID)
}

// Upload stores each file under a generated name and records its metadata.
func (s *Service) Upload(ctx context.Context, ownerID, folderID string, uploads []Upload) ([]Document, error) {
	const operation = "documents.upload"
	if err := s.requireFolder(ctx, ownerID, folderID); err != nil {
		return nil, err
	}
	saved := make([]Document, 0, len(uploads))
	for _, upload := range uploads {
		key, err := storage.GenerateName(upload.Name, s.clock(), s.random)
		if err != nil {
			return saved, fmt.Errorf("%s: %w", operation, err)
		}
		if err := s.blobs.Put(ctx, key, upload.Content, upload.Size, upload.ContentType); err != nil {
			s.logger.Error("documents service error",
				zap.String("operation", operation),
				zap.String("reason", "store_failed"),
				zap.String("storage_key", key),
				zap.Error(err))
			return saved, fmt.Errorf("%s: %w: %w", operation, ErrStorageFailed, err)
		}

		document := Document{
			Name:       upload.Name,
			MimeType:   upload.ContentType,
			Size:       upload.Size,
			URL:        storage.PublicURL(key),
			StorageKey: key,
			FolderID:   strings.TrimSpace(folderID),
			Tags:       []string{},
		}
		stored, err := s.files.Insert(ctx, ownerID, &document)
		if err != nil {
			s.removeBlob(ctx, operation, document)
			return saved, err
		}
		saved = append(saved, stored)
	}
	return saved, nil
}

// UpdateFile patches name, tags and folder of an owned document. A new folder must be owned.
func (s *Service) UpdateFile(ctx context.Context, ownerID, fileID string, input FileInput) (Document, error) {
	if input.FolderID != nil {
		if err := s.requireFolder(ctx, ownerID, *input.FolderID); err != nil {
			return Document{}, err
		}
	}
	return s.files.Update(ctx, ownerID, fileID, input)
}

// requireFolder accepts the root (empty id) or a folder the owner holds.
func (s *Service) requireFolder(ctx context.Context, ownerID, folderID string) error {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil
	}
	if _, err := s.folders.Get(ctx, ownerID, folderID); err != nil {
		if errors.Is(err, legal.ErrNotFound) {
			return fmt.Errorf("%w: folder %s does not exist", legal.ErrInvalidInput, folderID)
		}
		return err
	}
	return nil
}

// DeleteFile removes an owned document and its stored bytes.
func (s *Service) DeleteFile(ctx context.Context, ownerID, fileID string) error {
	document, err := s.files.Delete(ctx, ownerID, fileID)
	if err != nil {
		return err
	}
	s.removeBlob(ctx, "documents.file.delete", document)
	return nil
}

// OpenBlob streams stored bytes by their public name.
func (s *Service) OpenBlob(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, name)
}

func (s *Service) removeBlob(ctx context.Context, operation string, document Document) {
	key := document.StorageKey
	if key == "" {
		key = storage.NameFromURL(document.URL)
	}
	if err := s.blobs.Remove(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("blob removal failed",
			zap.String("operation", operation),
			zap.String("storage_key", key),
			zap.String("document_id", document.ID),
			zap.Error(err))
	}
}
