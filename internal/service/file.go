package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"launchpad/internal/model"
	"launchpad/internal/repository"
	"launchpad/internal/storage"
)

// presignTTL is how long a generated download URL stays valid.
const presignTTL = 15 * time.Minute

// FileListResult is the service-level DTO for paginated files.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// FileService defines the use cases for a user's files. Objects live in
// storage under the owner's prefix; metadata rows carry the ownership
// that scopes every lookup.
type FileService interface {
	// Upload streams the content to object storage under the owner's
	// prefix, saves metadata to DB, and rolls back storage if the DB
	// save fails. originalFilename is kept as the display name; the
	// object key is UUID-based with the original extension.
	Upload(ctx context.Context, userID string, r io.Reader, originalFilename string, contentType string, size int64) (*model.File, error)

	// List returns the user's files using limit/offset and a total count.
	List(ctx context.Context, userID string, limit, offset int) (*FileListResult, error)

	// Get returns a single file's metadata.
	Get(ctx context.Context, userID, id string) (*model.File, error)

	// Download returns the file content as a stream plus its metadata.
	// The caller owns the ReadCloser.
	Download(ctx context.Context, userID, id string) (io.ReadCloser, *model.File, error)

	// DownloadURL returns a time-limited URL for fetching the content
	// directly from storage.
	DownloadURL(ctx context.Context, userID, id string) (string, error)

	// Delete removes a file from both storage and the metadata store.
	Delete(ctx context.Context, userID, id string) error
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store storage.Storage
	repo  repository.FileRepository
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository) FileService {
	return &fileService{store: store, repo: repo}
}

func (s *fileService) Upload(ctx context.Context, userID string, r io.Reader, originalFilename string, contentType string, size int64) (*model.File, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	// Owner-prefixed object key: {userID}/{uuid}{ext}.
	id := uuid.New().String()
	ext := filepath.Ext(originalFilename)
	key := userID + "/" + id + ext

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	file := &model.File{
		ID:          id,
		UserID:      userID,
		Filename:    originalFilename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, file)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated files without exposing repository types.
func (s *fileService) List(ctx context.Context, userID string, limit, offset int) (*FileListResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a file's metadata for its owner.
func (s *fileService) Get(ctx context.Context, userID, id string) (*model.File, error) {
	file, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Download streams a file's content for its owner.
func (s *fileService) Download(ctx context.Context, userID, id string) (io.ReadCloser, *model.File, error) {
	file, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("get from storage: %w", err)
	}
	return rc, file, nil
}

// DownloadURL presigns a direct download for the file's owner.
func (s *fileService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	file, err := s.find(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, file.StoragePath, presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// Delete removes a file from storage, then deletes its record.
func (s *fileService) Delete(ctx context.Context, userID, id string) error {
	file, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid losing the storage reference
	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *fileService) find(ctx context.Context, userID, id string) (*model.File, error) {
	if userID == "" || id == "" {
		return nil, ErrIDRequired
	}
	file, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}
