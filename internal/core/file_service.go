package core

import (
	"context"
	"fmt"

	"github.com/scopedev/scopepad/internal/apperr"
	"github.com/scopedev/scopepad/internal/collection"
	"github.com/scopedev/scopepad/internal/store"
)

// FileService manages a user's ordered collection of saved code files.
type FileService struct {
	dbStore *store.SQLiteStore
}

func NewFileService(db *store.SQLiteStore) *FileService {
	return &FileService{dbStore: db}
}

func (s *FileService) CreateFile(ctx context.Context, userID int64, title, sourceCode string) (*store.File, error) {
	return s.dbStore.CreateFile(ctx, userID, title, sourceCode)
}

func (s *FileService) ListFiles(ctx context.Context, userID int64) ([]store.File, error) {
	return s.dbStore.GetFilesByUserID(ctx, userID)
}

// GetFile finds one of the user's files by id. Lookups go through the
// id-ordered collection rather than a point query so that ownership and
// existence are answered in one step.
func (s *FileService) GetFile(ctx context.Context, userID, fileID int64) (*store.File, error) {
	files, err := s.dbStore.GetFilesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, file, ok := collection.Search(files, fileID)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &file, nil
}

func (s *FileService) UpdateFile(ctx context.Context, userID, fileID int64, sourceCode string) error {
	files, err := s.dbStore.GetFilesByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if _, _, ok := collection.Search(files, fileID); !ok {
		return apperr.ErrNotFound
	}
	return s.dbStore.UpdateFileSource(ctx, fileID, sourceCode)
}

// DeleteFile removes a file and reports which remaining file the client
// should navigate to: the previous one, or the next when the deleted file
// was first. Nil when the collection is left empty.
func (s *FileService) DeleteFile(ctx context.Context, userID, fileID int64) (*store.File, error) {
	files, err := s.dbStore.GetFilesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pos, _, ok := collection.Search(files, fileID)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	var next *store.File
	if succ, ok := collection.Successor(len(files), pos); ok {
		next = &files[succ]
	}

	if err := s.dbStore.DeleteFile(ctx, fileID); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}
	return next, nil
}
