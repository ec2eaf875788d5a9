package service

import (
	"context"

	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/repo"
)

// ChunkService fronts the plain chunk CRUD surface.
type ChunkService struct {
	chunks ChunkStore
}

func NewChunkService(chunks ChunkStore) *ChunkService {
	return &ChunkService{chunks: chunks}
}

func (s *ChunkService) Get(ctx context.Context, chunkID string) (*model.Chunk, error) {
	return s.chunks.GetByID(ctx, chunkID)
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func (s *ChunkService) List(ctx context.Context, filter repo.ChunkFilter, limit int) ([]*model.Chunk, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.chunks.List(ctx, filter, limit)
}

// Update applies a partial update and returns the updated chunk, or
// ErrNotFound when the id is unknown.
func (s *ChunkService) Update(ctx context.Context, chunkID string, patch *model.ChunkPatch) (*model.Chunk, error) {
	if patch.Empty() {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.chunks.GetByID(ctx, chunkID); err != nil {
		return nil, err
	}
	if _, err := s.chunks.UpdateFields(ctx, chunkID, patch); err != nil {
		return nil, err
	}
	return s.chunks.GetByID(ctx, chunkID)
}

func (s *ChunkService) Delete(ctx context.Context, chunkID string) error {
	removed, err := s.chunks.DeleteByID(ctx, chunkID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
