package service

import (
	"context"

	"github.com/Fraol-M/metta-assistant/internal/model"
	"github.com/Fraol-M/metta-assistant/internal/repo"
)

// UserStore and ChunkStore are the persistence surfaces the services
// consume. repo.UserRepo and repo.ChunkRepo implement them; tests plug in
// in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

type ChunkStore interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) (string, error)
	InsertChunks(ctx context.Context, chunks []*model.Chunk) ([]string, error)
	GetByID(ctx context.Context, chunkID string) (*model.Chunk, error)
	List(ctx context.Context, filter repo.ChunkFilter, limit int) ([]*model.Chunk, error)
	ListUnembedded(ctx context.Context, limit int) ([]*model.Chunk, error)
	UpdateFields(ctx context.Context, chunkID string, patch *model.ChunkPatch) (int64, error)
	DeleteByID(ctx context.Context, chunkID string) (int64, error)
	SetEmbeddingStatus(ctx context.Context, chunkIDs []string, value bool) (int64, error)
}
