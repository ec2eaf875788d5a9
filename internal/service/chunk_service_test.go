package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/repo"
)

func TestChunkUpdate(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.InsertChunk(context.Background(), codeChunk("chunk-1", "old text"))
	require.NoError(t, err)
	svc := NewChunkService(chunks)

	newText := "new text"
	updated, err := svc.Update(context.Background(), "chunk-1", &model.ChunkPatch{Text: &newText})
	require.NoError(t, err)
	require.Equal(t, "new text", updated.Text)
}

func TestChunkUpdateEmptyPatch(t *testing.T) {
	svc := NewChunkService(newFakeChunkStore())

	_, err := svc.Update(context.Background(), "chunk-1", &model.ChunkPatch{})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestChunkUpdateUnknownID(t *testing.T) {
	svc := NewChunkService(newFakeChunkStore())

	newText := "text"
	_, err := svc.Update(context.Background(), "missing", &model.ChunkPatch{Text: &newText})
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChunkListClampsLimit(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.InsertChunk(context.Background(), codeChunk("chunk-1", "text"))
	require.NoError(t, err)
	svc := NewChunkService(chunks)
	ctx := context.Background()

	_, err = svc.List(ctx, repo.ChunkFilter{}, 0)
	require.NoError(t, err)
	require.Equal(t, defaultListLimit, chunks.lastListLimit)

	_, err = svc.List(ctx, repo.ChunkFilter{}, 400)
	require.NoError(t, err)
	require.Equal(t, 400, chunks.lastListLimit)

	// Oversized limits clamp to the max, they do not reset to the default.
	_, err = svc.List(ctx, repo.ChunkFilter{}, 501)
	require.NoError(t, err)
	require.Equal(t, maxListLimit, chunks.lastListLimit)
}

func TestChunkDelete(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.InsertChunk(context.Background(), codeChunk("chunk-1", "text"))
	require.NoError(t, err)
	svc := NewChunkService(chunks)

	require.NoError(t, svc.Delete(context.Background(), "chunk-1"))
	require.ErrorIs(t, svc.Delete(context.Background(), "chunk-1"), appErr.ErrNotFound)
}
