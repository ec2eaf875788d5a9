package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
)

func testChunk(id string) *model.Chunk {
	return &model.Chunk{
		ChunkID: id,
		Source:  model.SourceCode,
		Text:    "def f(): pass",
		Code: &model.CodeMetadata{
			Project: "metta",
			Repo:    "https://example.com/metta.git",
			File:    []string{"src/main.py"},
			Section: []string{"L1-L1"},
		},
	}
}

func TestChunkRepoInsertIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	id := uniqueID(t, "chunk")
	written, err := repo.InsertChunk(ctx, testChunk(id))
	require.NoError(t, err)
	require.Equal(t, id, written)

	// Second insert of the same id is a silent no-op.
	written, err = repo.InsertChunk(ctx, testChunk(id))
	require.NoError(t, err)
	require.Empty(t, written)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "metta", stored.Code.Project)
	require.False(t, stored.IsEmbedded)
}

func TestChunkRepoInsertRejectsInvalid(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)

	bad := testChunk(uniqueID(t, "chunk"))
	bad.Code = nil
	_, err := repo.InsertChunk(context.Background(), bad)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestChunkRepoBulkInsertDedups(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	a := uniqueID(t, "a")
	b := uniqueID(t, "b")
	written, err := repo.InsertChunks(ctx, []*model.Chunk{testChunk(a), testChunk(b), testChunk(a)})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{a, b}, written)

	// Re-inserting the same batch writes nothing.
	written, err = repo.InsertChunks(ctx, []*model.Chunk{testChunk(a), testChunk(b)})
	require.NoError(t, err)
	require.Empty(t, written)
}

func TestChunkRepoBulkInsertSkipsCommittedDuplicate(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	// A row committed by a concurrent writer: the bulk insert must skip it
	// silently and still write the rest of the batch.
	a := uniqueID(t, "a")
	b := uniqueID(t, "b")
	_, err := repo.InsertChunk(ctx, testChunk(a))
	require.NoError(t, err)

	written, err := repo.InsertChunks(ctx, []*model.Chunk{testChunk(a), testChunk(b)})
	require.NoError(t, err)
	require.Equal(t, []string{b}, written)

	stored, err := repo.GetByID(ctx, b)
	require.NoError(t, err)
	require.Equal(t, b, stored.ChunkID)
}

func TestChunkRepoEmbeddingStatus(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	a := uniqueID(t, "a")
	b := uniqueID(t, "b")
	_, err := repo.InsertChunks(ctx, []*model.Chunk{testChunk(a), testChunk(b)})
	require.NoError(t, err)

	pending, err := repo.ListUnembedded(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	modified, err := repo.SetEmbeddingStatus(ctx, []string{a, b}, true)
	require.NoError(t, err)
	require.EqualValues(t, 2, modified)

	pending, err = repo.ListUnembedded(ctx, 100)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestChunkRepoUpdateAndDelete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	id := uniqueID(t, "chunk")
	_, err := repo.InsertChunk(ctx, testChunk(id))
	require.NoError(t, err)

	newText := "def g(): pass"
	affected, err := repo.UpdateFields(ctx, id, &model.ChunkPatch{Text: &newText})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, newText, stored.Text)

	removed, err := repo.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = repo.GetByID(ctx, id)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChunkRepoListFilters(t *testing.T) {
	conn := openTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()

	code := testChunk(uniqueID(t, "code"))
	doc := &model.Chunk{
		ChunkID: uniqueID(t, "doc"),
		Source:  model.SourceDocumentation,
		Text:    "Atoms are the basic building blocks.",
		Doc: &model.DocMetadata{
			URL:       "https://docs.example.com/atoms",
			PageTitle: "Atoms",
			Category:  "basics",
		},
	}
	_, err := repo.InsertChunks(ctx, []*model.Chunk{code, doc})
	require.NoError(t, err)

	docs, err := repo.List(ctx, ChunkFilter{Source: model.SourceDocumentation}, 100)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, doc.ChunkID, docs[0].ChunkID)

	byProject, err := repo.List(ctx, ChunkFilter{Project: "metta"}, 100)
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	require.Equal(t, code.ChunkID, byProject[0].ChunkID)
}
