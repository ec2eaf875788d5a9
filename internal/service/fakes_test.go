package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/repo"
	"github.com/Fraol-M/metta-assistant/internal/source"
	"github.com/Fraol-M/metta-assistant/internal/vectorstore"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeUserStore) GetByID(ctx context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type fakeChunkStore struct {
	mu            sync.Mutex
	chunks        map[string]*model.Chunk
	lastListLimit int
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{chunks: map[string]*model.Chunk{}}
}

func (s *fakeChunkStore) InsertChunk(ctx context.Context, chunk *model.Chunk) (string, error) {
	if err := chunk.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrInvalid, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[chunk.ChunkID]; ok {
		return "", nil
	}
	clone := *chunk
	s.chunks[chunk.ChunkID] = &clone
	return chunk.ChunkID, nil
}

func (s *fakeChunkStore) InsertChunks(ctx context.Context, chunks []*model.Chunk) ([]string, error) {
	var written []string
	for _, chunk := range chunks {
		if chunk.Validate() != nil {
			continue
		}
		id, err := s.InsertChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if id != "" {
			written = append(written, id)
		}
	}
	return written, nil
}

func (s *fakeChunkStore) GetByID(ctx context.Context, chunkID string) (*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *chunk
	return &clone, nil
}

func (s *fakeChunkStore) List(ctx context.Context, filter repo.ChunkFilter, limit int) ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastListLimit = limit
	var out []*model.Chunk
	for _, id := range s.sortedIDs() {
		chunk := s.chunks[id]
		if filter.Source != "" && chunk.Source != filter.Source {
			continue
		}
		if filter.Project != "" && (chunk.Code == nil || chunk.Code.Project != filter.Project) {
			continue
		}
		if filter.Category != "" && (chunk.Doc == nil || chunk.Doc.Category != filter.Category) {
			continue
		}
		clone := *chunk
		out = append(out, &clone)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeChunkStore) ListUnembedded(ctx context.Context, limit int) ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Chunk
	for _, id := range s.sortedIDs() {
		chunk := s.chunks[id]
		if chunk.IsEmbedded {
			continue
		}
		clone := *chunk
		out = append(out, &clone)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeChunkStore) UpdateFields(ctx context.Context, chunkID string, patch *model.ChunkPatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return 0, nil
	}
	if patch.Text != nil {
		chunk.Text = *patch.Text
	}
	if patch.IsEmbedded != nil {
		chunk.IsEmbedded = *patch.IsEmbedded
	}
	if patch.Code != nil {
		chunk.Source = model.SourceCode
		chunk.Code = patch.Code
		chunk.Doc = nil
	}
	if patch.Doc != nil {
		chunk.Source = model.SourceDocumentation
		chunk.Doc = patch.Doc
		chunk.Code = nil
	}
	return 1, nil
}

func (s *fakeChunkStore) DeleteByID(ctx context.Context, chunkID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[chunkID]; !ok {
		return 0, nil
	}
	delete(s.chunks, chunkID)
	return 1, nil
}

func (s *fakeChunkStore) SetEmbeddingStatus(ctx context.Context, chunkIDs []string, value bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, id := range chunkIDs {
		if chunk, ok := s.chunks[id]; ok {
			chunk.IsEmbedded = value
			modified++
		}
	}
	return modified, nil
}

func (s *fakeChunkStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeEmbedder struct {
	mu       sync.Mutex
	calls    int
	failText string
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.failText != "" && strings.Contains(text, e.failText) {
		return nil, fmt.Errorf("provider rejected text")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (e *fakeEmbedder) ModelName() string {
	return "fake-embedding-model"
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeVectorStore struct {
	mu       sync.Mutex
	upserts  int
	searches int
	records  map[string]vectorstore.Record
	hits     []vectorstore.Hit
	failIDs  map[string]bool
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: map[string]vectorstore.Record{}, failIDs: map[string]bool{}}
}

func (v *fakeVectorStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, record := range records {
		if v.failIDs[record.ChunkID] {
			return fmt.Errorf("index write failed")
		}
	}
	v.upserts++
	for _, record := range records {
		v.records[record.ChunkID] = record
	}
	return nil
}

func (v *fakeVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searches++
	if topK > len(v.hits) {
		topK = len(v.hits)
	}
	return v.hits[:topK], nil
}

func (v *fakeVectorStore) Close() error {
	return nil
}

type fakeFetcher struct {
	docs []source.Document
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) ([]source.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}
