package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/ai"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/vectorstore"
)

const (
	defaultTopK = 5
	maxTopK     = 50
)

type SearchHit struct {
	ChunkID  string            `json:"chunk_id"`
	Score    float32           `json:"score"`
	Chunk    string            `json:"chunk"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchService embeds a query with the same embedder the pipeline uses
// and returns the nearest chunks from the vector index.
type SearchService struct {
	embedder ai.IEmbedder
	vectors  vectorstore.Store
}

func NewSearchService(embedder ai.IEmbedder, vectors vectorstore.Store) *SearchService {
	return &SearchService{embedder: embedder, vectors: vectors}
}

// Search rejects a blank query before any provider or index call. Results
// come back in the index's score order, at most min(topK, matches) of them.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	vector, err := s.embedder.Embed(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		logutil.GetLogger(ctx).Error("query embedding failed", zap.Error(err))
		return nil, err
	}
	found, err := s.vectors.Search(ctx, vector, topK)
	if err != nil {
		logutil.GetLogger(ctx).Error("vector search failed", zap.Error(err))
		return nil, err
	}
	hits := make([]SearchHit, 0, len(found))
	for _, hit := range found {
		hits = append(hits, SearchHit{
			ChunkID:  hit.ChunkID,
			Score:    hit.Score,
			Chunk:    hit.Text,
			Metadata: hit.Payload,
		})
	}
	return hits, nil
}
