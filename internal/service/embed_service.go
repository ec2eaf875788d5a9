package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/ai"
	"github.com/Fraol-M/metta-assistant/internal/vectorstore"
)

// EmbedService drives one bounded batch of the embedding pipeline per call.
// Repeated invocation is the resumption mechanism: anything that fails in a
// run stays unembedded and is picked up by the next one.
type EmbedService struct {
	chunks    ChunkStore
	embedder  ai.IEmbedder
	vectors   vectorstore.Store
	batchSize int
}

func NewEmbedService(chunks ChunkStore, embedder ai.IEmbedder, vectors vectorstore.Store, batchSize int) *EmbedService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &EmbedService{chunks: chunks, embedder: embedder, vectors: vectors, batchSize: batchSize}
}

// ProcessPending embeds up to one batch of unembedded chunks, upserts the
// vectors, and bulk-flips is_embedded for the chunks whose upserts
// succeeded. It returns the count marked embedded.
//
// A per-chunk embedding or upsert failure is logged and skipped, never
// aborting the batch. A crash between the index writes and the status
// update is harmless: the next run re-embeds and the upsert overwrites.
func (s *EmbedService) ProcessPending(ctx context.Context) (int, error) {
	logger := logutil.GetLogger(ctx)
	pending, err := s.chunks.ListUnembedded(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	logger.Info("embedding batch selected", zap.Int("size", len(pending)))

	embedded := make([]string, 0, len(pending))
	for _, chunk := range pending {
		vector, err := s.embedder.Embed(ctx, chunk.Text, ai.TaskTypeDocument)
		if err != nil {
			logger.Warn("embed failed, chunk left pending", zap.String("chunk_id", chunk.ChunkID), zap.Error(err))
			continue
		}
		record := vectorstore.Record{
			ChunkID: chunk.ChunkID,
			Vector:  vector,
			Text:    chunk.Text,
			Payload: chunk.PayloadMirror(),
		}
		if err := s.vectors.Upsert(ctx, []vectorstore.Record{record}); err != nil {
			logger.Warn("vector upsert failed, chunk left pending", zap.String("chunk_id", chunk.ChunkID), zap.Error(err))
			continue
		}
		embedded = append(embedded, chunk.ChunkID)
	}
	if len(embedded) == 0 {
		return 0, nil
	}
	modified, err := s.chunks.SetEmbeddingStatus(ctx, embedded, true)
	if err != nil {
		return 0, err
	}
	logger.Info("embedding batch finished", zap.Int("embedded", len(embedded)), zap.Int64("marked", modified))
	return len(embedded), nil
}
