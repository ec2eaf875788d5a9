package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/ingest"
	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/source"
)

// IngestService turns a source reference into chunk records with
// deterministic dedup keys and bulk-inserts them. Re-running over unchanged
// content inserts nothing.
type IngestService struct {
	chunks  ChunkStore
	fetcher source.Fetcher
}

func NewIngestService(chunks ChunkStore, fetcher source.Fetcher) *IngestService {
	return &IngestService{chunks: chunks, fetcher: fetcher}
}

// Ingest fetches and splits the referenced content and reports how many
// chunks were newly stored.
func (s *IngestService) Ingest(ctx context.Context, ref string, chunkSize int) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || chunkSize <= 0 {
		return 0, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("ref", ref), zap.Int("chunk_size", chunkSize))
	docs, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		logger.Error("fetch failed", zap.Error(err))
		return 0, err
	}
	var candidates []*model.Chunk
	for _, doc := range docs {
		candidates = append(candidates, ingest.BuildChunks(ref, doc, chunkSize)...)
	}
	written, err := s.chunks.InsertChunks(ctx, candidates)
	if err != nil {
		return 0, err
	}
	logger.Info("ingest finished",
		zap.Int("documents", len(docs)),
		zap.Int("candidates", len(candidates)),
		zap.Int("stored", len(written)),
	)
	return len(written), nil
}
