package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/source"
)

func TestIngestRejectsBadInput(t *testing.T) {
	svc := NewIngestService(newFakeChunkStore(), &fakeFetcher{})

	_, err := svc.Ingest(context.Background(), "", 500)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.Ingest(context.Background(), "https://example.com/repo.git", 0)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestIngestStoresChunks(t *testing.T) {
	chunks := newFakeChunkStore()
	fetcher := &fakeFetcher{docs: []source.Document{
		{Path: "src/main.py", Content: "def main():\n    run()\n"},
		{Path: "README.md", Content: "# MeTTa\n\nIntro text.\n\n## Usage\n\nRun it.\n"},
	}}
	svc := NewIngestService(chunks, fetcher)

	count, err := svc.Ingest(context.Background(), "https://example.com/metta.git", 500)
	require.NoError(t, err)
	require.Positive(t, count)

	stored, err := chunks.ListUnembedded(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, stored, count)
}

func TestIngestRerunIsIdempotent(t *testing.T) {
	chunks := newFakeChunkStore()
	fetcher := &fakeFetcher{docs: []source.Document{
		{Path: "src/main.py", Content: "def main():\n    run()\n"},
	}}
	svc := NewIngestService(chunks, fetcher)

	first, err := svc.Ingest(context.Background(), "https://example.com/metta.git", 500)
	require.NoError(t, err)
	require.Positive(t, first)

	second, err := svc.Ingest(context.Background(), "https://example.com/metta.git", 500)
	require.NoError(t, err)
	require.Zero(t, second)
}
