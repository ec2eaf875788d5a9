package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Fraol-M/metta-assistant/internal/ai"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	return []float32{1, 2, 3}, nil
}

func (e *countingEmbedder) ModelName() string { return "test-model" }

func TestCacheHitSkipsProvider(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "hello", ai.TaskTypeQuery)
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "hello", ai.TaskTypeQuery)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestTaskTypeSeparatesCacheEntries(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	_, err := cached.Embed(context.Background(), "hello", ai.TaskTypeQuery)
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), "hello", ai.TaskTypeDocument)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachedResultIsIsolated(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "hello", ai.TaskTypeQuery)
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(context.Background(), "hello", ai.TaskTypeQuery)
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapDisabledOnBadArgs(t *testing.T) {
	inner := &countingEmbedder{}
	require.Equal(t, ai.IEmbedder(inner), WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, ai.IEmbedder(inner), WrapLruCacheToEmbedder(inner, 16, 0))
}
