package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Fraol-M/metta-assistant/internal/config"
)

// Record is one embedded chunk as the index stores it: the vector plus a
// payload mirror rich enough to serve search hits without the document store.
type Record struct {
	ChunkID string
	Vector  []float32
	Text    string
	Payload map[string]string
}

type Hit struct {
	ChunkID string
	Score   float32
	Text    string
	Payload map[string]string
}

// Store is the external vector index. Upsert overwrites by chunk id, so
// re-embedding the same chunk never duplicates.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)
	Close() error
}

// Deps carries process-wide handles a backend may borrow; the pgvector
// backend shares the document store's connection pool.
type Deps struct {
	Collection string
	DB         *sql.DB
}

type Factory func(deps Deps, args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.VectorStoreConfig, conn *sql.DB) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store type: %s", cfg.Type)
	}
	return factory(Deps{Collection: cfg.Collection, DB: conn}, cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}
