package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// pgvectorStore keeps vectors in the chunk_vectors table next to the
// document store, sharing its connection pool.
type pgvectorStore struct {
	db *sql.DB
}

type pgvectorPayload struct {
	Chunk   string            `json:"chunk"`
	Payload map[string]string `json:"payload,omitempty"`
}

func init() {
	Register("pgvector", createPgvectorStore)
}

func createPgvectorStore(deps Deps, args interface{}) (Store, error) {
	_ = args
	if deps.DB == nil {
		return nil, fmt.Errorf("pgvector store requires a database handle")
	}
	return &pgvectorStore{db: deps.DB}, nil
}

func (s *pgvectorStore) Upsert(ctx context.Context, records []Record) error {
	const query = `
		INSERT INTO chunk_vectors (chunk_id, embedding, payload, mtime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			payload = EXCLUDED.payload,
			mtime = EXCLUDED.mtime
	`
	now := time.Now().Unix()
	for _, rec := range records {
		blob, err := json.Marshal(pgvectorPayload{Chunk: rec.Text, Payload: rec.Payload})
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, query, rec.ChunkID, pgvector.NewVector(rec.Vector), blob, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgvectorStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	// Cosine distance; ordering by distance with chunk_id as the stable
	// tiebreaker keeps results deterministic for a fixed index state.
	const query = `
		SELECT chunk_id, payload, 1 - (embedding <=> $1) AS score
		FROM chunk_vectors
		ORDER BY embedding <=> $1, chunk_id
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var hits []Hit
	for rows.Next() {
		var hit Hit
		var blob []byte
		var score float64
		if err := rows.Scan(&hit.ChunkID, &blob, &score); err != nil {
			return nil, err
		}
		var payload pgvectorPayload
		if err := json.Unmarshal(blob, &payload); err != nil {
			return nil, err
		}
		hit.Score = float32(score)
		hit.Text = payload.Chunk
		hit.Payload = payload.Payload
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *pgvectorStore) Close() error {
	// Connection pool is owned by the process, not this store.
	return nil
}
