package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/Fraol-M/metta-assistant/internal/model"
	"github.com/Fraol-M/metta-assistant/internal/pkg/dbutil"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
)

const chunkColumns = "chunk_id, source, chunk, is_embedded, metadata, ctime, mtime"

// ChunkRepo is the keyed chunk store. chunk_id is the dedup key: inserts of
// an already-stored id are silent no-ops, never errors.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertChunk stores one chunk. It returns the stored chunk id, or an empty
// id when the chunk already existed (no write). Invalid chunks fail with
// ErrInvalid before any write.
func (r *ChunkRepo) InsertChunk(ctx context.Context, chunk *model.Chunk) (string, error) {
	if err := chunk.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrInvalid, err)
	}
	exists, err := r.exists(ctx, chunk.ChunkID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}
	data, err := chunkRow(chunk)
	if err != nil {
		return "", err
	}
	sqlStr, args, err := builder.BuildInsert("chunks", []map[string]interface{}{data})
	if err != nil {
		return "", err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		// Raced with a concurrent insert of the same id; same outcome as
		// the existence check above.
		if dbutil.IsConflict(err) {
			return "", nil
		}
		return "", err
	}
	return chunk.ChunkID, nil
}

// InsertChunks bulk-inserts the subset of chunks that are valid and not yet
// stored, in a single write, and returns exactly the ids that were written.
// Duplicates are excluded by the insert itself (conflicting ids are skipped,
// not errors), so a concurrent insert of the same content cannot fail the
// batch; invalid items are excluded silently.
func (r *ChunkRepo) InsertChunks(ctx context.Context, chunks []*model.Chunk) ([]string, error) {
	rows := make([]map[string]interface{}, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if chunk.Validate() != nil || seen[chunk.ChunkID] {
			continue
		}
		seen[chunk.ChunkID] = true
		row, err := chunkRow(chunk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sqlStr, args, err := builder.BuildInsert("chunks", rows)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	sqlStr += " ON CONFLICT (chunk_id) DO NOTHING RETURNING chunk_id"
	result, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = result.Close() }()
	var written []string
	for result.Next() {
		var id string
		if err := result.Scan(&id); err != nil {
			return nil, err
		}
		written = append(written, id)
	}
	return written, result.Err()
}

func (r *ChunkRepo) GetByID(ctx context.Context, chunkID string) (*model.Chunk, error) {
	query := "SELECT " + chunkColumns + " FROM chunks WHERE chunk_id = $1"
	row := r.db.QueryRowContext(ctx, query, chunkID)
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// ChunkFilter narrows List results. Zero values mean "any".
type ChunkFilter struct {
	Source   model.SourceKind
	Project  string
	Category string
}

func (r *ChunkRepo) List(ctx context.Context, filter ChunkFilter, limit int) ([]*model.Chunk, error) {
	query := "SELECT " + chunkColumns + " FROM chunks"
	var conds []string
	var args []interface{}
	if filter.Source != "" {
		args = append(args, string(filter.Source))
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.Project != "" {
		args = append(args, filter.Project)
		conds = append(conds, fmt.Sprintf("metadata->>'project' = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("metadata->>'category' = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chunks []*model.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ListUnembedded returns up to limit chunks still waiting for a vector,
// the embedding pipeline's work queue.
func (r *ChunkRepo) ListUnembedded(ctx context.Context, limit int) ([]*model.Chunk, error) {
	query := "SELECT " + chunkColumns + " FROM chunks WHERE is_embedded = FALSE LIMIT $1"
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chunks []*model.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// UpdateFields applies a partial update and reports how many rows changed
// (0 or 1). A no-op update is not an error.
func (r *ChunkRepo) UpdateFields(ctx context.Context, chunkID string, patch *model.ChunkPatch) (int64, error) {
	update := map[string]interface{}{
		"mtime": time.Now().Unix(),
	}
	if patch.Text != nil {
		update["chunk"] = *patch.Text
	}
	if patch.IsEmbedded != nil {
		update["is_embedded"] = *patch.IsEmbedded
	}
	if patch.Code != nil {
		blob, err := json.Marshal(patch.Code)
		if err != nil {
			return 0, err
		}
		update["source"] = string(model.SourceCode)
		update["metadata"] = blob
	} else if patch.Doc != nil {
		blob, err := json.Marshal(patch.Doc)
		if err != nil {
			return 0, err
		}
		update["source"] = string(model.SourceDocumentation)
		update["metadata"] = blob
	}
	where := map[string]interface{}{"chunk_id": chunkID}
	sqlStr, args, err := builder.BuildUpdate("chunks", where, update)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ChunkRepo) DeleteByID(ctx context.Context, chunkID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE chunk_id = $1", chunkID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetEmbeddingStatus flips is_embedded for one id or a whole batch in a
// single statement, returning the count actually modified.
func (r *ChunkRepo) SetEmbeddingStatus(ctx context.Context, chunkIDs []string, value bool) (int64, error) {
	if len(chunkIDs) == 0 {
		return 0, nil
	}
	now := time.Now().Unix()
	var result sql.Result
	var err error
	if len(chunkIDs) == 1 {
		result, err = r.db.ExecContext(ctx,
			"UPDATE chunks SET is_embedded = $1, mtime = $2 WHERE chunk_id = $3",
			value, now, chunkIDs[0])
	} else {
		result, err = r.db.ExecContext(ctx,
			"UPDATE chunks SET is_embedded = $1, mtime = $2 WHERE chunk_id = ANY($3)",
			value, now, pq.Array(chunkIDs))
	}
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ChunkRepo) exists(ctx context.Context, chunkID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, "SELECT 1 FROM chunks WHERE chunk_id = $1", chunkID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func chunkRow(chunk *model.Chunk) (map[string]interface{}, error) {
	var meta interface{}
	switch chunk.Source {
	case model.SourceCode:
		meta = chunk.Code
	case model.SourceDocumentation:
		meta = chunk.Doc
	}
	blob, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	ctime := chunk.Ctime
	if ctime == 0 {
		ctime = now
	}
	return map[string]interface{}{
		"chunk_id":    chunk.ChunkID,
		"source":      string(chunk.Source),
		"chunk":       chunk.Text,
		"is_embedded": chunk.IsEmbedded,
		"metadata":    blob,
		"ctime":       ctime,
		"mtime":       now,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row rowScanner) (*model.Chunk, error) {
	var chunk model.Chunk
	var source string
	var blob []byte
	if err := row.Scan(&chunk.ChunkID, &source, &chunk.Text, &chunk.IsEmbedded, &blob, &chunk.Ctime, &chunk.Mtime); err != nil {
		return nil, err
	}
	chunk.Source = model.SourceKind(source)
	switch chunk.Source {
	case model.SourceCode:
		chunk.Code = &model.CodeMetadata{}
		if err := json.Unmarshal(blob, chunk.Code); err != nil {
			return nil, err
		}
	case model.SourceDocumentation:
		chunk.Doc = &model.DocMetadata{}
		if err := json.Unmarshal(blob, chunk.Doc); err != nil {
			return nil, err
		}
	}
	return &chunk, nil
}
