package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists the chunk store and its embedding vectors as paired
// rows keyed by the same ordinal id. The table is written once at ingestion
// and treated as read-only afterwards.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chunks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        content TEXT NOT NULL,
        source TEXT NOT NULL,
        page INTEGER NOT NULL DEFAULT 0,
        embedding_json TEXT NOT NULL -- JSON-encoded []float32
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceChunks clears the store and writes the given chunks and their
// embeddings in one transaction, so a failed ingestion never leaves a
// partially built store behind.
func (s *SQLiteStore) ReplaceChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to store an empty chunk set")
	}
	dim := len(chunks[0].Embedding)
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %d has no embedding", i)
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("chunk %d embedding dimension %d does not match %d", i, len(c.Embedding), dim)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name='chunks'"); err != nil {
		// Sequence table only exists after the first autoincrement insert.
		if !isNoSuchTable(err) {
			return fmt.Errorf("failed to reset chunk sequence: %w", err)
		}
	}

	stmt, err := tx.Prepare("INSERT INTO chunks (content, source, page, embedding_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		embeddingBytes, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for chunk %d: %w", i, err)
		}
		if _, err := stmt.Exec(c.Content, c.Source, c.Page, string(embeddingBytes)); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// LoadChunks reads the whole store in insertion order and verifies its
// integrity: every chunk must carry an embedding and all embeddings must
// share one dimensionality. A store that fails these checks is rejected
// rather than served with misaligned results.
func (s *SQLiteStore) LoadChunks() ([]Chunk, error) {
	rows, err := s.db.Query("SELECT id, content, source, page, embedding_json FROM chunks ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	dim := -1
	for rows.Next() {
		var chunk Chunk
		var embeddingJSON string
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.Source, &chunk.Page, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if embeddingJSON == "" {
			return nil, fmt.Errorf("chunk %d has no stored embedding", chunk.ID)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding for chunk %d: %w", chunk.ID, err)
		}
		if len(chunk.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %d has an empty embedding", chunk.ID)
		}
		if dim == -1 {
			dim = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dim {
			return nil, fmt.Errorf("chunk %d embedding dimension %d does not match store dimension %d", chunk.ID, len(chunk.Embedding), dim)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}
	return chunks, nil
}

// CountChunks returns how many chunks are stored.
func (s *SQLiteStore) CountChunks() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// insertRawChunk writes a single row without embedding validation. Used by
// tests to construct deliberately corrupt stores.
func (s *SQLiteStore) insertRawChunk(content, source string, page int, embeddingJSON string) error {
	_, err := s.db.Exec("INSERT INTO chunks (content, source, page, embedding_json) VALUES (?, ?, ?, ?)", content, source, page, embeddingJSON)
	return err
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
