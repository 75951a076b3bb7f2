package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	input_dir TEXT,
	output_path TEXT,
	documents INTEGER DEFAULT 0,
	chunks INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_terms (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	phrase TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS embeddings (
	model TEXT NOT NULL,
	text TEXT NOT NULL,
	vector BLOB NOT NULL,
	PRIMARY KEY(model, text)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run and its ranked terms
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: %w: empty id", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, started_at, finished_at, input_dir, output_path, documents, chunks)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	started_at=excluded.started_at,
	finished_at=excluded.finished_at,
	input_dir=excluded.input_dir,
	output_path=excluded.output_path,
	documents=excluded.documents,
	chunks=excluded.chunks;
`,
		r.ID,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		r.InputDir,
		r.OutputPath,
		r.Documents,
		r.Chunks,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_terms WHERE run_id = ?`, r.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_terms (run_id, rank, phrase, score) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, term := range r.Terms {
		if _, err := stmt.ExecContext(ctx, r.ID, i, term.Phrase, term.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its terms in rank order
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, started_at, finished_at, input_dir, output_path, documents, chunks
FROM runs WHERE id = ?;
`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	r.Terms, err = s.loadTerms(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, finished_at, input_dir, output_path, documents, chunks
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		terms, err := s.loadTerms(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Terms = terms
	}
	return runs, nil
}

// GetEmbeddings returns cached vectors for the texts that have one
func (s *sqliteStore) GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float64, error) {
	out := make(map[string][]float64)
	if len(texts) == 0 {
		return out, nil
	}

	stmt, err := s.db.PrepareContext(ctx, `SELECT vector FROM embeddings WHERE model = ? AND text = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, text := range texts {
		var blob []byte
		err := stmt.QueryRowContext(ctx, model, text).Scan(&blob)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding %q: %w", text, err)
		}
		out[text] = vec
	}
	return out, nil
}

// PutEmbeddings upserts vectors for model
func (s *sqliteStore) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO embeddings (model, text, vector) VALUES (?, ?, ?)
ON CONFLICT(model, text) DO UPDATE SET vector=excluded.vector;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for text, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, model, text, encodeVector(vec)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) loadTerms(ctx context.Context, runID string) ([]store.Term, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase, score FROM run_terms WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []store.Term
	for rows.Next() {
		var t store.Term
		if err := rows.Scan(&t.Phrase, &t.Score); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var (
		r                 store.Run
		started, finished string
		inputDir, output  sql.NullString
	)
	if err := row.Scan(&r.ID, &started, &finished, &inputDir, &output, &r.Documents, &r.Chunks); err != nil {
		return store.Run{}, err
	}
	r.InputDir = inputDir.String
	r.OutputPath = output.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// encodeVector packs a vector as little-endian float64 values.
func encodeVector(vec []float64) []byte {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(buf))
	}
	vec := make([]float64, len(buf)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec, nil
}
